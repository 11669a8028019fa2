package builder

import (
	"fmt"
	"regexp"
	"strings"
)

// componentScaffold is the document shell every composite is rendered into.
// Styles land in the head, section markup inside #component-root.
const componentScaffold = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <!-- Bootstrap CSS -->
    <script src="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/js/bootstrap.bundle.min.js" integrity="sha384-YvpcrYf0tY3lHB60NNkmXc5s9fDVZLESaAA55NDzOxhy9GkcIdslK1eN7N6jIeHz" crossorigin="anonymous"></script>

    <!-- Additional Resource Loading -->
    <link href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css" rel="stylesheet" integrity="sha384-QWTKZyjpPEjISv5WaRU9OFeRpok6YctnYmDr5pNlyT2bRjXh0JMhjY6hW+ALEwIH" crossorigin="anonymous">
    <link href="https://cdnjs.cloudflare.com/ajax/libs/font-awesome/6.0.0/css/all.min.css" rel="stylesheet">
    <!-- Component Styles -->
    %s
</head>
<body>
    <!-- Component Container -->
    <div id="component-root">
        %s
    </div>
</body>
</html>
`

var codeFenceRe = regexp.MustCompile("```(?:html|css|javascript)?")

// CleanMarkup strips markdown code fences the backends occasionally wrap
// their output in.
func CleanMarkup(markup string) string {
	return strings.TrimSpace(codeFenceRe.ReplaceAllString(markup, ""))
}

// RenderComposite renders the current document from pipeline state alone.
// It is a pure function of the state, so the composite at any step is
// reproducible from the appends that preceded it.
func RenderComposite(state *PipelineState) string {
	styles := make([]string, 0, len(state.Styles)+1)
	if strings.TrimSpace(state.GlobalStyle) != "" {
		styles = append(styles, state.GlobalStyle)
	}
	styles = append(styles, state.Styles...)

	markup := make([]string, len(state.Markup))
	for i, m := range state.Markup {
		markup[i] = CleanMarkup(m)
	}

	styleBlock := CleanMarkup(fmt.Sprintf("<style>%s</style>", strings.Join(styles, " ")))
	return fmt.Sprintf(componentScaffold, "", styleBlock, strings.Join(markup, "\n"))
}
