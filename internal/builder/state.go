package builder

import "fmt"

// PipelineState is the single mutable structure of a pipeline run. It is
// owned exclusively by the orchestrator and only ever grows by appending;
// CSS cascade correctness depends on append order matching section order.
type PipelineState struct {
	GlobalStyle string
	Styles      []string
	Markup      []string
	Images      []GeneratedImage
}

func NewPipelineState(seedStyle string) *PipelineState {
	return &PipelineState{GlobalStyle: seedStyle}
}

// Append folds one successful section result into the state. Styles and
// markup grow in lockstep; a failed section contributes to neither.
func (s *PipelineState) Append(sectionName string, res SectionResult) {
	s.Styles = append(s.Styles, fmt.Sprintf("\n/* %s */\n%s\n%s\n", sectionName, res.StyleRules, res.Transitions))
	s.Markup = append(s.Markup, res.Markup)
	s.Images = append(s.Images, res.Images...)
}

// LastStyle returns the style context for the next section: the most
// recently appended section chunk, or the global seed before any section
// has completed.
func (s *PipelineState) LastStyle() string {
	if n := len(s.Styles); n > 0 {
		return s.Styles[n-1]
	}
	return s.GlobalStyle
}
