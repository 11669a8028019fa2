package builder

import "time"

// BuildRequest is the immutable input of one pipeline invocation.
type BuildRequest struct {
	Prompt string `json:"prompt"`
}

// ComplexityLevel determines whether the planner produces one section
// (a single component) or many (sections of an app).
type ComplexityLevel string

const (
	ComplexitySimple  ComplexityLevel = "simple"
	ComplexityComplex ComplexityLevel = "complex"
)

// DefaultSectionName is substituted when the backend omits a section name so
// downstream consumers never index a missing key.
const DefaultSectionName = "Unnamed Section"

// ImageRequirement is a declarative request for one generated image.
type ImageRequirement struct {
	Name   string `json:"image_name"`
	Prompt string `json:"prompt"`
}

// Section is one planned unit of output. Order across sections is fixed at
// planning time and determines both document order and streaming order.
type Section struct {
	Name              string             `json:"section_name"`
	LayoutStructure   string             `json:"layout_structure"`
	ImageRequirements []ImageRequirement `json:"image_requirements"`
	StyleInstructions string             `json:"css_style_and_animation_instructions"`
}

// ImageDetail is the expanded description of one image to synthesize,
// produced from a section's requirements.
type ImageDetail struct {
	Name   string `json:"image_name"`
	Alt    string `json:"alt"`
	Prompt string `json:"prompt"`
}

// StoredImage is what the image synthesizer returns per generated file.
type StoredImage struct {
	Path     string `json:"path"`
	Category string `json:"category"`
}

// GeneratedImage is a stored image plus the metadata of the requirement it
// satisfies. CreatedAt is stamped at persistence time.
type GeneratedImage struct {
	Name      string    `json:"image_name"`
	Path      string    `json:"path"`
	Category  string    `json:"category"`
	Alt       string    `json:"alt"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// SectionResult is the output of processing one section.
type SectionResult struct {
	Markup      string
	StyleRules  string
	Transitions string
	Images      []GeneratedImage
}

// Plan is the planner's output: the ordered sections plus the global style
// seed that anchors the CSS cascade.
type Plan struct {
	Complexity ComplexityLevel
	Sections   []Section
	SeedStyle  string
}
