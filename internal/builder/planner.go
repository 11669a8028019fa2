package builder

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pageforge/internal/llmclient"
	"pageforge/internal/prompt"
)

var complexityPrompt = prompt.MustBuild(prompt.ApplyStrictJSON(prompt.Spec{
	Purpose:    "Classify the complexity of a requested web build.",
	Background: "Simple examples: forms, tables, cards, individual components. Complex examples: landing pages, entire apps, dashboards, multiple components.",
	OutputFields: []prompt.Field{
		{Name: "complexity_level", Type: "string", Required: true, Description: "Either \"simple\" or \"complex\"."},
	},
}))

var appArchitectPrompt = prompt.MustBuild(prompt.ApplyStrictJSON(prompt.Spec{
	Purpose:    "Design a modern, responsive web app UI using Bootstrap 5 components and classes.",
	Background: "The design is split into ordered page sections; each section is generated independently and assembled in order.",
	OutputFields: []prompt.Field{
		{Name: "sections", Type: "[]Section", Required: true, Description: "Ordered sections with {section_name, layout_structure, image_requirements, css_style_and_animation_instructions}."},
		{Name: "global_css", Type: "string", Required: true, Description: "Page-wide CSS. Keep styles and animations simple and elegant."},
	},
	Constraints: []string{
		"Use Bootstrap's preset component classes (btn, card, navbar, ...).",
		"Prefer responsive design patterns.",
		"image_requirements lists {image_name, prompt} pairs; include how many images each section needs.",
	},
}))

var componentArchitectPrompt = prompt.MustBuild(prompt.ApplyStrictJSON(prompt.Spec{
	Purpose:    "Design a modern, responsive web component using Bootstrap 5 components and classes.",
	Background: "A single component is generated from this specification in one pass.",
	OutputFields: []prompt.Field{
		{Name: "component_spec", Type: "Section", Required: true, Description: "One spec with {component_name, layout_structure, image_requirements, css_style_and_animation_instructions}."},
		{Name: "global_css", Type: "string", Required: true, Description: "Component-wide CSS. Keep styles and animations simple and elegant."},
	},
	Constraints: []string{
		"Use Bootstrap's preset component classes (btn, card, ...).",
		"Prefer responsive design patterns.",
	},
}))

// Planner classifies prompt complexity and produces the ordered section list
// plus the global style seed. Classification runs on the weak model, the
// architecture call on the strong one.
type Planner struct {
	LLM    llmclient.LLMClient
	Strong llmclient.LLMClient
}

// Classify runs the complexity call. Anything that does not normalize to
// "complex" is treated as simple.
func (p *Planner) Classify(ctx context.Context, description string) (ComplexityLevel, error) {
	raw, err := p.LLM.GenerateJSON(ctx, complexityPrompt, map[string]any{"description": description})
	if err != nil {
		return "", fmt.Errorf("analyzing complexity: %w", err)
	}
	var out struct {
		ComplexityLevel string `json:"complexity_level"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &llmclient.MalformedResponseError{Call: "complexity_analyzer", Reason: err.Error()}
	}
	if strings.EqualFold(strings.TrimSpace(out.ComplexityLevel), string(ComplexityComplex)) {
		return ComplexityComplex, nil
	}
	return ComplexitySimple, nil
}

// Design runs the architecture call for the given complexity level.
// Zero sections or an empty global style block abort the pipeline.
func (p *Planner) Design(ctx context.Context, description string, level ComplexityLevel) (Plan, error) {
	if level == ComplexityComplex {
		return p.designApp(ctx, description)
	}
	return p.designComponent(ctx, description)
}

// Plan is the one-shot composition of Classify and Design.
func (p *Planner) Plan(ctx context.Context, description string) (Plan, error) {
	level, err := p.Classify(ctx, description)
	if err != nil {
		return Plan{}, err
	}
	return p.Design(ctx, description, level)
}

func (p *Planner) designApp(ctx context.Context, description string) (Plan, error) {
	raw, err := p.Strong.GenerateJSON(ctx, appArchitectPrompt, map[string]any{"description": description})
	if err != nil {
		return Plan{}, fmt.Errorf("designing app sections: %w", err)
	}
	var out struct {
		Sections  []Section `json:"sections"`
		GlobalCSS string    `json:"global_css"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return Plan{}, &llmclient.MalformedResponseError{Call: "web_app_architect", Reason: err.Error()}
	}
	if len(out.Sections) == 0 {
		return Plan{}, &llmclient.MalformedResponseError{Call: "web_app_architect", Reason: "no sections"}
	}
	if strings.TrimSpace(out.GlobalCSS) == "" {
		return Plan{}, &llmclient.MalformedResponseError{Call: "web_app_architect", Reason: "empty global_css"}
	}
	for i := range out.Sections {
		if strings.TrimSpace(out.Sections[i].Name) == "" {
			out.Sections[i].Name = DefaultSectionName
		}
	}
	return Plan{
		Complexity: ComplexityComplex,
		Sections:   out.Sections,
		SeedStyle:  out.GlobalCSS,
	}, nil
}

func (p *Planner) designComponent(ctx context.Context, description string) (Plan, error) {
	raw, err := p.Strong.GenerateJSON(ctx, componentArchitectPrompt, map[string]any{"description": description})
	if err != nil {
		return Plan{}, fmt.Errorf("designing component: %w", err)
	}
	var out struct {
		ComponentSpec struct {
			Name              string             `json:"component_name"`
			LayoutStructure   string             `json:"layout_structure"`
			ImageRequirements []ImageRequirement `json:"image_requirements"`
			StyleInstructions string             `json:"css_style_and_animation_instructions"`
		} `json:"component_spec"`
		GlobalCSS string `json:"global_css"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return Plan{}, &llmclient.MalformedResponseError{Call: "web_component_architect", Reason: err.Error()}
	}
	if strings.TrimSpace(out.ComponentSpec.LayoutStructure) == "" {
		return Plan{}, &llmclient.MalformedResponseError{Call: "web_component_architect", Reason: "empty component_spec"}
	}
	if strings.TrimSpace(out.GlobalCSS) == "" {
		return Plan{}, &llmclient.MalformedResponseError{Call: "web_component_architect", Reason: "empty global_css"}
	}
	section := Section{
		Name:              out.ComponentSpec.Name,
		LayoutStructure:   out.ComponentSpec.LayoutStructure,
		ImageRequirements: out.ComponentSpec.ImageRequirements,
		StyleInstructions: out.ComponentSpec.StyleInstructions,
	}
	if strings.TrimSpace(section.Name) == "" {
		section.Name = DefaultSectionName
	}
	return Plan{
		Complexity: ComplexitySimple,
		Sections:   []Section{section},
		SeedStyle:  fmt.Sprintf("/*Global CSS*/\n%s\n/*End Global CSS*/", out.GlobalCSS),
	}, nil
}
