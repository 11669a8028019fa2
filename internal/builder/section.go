package builder

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"pageforge/internal/llmclient"
	"pageforge/internal/prompt"
)

var imageDetailsPrompt = prompt.MustBuild(prompt.ApplyStrictJSON(prompt.Spec{
	Purpose: "Expand image requirements into the details used to generate each image.",
	OutputFields: []prompt.Field{
		{Name: "image_details", Type: "[]ImageDetail", Required: true, Description: "One {image_name, alt, prompt} per requirement."},
	},
	Constraints: []string{
		"prompt should be detailed and verbose; avoid icons.",
		"alt text must describe the image for screen readers.",
	},
}))

var sectionStylePrompt = prompt.MustBuild(prompt.ApplyStrictJSON(prompt.Spec{
	Purpose:    "Define section styles with awareness of the global CSS context.",
	Background: "The section is appended after earlier sections; its rules must respect the cascade established by global_css.",
	OutputFields: []prompt.Field{
		{Name: "css_rules", Type: "string", Required: true, Description: "CSS rules for this section."},
		{Name: "transitions", Type: "string", Required: true, Description: "CSS transitions and keyframe animations."},
	},
}))

var sectionStructurePrompt = prompt.MustBuild(prompt.ApplyStrictJSON(prompt.Spec{
	Purpose: "Create semantic HTML5 markup with Bootstrap 5 components and classes.",
	OutputFields: []prompt.Field{
		{Name: "markup", Type: "string", Required: true, Description: "HTML using Bootstrap components and classes."},
	},
	Constraints: []string{
		"Use semantic HTML5 elements with Bootstrap classes.",
		"Keep the markup structure clean and readable.",
		"Use Font Awesome version 6 icons.",
		"Use the image paths provided; every supplied image must appear in the response.",
	},
}))

// ImageSynthesizer turns a text prompt into stored images. Implementations
// own storage placement (remote bucket or local fallback).
type ImageSynthesizer interface {
	Synthesize(ctx context.Context, imagePrompt, name string) ([]StoredImage, error)
}

// SectionProcessor builds one section: image details and style rules are
// generated concurrently, then the structural markup is generated from both.
// It is stateless per call and never touches pipeline state.
type SectionProcessor struct {
	LLM    llmclient.LLMClient
	Strong llmclient.LLMClient
	Images ImageSynthesizer
}

// Process runs Step A (concurrent image + style generation) and Step B
// (structure generation) for one section. styleSeed is the most recently
// appended style block, establishing context continuity across sections.
func (p *SectionProcessor) Process(ctx context.Context, section Section, styleSeed string) (SectionResult, error) {
	var (
		images []GeneratedImage
		style  sectionStyle
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		images, err = p.generateImages(gctx, section.ImageRequirements)
		return err
	})
	g.Go(func() error {
		var err error
		style, err = p.generateStyle(gctx, section.StyleInstructions, styleSeed)
		return err
	})
	if err := g.Wait(); err != nil {
		return SectionResult{}, err
	}

	markup, err := p.generateStructure(ctx, section.LayoutStructure, style.CSSRules, images)
	if err != nil {
		return SectionResult{}, err
	}

	return SectionResult{
		Markup:      markup,
		StyleRules:  style.CSSRules,
		Transitions: style.Transitions,
		Images:      images,
	}, nil
}

type sectionStyle struct {
	CSSRules    string `json:"css_rules"`
	Transitions string `json:"transitions"`
}

func (p *SectionProcessor) generateStyle(ctx context.Context, instructions, globalCSS string) (sectionStyle, error) {
	raw, err := p.LLM.GenerateJSON(ctx, sectionStylePrompt, map[string]any{
		"style_instructions": instructions,
		"global_css":         globalCSS,
	})
	if err != nil {
		return sectionStyle{}, fmt.Errorf("generating section styles: %w", err)
	}
	var out sectionStyle
	if err := json.Unmarshal(raw, &out); err != nil {
		return sectionStyle{}, &llmclient.MalformedResponseError{Call: "section_style", Reason: err.Error()}
	}
	if strings.TrimSpace(out.CSSRules) == "" {
		return sectionStyle{}, &llmclient.MalformedResponseError{Call: "section_style", Reason: "empty css_rules"}
	}
	return out, nil
}

// generateImages expands the requirements into details with one LLM call,
// then synthesizes every detail concurrently. Sections without image
// requirements skip the synthesizer entirely.
func (p *SectionProcessor) generateImages(ctx context.Context, reqs []ImageRequirement) ([]GeneratedImage, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	raw, err := p.Strong.GenerateJSON(ctx, imageDetailsPrompt, map[string]any{"image_requirements": reqs})
	if err != nil {
		return nil, fmt.Errorf("generating image details: %w", err)
	}
	var out struct {
		ImageDetails []ImageDetail `json:"image_details"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &llmclient.MalformedResponseError{Call: "section_image_details", Reason: err.Error()}
	}
	if len(out.ImageDetails) == 0 {
		return nil, &llmclient.MalformedResponseError{Call: "section_image_details", Reason: "no image_details"}
	}

	results := make([]GeneratedImage, len(out.ImageDetails))
	found := make([]bool, len(out.ImageDetails))
	g, gctx := errgroup.WithContext(ctx)
	for i, detail := range out.ImageDetails {
		g.Go(func() error {
			stored, err := p.Images.Synthesize(gctx, detail.Prompt, detail.Name)
			if err != nil {
				return fmt.Errorf("synthesizing image %q: %w", detail.Name, err)
			}
			if len(stored) == 0 {
				return nil
			}
			// Keep the first rendition; attach the requirement metadata.
			results[i] = GeneratedImage{
				Name:     detail.Name,
				Path:     stored[0].Path,
				Category: stored[0].Category,
				Alt:      detail.Alt,
				Prompt:   detail.Prompt,
			}
			found[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	images := make([]GeneratedImage, 0, len(results))
	for i, ok := range found {
		if ok {
			images = append(images, results[i])
		}
	}
	return images, nil
}

func (p *SectionProcessor) generateStructure(ctx context.Context, layout, cssRules string, images []GeneratedImage) (string, error) {
	raw, err := p.Strong.GenerateJSON(ctx, sectionStructurePrompt, map[string]any{
		"layout_structure":  layout,
		"section_css_rules": cssRules,
		"image_details":     images,
	})
	if err != nil {
		return "", fmt.Errorf("building section structure: %w", err)
	}
	var out struct {
		Markup string `json:"markup"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &llmclient.MalformedResponseError{Call: "component_structure", Reason: err.Error()}
	}
	markup := CleanMarkup(out.Markup)
	if markup == "" {
		return "", &llmclient.MalformedResponseError{Call: "component_structure", Reason: "empty markup"}
	}
	return markup, nil
}
