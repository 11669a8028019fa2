package imagegen

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"pageforge/internal/llmclient"
	"pageforge/internal/prompt"
)

var categorizePrompt = prompt.MustBuild(prompt.ApplyStrictJSON(prompt.Spec{
	Purpose: "Categorize an image based on its generation prompt. Example categories: Landscapes, Science, Technology, Food.",
	OutputFields: []prompt.Field{
		{Name: "category", Type: "string", Required: true, Description: "One short category word."},
	},
}))

// Image is one stored rendition of a generated image.
type Image struct {
	Path     string
	Category string
}

// Generator synthesizes images: prompt -> model -> categorized upload.
// Uploads go to Store; when that fails (remote channel unavailable) the
// generator falls back to Fallback so a build never loses its images.
type Generator struct {
	Model    Model
	LLM      llmclient.LLMClient
	Store    BlobStore
	Fallback BlobStore
}

// Synthesize generates renditions for one prompt and stores each under
// <category>/<name>_<index>.webp.
func (g *Generator) Synthesize(ctx context.Context, imagePrompt, name string) ([]Image, error) {
	renditions, err := g.Model.Generate(ctx, imagePrompt)
	if err != nil {
		return nil, err
	}
	if len(renditions) == 0 {
		return nil, fmt.Errorf("image model returned no renditions")
	}

	category := g.categorize(ctx, imagePrompt)

	images := make([]Image, 0, len(renditions))
	for i, data := range renditions {
		key := fmt.Sprintf("%s/%s_%d.webp", category, name, i)
		if err := g.put(ctx, key, data); err != nil {
			return nil, fmt.Errorf("store image %s: %w", key, err)
		}
		images = append(images, Image{Path: key, Category: category})
	}
	return images, nil
}

func (g *Generator) put(ctx context.Context, key string, data []byte) error {
	if g.Store != nil {
		err := g.Store.Put(ctx, key, data)
		if err == nil {
			return nil
		}
		if g.Fallback == nil {
			return err
		}
		log.Printf("imagegen: remote store failed for %s, falling back to local: %v", key, err)
	}
	if g.Fallback == nil {
		return fmt.Errorf("no blob store configured")
	}
	return g.Fallback.Put(ctx, key, data)
}

// categorize asks the LLM for a category; failures degrade to "uncategorized"
// rather than failing the synthesis.
func (g *Generator) categorize(ctx context.Context, imagePrompt string) string {
	const fallback = "uncategorized"
	if g.LLM == nil {
		return fallback
	}
	raw, err := g.LLM.GenerateJSON(ctx, categorizePrompt, map[string]any{"prompt": imagePrompt})
	if err != nil {
		log.Printf("imagegen: categorize failed: %v", err)
		return fallback
	}
	var out struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fallback
	}
	category := sanitizeCategory(out.Category)
	if category == "" {
		return fallback
	}
	return category
}

// sanitizeCategory keeps the category usable as a single path segment.
func sanitizeCategory(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.ReplaceAll(s, " ", "_")
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}
