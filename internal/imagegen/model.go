package imagegen

import (
	"context"
	"fmt"

	genai "google.golang.org/genai"
)

// Model produces raw image bytes for a prompt. One prompt may yield several
// renditions.
type Model interface {
	Generate(ctx context.Context, prompt string) ([][]byte, error)
}

// GeminiImageModel generates images through the genai Imagen endpoint.
type GeminiImageModel struct {
	cli   *genai.Client
	model string
}

func NewGeminiImageModel(ctx context.Context, model string) (*GeminiImageModel, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	return &GeminiImageModel{cli: cli, model: model}, nil
}

func (m *GeminiImageModel) Generate(ctx context.Context, prompt string) ([][]byte, error) {
	resp, err := m.cli.Models.GenerateImages(ctx, m.model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("generate images: %w", err)
	}
	out := make([][]byte, 0, len(resp.GeneratedImages))
	for _, g := range resp.GeneratedImages {
		if g.Image == nil || len(g.Image.ImageBytes) == 0 {
			continue
		}
		out = append(out, g.Image.ImageBytes)
	}
	return out, nil
}
