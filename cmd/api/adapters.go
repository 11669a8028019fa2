package main

import (
	"context"

	"pageforge/internal/builder"
	"pageforge/internal/docstore"
	"pageforge/internal/imagegen"
)

// imageSynth adapts the image generator to the section processor's contract.
type imageSynth struct {
	gen *imagegen.Generator
}

func (s imageSynth) Synthesize(ctx context.Context, prompt, name string) ([]builder.StoredImage, error) {
	images, err := s.gen.Synthesize(ctx, prompt, name)
	if err != nil {
		return nil, err
	}
	out := make([]builder.StoredImage, len(images))
	for i, img := range images {
		out[i] = builder.StoredImage{Path: img.Path, Category: img.Category}
	}
	return out, nil
}

// imageDocs adapts the document store to the orchestrator's persistence
// contract.
type imageDocs struct {
	store *docstore.Store
}

func (d imageDocs) InsertGeneratedImages(ctx context.Context, images []builder.GeneratedImage) error {
	records := make([]docstore.ImageRecord, len(images))
	for i, img := range images {
		records[i] = docstore.ImageRecord{
			Name:      img.Name,
			Path:      img.Path,
			Category:  img.Category,
			Alt:       img.Alt,
			Prompt:    img.Prompt,
			CreatedAt: img.CreatedAt,
		}
	}
	return d.store.InsertMany(ctx, records)
}
