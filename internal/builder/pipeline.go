package builder

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"pageforge/internal/llm"
)

// DocumentStore persists the generated-image records of a completed run.
type DocumentStore interface {
	InsertGeneratedImages(ctx context.Context, images []GeneratedImage) error
}

// Pipeline drives one build: plan, process sections in order, accumulate
// state, persist image records, and emit progress events. A fresh pipeline
// value is cheap; nothing is shared across runs.
type Pipeline struct {
	Planner  *Planner
	Sections *SectionProcessor
	Store    DocumentStore // optional; nil disables persistence

	// Now overrides the clock in tests.
	Now func() time.Time
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Run executes the pipeline and streams events to sink. The stream is the
// only error channel: planner or persistence failures terminate it with an
// error event, a single section's failure only produces a warning. Run
// returns when the pipeline finishes, aborts, or the consumer disappears.
func (p *Pipeline) Run(ctx context.Context, req BuildRequest, sink Sink) {
	start := p.now()
	runID := uuid.NewString()
	log.Printf("pipeline %s started: %.100s", runID, req.Prompt)

	emit := func(ev Event) bool { return sink.Send(ctx, ev) }

	// Surface adapter retries as progress frames.
	ctx = llm.WithRetryNotifier(ctx, func(attempt int, err error) {
		emit(Event{Type: EventProgress, Message: fmt.Sprintf("Backend busy, retrying (attempt %d)...", attempt)})
	})

	// Planning
	if !emit(Event{Type: EventProgress, Message: "🎯 Analyzing requirements..."}) {
		return
	}
	level, err := p.Planner.Classify(ctx, req.Prompt)
	if err != nil {
		p.abort(runID, "classify", err, emit)
		return
	}
	if level == ComplexityComplex {
		if !emit(Event{Type: EventProgress, Message: "🚧 Breaking down complex request..."}) {
			return
		}
	} else {
		if !emit(Event{Type: EventProgress, Message: "🏗️ Designing component..."}) {
			return
		}
	}
	plan, err := p.Planner.Design(ctx, req.Prompt, level)
	if err != nil {
		p.abort(runID, "design", err, emit)
		return
	}
	if plan.Complexity == ComplexityComplex {
		if !emit(Event{Type: EventProgress, Message: "Design complete"}) {
			return
		}
	}

	// Processing, strictly in section order. Each section reads the previous
	// section's style chunk as context, so no section starts before the
	// previous fold completes.
	state := NewPipelineState(plan.SeedStyle)
	total := len(plan.Sections)
	for i, section := range plan.Sections {
		if ctx.Err() != nil {
			log.Printf("pipeline %s canceled before section %d/%d", runID, i+1, total)
			return
		}
		if !emit(Event{
			Type:     EventProgress,
			Message:  fmt.Sprintf("🏗️ Section %d/%d: %s", i+1, total, section.Name),
			Progress: float64(i+1) / float64(total) * 100,
		}) {
			return
		}

		res, err := p.Sections.Process(ctx, section, state.LastStyle())
		if err != nil {
			if ctx.Err() != nil {
				// Consumer is gone; discard the in-flight result.
				return
			}
			log.Printf("pipeline %s: section %q failed: %v", runID, section.Name, err)
			if !emit(Event{Type: EventWarning, Message: fmt.Sprintf("Section %q issue: %v", section.Name, err)}) {
				return
			}
			continue
		}

		state.Append(section.Name, res)
		if !emit(Event{Type: EventSectionComplete, Content: RenderComposite(state)}) {
			return
		}
	}

	// Assembling
	final := RenderComposite(state)

	// Persisting: one ordered batch, skipped when no section produced images.
	images := state.Images
	if len(images) > 0 {
		stampedAt := p.now()
		stamped := make([]GeneratedImage, len(images))
		for i, img := range images {
			img.CreatedAt = stampedAt
			stamped[i] = img
		}
		images = stamped
		if p.Store != nil {
			if err := p.Store.InsertGeneratedImages(ctx, images); err != nil {
				p.abort(runID, "persist images", err, emit)
				return
			}
		}
	}

	// Done
	if !emit(Event{Type: EventComponentComplete, Content: final, ImagePlaceholders: images}) {
		return
	}
	elapsed := p.now().Sub(start)
	emit(Event{
		Type:      EventPipelineComplete,
		BuildTime: elapsed.Seconds(),
		Timestamp: p.now().Format("2006-01-02 15:04:05"),
	})
	log.Printf("pipeline %s completed in %.2fs", runID, elapsed.Seconds())
}

func (p *Pipeline) abort(runID, stage string, err error, emit func(Event) bool) {
	log.Printf("pipeline %s failed during %s: %v", runID, stage, err)
	emit(Event{Type: EventError, Message: err.Error()})
}
