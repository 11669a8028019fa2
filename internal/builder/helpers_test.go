package builder

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// scriptedLLM serves queued responses in order and records call inputs.
type scriptedLLM struct {
	mu     sync.Mutex
	steps  []scriptStep
	inputs []any
}

type scriptStep struct {
	raw json.RawMessage
	err error
}

func respond(raw string) scriptStep { return scriptStep{raw: json.RawMessage(raw)} }
func failWith(err error) scriptStep { return scriptStep{err: err} }

func (f *scriptedLLM) Name() string { return "scripted" }
func (f *scriptedLLM) Close() error { return nil }

func (f *scriptedLLM) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, input)
	if len(f.steps) == 0 {
		return nil, fmt.Errorf("scripted LLM: unexpected call")
	}
	step := f.steps[0]
	f.steps = f.steps[1:]
	return step.raw, step.err
}

func (f *scriptedLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inputs)
}

// fakeSynth returns one stored image per prompt and records synthesis calls.
type fakeSynth struct {
	mu    sync.Mutex
	calls []string // image names, in completion order
	err   error
}

func (f *fakeSynth) Synthesize(ctx context.Context, prompt, name string) ([]StoredImage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return []StoredImage{
		{Path: "demo/" + name + "_0.webp", Category: "demo"},
		{Path: "demo/" + name + "_1.webp", Category: "demo"},
	}, nil
}

func (f *fakeSynth) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// memSink collects events in emission order.
type memSink struct {
	mu     sync.Mutex
	events []Event

	// onSend, when set, runs after each append (used to cancel mid-stream).
	onSend func(ev Event)
}

func (s *memSink) Send(ctx context.Context, ev Event) bool {
	if ctx.Err() != nil {
		return false
	}
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
	if s.onSend != nil {
		s.onSend(ev)
	}
	return true
}

func (s *memSink) all() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func (s *memSink) byType(t EventType) []Event {
	var out []Event
	for _, ev := range s.all() {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}
