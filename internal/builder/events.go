package builder

import "context"

// EventType discriminates the streaming protocol frames.
type EventType string

const (
	EventProgress          EventType = "progress"
	EventSectionComplete   EventType = "section_complete"
	EventWarning           EventType = "warning"
	EventError             EventType = "error"
	EventComponentComplete EventType = "component_complete"
	EventPipelineComplete  EventType = "pipeline_complete"
)

// Event is one ordered unit of the external stream. Field presence follows
// the wire contract: progress/warning/error carry Message,
// section_complete/component_complete carry Content, pipeline_complete
// carries BuildTime and Timestamp.
type Event struct {
	Type              EventType        `json:"type"`
	Message           string           `json:"message,omitempty"`
	Content           string           `json:"content,omitempty"`
	Progress          float64          `json:"progress,omitempty"`
	ImagePlaceholders []GeneratedImage `json:"image_placeholders,omitempty"`
	BuildTime         float64          `json:"build_time,omitempty"`
	Timestamp         string           `json:"timestamp,omitempty"`
}

// Terminal reports whether consumers must stop reading after this event.
func (e Event) Terminal() bool {
	return e.Type == EventError || e.Type == EventPipelineComplete
}

// Sink receives pipeline events in emission order. Send reports false when
// the consumer is gone; the orchestrator then stops issuing backend calls.
type Sink interface {
	Send(ctx context.Context, ev Event) bool
}

// ChannelSink bridges the orchestrator to a transport goroutine. Sends block
// so ordering is preserved; a canceled context unblocks them.
type ChannelSink struct {
	Ch chan<- Event
}

func (s *ChannelSink) Send(ctx context.Context, ev Event) bool {
	select {
	case s.Ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
