package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"pageforge/internal/builder"
	"pageforge/internal/docstore"
)

// pipelineRunner lets handler tests substitute a scripted pipeline.
type pipelineRunner interface {
	Run(ctx context.Context, req builder.BuildRequest, sink builder.Sink)
}

type apiServer struct {
	pipeline pipelineRunner
	images   *docstore.Store // nil when persistence is disabled
}

// handleBuild starts a pipeline run and streams its events as SSE frames.
// The stream is the only response: errors surface as error frames, and the
// stream ends after an error or pipeline_complete frame.
func (s *apiServer) handleBuild(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req builder.BuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	setSSEHeaders(w)
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	if strings.TrimSpace(req.Prompt) == "" {
		writeSSE(w, builder.Event{Type: builder.EventError, Message: "Please provide a website description"})
		flusher.Flush()
		return
	}

	ctx := r.Context()
	events := make(chan builder.Event, 16)
	go func() {
		s.pipeline.Run(ctx, req, &builder.ChannelSink{Ch: events})
		close(events)
	}()

	for ev := range events {
		writeSSE(w, ev)
		flusher.Flush()
		if ev.Terminal() {
			return
		}
	}
}

func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

func writeSSE(w http.ResponseWriter, ev builder.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}
