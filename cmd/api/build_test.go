package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"pageforge/internal/builder"
)

// scriptedRunner emits a fixed event sequence instead of running a pipeline.
type scriptedRunner struct {
	events []builder.Event
	ran    bool
}

func (r *scriptedRunner) Run(ctx context.Context, req builder.BuildRequest, sink builder.Sink) {
	r.ran = true
	for _, ev := range r.events {
		if !sink.Send(ctx, ev) {
			return
		}
	}
}

func decodeFrames(t *testing.T, body string) []builder.Event {
	t.Helper()
	var events []builder.Event
	for _, frame := range strings.Split(body, "\n\n") {
		frame = strings.TrimSpace(frame)
		if frame == "" {
			continue
		}
		require.True(t, strings.HasPrefix(frame, "data: "), "frame %q lacks data prefix", frame)
		var ev builder.Event
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(frame, "data: ")), &ev))
		events = append(events, ev)
	}
	return events
}

func TestHandleBuildStreamsEventsAsSSE(t *testing.T) {
	runner := &scriptedRunner{events: []builder.Event{
		{Type: builder.EventProgress, Message: "🎯 Analyzing requirements..."},
		{Type: builder.EventSectionComplete, Content: "<html>partial</html>"},
		{Type: builder.EventComponentComplete, Content: "<html>done</html>"},
		{Type: builder.EventPipelineComplete, BuildTime: 1.5, Timestamp: "2025-06-01 12:00:00"},
	}}
	srv := &apiServer{pipeline: runner}

	req := httptest.NewRequest(http.MethodPost, "/api/build", strings.NewReader(`{"prompt":"a landing page"}`))
	rec := httptest.NewRecorder()
	srv.handleBuild(rec, req)

	require.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	require.True(t, runner.ran)

	events := decodeFrames(t, rec.Body.String())
	require.Len(t, events, 4)
	require.Equal(t, builder.EventProgress, events[0].Type)
	require.Equal(t, builder.EventPipelineComplete, events[3].Type)
	require.Equal(t, 1.5, events[3].BuildTime)
}

func TestHandleBuildStopsAfterErrorFrame(t *testing.T) {
	runner := &scriptedRunner{events: []builder.Event{
		{Type: builder.EventError, Message: "classify failed"},
		{Type: builder.EventProgress, Message: "never sent"},
	}}
	srv := &apiServer{pipeline: runner}

	req := httptest.NewRequest(http.MethodPost, "/api/build", strings.NewReader(`{"prompt":"x"}`))
	rec := httptest.NewRecorder()
	srv.handleBuild(rec, req)

	events := decodeFrames(t, rec.Body.String())
	require.Len(t, events, 1, "stream ends at the terminal frame")
	require.Equal(t, builder.EventError, events[0].Type)
}

func TestHandleBuildRejectsEmptyPrompt(t *testing.T) {
	runner := &scriptedRunner{}
	srv := &apiServer{pipeline: runner}

	req := httptest.NewRequest(http.MethodPost, "/api/build", strings.NewReader(`{"prompt":"   "}`))
	rec := httptest.NewRecorder()
	srv.handleBuild(rec, req)

	require.False(t, runner.ran, "pipeline never starts for an empty prompt")
	events := decodeFrames(t, rec.Body.String())
	require.Len(t, events, 1)
	require.Equal(t, builder.EventError, events[0].Type)
	require.Equal(t, "Please provide a website description", events[0].Message)
}

func TestHandleBuildRejectsBadRequests(t *testing.T) {
	srv := &apiServer{pipeline: &scriptedRunner{}}

	req := httptest.NewRequest(http.MethodGet, "/api/build", nil)
	rec := httptest.NewRecorder()
	srv.handleBuild(rec, req)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/build", strings.NewReader("{not json"))
	rec = httptest.NewRecorder()
	srv.handleBuild(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
