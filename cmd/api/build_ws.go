package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"pageforge/internal/builder"
)

const buildWSWriteWait = 10 * time.Second

var buildWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// handleBuildWS serves the same event stream over a websocket: the client
// sends one BuildRequest message, then reads events until a terminal frame.
func (s *apiServer) handleBuildWS(w http.ResponseWriter, r *http.Request) {
	conn, err := buildWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	var req builder.BuildRequest
	if err := conn.ReadJSON(&req); err != nil {
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		_ = conn.SetWriteDeadline(time.Now().Add(buildWSWriteWait))
		_ = conn.WriteJSON(builder.Event{Type: builder.EventError, Message: "Please provide a website description"})
		return
	}

	ctx := r.Context()
	events := make(chan builder.Event, 16)
	go func() {
		s.pipeline.Run(ctx, req, &builder.ChannelSink{Ch: events})
		close(events)
	}()

	for ev := range events {
		_ = conn.SetWriteDeadline(time.Now().Add(buildWSWriteWait))
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
		if ev.Terminal() {
			return
		}
	}
}
