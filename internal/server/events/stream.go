package events

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/kinganjia/backend/internal/logging"
)

const (
	writeTimeout = 5 * time.Second
	pingEvery    = 30 * time.Second
)

// Stream serves the hub's events over WebSocket as JSON text frames.
// Authentication happens before ServeHTTP is reached.
type Stream struct {
	hub            *Hub
	log            logging.Logger
	originPatterns []string
}

func NewStream(hub *Hub, log logging.Logger, originPatterns ...string) *Stream {
	return &Stream{hub: hub, log: log.With("module", "stream"), originPatterns: originPatterns}
}

func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.originPatterns})
	if err != nil {
		s.log.Warn(r.Context(), "ws accept failed", "err", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "bye") }()

	events, cancel := s.hub.Subscribe()
	defer cancel()

	// Clients only listen; CloseRead handles control frames and cancels
	// ctx once the peer goes away.
	ctx := conn.CloseRead(r.Context())

	ping := time.NewTicker(pingEvery)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := write(ctx, conn, e); err != nil {
				s.log.Info(ctx, "ws write failed", "close_status", websocket.CloseStatus(err), "err", err)
				return
			}
		case <-ping.C:
			pctx, pcancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pctx)
			pcancel()
			if err != nil {
				s.log.Info(ctx, "ws ping failed", "err", err)
				return
			}
		}
	}
}

func write(parent context.Context, conn *websocket.Conn, e Event) error {
	ctx, cancel := context.WithTimeout(parent, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, e)
}
