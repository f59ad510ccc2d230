package server

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/beetlebugorg/burnview/internal/metrics"
	"github.com/beetlebugorg/burnview/pkg/session"
	"github.com/gofiber/websocket/v2"
)

// wsPingInterval is the keep-alive ping period.
const wsPingInterval = 30 * time.Second

// WebSocketHandler returns a handler that owns one session per connection.
//
// The initial snapshot is sent on connect. Each inbound message is an event
// (see session.DecodeEvent); each applied event is answered with one
// snapshot. Decoding problems are answered with {"error": "..."} and the
// connection stays open.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		s := deps.Sessions.Create()
		trackSessions(deps)
		defer func() {
			deps.Sessions.Remove(s.ID())
			trackSessions(deps)
		}()

		log := deps.Logger.With().
			Str("remote", c.RemoteAddr().String()).
			Str("session", s.ID()).
			Logger()
		log.Info().Msg("ws client connected")
		defer log.Info().Msg("ws client disconnected")

		var mu sync.Mutex
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(wsPingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		if err := writeJSON(newSnapshotResponse(s.Snapshot())); err != nil {
			return
		}

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}

			ev, err := session.DecodeEvent(msg)
			if err != nil {
				_ = writeJSON(map[string]string{"error": err.Error()})
				continue
			}

			snap, err := s.Apply(ev)
			if errors.Is(err, session.ErrClosed) {
				_ = writeJSON(map[string]string{"error": "session closed"})
				return
			}
			if err := writeJSON(newSnapshotResponse(snap)); err != nil {
				log.Debug().Err(err).Msg("ws write failed")
				return
			}
		}
	}
}
