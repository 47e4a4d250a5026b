package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/hotspotmap/internal/adapters/nats"
	"github.com/samirrijal/hotspotmap/internal/core/domain"
	"github.com/samirrijal/hotspotmap/internal/core/ports"
	"github.com/samirrijal/hotspotmap/internal/core/usecases"
	"github.com/samirrijal/hotspotmap/internal/pkg/metrics"
)

// wsEvent is a pointer event sent by the client.
type wsEvent struct {
	Type  string `json:"type"`  // "pointerover" | "pointerout" | "click" | "clear"
	Panel string `json:"panel"` // "boroughs" | "providers"
	Key   string `json:"key"`
}

// wsReply is sent to the client after every event, and for events of other
// sessions on the same category when NATS is available.
type wsReply struct {
	Type  string                  `json:"type"` // "view" | "peer" | "error"
	View  *domain.ChartView       `json:"view,omitempty"`
	Peer  *ports.SelectionChanged `json:"peer,omitempty"`
	Error string                  `json:"error,omitempty"`
}

// applyEvent feeds one client event into the session's selection state.
func applyEvent(state *usecases.SelectionState, ev wsEvent) error {
	switch ev.Type {
	case "pointerout":
		state.PointerOut()
		return nil
	case "clear":
		state.Clear()
		return nil
	}

	panel, err := usecases.ParsePanel(ev.Panel)
	if err != nil {
		return err
	}
	ref := domain.BarRef{Panel: panel, Key: ev.Key}
	switch ev.Type {
	case "pointerover":
		state.PointerOver(ref)
	case "click":
		state.Click(ref)
	default:
		return errUnknownEvent(ev.Type)
	}
	return nil
}

type errUnknownEvent string

func (e errUnknownEvent) Error() string { return "unknown event: " + string(e) }

// SelectionSocketHandler runs one interactive chart session per connection.
// Clients send {"type":"click","panel":"boroughs","key":"Manhattan"} and get
// the re-evaluated ChartView back.
func SelectionSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		ctx := context.Background()

		category, err := domain.ParseHotspotType(c.Params("category"))
		if err != nil {
			_ = c.WriteJSON(wsReply{Type: "error", Error: err.Error()})
			return
		}
		name := c.Query("name", string(category))
		slog.Info("ws chart session opened", "remote", remoteAddr, "category", category)

		var mu sync.Mutex
		// Helper: thread-safe write
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		state := usecases.NewSelectionState()
		sendView := func() {
			view, err := deps.Charts.View(ctx, category, state, name)
			if err != nil {
				_ = writeJSON(wsReply{Type: "error", Error: err.Error()})
				return
			}
			_ = writeJSON(wsReply{Type: "view", View: view})
		}
		sendView()

		// Relay selections made in other sessions on this category.
		session := nats.NewInbox()
		if deps.NATS != nil {
			sub, err := deps.NATS.Subscribe(natsadapter.SelectionSubject(category.Slug()), func(msg *nats.Msg) {
				var peer ports.SelectionChanged
				if err := json.Unmarshal(msg.Data, &peer); err != nil || peer.Session == session {
					return
				}
				_ = writeJSON(wsReply{Type: "peer", Peer: &peer})
			})
			if err != nil {
				slog.Warn("ws selection subscribe", "error", err)
			} else {
				defer func() { _ = sub.Unsubscribe() }()
			}
		}

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
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

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var ev wsEvent
			if err := json.Unmarshal(msg, &ev); err != nil {
				_ = writeJSON(wsReply{Type: "error", Error: "invalid JSON"})
				continue
			}
			if err := applyEvent(state, ev); err != nil {
				_ = writeJSON(wsReply{Type: "error", Error: err.Error()})
				continue
			}
			metrics.SelectionEvents.WithLabelValues(ev.Type).Inc()
			sendView()

			if deps.Publisher != nil {
				changed := &ports.SelectionChanged{
					Session:  session,
					Category: category,
					Hover:    state.Hover(),
					Filter:   state.Filter(),
				}
				if err := deps.Publisher.PublishSelection(ctx, changed); err != nil {
					slog.Warn("publish selection", "error", err)
				}
			}
		}

		slog.Info("ws chart session closed", "remote", remoteAddr)
	}
}
