package routes

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/labstack/echo/v4"

	"github.com/fr0stylo/ourastream/internal/app/ports"
)

// LiveRoutes streams newly stored events over a websocket.
type LiveRoutes struct {
	store ports.EventStore
}

// NewLiveRoutes constructs the live feed route.
func NewLiveRoutes(store ports.EventStore) *LiveRoutes {
	return &LiveRoutes{store: store}
}

// RegisterRoutes registers the websocket endpoint.
func (r *LiveRoutes) RegisterRoutes(s *echo.Echo) {
	s.GET("/ws/events", r.handleEvents)
}

func (r *LiveRoutes) handleEvents(c echo.Context) error {
	conn, _, _, err := ws.UpgradeHTTP(c.Request(), c.Response())
	if err != nil {
		slog.WarnContext(c.Request().Context(), "Websocket upgrade failed", "error", err)
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	sub := r.store.Subscribe(ctx)
	defer sub.Close()

	// The feed is one-way; reading only detects the client going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := wsutil.ReadClientData(conn); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-sub.Events():
			if !ok {
				return nil
			}
			out, err := json.Marshal(event)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to encode live event", "event_id", event.ID, "error", err)
				continue
			}
			if err := wsutil.WriteServerMessage(conn, ws.OpText, out); err != nil {
				slog.DebugContext(ctx, "Live feed client disconnected", "error", err)
				return nil
			}
		}
	}
}
