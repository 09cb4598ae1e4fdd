package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fr0stylo/ourastream/internal/app/ports"
	"github.com/fr0stylo/ourastream/internal/app/services"
)

// StatusRoutes serves the service index and health check.
type StatusRoutes struct {
	name    string
	version string
	store   ports.EventStore
	tokens  *services.TokenStore
}

// NewStatusRoutes constructs status routes.
func NewStatusRoutes(name, version string, store ports.EventStore, tokens *services.TokenStore) *StatusRoutes {
	return &StatusRoutes{name: name, version: version, store: store, tokens: tokens}
}

// RegisterRoutes registers status endpoints.
func (r *StatusRoutes) RegisterRoutes(s *echo.Echo) {
	s.GET("/", r.handleIndex)
	s.GET("/health", r.handleHealth)
}

func (r *StatusRoutes) handleIndex(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"name":    r.name,
		"version": r.version,
		"health":  "/health",
		"endpoints": map[string]any{
			"auth": map[string]string{
				"login":    "GET /auth/login",
				"callback": "GET /auth/callback",
				"status":   "GET /auth/status",
				"logout":   "POST /auth/logout",
			},
			"webhooks": map[string]string{
				"verify":  "GET /webhooks?verification_token=...",
				"receive": "POST /webhooks",
				"events":  "GET /events",
				"clear":   "DELETE /events",
			},
			"subscriptions": map[string]string{
				"list":   "GET /subscriptions",
				"create": "POST /subscriptions",
				"delete": "DELETE /subscriptions/{id}",
			},
			"realtime": map[string]string{
				"websocket": "WS /ws/events",
			},
		},
	})
}

func (r *StatusRoutes) handleHealth(c echo.Context) error {
	ctx := c.Request().Context()
	count, err := r.store.Count(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "event store unavailable").SetInternal(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":        "healthy",
		"authenticated": r.tokens.IsAuthenticated(ctx),
		"events_stored": count,
	})
}
