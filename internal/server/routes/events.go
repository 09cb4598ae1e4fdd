package routes

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/fr0stylo/ourastream/internal/app/domain"
	"github.com/fr0stylo/ourastream/internal/app/ports"
	ourawebhook "github.com/fr0stylo/ourastream/internal/webhooks/oura"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// EventRoutes registers webhook intake and the event read API.
type EventRoutes struct {
	webhook *ourawebhook.Handler
	store   ports.EventStore
}

// NewEventRoutes constructs event routes.
func NewEventRoutes(webhook *ourawebhook.Handler, store ports.EventStore) *EventRoutes {
	return &EventRoutes{webhook: webhook, store: store}
}

// RegisterRoutes registers webhook and event endpoints.
func (r *EventRoutes) RegisterRoutes(s *echo.Echo) {
	s.GET("/webhooks", r.handleVerify)
	s.POST("/webhooks", r.handleReceive)
	s.GET("/events", r.handleList)
	s.DELETE("/events", r.handleClear)
}

func (r *EventRoutes) handleVerify(c echo.Context) error {
	return r.webhook.HandleVerification(c.Response(), c.Request())
}

func (r *EventRoutes) handleReceive(c echo.Context) error {
	return r.webhook.Handle(c.Response(), c.Request())
}

func (r *EventRoutes) handleList(c echo.Context) error {
	limit, err := parseLimit(c.QueryParam("limit"))
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	var events []domain.StoredEvent
	if dataType := c.QueryParam("data_type"); dataType != "" {
		events, err = r.store.GetByDataType(ctx, domain.DataType(dataType), limit)
	} else {
		events, err = r.store.GetRecent(ctx, limit)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "event store unavailable").SetInternal(err)
	}
	total, err := r.store.Count(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "event store unavailable").SetInternal(err)
	}

	views := make([]domain.EventView, 0, len(events))
	for _, event := range events {
		views = append(views, event.View())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"count":        len(views),
		"total_stored": total,
		"events":       views,
	})
}

func (r *EventRoutes) handleClear(c echo.Context) error {
	cleared, err := r.store.Clear(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "event store unavailable").SetInternal(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "cleared", "count": cleared})
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultEventLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxEventLimit {
		return 0, echo.NewHTTPError(http.StatusUnprocessableEntity, "limit must be an integer between 1 and 500")
	}
	return limit, nil
}
