package routes

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fr0stylo/ourastream/internal/app/services"
	"github.com/fr0stylo/ourastream/internal/oura"
)

// SubscriptionManager proxies the upstream webhook subscription API.
type SubscriptionManager interface {
	List(ctx context.Context, accessToken string) (oura.UpstreamResponse, error)
	Create(ctx context.Context, accessToken string, sub oura.SubscriptionRequest) (oura.UpstreamResponse, error)
	Delete(ctx context.Context, accessToken, id string) (oura.UpstreamResponse, error)
}

// SubscriptionRoutes registers subscription management endpoints.
type SubscriptionRoutes struct {
	tokens  *services.TokenStore
	manager SubscriptionManager
}

// NewSubscriptionRoutes constructs subscription routes.
func NewSubscriptionRoutes(tokens *services.TokenStore, manager SubscriptionManager) *SubscriptionRoutes {
	return &SubscriptionRoutes{tokens: tokens, manager: manager}
}

// RegisterRoutes registers subscription endpoints.
func (r *SubscriptionRoutes) RegisterRoutes(s *echo.Echo) {
	s.GET("/subscriptions", r.handleList)
	s.POST("/subscriptions", r.handleCreate)
	s.DELETE("/subscriptions/:id", r.handleDelete)
}

func (r *SubscriptionRoutes) accessToken(c echo.Context) (string, error) {
	token := r.tokens.ActiveToken(c.Request().Context())
	if token == nil {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated. Visit /auth/login first.")
	}
	return token.AccessToken, nil
}

func (r *SubscriptionRoutes) handleList(c echo.Context) error {
	token, err := r.accessToken(c)
	if err != nil {
		return err
	}
	resp, err := r.manager.List(c.Request().Context(), token)
	if err != nil {
		return upstreamUnavailable(err)
	}
	if !resp.OK() {
		return echo.NewHTTPError(resp.StatusCode, string(resp.Body))
	}
	return c.JSON(http.StatusOK, resp.JSON())
}

func (r *SubscriptionRoutes) handleCreate(c echo.Context) error {
	token, err := r.accessToken(c)
	if err != nil {
		return err
	}
	var sub oura.SubscriptionRequest
	if err := c.Bind(&sub); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid subscription body")
	}
	if strings.TrimSpace(sub.CallbackURL) == "" || strings.TrimSpace(sub.VerificationToken) == "" || strings.TrimSpace(sub.DataType) == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "callback_url, verification_token and data_type are required")
	}

	resp, err := r.manager.Create(c.Request().Context(), token, sub)
	if err != nil {
		return upstreamUnavailable(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"oura_status_code": resp.StatusCode,
		"oura_response":    resp.JSON(),
	})
}

func (r *SubscriptionRoutes) handleDelete(c echo.Context) error {
	token, err := r.accessToken(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	resp, err := r.manager.Delete(c.Request().Context(), token, id)
	if err != nil {
		return upstreamUnavailable(err)
	}
	if !resp.OK() {
		return echo.NewHTTPError(resp.StatusCode, string(resp.Body))
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

func upstreamUnavailable(err error) error {
	return echo.NewHTTPError(http.StatusBadGateway, "subscription API unreachable").SetInternal(err)
}
