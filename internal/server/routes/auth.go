package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"github.com/fr0stylo/ourastream/internal/app/services"
)

const (
	authSessionName         = "ourastream-auth"
	authSessionStateKey     = "oauthState"
	authSessionStateExpires = "oauthStateExpires"
	stateTTL                = 10 * time.Minute
)

// AuthConfig configures the OAuth state cookie.
type AuthConfig struct {
	SessionKey    string
	SecureCookies bool
}

// NewSessionStore builds the cookie store holding the pending OAuth state.
func NewSessionStore(config AuthConfig) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(config.SessionKey))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Authorizer builds the provider consent URL.
type Authorizer interface {
	AuthorizationURL(state string) string
}

// AuthRoutes registers the OAuth login flow.
type AuthRoutes struct {
	tokens     *services.TokenStore
	authorizer Authorizer
	sessions   sessions.Store
	now        func() time.Time

	// Cookie sessions can be replayed, so redeemed states are remembered
	// until they would have expired anyway.
	mu       sync.Mutex
	redeemed map[string]int64
}

// NewAuthRoutes constructs auth routes.
func NewAuthRoutes(tokens *services.TokenStore, authorizer Authorizer, store sessions.Store) *AuthRoutes {
	return &AuthRoutes{
		tokens:     tokens,
		authorizer: authorizer,
		sessions:   store,
		now:        time.Now,
		redeemed:   make(map[string]int64),
	}
}

// RegisterRoutes registers authentication endpoints.
func (r *AuthRoutes) RegisterRoutes(s *echo.Echo) {
	auth := s.Group("/auth")
	auth.GET("/login", r.handleLogin)
	auth.GET("/callback", r.handleCallback)
	auth.GET("/status", r.handleStatus)
	auth.POST("/logout", r.handleLogout)
}

func (r *AuthRoutes) handleLogin(c echo.Context) error {
	session, err := r.sessions.New(c.Request(), authSessionName)
	if err != nil {
		slog.WarnContext(c.Request().Context(), "Discarding unreadable auth session", "error", err)
	}
	state := uuid.NewString()
	session.Values[authSessionStateKey] = state
	session.Values[authSessionStateExpires] = r.now().Add(stateTTL).Unix()
	if err := session.Save(c.Request(), c.Response()); err != nil {
		return fmt.Errorf("save auth session: %w", err)
	}
	return c.Redirect(http.StatusTemporaryRedirect, r.authorizer.AuthorizationURL(state))
}

func (r *AuthRoutes) handleCallback(c echo.Context) error {
	code := c.QueryParam("code")
	state := c.QueryParam("state")
	if code == "" || state == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "code and state are required")
	}
	if !r.consumeState(c, state) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid or expired state parameter")
	}

	token, err := r.tokens.Exchange(c.Request().Context(), code)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Token exchange failed: "+err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":     "authenticated",
		"token_type": token.TokenType,
		"scope":      token.Scope,
		"expires_in": token.ExpiresIn,
	})
}

// consumeState accepts a pending state once; any lookup clears it.
func (r *AuthRoutes) consumeState(c echo.Context, state string) bool {
	session, err := r.sessions.Get(c.Request(), authSessionName)
	if err != nil {
		return false
	}
	expected, _ := session.Values[authSessionStateKey].(string)
	expires, _ := session.Values[authSessionStateExpires].(int64)
	if expected == "" {
		return false
	}

	delete(session.Values, authSessionStateKey)
	delete(session.Values, authSessionStateExpires)
	session.Options.MaxAge = -1
	if err := session.Save(c.Request(), c.Response()); err != nil {
		slog.WarnContext(c.Request().Context(), "Failed to clear auth state", "error", err)
	}

	if expected != state || r.now().Unix() >= expires {
		return false
	}
	return r.redeem(state, expires)
}

func (r *AuthRoutes) redeem(state string, expires int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now().Unix()
	for seen, until := range r.redeemed {
		if now >= until {
			delete(r.redeemed, seen)
		}
	}
	if _, ok := r.redeemed[state]; ok {
		return false
	}
	r.redeemed[state] = expires
	return true
}

func (r *AuthRoutes) handleStatus(c echo.Context) error {
	ctx := c.Request().Context()
	token, err := r.tokens.EnsureLoaded(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "token store unavailable").SetInternal(err)
	}
	var expired *bool
	if token != nil {
		value := token.IsExpired(r.now())
		expired = &value
	}
	return c.JSON(http.StatusOK, map[string]any{
		"authenticated": r.tokens.IsAuthenticated(ctx),
		"token_expired": expired,
	})
}

func (r *AuthRoutes) handleLogout(c echo.Context) error {
	if err := r.tokens.Clear(c.Request().Context()); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "logged_out"})
}
