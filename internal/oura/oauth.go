// Package oura talks to the Oura cloud: OAuth grants, usercollection reads
// and webhook subscription management.
package oura

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/fr0stylo/ourastream/internal/app/domain"
	"github.com/fr0stylo/ourastream/internal/app/ports"
)

// Scopes requested during authorization.
var Scopes = []string{"personal", "daily", "heartrate", "workout", "session", "tag", "spo2"}

var _ ports.TokenExchanger = (*OAuthClient)(nil)

// OAuthClient performs authorization-code and refresh grants.
type OAuthClient struct {
	config     *oauth2.Config
	httpClient *http.Client
	now        func() time.Time
}

type OAuthSettings struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthURL      string
	TokenURL     string
}

func NewOAuthClient(settings OAuthSettings, httpClient *http.Client) *OAuthClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OAuthClient{
		config: &oauth2.Config{
			ClientID:     settings.ClientID,
			ClientSecret: settings.ClientSecret,
			RedirectURL:  settings.RedirectURI,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   settings.AuthURL,
				TokenURL:  settings.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: httpClient,
		now:        time.Now,
	}
}

// AuthorizationURL returns the consent page URL carrying state.
func (c *OAuthClient) AuthorizationURL(state string) string {
	return c.config.AuthCodeURL(state)
}

func (c *OAuthClient) ExchangeCode(ctx context.Context, code string) (domain.OAuthToken, error) {
	token, err := c.config.Exchange(c.clientContext(ctx), code)
	if err != nil {
		return domain.OAuthToken{}, fmt.Errorf("exchange authorization code: %w", err)
	}
	return c.toDomain(token), nil
}

func (c *OAuthClient) Refresh(ctx context.Context, refreshToken string) (domain.OAuthToken, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return domain.OAuthToken{}, fmt.Errorf("refresh token is empty")
	}
	source := c.config.TokenSource(c.clientContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return domain.OAuthToken{}, fmt.Errorf("refresh access token: %w", err)
	}
	return c.toDomain(token), nil
}

func (c *OAuthClient) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

func (c *OAuthClient) toDomain(token *oauth2.Token) domain.OAuthToken {
	now := c.now().UTC()
	out := domain.OAuthToken{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		CreatedAt:   now,
	}
	if out.TokenType == "" {
		out.TokenType = "Bearer"
	}
	if token.RefreshToken != "" {
		refresh := token.RefreshToken
		out.RefreshToken = &refresh
	}
	if expiresIn, ok := extraInt64(token.Extra("expires_in")); ok {
		out.ExpiresIn = &expiresIn
	} else if token.ExpiresIn > 0 {
		expiresIn := token.ExpiresIn
		out.ExpiresIn = &expiresIn
	} else if !token.Expiry.IsZero() {
		expiresIn := int64(token.Expiry.Sub(now).Round(time.Second) / time.Second)
		out.ExpiresIn = &expiresIn
	}
	if scope, ok := token.Extra("scope").(string); ok && scope != "" {
		out.Scope = &scope
	}
	return out
}

func extraInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}
