package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fr0stylo/ourastream/internal/app/domain"
	"github.com/fr0stylo/ourastream/internal/app/ports"
)

// ErrNoRefreshToken indicates a refresh was requested without a stored refresh token.
var ErrNoRefreshToken = errors.New("no refresh token available")

// TokenStore caches the persisted OAuth credential. Writes reach the
// repository before the cache changes.
type TokenStore struct {
	repo      ports.TokenRepository
	exchanger ports.TokenExchanger
	now       func() time.Time

	mu     sync.RWMutex
	loaded bool
	token  *domain.OAuthToken
}

// NewTokenStore creates a token store. exchanger may be nil when only
// persistence is needed.
func NewTokenStore(repo ports.TokenRepository, exchanger ports.TokenExchanger) *TokenStore {
	return &TokenStore{repo: repo, exchanger: exchanger, now: time.Now}
}

// Load reads the credential from the repository and replaces the cache.
func (s *TokenStore) Load(ctx context.Context) (*domain.OAuthToken, error) {
	token, err := s.repo.LoadToken(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.token = token
	s.loaded = true
	s.mu.Unlock()
	return cloneToken(token), nil
}

// Save persists token and then makes it current.
func (s *TokenStore) Save(ctx context.Context, token domain.OAuthToken) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = s.now().UTC()
	}
	if err := s.repo.SaveToken(ctx, token); err != nil {
		return err
	}
	s.mu.Lock()
	s.token = &token
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// EnsureLoaded loads the credential on first use only.
func (s *TokenStore) EnsureLoaded(ctx context.Context) (*domain.OAuthToken, error) {
	s.mu.RLock()
	loaded := s.loaded
	token := s.token
	s.mu.RUnlock()
	if loaded {
		return cloneToken(token), nil
	}
	return s.Load(ctx)
}

// Clear deletes the persisted credential and drops the cache.
func (s *TokenStore) Clear(ctx context.Context) error {
	if err := s.repo.DeleteToken(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.token = nil
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// IsAuthenticated reports whether a non-expired credential is held.
func (s *TokenStore) IsAuthenticated(ctx context.Context) bool {
	return s.ActiveToken(ctx) != nil
}

// ActiveToken returns a copy of the stored token when it is usable, or nil.
// Callers that need the access token read it from this one snapshot.
func (s *TokenStore) ActiveToken(ctx context.Context) *domain.OAuthToken {
	token, err := s.EnsureLoaded(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Failed to load oauth token", "error", err)
		return nil
	}
	if token == nil || token.AccessToken == "" || token.IsExpired(s.now()) {
		return nil
	}
	return token
}

// Current returns the cached credential without touching the repository.
func (s *TokenStore) Current() *domain.OAuthToken {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneToken(s.token)
}

// Exchange trades an authorization code for a credential and stores it.
func (s *TokenStore) Exchange(ctx context.Context, code string) (domain.OAuthToken, error) {
	if s.exchanger == nil {
		return domain.OAuthToken{}, errors.New("token exchanger not configured")
	}
	token, err := s.exchanger.ExchangeCode(ctx, code)
	if err != nil {
		return domain.OAuthToken{}, err
	}
	if err := s.Save(ctx, token); err != nil {
		return domain.OAuthToken{}, fmt.Errorf("persist exchanged token: %w", err)
	}
	return token, nil
}

// Refresh redeems refreshToken, or the stored one when empty, and stores the result.
func (s *TokenStore) Refresh(ctx context.Context, refreshToken string) (domain.OAuthToken, error) {
	if s.exchanger == nil {
		return domain.OAuthToken{}, errors.New("token exchanger not configured")
	}
	if refreshToken == "" {
		current, err := s.EnsureLoaded(ctx)
		if err != nil {
			return domain.OAuthToken{}, err
		}
		if current == nil || !current.HasRefreshToken() {
			return domain.OAuthToken{}, ErrNoRefreshToken
		}
		refreshToken = *current.RefreshToken
	}
	token, err := s.exchanger.Refresh(ctx, refreshToken)
	if err != nil {
		return domain.OAuthToken{}, err
	}
	if err := s.Save(ctx, token); err != nil {
		return domain.OAuthToken{}, fmt.Errorf("persist refreshed token: %w", err)
	}
	return token, nil
}

// EnsureFresh bootstraps from bootstrapRefresh when nothing is stored and
// refreshes an expired credential. Failures are logged, never returned; the
// caller inspects the result.
func (s *TokenStore) EnsureFresh(ctx context.Context, bootstrapRefresh string) *domain.OAuthToken {
	token, err := s.EnsureLoaded(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Failed to load oauth token", "error", err)
		return nil
	}
	if token == nil {
		if bootstrapRefresh == "" {
			return nil
		}
		if _, err := s.Refresh(ctx, bootstrapRefresh); err != nil {
			slog.WarnContext(ctx, "Bootstrap token refresh failed", "error", err)
		}
		return s.Current()
	}
	if token.IsExpired(s.now()) {
		if _, err := s.Refresh(ctx, ""); err != nil {
			slog.WarnContext(ctx, "Token refresh failed", "error", err)
		}
	}
	return s.Current()
}

func cloneToken(token *domain.OAuthToken) *domain.OAuthToken {
	if token == nil {
		return nil
	}
	out := *token
	return &out
}
