package ports

import (
	"context"

	"github.com/fr0stylo/ourastream/internal/app/domain"
)

// EventForwarder hands a stored event to a downstream sink off the request path.
// Enqueue reports false when the event could not be accepted.
type EventForwarder interface {
	Enqueue(event domain.StoredEvent) bool
}

// TokenRepository persists the single OAuth credential.
type TokenRepository interface {
	LoadToken(ctx context.Context) (*domain.OAuthToken, error)
	SaveToken(ctx context.Context, token domain.OAuthToken) error
	DeleteToken(ctx context.Context) error
}

// TokenExchanger performs OAuth grants against the token endpoint.
type TokenExchanger interface {
	ExchangeCode(ctx context.Context, code string) (domain.OAuthToken, error)
	Refresh(ctx context.Context, refreshToken string) (domain.OAuthToken, error)
}
