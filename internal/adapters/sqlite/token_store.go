package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/fr0stylo/ourastream/internal/app/domain"
	"github.com/fr0stylo/ourastream/internal/app/ports"
	"github.com/fr0stylo/ourastream/internal/db"
	"github.com/fr0stylo/ourastream/internal/db/queries"
)

var _ ports.TokenRepository = (*TokenRepository)(nil)

// TokenRepository stores the single OAuth credential in row id 1.
type TokenRepository struct {
	database tokenDatabase
	now      func() time.Time
}

func NewTokenRepository(database *db.Database) *TokenRepository {
	return &TokenRepository{database: database, now: time.Now}
}

// LoadToken returns nil without error when no credential is stored.
func (r *TokenRepository) LoadToken(ctx context.Context) (*domain.OAuthToken, error) {
	row, err := r.database.GetOAuthToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("load oauth token: %w", err)
	}
	if row == nil {
		return nil, nil
	}
	createdAt, err := db.ParseTimestamp(row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("oauth token created_at: %w", err)
	}
	return &domain.OAuthToken{
		AccessToken:  row.AccessToken,
		TokenType:    row.TokenType,
		ExpiresIn:    fromNullInt64(row.ExpiresIn),
		RefreshToken: fromNullString(row.RefreshToken),
		Scope:        fromNullString(row.Scope),
		CreatedAt:    createdAt.UTC(),
	}, nil
}

func (r *TokenRepository) SaveToken(ctx context.Context, token domain.OAuthToken) error {
	tokenType := token.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	createdAt := token.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}
	err := r.database.UpsertOAuthToken(ctx, queries.UpsertOAuthTokenParams{
		AccessToken:  token.AccessToken,
		TokenType:    tokenType,
		ExpiresIn:    toNullInt64(token.ExpiresIn),
		RefreshToken: toNullString(token.RefreshToken),
		Scope:        toNullString(token.Scope),
		CreatedAt:    db.FormatTimestamp(createdAt),
		UpdatedAt:    db.FormatTimestamp(r.now()),
	})
	if err != nil {
		return fmt.Errorf("save oauth token: %w", err)
	}
	return nil
}

func (r *TokenRepository) DeleteToken(ctx context.Context) error {
	if err := r.database.DeleteOAuthTokens(ctx); err != nil {
		return fmt.Errorf("delete oauth token: %w", err)
	}
	return nil
}
