package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/fr0stylo/ourastream/internal/app/domain"
)

func TestTokenRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewTokenRepository(openTestDatabase(t))

	loaded, err := repo.LoadToken(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected no token, got %+v", loaded)
	}

	expiresIn := int64(86400)
	refresh := "refresh-1"
	scope := "personal daily"
	createdAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	if err := repo.SaveToken(ctx, domain.OAuthToken{
		AccessToken:  "access-1",
		TokenType:    "Bearer",
		ExpiresIn:    &expiresIn,
		RefreshToken: &refresh,
		Scope:        &scope,
		CreatedAt:    createdAt,
	}); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err = repo.LoadToken(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded == nil || loaded.AccessToken != "access-1" || loaded.ExpiresIn == nil || *loaded.ExpiresIn != expiresIn {
		t.Fatalf("unexpected token %+v", loaded)
	}
	if loaded.RefreshToken == nil || *loaded.RefreshToken != refresh || !loaded.CreatedAt.Equal(createdAt) {
		t.Fatalf("unexpected token fields %+v", loaded)
	}

	if err := repo.SaveToken(ctx, domain.OAuthToken{AccessToken: "access-2"}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	loaded, err = repo.LoadToken(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.AccessToken != "access-2" || loaded.TokenType != "Bearer" || loaded.RefreshToken != nil || loaded.ExpiresIn != nil {
		t.Fatalf("expected overwritten singleton, got %+v", loaded)
	}

	if err := repo.DeleteToken(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	loaded, err = repo.LoadToken(ctx)
	if err != nil {
		t.Fatalf("load after delete: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected token removed, got %+v", loaded)
	}
}
