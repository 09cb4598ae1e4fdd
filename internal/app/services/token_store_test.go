package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/fr0stylo/ourastream/internal/app/domain"
	portmocks "github.com/fr0stylo/ourastream/internal/app/ports/mocks"
)

func int64Ptr(v int64) *int64    { return &v }
func stringPtr(v string) *string { return &v }

func TestTokenStore_EnsureLoadedMemoizes(t *testing.T) {
	repo := portmocks.NewMockTokenRepository(t)
	store := NewTokenStore(repo, nil)

	repo.EXPECT().LoadToken(mock.Anything).Return(&domain.OAuthToken{AccessToken: "a1"}, nil).Once()

	for i := 0; i < 3; i++ {
		token, err := store.EnsureLoaded(context.Background())
		if err != nil {
			t.Fatalf("ensure loaded: %v", err)
		}
		if token == nil || token.AccessToken != "a1" {
			t.Fatalf("unexpected token %+v", token)
		}
	}
	if !store.IsAuthenticated(context.Background()) {
		t.Fatal("expected authenticated")
	}
}

func TestTokenStore_SavePersistsBeforeCaching(t *testing.T) {
	repo := portmocks.NewMockTokenRepository(t)
	store := NewTokenStore(repo, nil)

	repo.EXPECT().SaveToken(mock.Anything, mock.Anything).Return(errors.New("read-only"))
	if err := store.Save(context.Background(), domain.OAuthToken{AccessToken: "a2"}); err == nil {
		t.Fatal("expected save error")
	}
	if store.Current() != nil {
		t.Fatalf("expected cache untouched after failed save, got %+v", store.Current())
	}
}

func TestTokenStore_ClearDropsCache(t *testing.T) {
	repo := portmocks.NewMockTokenRepository(t)
	store := NewTokenStore(repo, nil)

	repo.EXPECT().SaveToken(mock.Anything, mock.Anything).Return(nil)
	repo.EXPECT().DeleteToken(mock.Anything).Return(nil)

	if err := store.Save(context.Background(), domain.OAuthToken{AccessToken: "a3"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Clear(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if store.Current() != nil || store.IsAuthenticated(context.Background()) {
		t.Fatal("expected no token after clear")
	}
}

func TestTokenStore_ActiveTokenSnapshotSurvivesClear(t *testing.T) {
	repo := portmocks.NewMockTokenRepository(t)
	store := NewTokenStore(repo, nil)

	repo.EXPECT().SaveToken(mock.Anything, mock.Anything).Return(nil)
	repo.EXPECT().DeleteToken(mock.Anything).Return(nil)

	if err := store.Save(context.Background(), domain.OAuthToken{AccessToken: "a5"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	active := store.ActiveToken(context.Background())
	if active == nil || active.AccessToken != "a5" {
		t.Fatalf("unexpected active token %+v", active)
	}

	if err := store.Clear(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if active.AccessToken != "a5" {
		t.Fatalf("expected snapshot to be unaffected by clear, got %+v", active)
	}
	if store.ActiveToken(context.Background()) != nil {
		t.Fatal("expected no active token after clear")
	}
}

func TestTokenStore_ExpiredTokenIsNotAuthenticated(t *testing.T) {
	repo := portmocks.NewMockTokenRepository(t)
	store := NewTokenStore(repo, nil)
	store.now = func() time.Time { return time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) }

	repo.EXPECT().LoadToken(mock.Anything).Return(&domain.OAuthToken{
		AccessToken: "old",
		ExpiresIn:   int64Ptr(3600),
		CreatedAt:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}, nil)

	if store.IsAuthenticated(context.Background()) {
		t.Fatal("expected expired token to be unauthenticated")
	}
}

func TestTokenStore_EnsureFreshBootstrapsWithoutToken(t *testing.T) {
	repo := portmocks.NewMockTokenRepository(t)
	exchanger := portmocks.NewMockTokenExchanger(t)
	store := NewTokenStore(repo, exchanger)

	repo.EXPECT().LoadToken(mock.Anything).Return(nil, nil)
	exchanger.EXPECT().Refresh(mock.Anything, "bootstrap-rt").Return(domain.OAuthToken{AccessToken: "fresh", RefreshToken: stringPtr("rt-2")}, nil)
	repo.EXPECT().SaveToken(mock.Anything, mock.MatchedBy(func(token domain.OAuthToken) bool { return token.AccessToken == "fresh" })).Return(nil)

	token := store.EnsureFresh(context.Background(), "bootstrap-rt")
	if token == nil || token.AccessToken != "fresh" {
		t.Fatalf("expected bootstrapped token, got %+v", token)
	}
}

func TestTokenStore_EnsureFreshRefreshesExpired(t *testing.T) {
	repo := portmocks.NewMockTokenRepository(t)
	exchanger := portmocks.NewMockTokenExchanger(t)
	store := NewTokenStore(repo, exchanger)
	store.now = func() time.Time { return time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) }

	repo.EXPECT().LoadToken(mock.Anything).Return(&domain.OAuthToken{
		AccessToken:  "stale",
		ExpiresIn:    int64Ptr(60),
		RefreshToken: stringPtr("rt-1"),
		CreatedAt:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}, nil)
	exchanger.EXPECT().Refresh(mock.Anything, "rt-1").Return(domain.OAuthToken{AccessToken: "renewed", ExpiresIn: int64Ptr(86400)}, nil)
	repo.EXPECT().SaveToken(mock.Anything, mock.Anything).Return(nil)

	token := store.EnsureFresh(context.Background(), "")
	if token == nil || token.AccessToken != "renewed" {
		t.Fatalf("expected refreshed token, got %+v", token)
	}
}

func TestTokenStore_EnsureFreshLogsRefreshFailure(t *testing.T) {
	repo := portmocks.NewMockTokenRepository(t)
	exchanger := portmocks.NewMockTokenExchanger(t)
	store := NewTokenStore(repo, exchanger)

	repo.EXPECT().LoadToken(mock.Anything).Return(nil, nil)
	exchanger.EXPECT().Refresh(mock.Anything, "bad-rt").Return(domain.OAuthToken{}, errors.New("invalid_grant"))

	if token := store.EnsureFresh(context.Background(), "bad-rt"); token != nil {
		t.Fatalf("expected no token after failed bootstrap, got %+v", token)
	}
}
