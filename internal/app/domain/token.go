package domain

import "time"

// OAuthToken is the single live Oura credential.
type OAuthToken struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    *int64    `json:"expires_in"`
	RefreshToken *string   `json:"refresh_token"`
	Scope        *string   `json:"scope"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsExpired reports whether the token lifetime has elapsed at now.
// Tokens without expires_in never expire.
func (t OAuthToken) IsExpired(now time.Time) bool {
	if t.ExpiresIn == nil {
		return false
	}
	return now.Sub(t.CreatedAt) >= time.Duration(*t.ExpiresIn)*time.Second
}

// HasRefreshToken reports whether a refresh grant is possible.
func (t OAuthToken) HasRefreshToken() bool {
	return t.RefreshToken != nil && *t.RefreshToken != ""
}
