package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gorilla/sessions"
	"github.com/pinggolf/loadplan-toolbox/internal/config"
	"golang.org/x/oauth2"
)

// Manager handles the operator OAuth2 login and token refresh flow.
type Manager struct {
	config *config.Config
	oauth  *oauth2.Config
}

// NewManager creates a new auth manager backed by a single OAuth provider.
func NewManager(cfg *config.Config, store sessions.Store) *Manager {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.OAuthClientID,
		ClientSecret: cfg.OAuthClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.OAuthAuthEndpoint,
			TokenURL: cfg.OAuthTokenEndpoint,
		},
		RedirectURL: cfg.OAuthRedirectURI,
		Scopes:      []string{cfg.OAuthScopes},
	}

	return &Manager{
		config: cfg,
		oauth:  oauthConfig,
	}
}

// GetAuthorizationURL generates the OAuth authorization URL for operator login.
func (m *Manager) GetAuthorizationURL() (string, error) {
	state, err := generateRandomState()
	if err != nil {
		return "", err
	}
	return m.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

// ExchangeCodeForTokens exchanges an authorization code for access and refresh tokens
func (m *Manager) ExchangeCodeForTokens(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := m.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}
	return token, nil
}

// RefreshTokenIfNeeded checks if the token needs refreshing and refreshes it if necessary.
// Returns (true, nil) if token was refreshed, (false, nil) if still valid, (false, error) on failure.
func (m *Manager) RefreshTokenIfNeeded(session *sessions.Session) (bool, error) {
	expiryUnix, ok := session.Values["token_expiry"].(int64)
	if !ok {
		return false, fmt.Errorf("invalid token expiry in session")
	}

	expiry := time.Unix(expiryUnix, 0)
	timeUntilExpiry := time.Until(expiry)

	if timeUntilExpiry > m.config.TokenRefreshBuffer {
		return false, nil
	}

	refreshToken, ok := session.Values["refresh_token"].(string)
	if !ok || refreshToken == "" {
		return false, fmt.Errorf("no refresh token available")
	}

	token := &oauth2.Token{RefreshToken: refreshToken}
	tokenSource := m.oauth.TokenSource(context.Background(), token)

	newToken, err := tokenSource.Token()
	if err != nil {
		return false, fmt.Errorf("failed to refresh token: %w", err)
	}

	session.Values["access_token"] = newToken.AccessToken
	if newToken.RefreshToken != "" {
		session.Values["refresh_token"] = newToken.RefreshToken
	}
	session.Values["token_expiry"] = newToken.Expiry.Unix()

	return true, nil
}

// GetAccessToken retrieves the access token from the session
func (m *Manager) GetAccessToken(session *sessions.Session) (string, error) {
	token, ok := session.Values["access_token"].(string)
	if !ok || token == "" {
		return "", fmt.Errorf("no access token in session")
	}
	return token, nil
}

// generateRandomState generates a CSRF-protection state value for the OAuth redirect.
func generateRandomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
