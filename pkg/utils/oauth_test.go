package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/jakechorley/hope-hub/internal/config"
)

func TestMissingScopes(t *testing.T) {
	assert.Empty(t, MissingScopes(strings.Join(RequiredScopes(), " ")))
	assert.Equal(t, []string{ScopeCloudPlatform, ScopeFirebase}, MissingScopes(ScopeGmailSend))
	assert.Len(t, MissingScopes(""), 3)
}

func TestTokenFileRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	token, err := LoadTokenFromFile("test")
	require.NoError(t, err)
	assert.Nil(t, token)

	saved := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", Expiry: time.Now().Add(time.Hour).Round(time.Second)}
	require.NoError(t, SaveTokenToFile("test", saved))

	loaded, err := LoadTokenFromFile("test")
	require.NoError(t, err)
	assert.Equal(t, "refresh", loaded.RefreshToken)
	assert.True(t, saved.Expiry.Equal(loaded.Expiry))

	require.NoError(t, DeleteTokenFile("test"))
	require.NoError(t, DeleteTokenFile("test"))
	token, err = LoadTokenFromFile("test")
	require.NoError(t, err)
	assert.Nil(t, token)
}

func TestGetOAuthConfig(t *testing.T) {
	cfg := &config.OAuthClientConfig{ClientID: "hope-hub.apps.googleusercontent.com", ClientSecret: "secret"}

	oauthConfig, err := GetOAuthConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "hope-hub.apps.googleusercontent.com", oauthConfig.ClientID)
	assert.Equal(t, google.Endpoint.TokenURL, oauthConfig.Endpoint.TokenURL)
	assert.Equal(t, "http://localhost:3000/oauth/callback", oauthConfig.RedirectURL)
	assert.ElementsMatch(t, RequiredScopes(), oauthConfig.Scopes)

	cfg.TokenURI = "https://token.example.com"
	oauthConfig, err = GetOAuthConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "https://token.example.com", oauthConfig.Endpoint.TokenURL)
	assert.Equal(t, google.Endpoint.AuthURL, oauthConfig.Endpoint.AuthURL)

	_, err = GetOAuthConfig(&config.OAuthClientConfig{ClientID: "missing-secret"})
	assert.Error(t, err)
}
