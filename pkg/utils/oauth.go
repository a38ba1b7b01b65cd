package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/jakechorley/hope-hub/internal/config"
)

const (
	AuthPort       = 3000
	authTimeout    = 5 * time.Minute
	callbackPath   = "/oauth/callback"
	tokenDirName   = ".hope-hub/tokens"
	tokenFilePerms = 0600
	tokenDirPerms  = 0700
	tokenInfoURL   = "https://oauth2.googleapis.com/tokeninfo"
)

// OAuth scopes for Google APIs
const (
	ScopeGmailSend     = "https://www.googleapis.com/auth/gmail.send"
	ScopeCloudPlatform = "https://www.googleapis.com/auth/cloud-platform"
	ScopeFirebase      = "https://www.googleapis.com/auth/firebase"
)

// RequiredScopes returns all scopes requested by the CLI: mail for announcements,
// cloud-platform and firebase for provisioning member identities
func RequiredScopes() []string {
	return []string{
		ScopeGmailSend,
		ScopeCloudPlatform,
		ScopeFirebase,
	}
}

// TokenProvider runs the installed-app OAuth flow once per process and caches the token
// in memory and under ~/.hope-hub/tokens
type TokenProvider struct {
	config *oauth2.Config
	env    string
	logger *zap.Logger

	mu    sync.Mutex
	token *oauth2.Token
}

// NewTokenProvider creates a provider for the given OAuth client
func NewTokenProvider(oauthCfg *config.OAuthClientConfig, env string, logger *zap.Logger) (*TokenProvider, error) {
	oauthConfig, err := GetOAuthConfig(oauthCfg)
	if err != nil {
		return nil, err
	}
	return &TokenProvider{config: oauthConfig, env: env, logger: logger}, nil
}

// GetOAuthConfig creates an OAuth2 config for the client, redirecting to the local callback server
func GetOAuthConfig(oauthCfg *config.OAuthClientConfig) (*oauth2.Config, error) {
	if err := config.ValidateOAuthClient(oauthCfg); err != nil {
		return nil, err
	}

	endpoint := google.Endpoint
	if oauthCfg.AuthURI != "" {
		endpoint.AuthURL = oauthCfg.AuthURI
	}
	if oauthCfg.TokenURI != "" {
		endpoint.TokenURL = oauthCfg.TokenURI
	}

	return &oauth2.Config{
		ClientID:     oauthCfg.ClientID,
		ClientSecret: oauthCfg.ClientSecret,
		Endpoint:     endpoint,
		RedirectURL:  fmt.Sprintf("http://localhost:%d%s", AuthPort, callbackPath),
		Scopes:       RequiredScopes(),
	}, nil
}

// TokenSource returns a refreshing token source, running the OAuth flow if no usable token is cached
func (p *TokenProvider) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	token, err := p.Token(ctx)
	if err != nil {
		return nil, err
	}
	return p.config.TokenSource(ctx, token), nil
}

// Token returns a valid token with all required scopes
func (p *TokenProvider) Token(ctx context.Context) (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != nil && p.token.Valid() {
		return p.token, nil
	}

	if token := p.cachedToken(ctx); token != nil {
		p.token = token
		return token, nil
	}

	p.logger.Info("No valid token found, starting OAuth flow")

	authURL := p.config.AuthCodeURL("state", oauth2.AccessTypeOffline)
	fmt.Printf("\nVisit this URL to authorize Hope Hub:\n%s\n\n", authURL)

	code, err := listenForAuthCallback(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization code: %w", err)
	}

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}

	if err := validateTokenScopes(ctx, token); err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	if err := SaveTokenToFile(p.env, token); err != nil {
		p.logger.Warn("Failed to save token", zap.Error(err))
	}

	p.token = token
	return token, nil
}

// cachedToken loads the token file, refreshing it if expired. Returns nil if no usable token exists.
func (p *TokenProvider) cachedToken(ctx context.Context) *oauth2.Token {
	fileToken, err := LoadTokenFromFile(p.env)
	if err != nil {
		p.logger.Warn("Failed to load token from file", zap.Error(err))
		return nil
	}
	if fileToken == nil {
		return nil
	}

	token := fileToken
	if !token.Valid() {
		if token.RefreshToken == "" {
			return nil
		}
		refreshed, err := p.config.TokenSource(ctx, token).Token()
		if err != nil {
			p.logger.Warn("Failed to refresh token", zap.Error(err))
			return nil
		}
		token = refreshed
	}

	if err := validateTokenScopes(ctx, token); err != nil {
		p.logger.Warn("Cached token is missing scopes, deleting it", zap.Error(err))
		if err := DeleteTokenFile(p.env); err != nil {
			p.logger.Warn("Failed to delete token", zap.Error(err))
		}
		return nil
	}

	if token != fileToken {
		if err := SaveTokenToFile(p.env, token); err != nil {
			p.logger.Warn("Failed to save refreshed token", zap.Error(err))
		}
	}
	return token
}

// validateTokenScopes checks that the token has all required scopes by calling Google's tokeninfo endpoint
func validateTokenScopes(ctx context.Context, token *oauth2.Token) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tokenInfoURL+"?access_token="+token.AccessToken, nil)
	if err != nil {
		return fmt.Errorf("failed to create tokeninfo request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call tokeninfo endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("tokeninfo request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenInfo struct {
		Scope string `json:"scope"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenInfo); err != nil {
		return fmt.Errorf("failed to decode tokeninfo response: %w", err)
	}

	if missing := MissingScopes(tokenInfo.Scope); len(missing) > 0 {
		return fmt.Errorf("token is missing required scopes: %v", missing)
	}
	return nil
}

// MissingScopes returns the required scopes absent from a space separated scope list
func MissingScopes(granted string) []string {
	grantedScopes := strings.Fields(granted)
	var missing []string
	for _, required := range RequiredScopes() {
		if !slices.Contains(grantedScopes, required) {
			missing = append(missing, required)
		}
	}
	return missing
}

// listenForAuthCallback starts a local HTTP server and waits for the OAuth callback
func listenForAuthCallback(ctx context.Context) (string, error) {
	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			errChan <- errors.New("no authorization code received")
			http.Error(w, "Authorization failed", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>Hope Hub</title></head><body><h1>Authorization successful!</h1><p>You can close this window and return to the terminal.</p></body></html>`)

		codeChan <- code
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", AuthPort),
		Handler: mux,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	timeoutCtx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	var code string
	var authErr error

	select {
	case code = <-codeChan:
	case authErr = <-errChan:
	case <-timeoutCtx.Done():
		authErr = fmt.Errorf("authorization timeout after %v", authTimeout)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)

	if authErr != nil {
		return "", authErr
	}
	return code, nil
}

// TokenFilePath returns the path to the token file for the given environment
func TokenFilePath(env string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, tokenDirName, fmt.Sprintf("token-%s.json", env)), nil
}

// LoadTokenFromFile loads an OAuth token for the given environment.
// Returns nil, nil if no token has been saved yet.
func LoadTokenFromFile(env string) (*oauth2.Token, error) {
	tokenPath, err := TokenFilePath(env)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(tokenPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return &token, nil
}

// SaveTokenToFile saves an OAuth token for the given environment, readable by the owner only
func SaveTokenToFile(env string, token *oauth2.Token) error {
	tokenPath, err := TokenFilePath(env)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(tokenPath), tokenDirPerms); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := os.WriteFile(tokenPath, data, tokenFilePerms); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// DeleteTokenFile deletes the token file for the given environment
func DeleteTokenFile(env string) error {
	tokenPath, err := TokenFilePath(env)
	if err != nil {
		return err
	}

	if err := os.Remove(tokenPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	return nil
}
