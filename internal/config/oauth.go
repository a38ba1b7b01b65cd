package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// OAuthClientConfig holds the desktop OAuth client the CLI authorises with.
// Endpoints are optional and default to Google's.
type OAuthClientConfig struct {
	ClientID     string `json:"client_id" validate:"required"`
	ClientSecret string `json:"client_secret" validate:"required"`
	AuthURI      string `json:"auth_uri,omitempty" validate:"omitempty,url"`
	TokenURI     string `json:"token_uri,omitempty" validate:"omitempty,url"`
}

// oauthClientFile is the JSON downloaded from the Cloud console; only its installed section is read
type oauthClientFile struct {
	Installed *OAuthClientConfig `json:"installed"`
}

func oauthFileName(env string) string {
	if env == "" {
		return "oauthClient.json"
	}
	return "oauthClient." + env + ".json"
}

// LoadOAuthClientWithEnv finds and loads oauthClient.<env>.json
func LoadOAuthClientWithEnv(env string) (*OAuthClientConfig, error) {
	path, err := findFile(oauthFileName(env))
	if err != nil {
		return nil, fmt.Errorf("failed to find oauth client file: %w", err)
	}
	return LoadOAuthClientFromPath(path)
}

// LoadOAuthClientFromPath reads the installed client from a console download
func LoadOAuthClientFromPath(path string) (*OAuthClientConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth client file: %w", err)
	}

	var file oauthClientFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse oauth client file: %w", err)
	}
	if file.Installed == nil {
		return nil, fmt.Errorf("oauth client file %s has no installed client", path)
	}

	if err := ValidateOAuthClient(file.Installed); err != nil {
		return nil, err
	}
	return file.Installed, nil
}

func ValidateOAuthClient(cfg *OAuthClientConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("oauth client validation failed: %w", err)
	}
	return nil
}
