package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/hope-hub/internal/config"
	"github.com/jakechorley/hope-hub/pkg/clients/gmailclient"
	"github.com/jakechorley/hope-hub/pkg/clients/identityclient"
	"github.com/jakechorley/hope-hub/pkg/core/model"
	"github.com/jakechorley/hope-hub/pkg/core/services"
	"github.com/jakechorley/hope-hub/pkg/db"
	"github.com/jakechorley/hope-hub/pkg/session"
	"github.com/jakechorley/hope-hub/pkg/utils"
)

// AppContext holds the application dependencies shared across all commands.
// Google clients are created on first use so that commands which never send mail
// or provision members do not start the OAuth flow.
type AppContext struct {
	Env      string
	Cfg      *config.Config
	OAuthCfg *config.OAuthClientConfig
	Database db.Database
	Logger   *zap.Logger
	Ctx      context.Context

	tokens         *utils.TokenProvider
	gmailClient    *gmailclient.Client
	identityClient *identityclient.Client
}

// SignInAs sets the member that subsequent commands act as
func (app *AppContext) SignInAs(userID string) {
	app.Ctx = session.WithUserID(app.Ctx, userID)
}

// Actor returns the signed in member
func (app *AppContext) Actor() (*model.User, error) {
	actor, err := services.CurrentUser(app.Ctx, session.ContextProvider{}, app.Database)
	if err != nil {
		return nil, fmt.Errorf("%w (use --as <userId>)", err)
	}
	return actor, nil
}

// Mailer returns the Gmail client, authorising on first use
func (app *AppContext) Mailer() (services.Mailer, error) {
	if app.gmailClient != nil {
		return app.gmailClient, nil
	}

	tokens, err := app.tokenProvider()
	if err != nil {
		return nil, err
	}
	source, err := tokens.TokenSource(app.Ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to authorise gmail: %w", err)
	}

	app.Logger.Info("Initializing gmail client")
	app.gmailClient, err = gmailclient.NewClient(app.Ctx, source, app.Cfg.GmailSender, app.Cfg.MailInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail client: %w", err)
	}
	app.Logger.Debug("Gmail client initialized successfully")
	return app.gmailClient, nil
}

// Provisioner returns the identity client, authorising on first use
func (app *AppContext) Provisioner() (services.Provisioner, error) {
	if app.identityClient != nil {
		return app.identityClient, nil
	}

	tokens, err := app.tokenProvider()
	if err != nil {
		return nil, err
	}
	source, err := tokens.TokenSource(app.Ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to authorise identity toolkit: %w", err)
	}

	app.Logger.Info("Initializing identity client")
	app.identityClient, err = identityclient.NewClient(app.Ctx, source, app.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity client: %w", err)
	}
	app.Logger.Debug("Identity client initialized successfully")
	return app.identityClient, nil
}

func (app *AppContext) tokenProvider() (*utils.TokenProvider, error) {
	if app.tokens != nil {
		return app.tokens, nil
	}

	if app.OAuthCfg == nil {
		app.Logger.Info("Loading OAuth client configuration")
		oauthCfg, err := config.LoadOAuthClientWithEnv(app.Env)
		if err != nil {
			return nil, fmt.Errorf("failed to load OAuth client config: %w", err)
		}
		app.OAuthCfg = oauthCfg
	}

	tokens, err := utils.NewTokenProvider(app.OAuthCfg, app.Env, app.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create token provider: %w", err)
	}
	app.tokens = tokens
	return tokens, nil
}
