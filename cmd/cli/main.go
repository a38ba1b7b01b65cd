package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/hope-hub/cmd/cli/commands"
	"github.com/jakechorley/hope-hub/internal/config"
	"github.com/jakechorley/hope-hub/pkg/db"
	"github.com/jakechorley/hope-hub/pkg/docstore"
	"github.com/jakechorley/hope-hub/pkg/docstore/firestorestore"
	"github.com/jakechorley/hope-hub/pkg/docstore/memstore"
	"github.com/jakechorley/hope-hub/pkg/docstore/mongostore"
	"github.com/jakechorley/hope-hub/pkg/docstore/postgres"
	"github.com/jakechorley/hope-hub/pkg/utils/logging"
)

var (
	env     string
	actAs   string
	verbose bool
	store   docstore.Store
	app     = &commands.AppContext{}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hopehub",
		Short: "Hope Hub CLI - Manage volunteers, events and rewards",
		Long:  `A CLI tool for managing members, volunteering events, sign-ups, announcements and conversations.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if store != nil {
				if err := store.Close(); err != nil && app.Logger != nil {
					app.Logger.Warn("Failed to close store", zap.Error(err))
				}
			}
			if app.Logger != nil {
				app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().StringVar(&actAs, "as", "", "Member id to act as")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug logs on the console")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.All(app)...)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config and the document store
func initApp() error {
	var err error
	app.Env = env
	app.Ctx = context.Background()

	app.Logger, err = logging.InitLogger(env, logging.Options{Verbose: verbose})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	app.Logger.Info("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully", zap.String("backend", app.Cfg.Backend))

	store, err = openStore(app.Ctx, app.Cfg, app.Logger)
	if err != nil {
		return err
	}

	app.Database = db.NewDB(store)
	app.Logger.Info("Database initialized successfully")

	if actAs != "" {
		app.SignInAs(actAs)
		app.Logger.Debug("Acting as member", zap.String("user_id", actAs))
	}

	return nil
}

// openStore connects to the configured backend
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (docstore.Store, error) {
	switch cfg.Backend {
	case config.BackendFirestore:
		logger.Info("Connecting to Firestore", zap.String("project_id", cfg.Firestore.ProjectID))
		s, err := firestorestore.NewStore(ctx, cfg.Firestore.ProjectID, cfg.Firestore.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to firestore: %w", err)
		}
		return s, nil

	case config.BackendPostgres:
		logger.Info("Connecting to Postgres")
		s, err := postgres.NewDB(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		logger.Info("Running migrations")
		if err := s.RunMigrations(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return s, nil

	case config.BackendMongo:
		logger.Info("Connecting to MongoDB", zap.String("database", cfg.Mongo.Database))
		s, err := mongostore.NewStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		return s, nil

	default:
		logger.Warn("Using in-memory store, data is lost when the process exits")
		return memstore.New(), nil
	}
}
