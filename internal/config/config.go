package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. HOPEHUB_BACKEND
const EnvPrefix = "HOPEHUB"

// Storage backends
const (
	BackendMemory    = "memory"
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
	BackendMongo     = "mongo"
)

// DefaultMailInterval is the minimum gap between two outgoing emails
const DefaultMailInterval = 3 * time.Second

// FirestoreConfig holds the Firestore connection settings
type FirestoreConfig struct {
	ProjectID       string `yaml:"projectID" envconfig:"PROJECT_ID"`
	CredentialsFile string `yaml:"credentialsFile,omitempty" envconfig:"CREDENTIALS_FILE"`
}

// PostgresConfig holds the Postgres connection settings
type PostgresConfig struct {
	URL string `yaml:"url" envconfig:"URL"`
}

// MongoConfig holds the MongoDB connection settings
type MongoConfig struct {
	URI      string `yaml:"uri" envconfig:"URI"`
	Database string `yaml:"database" envconfig:"DATABASE"`
}

// Config represents the application configuration
type Config struct {
	Backend           string          `yaml:"backend" envconfig:"BACKEND" validate:"required,oneof=memory firestore postgres mongo"`
	Firestore         FirestoreConfig `yaml:"firestore,omitempty" envconfig:"FIRESTORE"`
	Postgres          PostgresConfig  `yaml:"postgres,omitempty" envconfig:"POSTGRES"`
	Mongo             MongoConfig     `yaml:"mongo,omitempty" envconfig:"MONGO"`
	GmailSender       string          `yaml:"gmailSender,omitempty" envconfig:"GMAIL_SENDER" validate:"omitempty,email"`
	MailInterval      time.Duration   `yaml:"mailInterval,omitempty" envconfig:"MAIL_INTERVAL" validate:"min=0"`
	FixturePath       string          `yaml:"fixturePath,omitempty" envconfig:"FIXTURE_PATH"`
	DefaultRecurrence string          `yaml:"defaultRecurrence,omitempty" envconfig:"DEFAULT_RECURRENCE"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadWithEnv loads hope_hub_config.<env>.yaml, applies HOPEHUB_* environment overrides
// (reading a .env file first if one exists) and validates the result
func LoadWithEnv(env string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	configPath, err := findFile(configFileName(env))
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads, overrides and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if cfg.MailInterval == 0 {
		cfg.MailInterval = DefaultMailInterval
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct, the settings of the chosen backend and the rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	switch cfg.Backend {
	case BackendFirestore:
		if cfg.Firestore.ProjectID == "" {
			return fmt.Errorf("config validation failed: firestore.projectID is required for the firestore backend")
		}
	case BackendPostgres:
		if cfg.Postgres.URL == "" {
			return fmt.Errorf("config validation failed: postgres.url is required for the postgres backend")
		}
	case BackendMongo:
		if cfg.Mongo.URI == "" || cfg.Mongo.Database == "" {
			return fmt.Errorf("config validation failed: mongo.uri and mongo.database are required for the mongo backend")
		}
	}

	if cfg.DefaultRecurrence != "" {
		if _, err := rrule.StrToRRule(cfg.DefaultRecurrence); err != nil {
			return fmt.Errorf("invalid rrule in defaultRecurrence: %w", err)
		}
	}

	return nil
}

// configFileName returns hope_hub_config.<env>.yaml, or hope_hub_config.yaml without an env
func configFileName(env string) string {
	if env == "" {
		return "hope_hub_config.yaml"
	}
	return "hope_hub_config." + env + ".yaml"
}

// findFile looks for fileName in the current directory, then the home directory
func findFile(fileName string) (string, error) {
	if _, err := os.Stat(fileName); err == nil {
		return fileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homePath := filepath.Join(homeDir, fileName)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", fileName)
}
