package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Session store backends.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string        `env:"APP_NAME"         envDefault:"ArtsiAI"`
	AppEnv         string        `env:"APP_ENV"          envDefault:"development"`
	Port           string        `env:"PORT"             envDefault:"8080"`
	LogLevel       string        `env:"LOG_LEVEL"        envDefault:"info"`
	LogFormat      string        `env:"LOG_FORMAT"       envDefault:"json"`
	ShutdownPeriod time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL"  envDefault:"24h"`

	SessionStore string `env:"SESSION_STORE" envDefault:"sqlite"`
	SessionKey   string `env:"SESSION_KEY"   envDefault:"artsi_user"`
	SQLitePath   string `env:"SQLITE_PATH"   envDefault:"artsi.db"`
	DatabaseURL  string `env:"DATABASE_URL"`
	RedisURL     string `env:"REDIS_URL"`

	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	ImageModel    string `env:"IMAGE_MODEL" envDefault:"dall-e-3"`

	WalletConnectors       []string `env:"WALLET_CONNECTORS"        envSeparator:"," envDefault:"injected,walletConnect,metaMask,safe"`
	WalletDefaultConnector string   `env:"WALLET_DEFAULT_CONNECTOR" envDefault:"metaMask"`
	WalletSeed             string   `env:"WALLET_SEED"              envDefault:"artsi-dev-seed"`

	MintStepDelay          time.Duration `env:"MINT_STEP_DELAY"           envDefault:"1500ms"`
	LoginAttemptsPerMinute int           `env:"LOGIN_ATTEMPTS_PER_MINUTE" envDefault:"5"`

	S3BucketName      string        `env:"S3_BUCKET_NAME"`
	S3Endpoint        string        `env:"S3_ENDPOINT"`
	S3AccessKeyID     string        `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string        `env:"S3_SECRET_ACCESS_KEY"`
	ArchiveURLTTL     time.Duration `env:"ARCHIVE_URL_TTL" envDefault:"24h"`
}

// Load reads configuration values from the environment and validates them.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.SessionStore = strings.ToLower(strings.TrimSpace(cfg.SessionStore))
	cfg.WalletConnectors = trimList(cfg.WalletConnectors)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the selected backends have what they need.
func (c Config) Validate() error {
	switch c.SessionStore {
	case StoreMemory:
	case StoreSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH must be set when SESSION_STORE=%s", c.SessionStore)
		}
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL must be set when SESSION_STORE=%s", c.SessionStore)
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set when SESSION_STORE=%s", c.SessionStore)
		}
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore)
	}
	if strings.TrimSpace(c.SessionKey) == "" {
		return fmt.Errorf("SESSION_KEY must not be empty")
	}
	if len(c.WalletConnectors) == 0 {
		return fmt.Errorf("WALLET_CONNECTORS must name at least one connector")
	}
	if c.MintStepDelay < 0 {
		return fmt.Errorf("MINT_STEP_DELAY must not be negative")
	}
	if c.S3BucketName != "" && c.S3Endpoint == "" {
		return fmt.Errorf("S3_ENDPOINT must be set when S3_BUCKET_NAME is set")
	}
	return nil
}

// ArchiveEnabled reports whether generated images are copied to object storage.
func (c Config) ArchiveEnabled() bool {
	return c.S3BucketName != ""
}

// IsDev reports whether the service runs in a development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func trimList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
