// Package config loads runtime configuration from the environment.
package config

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"

	"github.com/cyphera/cyphera-airdrop/internal/constants"
)

// Config is the full runtime configuration of the airdrop binaries.
type Config struct {
	Stage string `env:"STAGE" envDefault:"local"`

	HTTP     HTTPConfig
	Chain    ChainConfig
	Auth     AuthConfig
	Events   EventsConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	AWS      AWSConfig
	Archive  ArchiveConfig
	Notify   NotifyConfig
}

type HTTPConfig struct {
	Port           int      `env:"PORT" envDefault:"8080"`
	AllowOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	RateLimitRPS   int      `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int      `env:"RATE_LIMIT_BURST" envDefault:"40"`
}

// ChainConfig describes the ledger the API bootstraps at startup.
type ChainConfig struct {
	ChainID       int64  `env:"CHAIN_ID" envDefault:"31337"`
	Owner         string `env:"AIRDROP_OWNER,required"`
	TokenName     string `env:"TOKEN_NAME" envDefault:"Hats Token"`
	TokenSymbol   string `env:"TOKEN_SYMBOL" envDefault:"HAT"`
	SigningDomain string `env:"TOKEN_SIGNING_DOMAIN" envDefault:"hats.finance"`
}

type AuthConfig struct {
	JWTSecret    string `env:"JWT_SECRET"`
	JWTSecretARN string `env:"JWT_SECRET_ARN"`
}

type EventsConfig struct {
	QueueURL   string `env:"EVENTS_QUEUE_URL"`
	BatchSize  int    `env:"EVENTS_BATCH_SIZE" envDefault:"10"`
	Workers    int    `env:"EVENTS_WORKERS" envDefault:"2"`
	Buffer     int    `env:"EVENTS_BUFFER" envDefault:"256"`
	MaxPending int    `env:"EVENTS_MAX_PENDING" envDefault:"1024"`
}

type PostgresConfig struct {
	DSN         string `env:"DATABASE_URL"`
	MaxConns    int32  `env:"DATABASE_MAX_CONNS" envDefault:"10"`
	AutoMigrate bool   `env:"DATABASE_AUTO_MIGRATE" envDefault:"true"`
}

// RedisConfig enables the event stream when URL is set.
type RedisConfig struct {
	URL    string `env:"REDIS_URL"`
	Stream string `env:"EVENTS_STREAM" envDefault:"airdrop:events"`
	MaxLen int64  `env:"EVENTS_STREAM_MAX_LEN" envDefault:"100000"`
}

// ArchiveConfig names the bucket tree documents are published to.
type ArchiveConfig struct {
	Bucket string `env:"TREE_ARCHIVE_BUCKET"`
	Prefix string `env:"TREE_ARCHIVE_PREFIX" envDefault:"trees"`
}

// AWSConfig overrides the default AWS credential chain, for LocalStack and
// similar endpoints.
type AWSConfig struct {
	Region          string `env:"AWS_REGION" envDefault:"us-east-1"`
	EndpointURL     string `env:"AWS_ENDPOINT_URL"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
}

// NotifyConfig enables operator emails for selected events when an API key
// and recipients are set.
type NotifyConfig struct {
	ResendAPIKey string   `env:"RESEND_API_KEY"`
	From         string   `env:"NOTIFY_EMAIL_FROM" envDefault:"airdrop@localhost"`
	To           []string `env:"NOTIFY_EMAIL_TO" envSeparator:","`
	Events       []string `env:"NOTIFY_EVENTS" envSeparator:","`
}

// Enabled reports whether notifications can be sent.
func (n NotifyConfig) Enabled() bool {
	return n.ResendAPIKey != "" && len(n.To) > 0
}

// IsProduction reports whether the stage is prod.
func (c *Config) IsProduction() bool {
	return c.Stage == constants.ProdEnvironment
}

// Load reads an optional .env file and parses the environment into a Config.
// Secrets are not resolved here; see ResolveSecrets.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IndexerConfig is the subset the event indexer Lambda needs.
type IndexerConfig struct {
	Stage    string `env:"STAGE" envDefault:"prod"`
	Postgres PostgresConfig
}

// ToolConfig is the subset the merkle tool needs to publish documents.
type ToolConfig struct {
	AWS     AWSConfig
	Archive ArchiveConfig
}

// LoadIndexer loads IndexerConfig. DATABASE_URL is required.
func LoadIndexer() (*IndexerConfig, error) {
	cfg, err := parse[IndexerConfig]()
	if err != nil {
		return nil, err
	}
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}
	return cfg, nil
}

// LoadTool loads ToolConfig.
func LoadTool() (*ToolConfig, error) {
	return parse[ToolConfig]()
}

func parse[T any]() (*T, error) {
	_ = godotenv.Load()
	cfg, err := env.ParseAs[T]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &cfg, nil
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	switch c.Stage {
	case constants.ProdEnvironment, constants.DevEnvironment, constants.LocalEnvironment, constants.TestEnvironment:
	default:
		return fmt.Errorf("invalid STAGE %q", c.Stage)
	}
	if !common.IsHexAddress(c.Chain.Owner) {
		return fmt.Errorf("AIRDROP_OWNER %q is not a hex address", c.Chain.Owner)
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.HTTP.Port)
	}
	if c.Redis.MaxLen < 0 {
		return fmt.Errorf("invalid EVENTS_STREAM_MAX_LEN %d", c.Redis.MaxLen)
	}
	if c.Events.BatchSize <= 0 {
		c.Events.BatchSize = constants.DefaultEventBatchSize
	}
	return nil
}

// ResolveSecrets fills Auth.JWTSecret, preferring Secrets Manager when an ARN
// is configured.
func (c *Config) ResolveSecrets(ctx context.Context, sm *SecretsManagerClient) error {
	if c.Auth.JWTSecretARN == "" || sm == nil {
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET or JWT_SECRET_ARN must be set")
		}
		return nil
	}
	secret, err := sm.GetSecretString(ctx, c.Auth.JWTSecretARN, c.Auth.JWTSecret)
	if err != nil {
		return err
	}
	c.Auth.JWTSecret = secret
	return nil
}
