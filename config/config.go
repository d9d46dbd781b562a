package config

import (
	"fmt"
	"strings"
	"time"

	"prediction-market-gateway/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Solana    SolanaConfig    `mapstructure:"solana"`
	TokenGate TokenGateConfig `mapstructure:"token_gate"`
	Market    MarketConfig    `mapstructure:"market"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Enabled reports whether a Redis host is configured.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

type SolanaConfig struct {
	RPCURL         string        `mapstructure:"rpc_url"`
	Commitment     string        `mapstructure:"commitment"` // processed, confirmed, finalized
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// TokenGateConfig is the raw form of domain.TokenGatePolicy.
// MinimumBalance is kept as a string so that "1000.5" is not rounded by float parsing.
type TokenGateConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	MintAddress    string `mapstructure:"mint_address"`
	MinimumBalance string `mapstructure:"minimum_balance"`
	Decimals       int    `mapstructure:"decimals"`
}

type MarketConfig struct {
	AllowEarlyResolution bool     `mapstructure:"allow_early_resolution"`
	AdminWallets         []string `mapstructure:"admin_wallets"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type AuthConfig struct {
	ChallengeTTL time.Duration `mapstructure:"challenge_ttl"`
}

type WebhookConfig struct {
	URL    string `mapstructure:"url"`    // empty = webhook delivery disabled
	Secret string `mapstructure:"secret"` // HMAC-SHA256 key for payload signatures
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"` // postgres, memory
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// maxTokenDecimals is the largest precision an SPL mint can declare in practice.
const maxTokenDecimals = 18

// legacyEnvBindings maps the deployment's historical variable names onto config keys.
var legacyEnvBindings = map[string]string{
	"token_gate.enabled":         "TOKEN_GATE_ENABLED",
	"token_gate.mint_address":    "TOKEN_MINT_ADDRESS",
	"token_gate.minimum_balance": "MINIMUM_BALANCE",
	"token_gate.decimals":        "TOKEN_DECIMALS",
	"solana.rpc_url":             "SOLANA_RPC",
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: PMG_ (Prediction Market Gateway).
// Nested keys use underscore: PMG_DATABASE_HOST, PMG_JWT_SECRET, etc.
// The unprefixed token gate variables (TOKEN_GATE_ENABLED, MINIMUM_BALANCE, ...)
// and SOLANA_RPC are honoured as well and win over the prefixed form.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "prediction_market")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("solana.rpc_url", "https://api.devnet.solana.com")
	v.SetDefault("solana.commitment", "confirmed")
	v.SetDefault("solana.request_timeout", "10s")
	v.SetDefault("token_gate.enabled", false)
	v.SetDefault("token_gate.mint_address", "")
	v.SetDefault("token_gate.minimum_balance", "0")
	v.SetDefault("token_gate.decimals", 6)
	v.SetDefault("market.allow_early_resolution", true)
	v.SetDefault("market.admin_wallets", []string{})
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "12h")
	v.SetDefault("jwt.issuer", "prediction-market-gateway")
	v.SetDefault("auth.challenge_ttl", "5m")
	v.SetDefault("webhook.url", "")
	v.SetDefault("webhook.secret", "")
	v.SetDefault("storage.driver", "postgres")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: PMG_DATABASE_HOST -> database.host
	v.SetEnvPrefix("PMG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range legacyEnvBindings {
		if err := v.BindEnv(key, env, "PMG_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_"))); err != nil {
			return nil, fmt.Errorf("binding env %s: %w", env, err)
		}
	}

	// A missing config file is fine, env vars can carry everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Comma-separated lists from env arrive as a single element.
	cfg.Market.AdminWallets = splitList(cfg.Market.AdminWallets)

	return &cfg, nil
}

// Validate checks the invariants that cannot be expressed as defaults.
func (c *Config) Validate() error {
	if _, err := c.TokenGatePolicy(); err != nil {
		return err
	}
	switch c.Storage.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("storage.driver must be postgres or memory, got %q", c.Storage.Driver)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	return nil
}

// TokenGatePolicy converts the token_gate section into the immutable policy value.
func (c *Config) TokenGatePolicy() (domain.TokenGatePolicy, error) {
	tg := c.TokenGate

	minimum, err := decimal.NewFromString(strings.TrimSpace(tg.MinimumBalance))
	if err != nil {
		return domain.TokenGatePolicy{}, fmt.Errorf("token_gate.minimum_balance %q: %w", tg.MinimumBalance, err)
	}
	if minimum.IsNegative() {
		return domain.TokenGatePolicy{}, fmt.Errorf("token_gate.minimum_balance must not be negative")
	}
	if tg.Decimals < 0 || tg.Decimals > maxTokenDecimals {
		return domain.TokenGatePolicy{}, fmt.Errorf("token_gate.decimals must be within 0..%d, got %d", maxTokenDecimals, tg.Decimals)
	}
	if tg.Enabled && strings.TrimSpace(tg.MintAddress) == "" {
		return domain.TokenGatePolicy{}, fmt.Errorf("token_gate.mint_address is required when the gate is enabled")
	}

	return domain.TokenGatePolicy{
		Enabled:        tg.Enabled,
		TokenMint:      strings.TrimSpace(tg.MintAddress),
		MinimumBalance: minimum,
		Decimals:       uint8(tg.Decimals),
	}, nil
}

func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
