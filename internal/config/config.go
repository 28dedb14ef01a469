package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix                    = "PHARMADESK"
	defaultHTTPAddress           = "0.0.0.0:8080"
	defaultDatabasePath          = "pharmadesk.db"
	defaultLogLevel              = "info"
	defaultTokenTTLMinutes       = 720
	defaultGatewayTimeoutSeconds = 10
)

// AppConfig captures runtime configuration for the API server.
type AppConfig struct {
	HTTPAddress       string
	DatabasePath      string
	LogLevel          string
	SessionSigningKey string
	SessionTokenTTL   time.Duration
	GatewayTimeout    time.Duration
	AllowDevTokens    bool
	// OperatorID identifies the single-tenant CRM operator; when set, the
	// initial snapshot refresh runs under this identity at startup.
	OperatorID string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper
// instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("session.token_ttl_minutes", defaultTokenTTLMinutes)
	configViper.SetDefault("session.allow_dev_tokens", false)
	configViper.SetDefault("session.operator_id", "")
	configViper.SetDefault("gateway.timeout_seconds", defaultGatewayTimeoutSeconds)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:       configViper.GetString("http.address"),
		DatabasePath:      configViper.GetString("database.path"),
		LogLevel:          configViper.GetString("log.level"),
		SessionSigningKey: configViper.GetString("session.signing_secret"),
		SessionTokenTTL:   time.Duration(configViper.GetInt("session.token_ttl_minutes")) * time.Minute,
		GatewayTimeout:    time.Duration(configViper.GetInt("gateway.timeout_seconds")) * time.Second,
		AllowDevTokens:    configViper.GetBool("session.allow_dev_tokens"),
		OperatorID:        configViper.GetString("session.operator_id"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.SessionSigningKey) == "" {
		return fmt.Errorf("session.signing_secret is required")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.SessionTokenTTL <= 0 {
		return fmt.Errorf("session.token_ttl_minutes must be positive")
	}
	if c.GatewayTimeout <= 0 {
		return fmt.Errorf("gateway.timeout_seconds must be positive")
	}
	return nil
}
