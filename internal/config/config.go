package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Setting keys. The dotted names are the ones operators already use in their
// ini/yaml files; the environment form upper-cases them and replaces "." with "_"
// (pypi.authenticated_index -> PYPI_AUTHENTICATED_INDEX).
const (
	KeyAuthenticatedIndex = "pypi.authenticated_index"
	KeyAppURL             = "pypi.app_url"
	KeyDebug              = "pyramid.debug"

	KeyEnvironment     = "server.environment"
	KeyPort            = "server.port"
	KeyRootPath        = "server.root_path"
	KeyURLPrefix       = "server.url_prefix"
	KeyShutdownTimeout = "server.shutdown_timeout"
	KeyMaxBodyBytes    = "server.max_body_bytes"
	KeyTrustedProxies  = "server.trusted_proxies"

	KeyLogLevel = "log.level"

	KeyJWTSecret = "auth.jwt_secret"
	KeyTokenTTL  = "auth.token_ttl"
	KeyUsers     = "auth.users"

	KeyRateLimitRPS   = "ratelimit.rps"
	KeyRateLimitBurst = "ratelimit.burst"

	KeySwaggerEnabled = "swagger.enabled"
)

// Config holds all configuration for the application
type Config struct {
	Environment string `validate:"oneof=development test production"`
	Port        string `validate:"required,numeric"`
	// RootPath is where the router mounts the index ("" or "/pypi").
	RootPath string `validate:"omitempty,startswith=/,endsnotwith=/"`
	// URLPrefix is prepended to derived app URLs but never seen by the router,
	// e.g. a reverse-proxy location or an API Gateway stage.
	URLPrefix       string `validate:"omitempty,startswith=/,endsnotwith=/"`
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64 `validate:"gt=0"`
	// TrustedProxies lists the IPs and CIDRs whose X-Forwarded-* headers are
	// honored. Empty trusts no proxy.
	TrustedProxies []string `validate:"dive,cidr|ip"`

	Index   IndexConfig
	Log     LogConfig
	Auth    AuthConfig
	Limits  RateLimitConfig
	Swagger bool
}

// IndexConfig holds settings read by the landing page and error formatter
type IndexConfig struct {
	// AuthenticatedIndex is the raw setting; only a case-insensitive "true" enables it.
	AuthenticatedIndex string
	// AppURL overrides the request-derived application URL.
	AppURL string `validate:"omitempty,url"`
	// Debug exposes stack traces in JSON error bodies.
	Debug bool
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `validate:"oneof=trace debug info warn warning error fatal panic"`
}

// AuthConfig holds login and token configuration
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration `validate:"gt=0"`
	// Users maps user names to bcrypt password hashes.
	Users map[string]string
}

// RateLimitConfig holds the global request limiter settings
type RateLimitConfig struct {
	RequestsPerSecond float64 `validate:"gte=0"`
	Burst             int     `validate:"gte=0"`
}

// RequireLogin reports whether anonymous users are redirected away from the index.
func (c *Config) RequireLogin() bool {
	return strings.ToLower(c.Index.AuthenticatedIndex) == "true"
}

// IsProduction reports whether the server runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load loads configuration from an optional config file, a .env file and the
// environment, in increasing order of precedence. An empty path falls back to
// the CONFIG_FILE environment variable.
func Load(path string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyAuthenticatedIndex, "false")
	v.SetDefault(KeyAppURL, "")
	v.SetDefault(KeyDebug, "false")

	v.SetDefault(KeyEnvironment, "development")
	v.SetDefault(KeyPort, "6543")
	v.SetDefault(KeyRootPath, "")
	v.SetDefault(KeyURLPrefix, "")
	v.SetDefault(KeyShutdownTimeout, 30*time.Second)
	v.SetDefault(KeyMaxBodyBytes, 10*1024*1024)
	v.SetDefault(KeyTrustedProxies, "")

	v.SetDefault(KeyLogLevel, "info")

	v.SetDefault(KeyJWTSecret, "")
	v.SetDefault(KeyTokenTTL, 24*time.Hour)
	v.SetDefault(KeyUsers, "")

	v.SetDefault(KeyRateLimitRPS, 100)
	v.SetDefault(KeyRateLimitBurst, 200)

	v.SetDefault(KeySwaggerEnabled, false)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Environment:     strings.ToLower(v.GetString(KeyEnvironment)),
		Port:            v.GetString(KeyPort),
		RootPath:        v.GetString(KeyRootPath),
		URLPrefix:       v.GetString(KeyURLPrefix),
		ShutdownTimeout: v.GetDuration(KeyShutdownTimeout),
		MaxBodyBytes:    v.GetInt64(KeyMaxBodyBytes),
		TrustedProxies:  listFromViper(v, KeyTrustedProxies),
		Index: IndexConfig{
			AuthenticatedIndex: v.GetString(KeyAuthenticatedIndex),
			AppURL:             v.GetString(KeyAppURL),
			Debug:              AsBool(v.GetString(KeyDebug)),
		},
		Log: LogConfig{
			Level: strings.ToLower(v.GetString(KeyLogLevel)),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString(KeyJWTSecret),
			TokenTTL:  v.GetDuration(KeyTokenTTL),
			Users:     usersFromViper(v),
		},
		Limits: RateLimitConfig{
			RequestsPerSecond: v.GetFloat64(KeyRateLimitRPS),
			Burst:             v.GetInt(KeyRateLimitBurst),
		},
		Swagger: v.GetBool(KeySwaggerEnabled),
	}
}

// usersFromViper accepts either a table (auth.users.alice = <hash> in a config
// file) or a flat "alice:<hash>,bob:<hash>" list from the environment.
func usersFromViper(v *viper.Viper) map[string]string {
	if users := v.GetStringMapString(KeyUsers); len(users) > 0 {
		return users
	}
	return ParseUserList(v.GetString(KeyUsers))
}

// listFromViper accepts a list from a config file or a comma-separated string
// from the environment.
func listFromViper(v *viper.Viper, key string) []string {
	if _, ok := v.Get(key).([]interface{}); ok {
		return v.GetStringSlice(key)
	}

	var items []string
	for _, item := range strings.Split(v.GetString(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// ParseUserList parses "name:hash" pairs separated by commas.
// bcrypt hashes never contain ':' or ','.
func ParseUserList(raw string) map[string]string {
	users := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		name, hash, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || name == "" || hash == "" {
			continue
		}
		users[name] = hash
	}
	return users
}

// Validate checks field constraints and cross-field rules
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.IsProduction() && c.Auth.JWTSecret == "" {
		return fmt.Errorf("invalid configuration: %s is required in production", KeyJWTSecret)
	}
	return nil
}

// AsBool interprets a setting the way paste-style ini files do: t, true, y, yes,
// on and 1 are true (case-insensitive, surrounding space ignored), anything
// else is false.
func AsBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "t", "true", "y", "yes", "on", "1":
		return true
	default:
		return false
	}
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
