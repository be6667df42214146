// Package config provides configuration management for the catalog.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/store"
)

// Default configuration values.
const (
	DefaultServerPort      = 8080
	DefaultLogLevel        = "info"
	DefaultLogOutput       = "stderr"
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMetricsEnabled  = true
	DefaultCatalogCapacity = store.DefaultCapacity
	DefaultAuthMode        = "none"
	DefaultTLSClientAuth   = "none"
)

// Environment variable names.
const (
	EnvServerPort      = "APP_SERVER_PORT"
	EnvLogLevel        = "APP_LOG_LEVEL"
	EnvLogOutput       = "APP_LOG_OUTPUT"
	EnvShutdownTimeout = "APP_SHUTDOWN_TIMEOUT"
	EnvMetricsEnabled  = "APP_METRICS_ENABLED"
	EnvCatalogCapacity = "APP_CATALOG_CAPACITY"
	EnvAuthMode        = "APP_AUTH_MODE"
	EnvAuthPublicReads = "APP_AUTH_PUBLIC_READS"
	EnvTLSEnabled      = "APP_TLS_ENABLED"
	EnvTLSCertPath     = "APP_TLS_CERT_PATH"
	EnvTLSKeyPath      = "APP_TLS_KEY_PATH"
	EnvTLSCAPath       = "APP_TLS_CA_PATH"
	EnvTLSClientAuth   = "APP_TLS_CLIENT_AUTH"
	EnvBasicAuthUsers  = "APP_BASIC_AUTH_USERS"
	EnvAPIKeys         = "APP_API_KEYS" //nolint:gosec // env var name, not a credential
)

// Accepted enumerations.
var (
	LogLevels      = []string{"debug", "info", "warn", "error"}
	AuthModes      = []string{"none", "mtls", "basic", "apikey", "multi"}
	TLSClientAuths = []string{"none", "request", "require"}
)

// Config holds the application configuration.
type Config struct {
	// Server settings.
	ServerPort      int
	LogLevel        string
	LogOutput       string // "stdout", "stderr" or a file path.
	ShutdownTimeout time.Duration
	MetricsEnabled  bool

	// CatalogCapacity bounds the number of stored books.
	CatalogCapacity int

	// Authentication mode: none, mtls, basic, apikey, multi.
	AuthMode string
	// AuthPublicReads lets GET requests through without credentials.
	AuthPublicReads bool

	// TLS settings.
	TLSEnabled    bool
	TLSCertPath   string
	TLSKeyPath    string
	TLSCAPath     string
	TLSClientAuth string

	// Basic auth users (format: "user1:bcrypt_hash,user2:bcrypt_hash").
	BasicAuthUsers string

	// API keys (format: "key1:name1,key2:name2").
	APIKeys string
}

// Validation errors.
var (
	ErrInvalidServerPort      = errors.New("server port must be between 1 and 65535")
	ErrInvalidLogLevel        = errors.New("log level must be one of: debug, info, warn, error")
	ErrInvalidLogOutput       = errors.New("log output must not be empty")
	ErrInvalidShutdownTimeout = errors.New("shutdown timeout must be positive")
	ErrInvalidCatalogCapacity = fmt.Errorf("catalog capacity must be between 1 and %d", store.DefaultCapacity)
	ErrInvalidAuthMode        = errors.New("auth mode must be one of: none, mtls, basic, apikey, multi")
	ErrInvalidTLSClientAuth   = errors.New("TLS client auth must be one of: none, request, require")
	ErrInvalidTLSCertRequired = errors.New("TLS cert path and key path must be set when TLS is enabled")
	ErrInvalidTLSCARequired   = errors.New("TLS CA path must be set when TLS client auth is require")
	ErrInvalidMTLSConfig      = errors.New("mtls auth needs TLS enabled with client auth require")
	ErrInvalidBasicAuthConfig = errors.New("basic auth users must be set when auth mode is basic")
	ErrInvalidAPIKeyConfig    = errors.New("API keys must be set when auth mode is apikey")
	ErrInvalidMultiAuthConfig = errors.New("multi auth needs at least one of basic users, API keys or TLS")
)

// binding reads one environment variable into a Config field.
type binding struct {
	key   string
	apply func(c *Config, val string) error
}

func stringField(key string, field func(*Config) *string) binding {
	return binding{key, func(c *Config, val string) error {
		*field(c) = val
		return nil
	}}
}

func intField(key string, field func(*Config) *int) binding {
	return binding{key, func(c *Config, val string) error {
		n, err := strconv.Atoi(val)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}}
}

func boolField(key string, field func(*Config) *bool) binding {
	return binding{key, func(c *Config, val string) error {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}}
}

func durationField(key string, field func(*Config) *time.Duration) binding {
	return binding{key, func(c *Config, val string) error {
		d, err := time.ParseDuration(val)
		if err != nil {
			return err
		}
		*field(c) = d
		return nil
	}}
}

// bindings lists every variable Load reads. Empty values are ignored.
var bindings = []binding{
	intField(EnvServerPort, func(c *Config) *int { return &c.ServerPort }),
	stringField(EnvLogLevel, func(c *Config) *string { return &c.LogLevel }),
	stringField(EnvLogOutput, func(c *Config) *string { return &c.LogOutput }),
	durationField(EnvShutdownTimeout, func(c *Config) *time.Duration { return &c.ShutdownTimeout }),
	boolField(EnvMetricsEnabled, func(c *Config) *bool { return &c.MetricsEnabled }),
	intField(EnvCatalogCapacity, func(c *Config) *int { return &c.CatalogCapacity }),
	stringField(EnvAuthMode, func(c *Config) *string { return &c.AuthMode }),
	boolField(EnvAuthPublicReads, func(c *Config) *bool { return &c.AuthPublicReads }),
	boolField(EnvTLSEnabled, func(c *Config) *bool { return &c.TLSEnabled }),
	stringField(EnvTLSCertPath, func(c *Config) *string { return &c.TLSCertPath }),
	stringField(EnvTLSKeyPath, func(c *Config) *string { return &c.TLSKeyPath }),
	stringField(EnvTLSCAPath, func(c *Config) *string { return &c.TLSCAPath }),
	stringField(EnvTLSClientAuth, func(c *Config) *string { return &c.TLSClientAuth }),
	stringField(EnvBasicAuthUsers, func(c *Config) *string { return &c.BasicAuthUsers }),
	stringField(EnvAPIKeys, func(c *Config) *string { return &c.APIKeys }),
}

// Load reads configuration from environment variables over defaults and
// validates the result.
func Load() (*Config, error) {
	cfg := Default()

	for _, b := range bindings {
		val := os.Getenv(b.key)
		if val == "" {
			continue
		}
		if err := b.apply(cfg, val); err != nil {
			return nil, fmt.Errorf("loading config from environment: parsing %s: %w", b.key, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a configuration populated with default values.
func Default() *Config {
	return &Config{
		ServerPort:      DefaultServerPort,
		LogLevel:        DefaultLogLevel,
		LogOutput:       DefaultLogOutput,
		ShutdownTimeout: DefaultShutdownTimeout,
		MetricsEnabled:  DefaultMetricsEnabled,
		CatalogCapacity: DefaultCatalogCapacity,
		AuthMode:        DefaultAuthMode,
		TLSClientAuth:   DefaultTLSClientAuth,
	}
}

// Validate checks field ranges first, then TLS, then the requirements of
// the selected auth mode.
func (c *Config) Validate() error {
	switch {
	case c.ServerPort < 1 || c.ServerPort > 65535:
		return ErrInvalidServerPort
	case !slices.Contains(LogLevels, c.LogLevel):
		return ErrInvalidLogLevel
	case c.LogOutput == "":
		return ErrInvalidLogOutput
	case c.ShutdownTimeout <= 0:
		return ErrInvalidShutdownTimeout
	case c.CatalogCapacity < 1 || c.CatalogCapacity > store.DefaultCapacity:
		return ErrInvalidCatalogCapacity
	case !slices.Contains(AuthModes, c.AuthModeOrDefault()):
		return ErrInvalidAuthMode
	}

	if err := c.validateTLS(); err != nil {
		return err
	}

	return c.validateAuthMode()
}

func (c *Config) validateTLS() error {
	clientAuth := c.TLSClientAuthOrDefault()

	switch {
	case !slices.Contains(TLSClientAuths, clientAuth):
		return ErrInvalidTLSClientAuth
	case c.TLSEnabled && (c.TLSCertPath == "" || c.TLSKeyPath == ""):
		return ErrInvalidTLSCertRequired
	case clientAuth == "require" && c.TLSCAPath == "":
		return ErrInvalidTLSCARequired
	}

	return nil
}

func (c *Config) validateAuthMode() error {
	switch c.AuthModeOrDefault() {
	case "mtls":
		if !c.TLSEnabled || c.TLSClientAuthOrDefault() != "require" {
			return ErrInvalidMTLSConfig
		}
	case "basic":
		if c.BasicAuthUsers == "" {
			return ErrInvalidBasicAuthConfig
		}
	case "apikey":
		if c.APIKeys == "" {
			return ErrInvalidAPIKeyConfig
		}
	case "multi":
		if c.BasicAuthUsers == "" && c.APIKeys == "" && !c.TLSEnabled {
			return ErrInvalidMultiAuthConfig
		}
	}

	return nil
}

// AuthModeOrDefault returns the auth mode, "none" when unset.
func (c *Config) AuthModeOrDefault() string {
	if c.AuthMode == "" {
		return DefaultAuthMode
	}
	return c.AuthMode
}

// TLSClientAuthOrDefault returns the TLS client auth mode, "none" when unset.
func (c *Config) TLSClientAuthOrDefault() string {
	if c.TLSClientAuth == "" {
		return DefaultTLSClientAuth
	}
	return c.TLSClientAuth
}

// Address returns the listen address in :port form.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}
