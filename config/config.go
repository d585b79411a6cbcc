package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"

	"github.com/angeloszaimis/movieflix-keepalive/internal/endpoint"
	"github.com/angeloszaimis/movieflix-keepalive/internal/keepalive"
	"github.com/angeloszaimis/movieflix-keepalive/internal/probe"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

const (
	DefaultBackendURL  = "https://movieflix-moengage.onrender.com"
	DefaultFrontendURL = "https://movieflix-moengage-frontend.onrender.com"
)

type ServerConfig struct {
	Environment string `mapstructure:"environment"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type StatusConfig struct {
	Address string `mapstructure:"address"`
}

type EndpointConfig struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

type Config struct {
	Server         ServerConfig     `mapstructure:"server"`
	Logging        LoggingConfig    `mapstructure:"logging"`
	Status         StatusConfig     `mapstructure:"status"`
	BackendURL     string           `mapstructure:"backend_url"`
	FrontendURL    string           `mapstructure:"frontend_url"`
	PingInterval   string           `mapstructure:"ping_interval"`
	MaxRetries     int              `mapstructure:"max_retries"`
	RetryDelay     string           `mapstructure:"retry_delay"`
	RequestTimeout string           `mapstructure:"request_timeout"`
	OnExhaustion   string           `mapstructure:"on_exhaustion"`
	UserAgent      string           `mapstructure:"user_agent"`
	Endpoints      []EndpointConfig `mapstructure:"endpoints"`
}

// Load reads config.yaml from ./config or the working directory, overlays
// environment variables and validates the result. A missing file is not an
// error.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.environment", EnvDev)
	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("status.address", "")
	v.SetDefault("backend_url", DefaultBackendURL)
	v.SetDefault("frontend_url", DefaultFrontendURL)
	v.SetDefault("ping_interval", "10")
	v.SetDefault("max_retries", 3)
	v.SetDefault("retry_delay", "30s")
	v.SetDefault("request_timeout", "30s")
	v.SetDefault("on_exhaustion", string(keepalive.ExhaustionStop))
	v.SetDefault("user_agent", probe.DefaultUserAgent)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Info("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")
	if len(cfg.Endpoints) == 0 {
		cfg.Endpoints = DefaultEndpoints(cfg.BackendURL, cfg.FrontendURL)
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

// DefaultEndpoints is the target list used when none is configured.
func DefaultEndpoints(backendURL, frontendURL string) []EndpointConfig {
	backendURL = strings.TrimRight(backendURL, "/")

	return []EndpointConfig{
		{Name: "Backend Ping", URL: backendURL + "/api/health/ping"},
		{Name: "Backend Health", URL: backendURL + "/api/health"},
		{Name: "Frontend", URL: frontendURL},
	}
}

// ParseInterval accepts a bare integer as a number of minutes, otherwise a
// Go duration string.
func ParseInterval(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)

	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute, nil
	}

	return time.ParseDuration(value)
}

// KeepAlive converts the validated settings into the service configuration.
func (c *Config) KeepAlive() (keepalive.Config, error) {
	interval, err := ParseInterval(c.PingInterval)
	if err != nil {
		return keepalive.Config{}, fmt.Errorf("ping_interval: %w", err)
	}

	retryDelay, err := time.ParseDuration(c.RetryDelay)
	if err != nil {
		return keepalive.Config{}, fmt.Errorf("retry_delay: %w", err)
	}

	timeout, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return keepalive.Config{}, fmt.Errorf("request_timeout: %w", err)
	}

	endpoints := make([]endpoint.Endpoint, 0, len(c.Endpoints))
	for _, ec := range c.Endpoints {
		ep, err := endpoint.New(ec.Name, ec.URL)
		if err != nil {
			return keepalive.Config{}, fmt.Errorf("endpoint %q: %w", ec.Name, err)
		}
		endpoints = append(endpoints, ep)
	}

	return keepalive.Config{
		Endpoints:      endpoints,
		PingInterval:   interval,
		MaxRetries:     c.MaxRetries,
		RetryDelay:     retryDelay,
		RequestTimeout: timeout,
		OnExhaustion:   keepalive.ExhaustionAction(c.OnExhaustion),
		UserAgent:      c.UserAgent,
	}, nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Environment,
						validation.Required,
						validation.In(EnvDev, EnvStaging, EnvProd),
					),
				)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
		validation.Field(&c.Status,
			validation.By(func(value interface{}) error {
				sc, ok := value.(StatusConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a StatusConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Address, validation.By(validateHostPort)),
				)
			}),
		),
		validation.Field(&c.PingInterval, validation.Required, validation.By(validateInterval)),
		validation.Field(&c.MaxRetries, validation.Min(0)),
		validation.Field(&c.RetryDelay, validation.Required, validation.By(validateDuration)),
		validation.Field(&c.RequestTimeout, validation.Required, validation.By(validateDuration)),
		validation.Field(&c.OnExhaustion,
			validation.Required,
			validation.In(string(keepalive.ExhaustionStop), string(keepalive.ExhaustionSkip)),
		),
		validation.Field(&c.UserAgent, validation.Required),
		validation.Field(&c.Endpoints,
			validation.Required,
			validation.Length(1, 0),
			validation.Each(validation.By(validateEndpointConfig)),
		),
	)
}

// validateHostPort accepts an empty address, which disables the listener.
func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if addr == "" {
		return nil
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validateInterval(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	d, err := ParseInterval(s)
	if err != nil {
		return validation.NewError("validation_invalid_interval", "must be a number of minutes or a valid duration (e.g., 10, 90s, 5m)")
	}

	if d <= 0 {
		return validation.NewError("validation_non_positive", "must be positive")
	}

	return nil
}

func validateDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 2s, 5m, 1h)")
	}

	if d <= 0 {
		return validation.NewError("validation_non_positive", "must be positive")
	}

	return nil
}

func validateEndpointConfig(value interface{}) error {
	ec, ok := value.(EndpointConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be an EndpointConfig")
	}

	if strings.TrimSpace(ec.Name) == "" {
		return validation.NewError("validation_empty_name", "endpoint name cannot be empty")
	}

	if ec.URL == "" {
		return validation.NewError("validation_empty_url", "endpoint URL cannot be empty")
	}

	parsedURL, err := url.Parse(ec.URL)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}
