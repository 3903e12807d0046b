package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
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

// Paths served by the gateway itself; routes may not claim them.
var reservedPrefixes = []string{"/health", "/status", "/metrics"}

type ServerConfig struct {
	Address     string `mapstructure:"address"`
	Environment string `mapstructure:"environment"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type AuthConfig struct {
	// Enabled is the default applied to routes that do not set their own toggle.
	Enabled bool   `mapstructure:"enabled"`
	Secret  string `mapstructure:"secret"`
}

type RateLimitConfig struct {
	Window      string `mapstructure:"window"`
	MaxRequests int    `mapstructure:"max_requests"`
}

type ProxyConfig struct {
	Timeout string `mapstructure:"timeout"`
}

type HealthConfig struct {
	ProbeTimeout string `mapstructure:"probe_timeout"`
}

type RouteConfig struct {
	Name   string `mapstructure:"name"`
	Prefix string `mapstructure:"prefix"`
	Target string `mapstructure:"target"`
	// Auth overrides the global auth default for this route when set.
	Auth *bool `mapstructure:"auth"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Proxy     ProxyConfig     `mapstructure:"proxy"`
	Health    HealthConfig    `mapstructure:"health"`
	Routes    []RouteConfig   `mapstructure:"routes"`
}

// AuthEnabled reports whether token verification applies to the given route,
// falling back to the global default when the route carries no explicit toggle.
func (c *Config) AuthEnabled(r RouteConfig) bool {
	if r.Auth != nil {
		return *r.Auth
	}
	return c.Auth.Enabled
}

func Load() (*Config, error) {
	viper.SetDefault("server.environment", EnvDev)
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("logging.level", LogLevelInfo)
	viper.SetDefault("auth.enabled", false)
	viper.SetDefault("rate_limit.window", "15m")
	viper.SetDefault("rate_limit.max_requests", 100)
	viper.SetDefault("proxy.timeout", "10s")
	viper.SetDefault("health.probe_timeout", "5s")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Error("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", viper.ConfigFileUsed()))
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
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
					validation.Field(&sc.Address,
						validation.Required,
						validation.By(validateHostPort),
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
		validation.Field(&c.RateLimit,
			validation.Required,
			validation.By(func(value interface{}) error {
				rc, ok := value.(RateLimitConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a RateLimitConfig")
				}
				return validation.ValidateStruct(&rc,
					validation.Field(&rc.Window,
						validation.Required,
						validation.By(validateDuration),
					),
					validation.Field(&rc.MaxRequests,
						validation.Required,
						validation.Min(1),
					),
				)
			}),
		),
		validation.Field(&c.Proxy,
			validation.Required,
			validation.By(func(value interface{}) error {
				pc, ok := value.(ProxyConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ProxyConfig")
				}
				return validation.ValidateStruct(&pc,
					validation.Field(&pc.Timeout,
						validation.Required,
						validation.By(validateDuration),
					),
				)
			}),
		),
		validation.Field(&c.Health,
			validation.Required,
			validation.By(func(value interface{}) error {
				hc, ok := value.(HealthConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a HealthConfig")
				}
				return validation.ValidateStruct(&hc,
					validation.Field(&hc.ProbeTimeout,
						validation.Required,
						validation.By(validateDuration),
					),
				)
			}),
		),
		validation.Field(&c.Routes,
			validation.Required,
			validation.Length(1, 0),
			validation.Each(validation.By(validateRouteConfig)),
		),
	); err != nil {
		return err
	}

	if err := c.validatePrefixes(); err != nil {
		return err
	}

	return c.validateAuthSecret()
}

// validatePrefixes rejects duplicate and overlapping route prefixes so that
// every request path resolves to at most one route regardless of the order
// routes are listed in.
func (c *Config) validatePrefixes() error {
	for i, a := range c.Routes {
		for _, reserved := range reservedPrefixes {
			if a.Prefix == reserved {
				return validation.NewError("validation_reserved_prefix",
					fmt.Sprintf("route %q uses reserved prefix %q", a.Name, a.Prefix))
			}
		}
		for j, b := range c.Routes {
			if i == j {
				continue
			}
			if a.Prefix == b.Prefix {
				return validation.NewError("validation_duplicate_prefix",
					fmt.Sprintf("routes %q and %q share prefix %q", a.Name, b.Name, a.Prefix))
			}
			if strings.HasPrefix(b.Prefix, a.Prefix+"/") {
				return validation.NewError("validation_overlapping_prefix",
					fmt.Sprintf("route prefix %q overlaps %q", a.Prefix, b.Prefix))
			}
		}
	}
	return nil
}

func (c *Config) validateAuthSecret() error {
	needsSecret := false
	for _, r := range c.Routes {
		if c.AuthEnabled(r) {
			needsSecret = true
			break
		}
	}
	if needsSecret && c.Auth.Secret == "" {
		return validation.NewError("validation_missing_secret",
			"auth.secret is required when token verification is enabled for any route")
	}
	return nil
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
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

func validateDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 10s, 15m, 1h)")
	}

	if d <= 0 {
		return validation.NewError("validation_invalid_duration", "must be a positive duration")
	}

	return nil
}

func validateRouteConfig(value interface{}) error {
	route, ok := value.(RouteConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a RouteConfig")
	}

	if route.Name == "" {
		return validation.NewError("validation_empty_name", "route name cannot be empty")
	}

	if !strings.HasPrefix(route.Prefix, "/") || route.Prefix == "/" {
		return validation.NewError("validation_invalid_prefix", "route prefix must start with / and not be the root path")
	}

	if strings.HasSuffix(route.Prefix, "/") {
		return validation.NewError("validation_invalid_prefix", "route prefix must not end with /")
	}

	if route.Target == "" {
		return validation.NewError("validation_empty_target", "route target cannot be empty")
	}

	parsedURL, err := url.Parse(route.Target)
	if err != nil {
		return validation.NewError("validation_invalid_target", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "target must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "target must have a host")
	}

	return nil
}
