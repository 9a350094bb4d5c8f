// Package config holds the service configuration and its viper-backed loader.
package config

import (
	"fmt"
	"time"

	"github.com/storekit/admission/internal/domain/service"
	"github.com/storekit/admission/internal/infrastructure/monitoring"
	"github.com/storekit/admission/internal/infrastructure/persistence/redis"
)

// Config holds the application's configuration.
type Config struct {
	Server    ServerConfig             `mapstructure:"server"`
	Redis     redis.Config             `mapstructure:"redis"`
	Session   SessionConfig            `mapstructure:"session"`
	RateLimit RateLimitConfig          `mapstructure:"rate_limit"`
	Routes    RoutesConfig             `mapstructure:"routes"`
	Log       monitoring.LogConfig     `mapstructure:"log"`
	Tracing   monitoring.TracingConfig `mapstructure:"tracing"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	PprofEnabled    bool          `mapstructure:"pprof_enabled"`
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SessionConfig holds session token and store parameters.
type SessionConfig struct {
	// SigningSecret is the HS256 secret shared with the token issuer.
	// Only the authoritative tier uses it.
	SigningSecret string        `mapstructure:"signing_secret"`
	TTL           time.Duration `mapstructure:"ttl"`
	StoreTimeout  time.Duration `mapstructure:"store_timeout"`
}

// RateLimitClass is the budget for one endpoint class.
type RateLimitClass struct {
	Max      int           `mapstructure:"max"`
	Window   time.Duration `mapstructure:"window"`
	Strategy string        `mapstructure:"strategy"`
}

// RateLimitConfig holds per-endpoint-class rate limit budgets.
type RateLimitConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	StoreTimeout time.Duration `mapstructure:"store_timeout"`

	// API covers general API traffic, Auth covers login/register endpoints,
	// Checkout covers payment-adjacent endpoints, Admin covers the admin API.
	API      RateLimitClass `mapstructure:"api"`
	Auth     RateLimitClass `mapstructure:"auth"`
	Checkout RateLimitClass `mapstructure:"checkout"`
	Admin    RateLimitClass `mapstructure:"admin"`
}

// RoutesConfig enumerates the path-prefix sets for route classification,
// separately for page and API routes.
type RoutesConfig struct {
	PublicPages    []string `mapstructure:"public_pages"`
	AuthPages      []string `mapstructure:"auth_pages"`
	ProtectedPages []string `mapstructure:"protected_pages"`
	AdminPages     []string `mapstructure:"admin_pages"`

	PublicAPI    []string `mapstructure:"public_api"`
	AuthAPI      []string `mapstructure:"auth_api"`
	ProtectedAPI []string `mapstructure:"protected_api"`
	AdminAPI     []string `mapstructure:"admin_api"`

	// DefaultAction decides unmatched paths: "allow" or "deny".
	DefaultAction string `mapstructure:"default_action"`
}

// Policy converts the configured prefixes into the classifier's policy.
func (c *RoutesConfig) Policy() service.RoutePolicy {
	return service.RoutePolicy{
		PublicPages:    c.PublicPages,
		AuthPages:      c.AuthPages,
		ProtectedPages: c.ProtectedPages,
		AdminPages:     c.AdminPages,
		PublicAPI:      c.PublicAPI,
		AuthAPI:        c.AuthAPI,
		ProtectedAPI:   c.ProtectedAPI,
		AdminAPI:       c.AdminAPI,
		Default:        service.DefaultAction(c.DefaultAction),
	}
}

// Validate checks essential configuration values.
func (c *Config) Validate() error {
	if c.Session.SigningSecret == "" {
		return fmt.Errorf("session.signing_secret is required")
	}
	if c.Routes.DefaultAction != string(service.DefaultAllow) &&
		c.Routes.DefaultAction != string(service.DefaultDeny) {
		return fmt.Errorf("routes.default_action must be %q or %q",
			service.DefaultAllow, service.DefaultDeny)
	}
	return nil
}
