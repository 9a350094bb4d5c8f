package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoadConfig loads the configuration from defaults, an optional config file,
// and ADMISSION_-prefixed environment variables, in increasing precedence.
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/admission/")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("ADMISSION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.pprof_enabled", false)

	v.SetDefault("redis.addresses", []string{"localhost:6379"})
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 250*time.Millisecond)
	v.SetDefault("redis.write_timeout", 250*time.Millisecond)

	// Registered empty so the env override is visible to Unmarshal; there is
	// no usable default for a shared secret.
	v.SetDefault("session.signing_secret", "")
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.store_timeout", 250*time.Millisecond)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.store_timeout", 250*time.Millisecond)
	v.SetDefault("rate_limit.api.max", 100)
	v.SetDefault("rate_limit.api.window", time.Minute)
	v.SetDefault("rate_limit.api.strategy", "ip")
	v.SetDefault("rate_limit.auth.max", 10)
	v.SetDefault("rate_limit.auth.window", time.Minute)
	v.SetDefault("rate_limit.auth.strategy", "ip")
	v.SetDefault("rate_limit.checkout.max", 30)
	v.SetDefault("rate_limit.checkout.window", time.Minute)
	v.SetDefault("rate_limit.checkout.strategy", "combined")
	v.SetDefault("rate_limit.admin.max", 60)
	v.SetDefault("rate_limit.admin.window", time.Minute)
	v.SetDefault("rate_limit.admin.strategy", "user")

	v.SetDefault("routes.public_pages", []string{"/", "/products", "/cart"})
	v.SetDefault("routes.auth_pages", []string{"/login", "/register"})
	v.SetDefault("routes.protected_pages", []string{"/account", "/orders", "/checkout", "/subscriptions"})
	v.SetDefault("routes.admin_pages", []string{"/admin"})
	v.SetDefault("routes.public_api", []string{"/api/products", "/api/health"})
	v.SetDefault("routes.auth_api", []string{"/api/auth"})
	v.SetDefault("routes.protected_api", []string{"/api/orders", "/api/checkout", "/api/account", "/api/subscriptions"})
	v.SetDefault("routes.admin_api", []string{"/api/admin"})
	// Fail-open for unclassified routes preserves the observed behavior;
	// switch to "deny" to fail closed instead.
	v.SetDefault("routes.default_action", "allow")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "admission")
	v.SetDefault("tracing.jaeger_endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("tracing.sample_ratio", 1.0)
}
