package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the admin gateway.
type Config struct {
	AppName         string
	AppEnv          string
	AppPort         string
	DatabaseURL     string
	RedisURL        string
	JWTSecret       string
	UpstreamBaseURL string
	UpstreamToken   string
	UpstreamTimeout time.Duration
	SessionTTL      time.Duration
	AveragePerMax   bool
	SaveRateLimit   int
	SaveRateWindow  time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SMA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "SMA Admin Gateway")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("upstream.timeout", "30s")
	v.SetDefault("session.ttl", "30m")
	v.SetDefault("average.per_max", false)
	v.SetDefault("save.rate_limit", 5)
	v.SetDefault("save.rate_window", "10s")

	timeout, err := time.ParseDuration(v.GetString("upstream.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid upstream timeout: %w", err)
	}

	ttl, err := time.ParseDuration(v.GetString("session.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid session ttl: %w", err)
	}

	window, err := time.ParseDuration(v.GetString("save.rate_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid save rate window: %w", err)
	}

	cfg := Config{
		AppName:         v.GetString("app.name"),
		AppEnv:          v.GetString("app.env"),
		AppPort:         v.GetString("app.port"),
		DatabaseURL:     v.GetString("database.url"),
		RedisURL:        v.GetString("redis.url"),
		JWTSecret:       v.GetString("jwt.secret"),
		UpstreamBaseURL: v.GetString("upstream.base_url"),
		UpstreamToken:   v.GetString("upstream.token"),
		UpstreamTimeout: timeout,
		SessionTTL:      ttl,
		AveragePerMax:   v.GetBool("average.per_max"),
		SaveRateLimit:   v.GetInt("save.rate_limit"),
		SaveRateWindow:  window,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.UpstreamBaseURL == "" {
		return Config{}, fmt.Errorf("upstream base url must be provided")
	}

	return cfg, nil
}
