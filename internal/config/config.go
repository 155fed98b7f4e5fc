package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName              string
	AppEnv               string
	AppPort              string
	DatabaseURL          string
	RedisURL             string
	NATSURL              string
	JWTSecret            string
	JWTRefreshSecret     string
	AccessTokenTTL       time.Duration
	CurrencySymbol       string
	CurrencyCode         string
	AnnouncementCacheTTL time.Duration
	NotificationTimeout  time.Duration
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
	v.SetEnvPrefix("SCHOLARIS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Scholaris API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("currency.symbol", "GH₵")
	v.SetDefault("currency.code", "GHS")
	v.SetDefault("jwt.access_ttl", "15m")
	v.SetDefault("announcement.cache_ttl", "2m")
	v.SetDefault("notification.timeout", "30s")

	cacheTTL, err := time.ParseDuration(v.GetString("announcement.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid announcement cache ttl: %w", err)
	}

	accessTTL, err := time.ParseDuration(v.GetString("jwt.access_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid jwt access ttl: %w", err)
	}

	notificationTimeout, err := time.ParseDuration(v.GetString("notification.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid notification timeout: %w", err)
	}

	cfg := Config{
		AppName:              v.GetString("app.name"),
		AppEnv:               v.GetString("app.env"),
		AppPort:              v.GetString("app.port"),
		DatabaseURL:          v.GetString("database.url"),
		RedisURL:             v.GetString("redis.url"),
		NATSURL:              v.GetString("nats.url"),
		JWTSecret:            v.GetString("jwt.secret"),
		JWTRefreshSecret:     v.GetString("jwt.refresh_secret"),
		AccessTokenTTL:       accessTTL,
		CurrencySymbol:       v.GetString("currency.symbol"),
		CurrencyCode:         v.GetString("currency.code"),
		AnnouncementCacheTTL: cacheTTL,
		NotificationTimeout:  notificationTimeout,
	}

	if cfg.JWTSecret == "" || cfg.JWTRefreshSecret == "" {
		return Config{}, fmt.Errorf("jwt secrets must be provided")
	}

	return cfg, nil
}
