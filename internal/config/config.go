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
	AppName                    string
	AppEnv                     string
	AppPort                    string
	DatabaseURL                string
	RedisURL                   string
	NATSURL                    string
	JWTSecret                  string
	StatsCacheTTL              time.Duration
	SettingsCacheTTL           time.Duration
	EventsChannelBase          string
	DoubtsPerMinute            int
	DefaultAttendanceThreshold float64
	DefaultCGPAThreshold       float64
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
	v.SetEnvPrefix("MANAN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	v.SetDefault("app.name", "Manan API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("stats.cache_ttl", "5m")
	v.SetDefault("settings.cache_ttl", "1m")
	v.SetDefault("events.channel_base", "manan")
	v.SetDefault("ratelimit.doubts_per_minute", 10)
	v.SetDefault("risk.default_attendance_threshold", 75.0)
	v.SetDefault("risk.default_cgpa_threshold", 5.0)

	statsTTL, err := parseDuration(v.GetString("stats.cache_ttl"), 5*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid stats cache ttl: %w", err)
	}

	settingsTTL, err := parseDuration(v.GetString("settings.cache_ttl"), time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid settings cache ttl: %w", err)
	}

	cfg := Config{
		AppName:                    v.GetString("app.name"),
		AppEnv:                     v.GetString("app.env"),
		AppPort:                    v.GetString("app.port"),
		DatabaseURL:                v.GetString("database.url"),
		RedisURL:                   v.GetString("redis.url"),
		NATSURL:                    v.GetString("nats.url"),
		JWTSecret:                  v.GetString("jwt.secret"),
		StatsCacheTTL:              statsTTL,
		SettingsCacheTTL:           settingsTTL,
		EventsChannelBase:          strings.TrimSpace(v.GetString("events.channel_base")),
		DoubtsPerMinute:            v.GetInt("ratelimit.doubts_per_minute"),
		DefaultAttendanceThreshold: v.GetFloat64("risk.default_attendance_threshold"),
		DefaultCGPAThreshold:       v.GetFloat64("risk.default_cgpa_threshold"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.DoubtsPerMinute <= 0 {
		cfg.DoubtsPerMinute = 10
	}

	if cfg.DefaultAttendanceThreshold < 0 || cfg.DefaultAttendanceThreshold > 100 {
		return Config{}, fmt.Errorf("default attendance threshold must be within 0-100")
	}

	if cfg.DefaultCGPAThreshold < 0 || cfg.DefaultCGPAThreshold > 10 {
		return Config{}, fmt.Errorf("default cgpa threshold must be within 0-10")
	}

	return cfg, nil
}

func parseDuration(raw string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	return time.ParseDuration(raw)
}
