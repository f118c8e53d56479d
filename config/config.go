package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Clinic    ClinicConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Seed      SeedConfig
}

type AppConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	TimeZone string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// ClinicConfig describes when appointments may be booked.
// OpenMinute is inclusive, CloseMinute exclusive, both minutes since midnight
// in Location.
type ClinicConfig struct {
	Location               *time.Location
	OpenMinute             int
	CloseMinute            int
	DefaultDurationMinutes int
}

type CacheConfig struct {
	AppointmentTypesTTL time.Duration
}

type RateLimitConfig struct {
	LoginRPS   float64
	LoginBurst int
}

type SeedConfig struct {
	Enabled bool
	File    string
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("APP_PORT", "3001")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("CLINIC_TIMEZONE", "UTC")
	v.SetDefault("CLINIC_OPEN_TIME", "09:00")
	v.SetDefault("CLINIC_CLOSE_TIME", "15:00")
	v.SetDefault("CLINIC_DEFAULT_DURATION_MINUTES", 30)
	v.SetDefault("RATE_LIMIT_LOGIN_RPS", 1.0)
	v.SetDefault("RATE_LIMIT_LOGIN_BURST", 5)
	v.SetDefault("SEED_ENABLED", true)
	v.SetDefault("SEED_FILE", "db.json")

	// A missing .env is fine, the environment alone may carry everything.
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	accessExpiry, err := time.ParseDuration(v.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(v.GetString("JWT_REFRESH_EXPIRY"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	typesTTL, err := time.ParseDuration(v.GetString("CACHE_APPOINTMENT_TYPES_TTL"))
	if err != nil {
		typesTTL = 10 * time.Minute
	}

	clinic, err := loadClinicConfig(v)
	if err != nil {
		return nil, err
	}

	config := &Config{
		App: AppConfig{
			Port:           v.GetString("APP_PORT"),
			Env:            v.GetString("APP_ENV"),
			LogLevel:       v.GetString("LOG_LEVEL"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			TimeZone: v.GetString("DB_TIMEZONE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		Clinic: *clinic,
		Cache: CacheConfig{
			AppointmentTypesTTL: typesTTL,
		},
		RateLimit: RateLimitConfig{
			LoginRPS:   v.GetFloat64("RATE_LIMIT_LOGIN_RPS"),
			LoginBurst: v.GetInt("RATE_LIMIT_LOGIN_BURST"),
		},
		Seed: SeedConfig{
			Enabled: v.GetBool("SEED_ENABLED"),
			File:    v.GetString("SEED_FILE"),
		},
	}

	if config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return config, nil
}

func loadClinicConfig(v *viper.Viper) (*ClinicConfig, error) {
	loc, err := time.LoadLocation(v.GetString("CLINIC_TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLINIC_TIMEZONE: %w", err)
	}

	open, err := parseClock(v.GetString("CLINIC_OPEN_TIME"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLINIC_OPEN_TIME: %w", err)
	}

	closing, err := parseClock(v.GetString("CLINIC_CLOSE_TIME"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLINIC_CLOSE_TIME: %w", err)
	}

	if closing <= open {
		return nil, errors.New("CLINIC_CLOSE_TIME must be after CLINIC_OPEN_TIME")
	}

	duration := v.GetInt("CLINIC_DEFAULT_DURATION_MINUTES")
	if duration <= 0 {
		return nil, errors.New("CLINIC_DEFAULT_DURATION_MINUTES must be positive")
	}

	return &ClinicConfig{
		Location:               loc,
		OpenMinute:             open,
		CloseMinute:            closing,
		DefaultDurationMinutes: duration,
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// parseClock turns "HH:MM" into minutes since midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// DefaultClinicConfig returns weekday 09:00-15:00 UTC with 30 minute slots.
func DefaultClinicConfig() ClinicConfig {
	return ClinicConfig{
		Location:               time.UTC,
		OpenMinute:             9 * 60,
		CloseMinute:            15 * 60,
		DefaultDurationMinutes: 30,
	}
}
