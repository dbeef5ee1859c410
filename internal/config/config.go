// Package config provides environment-driven configuration for the
// roster engine: process/service settings plus the RosterConfig section
// that exposes the solver's external tuning knobs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/paiban/roster/pkg/roster/constraint/builtin"
)

// Config is the application's full configuration.
type Config struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	API      APIConfig      `yaml:"api"`
	Roster   RosterConfig   `yaml:"roster"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// AppConfig carries process-wide basics.
type AppConfig struct {
	Name     string `yaml:"name"`
	Env      string `yaml:"env"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// DatabaseConfig is the Postgres connection configuration for
// internal/database's job-audit table.
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DSN returns the lib/pq connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedisConfig backs internal/jobqueue. The ratio cache is a local JSON
// file and does not use Redis.
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// Addr returns the redis.Options-compatible address.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// APIConfig covers the HTTP surface's cross-cutting concerns.
type APIConfig struct {
	RateLimit int           `yaml:"rate_limit"`
	Timeout   time.Duration `yaml:"timeout"`
	CORS      CORSConfig    `yaml:"cors"`
}

// CORSConfig controls cross-origin access to the API.
type CORSConfig struct {
	Enabled bool     `yaml:"enabled"`
	Origins []string `yaml:"origins"`
}

// MonthlyHourLimit is one configured monthly cap for a scheme and a
// month length (28-31 days). The limits are loaded but not applied:
// RosterConfig.BuildOptions ignores them and the C17/C19 constraints
// always use their built-in caps.
type MonthlyHourLimit struct {
	Scheme       string  `yaml:"scheme"`
	DaysInMonth  int     `yaml:"days_in_month"`
	CapHours     float64 `yaml:"cap_hours"`
}

// CapacityTiers are the configured decision-variable ceilings per server
// tier (spec.md §5). They are loaded only; no code estimates a job's
// size or rejects a job against them.
type CapacityTiers struct {
	Small  int `yaml:"small"`
	Medium int `yaml:"medium"`
	Large  int `yaml:"large"`
}

// RosterConfig is the solve engine's external configuration surface
// (spec.md §6): which constraints run and at what weight, the monthly
// hour-cap table, solver run-time budget, the fixed rotation offset
// fallback, capacity sizing tiers, and the async job result TTL.
type RosterConfig struct {
	ConstraintList          []builtin.ConstraintConfig `yaml:"constraint_list"`
	MonthlyHourLimits       []MonthlyHourLimit         `yaml:"monthly_hour_limits"`
	SolverScoreConfig       map[string]int             `yaml:"solver_score_config"`
	SolverRunTimeMaxSeconds int                         `yaml:"solver_run_time_max_seconds"`
	FixedRotationOffset     string                      `yaml:"fixed_rotation_offset"`
	CapacityTiers           CapacityTiers               `yaml:"capacity_tiers"`
	JobResultTTLSeconds     int                         `yaml:"job_result_ttl_seconds"`
}

// BuildOptions returns builtin.DefaultBuildOptions(). The configured
// MonthlyHourLimits are not translated onto it, so the constraint
// package's built-in caps apply.
func (rc *RosterConfig) BuildOptions() builtin.BuildOptions {
	return builtin.DefaultBuildOptions()
}

// MetricsConfig holds the metrics settings read from configuration; the
// server registers no /metrics route.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads configuration from the environment, falling back to the
// spec's defaults for anything unset.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:     getEnv("APP_NAME", "paiban-roster"),
			Env:      getEnv("APP_ENV", "development"),
			Port:     getEnvInt("APP_PORT", 7012),
			LogLevel: getEnv("APP_LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "paiban"),
			User:            getEnv("DB_USER", "paiban"),
			Password:        getEnv("DB_PASSWORD", "paiban123"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			PoolSize: getEnvInt("REDIS_POOL_SIZE", 10),
		},
		API: APIConfig{
			RateLimit: getEnvInt("API_RATE_LIMIT", 100),
			Timeout:   getEnvDuration("API_TIMEOUT", 30*time.Second),
			CORS: CORSConfig{
				Enabled: getEnvBool("API_CORS_ENABLED", true),
				Origins: []string{"*"},
			},
		},
		Roster: RosterConfig{
			SolverRunTimeMaxSeconds: getEnvInt("ROSTER_SOLVER_MAX_SECONDS", 30),
			FixedRotationOffset:     getEnv("ROSTER_FIXED_ROTATION_OFFSET", ""),
			CapacityTiers: CapacityTiers{
				Small:  getEnvInt("ROSTER_CAPACITY_SMALL", 50_000),
				Medium: getEnvInt("ROSTER_CAPACITY_MEDIUM", 200_000),
				Large:  getEnvInt("ROSTER_CAPACITY_LARGE", 1_000_000),
			},
			JobResultTTLSeconds: getEnvInt("ROSTER_JOB_RESULT_TTL_SECONDS", 3600),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
	}

	return cfg, nil
}

// IsDevelopment reports whether the app is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction reports whether the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// IsTest reports whether the app is running in test mode.
func (c *Config) IsTest() bool {
	return c.App.Env == "test"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
