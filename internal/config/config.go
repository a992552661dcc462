package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	Feed        FeedConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	SQLite      SQLiteConfig
	Bolt        BoltConfig
	Stores      StoreConfig
	Audit       AuditConfig
	JWT         JWTConfig
	Admin       AdminConfig
	Context     ContextConfig
	Logger      LoggerConfig
	Migrations  MigrationsConfig
	Monitor     MonitorConfig
}

type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxConn      int
}

// FeedConfig configures the websocket gateway serving the live activity feed.
type FeedConfig struct {
	Enabled        bool
	Host           string
	Port           string
	AllowedOrigins []string
	WriteTimeout   time.Duration
	PingInterval   time.Duration
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	SSLMode         string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type SQLiteConfig struct {
	Path string
}

type BoltConfig struct {
	Path string
}

// Backend names accepted by StoreConfig.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendBolt     = "bolt"
)

// StoreConfig selects the backend of each repository.
type StoreConfig struct {
	Audit    string
	Users    string
	Sessions string
	Entities string
	SeedDemo bool
}

type AuditConfig struct {
	FeedLimit      int
	FeedChannel    string
	ResyncInterval time.Duration
	StallAfter     time.Duration
	WriteTimeout   time.Duration
}

type JWTConfig struct {
	Secret     string
	Issuer     string
	SessionTTL time.Duration
}

type AdminConfig struct {
	Email    string
	Password string
	Name     string
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type MigrationsConfig struct {
	Enabled bool
	Path    string
}

type MonitorConfig struct {
	Interval time.Duration
}

// Load reads configuration from environment variables (optionally .env)
// and applies defaults that boot a self-contained in-memory service.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "erp-audit"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:         getString("SERVER_HOST", "0.0.0.0"),
			Port:         getString("SERVER_PORT", "8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxConn:      getInt("SERVER_MAX_CONN", 0),
		},
		Feed: FeedConfig{
			Enabled:        getBool("FEED_ENABLED", true),
			Host:           getString("FEED_HOST", "0.0.0.0"),
			Port:           getString("FEED_PORT", "8081"),
			AllowedOrigins: getList("FEED_ALLOWED_ORIGINS", []string{"*"}),
			WriteTimeout:   getDuration("FEED_WRITE_TIMEOUT", 10*time.Second),
			PingInterval:   getDuration("FEED_PING_INTERVAL", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			Host:            getString("DB_HOST", "localhost"),
			Port:            getString("DB_PORT", "5432"),
			Name:            getString("DB_NAME", "erp_db"),
			User:            getString("DB_USER", "erp_user"),
			Password:        os.Getenv("DB_PASSWORD"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
			MaxConnLifetime: getDuration("DB_CONN_LIFETIME", time.Hour),
			SSLMode:         getString("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getString("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		SQLite: SQLiteConfig{
			Path: getString("SQLITE_PATH", "./data/audit.db"),
		},
		Bolt: BoltConfig{
			Path: getString("BOLTDB_PATH", "./data/entities.db"),
		},
		Stores: StoreConfig{
			Audit:    strings.ToLower(getString("AUDIT_STORE", BackendMemory)),
			Users:    strings.ToLower(getString("USER_STORE", BackendMemory)),
			Sessions: strings.ToLower(getString("SESSION_STORE", BackendMemory)),
			Entities: strings.ToLower(getString("ENTITY_STORE", BackendMemory)),
			SeedDemo: getBool("SEED_DEMO", true),
		},
		Audit: AuditConfig{
			FeedLimit:      getInt("AUDIT_FEED_LIMIT", 100),
			FeedChannel:    getString("AUDIT_FEED_CHANNEL", "erp:audit:feed"),
			ResyncInterval: getDuration("AUDIT_RESYNC_INTERVAL", 30*time.Second),
			StallAfter:     getDuration("AUDIT_STALL_AFTER", 2*time.Minute),
			WriteTimeout:   getDuration("AUDIT_WRITE_TIMEOUT", 5*time.Second),
		},
		JWT: JWTConfig{
			Secret:     os.Getenv("JWT_SECRET"),
			Issuer:     getString("JWT_ISSUER", "erp-audit"),
			SessionTTL: getDuration("SESSION_TTL", 8*time.Hour),
		},
		Admin: AdminConfig{
			Email:    os.Getenv("ADMIN_EMAIL"),
			Password: os.Getenv("ADMIN_PASSWORD"),
			Name:     getString("ADMIN_NAME", "Administrador"),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 5*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
		Migrations: MigrationsConfig{
			Enabled: getBool("RUN_MIGRATIONS", true),
			Path:    getString("MIGRATIONS_PATH", "./assets/migrations"),
		},
		Monitor: MonitorConfig{
			Interval: getDuration("MONITOR_INTERVAL", 10*time.Second),
		},
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = buildPostgresURL(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown backends and unusable secrets.
func (c *Config) Validate() error {
	checks := []struct {
		name    string
		value   string
		allowed []string
	}{
		{"AUDIT_STORE", c.Stores.Audit, []string{BackendMemory, BackendPostgres, BackendSQLite}},
		{"USER_STORE", c.Stores.Users, []string{BackendMemory, BackendPostgres}},
		{"SESSION_STORE", c.Stores.Sessions, []string{BackendMemory, BackendRedis}},
		{"ENTITY_STORE", c.Stores.Entities, []string{BackendMemory, BackendBolt}},
	}
	for _, check := range checks {
		if !contains(check.allowed, check.value) {
			return fmt.Errorf("%s: unsupported backend %q (want one of %s)",
				check.name, check.value, strings.Join(check.allowed, ", "))
		}
	}
	if c.Environment == "production" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}
	return nil
}

// NeedsPostgres reports whether any repository is backed by PostgreSQL.
func (c *Config) NeedsPostgres() bool {
	return c.Stores.Audit == BackendPostgres || c.Stores.Users == BackendPostgres
}

// NeedsRedis reports whether sessions live in Redis. The feed notifier
// rides on the same client when it exists.
func (c *Config) NeedsRedis() bool {
	return c.Stores.Sessions == BackendRedis
}

func buildPostgresURL(cfg *Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}

// FeedAddress returns the listen address of the feed gateway.
func (c *Config) FeedAddress() string {
	return fmt.Sprintf("%s:%s", c.Feed.Host, c.Feed.Port)
}
