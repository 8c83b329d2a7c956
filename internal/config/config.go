// Package config loads application configuration from the environment, an
// optional .env file and an optional config.yaml in the working directory.
//
// Every key has a default, so AutomaticEnv can resolve it. Environment
// variables use the ENROLL_ prefix with dots replaced by underscores:
//
//	database.driver → ENROLL_DATABASE_DRIVER
//	session.secret  → ENROLL_SESSION_SECRET
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jellydator/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported values for database.driver.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Password PasswordConfig
	Log      LogConfig
	Seed     SeedConfig
}

type ServerConfig struct {
	Port        int
	TemplateDir string
	StaticDir   string
}

type DatabaseConfig struct {
	Driver  string
	URI     string        // mongo connection string
	Name    string        // mongo database name
	Path    string        // sqlite file path, ":memory:" for tests
	Timeout time.Duration // connect/ping timeout
}

type SessionConfig struct {
	Secret string
	TTL    time.Duration
	Secure bool
}

type PasswordConfig struct {
	Cost int // bcrypt work factor
}

type LogConfig struct {
	Level string
}

type SeedConfig struct {
	File string
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ENROLL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.templatedir", "web/templates")
	v.SetDefault("server.staticdir", "web/static")
	v.SetDefault("database.driver", DriverMongo)
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "enrollment")
	v.SetDefault("database.path", "data/enrollment.db")
	v.SetDefault("database.timeout", "10s")
	v.SetDefault("session.secret", "")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.secure", false)
	v.SetDefault("password.cost", 12)
	v.SetDefault("log.level", "info")
	v.SetDefault("seed.file", "data/courses.json")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshalling: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate rejects values the server cannot start with.
func (c Config) Validate() error {
	err := validation.Errors{
		"server": validation.ValidateStruct(&c.Server,
			validation.Field(&c.Server.Port, validation.Required, validation.Min(1), validation.Max(65535)),
			validation.Field(&c.Server.TemplateDir, validation.Required),
		),
		"database": validation.ValidateStruct(&c.Database,
			validation.Field(&c.Database.Driver, validation.Required, validation.In(DriverMongo, DriverSQLite)),
			validation.Field(&c.Database.URI, validation.When(c.Database.Driver == DriverMongo, validation.Required)),
			validation.Field(&c.Database.Name, validation.When(c.Database.Driver == DriverMongo, validation.Required)),
			validation.Field(&c.Database.Path, validation.When(c.Database.Driver == DriverSQLite, validation.Required)),
		),
		"session": validation.ValidateStruct(&c.Session,
			validation.Field(&c.Session.TTL, validation.Required),
		),
		"password": validation.ValidateStruct(&c.Password,
			validation.Field(&c.Password.Cost, validation.Min(4), validation.Max(31)),
		),
		"log": validation.ValidateStruct(&c.Log,
			validation.Field(&c.Log.Level, validation.In("debug", "info", "warn", "error")),
		),
	}.Filter()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// SlogLevel maps log.level onto a slog.Level. Validate has already rejected
// unknown names, so the default branch only covers an empty value.
func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
