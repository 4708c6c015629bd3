package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var ErrMissingRequiredValue = errors.New("missing required value")
var ErrInvalidValue = errors.New("invalid value")

type environment string

const (
	production  environment = "production"
	staging     environment = "staging"
	development environment = "development"
)

const (
	defaultPort = "8080"

	// Limits of a Riot development key
	defaultRiotRequestsPerSecond     = 20
	defaultRiotRequestsPerTwoMinutes = 100
)

type Config struct {
	port                      string
	riotAPIKey                string
	sentryDSN                 string
	dbConnectionString        string
	dataDragonVersion         string
	riotRequestsPerSecond     int
	riotRequestsPerTwoMinutes int
	env                       environment
}

func (c *Config) Port() string {
	return c.port
}

func (c *Config) RiotAPIKey() string {
	return c.riotAPIKey
}

func (c *Config) SentryDSN() string {
	return c.sentryDSN
}

// DBConnectionString is empty in development when not set, meaning the local database
func (c *Config) DBConnectionString() string {
	return c.dbConnectionString
}

// DataDragonVersion is empty when the latest version should be used
func (c *Config) DataDragonVersion() string {
	return c.dataDragonVersion
}

func (c *Config) RiotRequestsPerSecond() int {
	return c.riotRequestsPerSecond
}

func (c *Config) RiotRequestsPerTwoMinutes() int {
	return c.riotRequestsPerTwoMinutes
}

func (c *Config) Environment() string {
	return string(c.env)
}

func (c *Config) IsProduction() bool {
	return c.env == production
}

func (c *Config) IsStaging() bool {
	return c.env == staging
}

func (c *Config) IsDevelopment() bool {
	return c.env == development
}

// Return a string representation suitable for logging etc
func (c *Config) NonSensitiveString() string {
	return fmt.Sprintf(
		"Config{env: %s, port: %s, dataDragonVersion: '%s', riotRequestsPerSecond: %d, riotRequestsPerTwoMinutes: %d, ...}",
		string(c.env), c.port, c.dataDragonVersion, c.riotRequestsPerSecond, c.riotRequestsPerTwoMinutes,
	)
}

// LoadDotEnv sets variables from the given file that are not already set. A missing file is ignored.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func positiveIntFromEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%w: %s (%s)", ErrInvalidValue, key, raw)
	}
	return value, nil
}

func ConfigFromEnv() (Config, error) {
	missingKey := func(key string) (Config, error) {
		return Config{}, fmt.Errorf("%w: %s", ErrMissingRequiredValue, key)
	}

	var env environment
	rawEnv, ok := os.LookupEnv("RIFTLIGHT_ENVIRONMENT")
	if !ok {
		return missingKey("RIFTLIGHT_ENVIRONMENT")
	}
	switch rawEnv {
	case "production":
		env = production
	case "staging":
		env = staging
	case "development":
		env = development
	default:
		return Config{}, fmt.Errorf("%w: RIFTLIGHT_ENVIRONMENT (%s)", ErrInvalidValue, rawEnv)
	}
	if string(env) == "" {
		panic("logic error: env is empty")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}
	riotAPIKey := os.Getenv("RIOT_API_KEY")
	sentryDSN := os.Getenv("SENTRY_DSN")
	dbConnectionString := os.Getenv("DB_CONNECTION_STRING")
	dataDragonVersion := os.Getenv("DATA_DRAGON_VERSION")

	riotRequestsPerSecond, err := positiveIntFromEnv("RIOT_REQUESTS_PER_SECOND", defaultRiotRequestsPerSecond)
	if err != nil {
		return Config{}, err
	}
	riotRequestsPerTwoMinutes, err := positiveIntFromEnv("RIOT_REQUESTS_PER_TWO_MINUTES", defaultRiotRequestsPerTwoMinutes)
	if err != nil {
		return Config{}, err
	}

	if env == production || env == staging {
		if riotAPIKey == "" {
			return missingKey("RIOT_API_KEY")
		}
		if sentryDSN == "" {
			return missingKey("SENTRY_DSN")
		}
		if dbConnectionString == "" {
			return missingKey("DB_CONNECTION_STRING")
		}
	}

	return Config{
		port:                      port,
		riotAPIKey:                riotAPIKey,
		sentryDSN:                 sentryDSN,
		dbConnectionString:        dbConnectionString,
		dataDragonVersion:         dataDragonVersion,
		riotRequestsPerSecond:     riotRequestsPerSecond,
		riotRequestsPerTwoMinutes: riotRequestsPerTwoMinutes,
		env:                       env,
	}, nil
}
