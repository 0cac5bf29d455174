package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/nba-lineups/internal/platform/logging"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

// Storage drivers the engine can persist through.
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config is the runtime configuration for an embedded engine instance.
type Config struct {
	AppEnv         string `validate:"required,oneof=dev staging prod"`
	ServiceName    string `validate:"required"`
	ServiceVersion string
	LogLevel       logging.Level

	StorageDriver string `validate:"required,oneof=memory file sqlite postgres"`
	// StoragePath is the blob directory for the file driver or the database
	// file for the sqlite driver.
	StoragePath string
	DBURL       string

	ProviderBaseURL               string `validate:"omitempty,url"`
	ProviderTimeout               time.Duration
	ProviderMaxRetries            int `validate:"min=0,max=10"`
	ProviderCircuitEnabled        bool
	ProviderCircuitFailureCount   int
	ProviderCircuitOpenTimeout    time.Duration
	ProviderCircuitHalfOpenMaxReq int

	RosterCacheTTL   time.Duration
	ReconcileWorkers int `validate:"min=1,max=64"`

	UptraceEnabled         bool
	UptraceDSN             string
	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAppName       string
	PyroscopeAuthToken     string
	PyroscopeUploadRate    time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	providerTimeout, err := getEnvAsDuration("NBASTATS_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse NBASTATS_TIMEOUT: %w", err)
	}
	providerMaxRetries, err := getEnvAsInt("NBASTATS_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse NBASTATS_MAX_RETRIES: %w", err)
	}
	circuitEnabled, err := getEnvAsBool("NBASTATS_CIRCUIT_ENABLED", true)
	if err != nil {
		return Config{}, fmt.Errorf("parse NBASTATS_CIRCUIT_ENABLED: %w", err)
	}
	circuitFailures, err := getEnvAsInt("NBASTATS_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse NBASTATS_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	circuitOpenTimeout, err := getEnvAsDuration("NBASTATS_CIRCUIT_OPEN_TIMEOUT", 15*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse NBASTATS_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	circuitHalfOpen, err := getEnvAsInt("NBASTATS_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse NBASTATS_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}

	rosterCacheTTL, err := getEnvAsDuration("ROSTER_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("parse ROSTER_CACHE_TTL: %w", err)
	}
	reconcileWorkers, err := getEnvAsInt("RECONCILE_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse RECONCILE_WORKERS: %w", err)
	}

	uptraceEnabled, err := getEnvAsBool("UPTRACE_ENABLED", false)
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	pyroscopeEnabled, err := getEnvAsBool("PYROSCOPE_ENABLED", false)
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeUploadRate, err := getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", 15*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}

	serviceName := getEnv("SERVICE_NAME", "nba-lineups")

	cfg := Config{
		AppEnv:         appEnv,
		ServiceName:    serviceName,
		ServiceVersion: getEnv("SERVICE_VERSION", "dev"),
		LogLevel:       parseLogLevel(getEnv("LOG_LEVEL", "info")),

		StorageDriver: strings.ToLower(strings.TrimSpace(getEnv("STORAGE_DRIVER", StorageFile))),
		StoragePath:   strings.TrimSpace(getEnv("STORAGE_PATH", defaultStoragePath())),
		DBURL:         strings.TrimSpace(getEnv("DB_URL", "")),

		ProviderBaseURL:               strings.TrimSpace(getEnv("NBASTATS_BASE_URL", "http://localhost:5001")),
		ProviderTimeout:               providerTimeout,
		ProviderMaxRetries:            providerMaxRetries,
		ProviderCircuitEnabled:        circuitEnabled,
		ProviderCircuitFailureCount:   circuitFailures,
		ProviderCircuitOpenTimeout:    circuitOpenTimeout,
		ProviderCircuitHalfOpenMaxReq: circuitHalfOpen,

		RosterCacheTTL:   rosterCacheTTL,
		ReconcileWorkers: reconcileWorkers,

		UptraceEnabled:         uptraceEnabled,
		UptraceDSN:             strings.TrimSpace(getEnv("UPTRACE_DSN", "")),
		PyroscopeEnabled:       pyroscopeEnabled,
		PyroscopeServerAddress: strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", "")),
		PyroscopeAppName:       getEnv("PYROSCOPE_APP_NAME", serviceName),
		PyroscopeAuthToken:     getEnv("PYROSCOPE_AUTH_TOKEN", ""),
		PyroscopeUploadRate:    pyroscopeUploadRate,
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints plus the cross-field rules the struct
// tags cannot express.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	switch c.StorageDriver {
	case StorageFile, StorageSQLite:
		if c.StoragePath == "" {
			return fmt.Errorf("STORAGE_PATH is required for the %s storage driver", c.StorageDriver)
		}
	case StoragePostgres:
		if c.DBURL == "" {
			return fmt.Errorf("DB_URL is required for the postgres storage driver")
		}
	}

	if c.UptraceEnabled && c.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	if c.PyroscopeEnabled && c.PyroscopeServerAddress == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}

	return nil
}

func defaultStoragePath() string {
	return ".nba-lineups"
}

func parseAppEnv(v string) (string, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case EnvDev, EnvStaging, EnvProd:
		return v, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q, expected one of dev, staging, prod", v)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	return strconv.Atoi(value)
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseBool(value)
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}
