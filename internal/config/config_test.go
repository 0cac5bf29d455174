package config

import (
	"testing"
	"time"

	"github.com/riskibarqy/nba-lineups/internal/platform/logging"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AppEnv != EnvDev {
		t.Fatalf("expected dev env, got %s", cfg.AppEnv)
	}
	if cfg.ServiceName != "nba-lineups" {
		t.Fatalf("unexpected service name %q", cfg.ServiceName)
	}
	if cfg.StorageDriver != StorageFile {
		t.Fatalf("expected file storage by default, got %s", cfg.StorageDriver)
	}
	if cfg.StoragePath != ".nba-lineups" {
		t.Fatalf("unexpected storage path %q", cfg.StoragePath)
	}
	if cfg.ProviderBaseURL != "http://localhost:5001" {
		t.Fatalf("unexpected provider base url %q", cfg.ProviderBaseURL)
	}
	if cfg.ProviderTimeout != 10*time.Second {
		t.Fatalf("unexpected provider timeout %s", cfg.ProviderTimeout)
	}
	if cfg.RosterCacheTTL != 5*time.Minute {
		t.Fatalf("unexpected roster cache ttl %s", cfg.RosterCacheTTL)
	}
	if cfg.ReconcileWorkers != 4 {
		t.Fatalf("unexpected reconcile workers %d", cfg.ReconcileWorkers)
	}
	if !cfg.ProviderCircuitEnabled {
		t.Fatalf("expected circuit breaker enabled by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("NBASTATS_BASE_URL", "http://stats.internal:8080")
	t.Setenv("NBASTATS_MAX_RETRIES", "5")
	t.Setenv("ROSTER_CACHE_TTL", "30s")
	t.Setenv("RECONCILE_WORKERS", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AppEnv != EnvProd {
		t.Fatalf("expected prod env, got %s", cfg.AppEnv)
	}
	if cfg.LogLevel != logging.LevelDebug {
		t.Fatalf("unexpected log level %v", cfg.LogLevel)
	}
	if cfg.StorageDriver != StorageMemory {
		t.Fatalf("unexpected storage driver %s", cfg.StorageDriver)
	}
	if cfg.ProviderBaseURL != "http://stats.internal:8080" {
		t.Fatalf("unexpected provider base url %q", cfg.ProviderBaseURL)
	}
	if cfg.ProviderMaxRetries != 5 {
		t.Fatalf("unexpected max retries %d", cfg.ProviderMaxRetries)
	}
	if cfg.RosterCacheTTL != 30*time.Second {
		t.Fatalf("unexpected roster cache ttl %s", cfg.RosterCacheTTL)
	}
	if cfg.ReconcileWorkers != 8 {
		t.Fatalf("unexpected reconcile workers %d", cfg.ReconcileWorkers)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	if _, err := Load(); err == nil {
		t.Fatalf("expected invalid APP_ENV rejected")
	}

	t.Setenv("APP_ENV", "dev")
	t.Setenv("NBASTATS_TIMEOUT", "not-a-duration")
	if _, err := Load(); err == nil {
		t.Fatalf("expected invalid duration rejected")
	}
}

func TestValidate_CrossFieldRules(t *testing.T) {
	base := Config{
		AppEnv:           EnvDev,
		ServiceName:      "nba-lineups",
		StorageDriver:    StorageMemory,
		ReconcileWorkers: 4,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected valid base config, got %v", err)
	}

	cfg := base
	cfg.StorageDriver = StorageSQLite
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected sqlite without path rejected")
	}

	cfg = base
	cfg.StorageDriver = StoragePostgres
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected postgres without DB_URL rejected")
	}

	cfg = base
	cfg.UptraceEnabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected uptrace without DSN rejected")
	}

	cfg = base
	cfg.PyroscopeEnabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected pyroscope without server address rejected")
	}
}
