package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("DB_BACKEND", "")
	t.Setenv("ETL_ROLLING_WINDOW", "")
	t.Setenv("ETL_START_DATE", "")
	t.Setenv("UPTRACE_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBBackend != BackendPostgres {
		t.Fatalf("unexpected backend: %s", cfg.DBBackend)
	}
	if cfg.ETLRollingWindow != 10 {
		t.Fatalf("expected rolling window 10, got %d", cfg.ETLRollingWindow)
	}
	if cfg.NHLAPIBaseURL != "https://api-web.nhle.com/v1" {
		t.Fatalf("unexpected base url: %s", cfg.NHLAPIBaseURL)
	}
	if cfg.LogConsole {
		t.Fatalf("expected JSON logs in prod by default")
	}
	want := time.Date(2024, 10, 4, 0, 0, 0, 0, time.UTC)
	if !cfg.ETLStartDate.Equal(want) {
		t.Fatalf("unexpected start date: %s", cfg.ETLStartDate)
	}
}

func TestLoad_PipelineOverrides(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("DB_BACKEND", "Memory")
	t.Setenv("ETL_ROLLING_WINDOW", "5")
	t.Setenv("ETL_START_DATE", "2025-01-15")
	t.Setenv("ETL_MAX_REJECT_RATIO", "0.2")
	t.Setenv("NHL_API_RETRY_BACKOFF", "250ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBBackend != BackendMemory {
		t.Fatalf("unexpected backend: %s", cfg.DBBackend)
	}
	if cfg.ETLRollingWindow != 5 {
		t.Fatalf("unexpected rolling window: %d", cfg.ETLRollingWindow)
	}
	if cfg.ETLStartDate.Format("2006-01-02") != "2025-01-15" {
		t.Fatalf("unexpected start date: %s", cfg.ETLStartDate)
	}
	if cfg.ETLMaxRejectRatio != 0.2 {
		t.Fatalf("unexpected reject ratio: %v", cfg.ETLMaxRejectRatio)
	}
	if cfg.NHLAPIRetryBackoff != 250*time.Millisecond {
		t.Fatalf("unexpected retry backoff: %s", cfg.NHLAPIRetryBackoff)
	}
}

func TestLoad_RejectsInvalidPipelineValues(t *testing.T) {
	cases := map[string]string{
		"ETL_ROLLING_WINDOW":   "0",
		"ETL_FETCH_WORKERS":    "-1",
		"ETL_MAX_REJECT_RATIO": "1.5",
		"ETL_START_DATE":       "15/01/2025",
		"DB_BACKEND":           "snowflake",
		"NHL_API_MAX_RETRIES":  "-2",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "foo=bar, uptrace-dsn=\"https://token@api.uptrace.dev\"")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev" {
		t.Fatalf("unexpected dsn: %q", cfg.UptraceDSN)
	}
}
