package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SQUAD_CSV_PATH", "/data/squad.csv")
}

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	t.Setenv("SQUAD_CSV_PATH", "/data/squad.csv")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_RequiresSquadCSVPath(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SQUAD_CSV_PATH", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when SQUAD_CSV_PATH is empty")
	}
}

func TestLoad_MonitorCadenceDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PreMatchWindow != 60*time.Minute {
		t.Fatalf("unexpected PreMatchWindow: %s", cfg.PreMatchWindow)
	}
	if cfg.CheckInterval != 15*time.Minute {
		t.Fatalf("unexpected CheckInterval: %s", cfg.CheckInterval)
	}
	if cfg.FinalSprintWindow != 5*time.Minute {
		t.Fatalf("unexpected FinalSprintWindow: %s", cfg.FinalSprintWindow)
	}
	if cfg.FinalSprintInterval != time.Minute {
		t.Fatalf("unexpected FinalSprintInterval: %s", cfg.FinalSprintInterval)
	}
	if cfg.SafetyBound != 3*time.Hour {
		t.Fatalf("unexpected SafetyBound: %s", cfg.SafetyBound)
	}
}

func TestLoad_RejectsSprintWindowWiderThanPreMatch(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MONITOR_PRE_MATCH_WINDOW", "10m")
	t.Setenv("MONITOR_FINAL_SPRINT_WINDOW", "20m")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when final sprint window exceeds pre-match window")
	}
}

func TestLoad_RejectsNonPositiveInterval(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MONITOR_CHECK_INTERVAL", "-5m")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative MONITOR_CHECK_INTERVAL")
	}
}

func TestLoad_TelegramRequiresChatID(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "token-123")
	t.Setenv("TELEGRAM_CHAT_ID", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when TELEGRAM_BOT_TOKEN set without TELEGRAM_CHAT_ID")
	}
}

func TestLoad_AlertHistoryRequiresDatabaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ALERT_HISTORY_ENABLED", "true")
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when ALERT_HISTORY_ENABLED=true without DATABASE_URL")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_ProviderOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PROVIDER_TIMEOUT", "20s")
	t.Setenv("PROVIDER_MAX_RETRIES", "4")
	t.Setenv("PROVIDER_TOURNAMENT_ID", "17")
	t.Setenv("PROVIDER_MAX_CONCURRENT", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ProviderTimeout != 20*time.Second {
		t.Fatalf("unexpected ProviderTimeout: %s", cfg.ProviderTimeout)
	}
	if cfg.ProviderMaxRetries != 4 {
		t.Fatalf("unexpected ProviderMaxRetries: %d", cfg.ProviderMaxRetries)
	}
	if cfg.ProviderTournamentID != 17 {
		t.Fatalf("unexpected ProviderTournamentID: %d", cfg.ProviderTournamentID)
	}
	if cfg.ProviderMaxConcurrent != 8 {
		t.Fatalf("unexpected ProviderMaxConcurrent: %d", cfg.ProviderMaxConcurrent)
	}
}

func TestLoad_LogLevelParsing(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LogLevel.String() != "warn" {
		t.Fatalf("unexpected LogLevel: %s", cfg.LogLevel.String())
	}
}
