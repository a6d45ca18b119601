package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/lineupwatch/lineup-tracker/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	LogLevel       logging.Level

	HTTPAddr     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	SquadCSVPath string

	LookAhead       time.Duration
	RefreshInterval time.Duration

	PreMatchWindow      time.Duration
	CheckInterval       time.Duration
	FinalSprintWindow   time.Duration
	FinalSprintInterval time.Duration
	SafetyBound         time.Duration

	AlertMaxAttempts           int
	AlertBackoffInitial        time.Duration
	AlertSuppressConfirmations bool

	ProviderBaseURL              string
	ProviderTimeout              time.Duration
	ProviderMaxRetries           int
	ProviderTournamentID         int64
	ProviderFixturesTTL          time.Duration
	ProviderLineupsTTL           time.Duration
	ProviderMaxConcurrent        int
	ProviderCircuitEnabled       bool
	ProviderCircuitFailureCount  int
	ProviderCircuitOpenTimeout   time.Duration
	ProviderCircuitHalfOpenMaxRq int

	DiscordWebhookURL string
	DiscordTimeout    time.Duration

	TelegramBotToken string
	TelegramChatID   int64

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPTo       []string

	ExportDir      string
	ExportInterval time.Duration

	AlertHistoryEnabled bool
	DatabaseURL         string

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration

	PprofEnabled bool
	PprofAddr    string
}

func Load() (Config, error) {
	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("APP_SERVICE_NAME", "lineup-tracker"),
		ServiceVersion: getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:       parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		HTTPAddr:       getEnv("APP_HTTP_ADDR", ":8080"),
		SquadCSVPath:   strings.TrimSpace(getEnv("SQUAD_CSV_PATH", "")),
	}

	if cfg.SquadCSVPath == "" {
		return Config{}, fmt.Errorf("SQUAD_CSV_PATH is required")
	}

	if cfg.ReadTimeout, err = getEnvAsDuration("APP_READ_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = getEnvAsDuration("APP_WRITE_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}

	if cfg.LookAhead, err = getEnvAsDuration("SCHEDULE_LOOK_AHEAD", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.RefreshInterval, err = getEnvAsDuration("SCHEDULE_REFRESH_INTERVAL", 24*time.Hour); err != nil {
		return Config{}, err
	}

	if cfg.PreMatchWindow, err = getEnvAsDuration("MONITOR_PRE_MATCH_WINDOW", 60*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.CheckInterval, err = getEnvAsDuration("MONITOR_CHECK_INTERVAL", 15*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.FinalSprintWindow, err = getEnvAsDuration("MONITOR_FINAL_SPRINT_WINDOW", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.FinalSprintInterval, err = getEnvAsDuration("MONITOR_FINAL_SPRINT_INTERVAL", time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.SafetyBound, err = getEnvAsDuration("MONITOR_SAFETY_BOUND", 3*time.Hour); err != nil {
		return Config{}, err
	}
	if err := validateMonitorCadence(cfg); err != nil {
		return Config{}, err
	}

	if cfg.AlertMaxAttempts, err = getEnvAsInt("ALERT_MAX_ATTEMPTS", 3); err != nil {
		return Config{}, err
	}
	if cfg.AlertMaxAttempts < 1 {
		return Config{}, fmt.Errorf("ALERT_MAX_ATTEMPTS must be >= 1")
	}
	if cfg.AlertBackoffInitial, err = getEnvAsDuration("ALERT_BACKOFF_INITIAL", 2*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.AlertSuppressConfirmations, err = getEnvAsBool("ALERT_SUPPRESS_CONFIRMATIONS", true); err != nil {
		return Config{}, err
	}

	cfg.ProviderBaseURL = strings.TrimSpace(getEnv("PROVIDER_BASE_URL", ""))
	if cfg.ProviderTimeout, err = getEnvAsDuration("PROVIDER_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ProviderMaxRetries, err = getEnvAsInt("PROVIDER_MAX_RETRIES", 2); err != nil {
		return Config{}, err
	}
	if cfg.ProviderMaxRetries < 0 {
		return Config{}, fmt.Errorf("PROVIDER_MAX_RETRIES must be >= 0")
	}
	if cfg.ProviderTournamentID, err = getEnvAsInt64("PROVIDER_TOURNAMENT_ID", 0); err != nil {
		return Config{}, err
	}
	if cfg.ProviderFixturesTTL, err = getEnvAsDuration("PROVIDER_FIXTURES_TTL", 10*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.ProviderLineupsTTL, err = getEnvAsDuration("PROVIDER_LINEUPS_TTL", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ProviderMaxConcurrent, err = getEnvAsInt("PROVIDER_MAX_CONCURRENT", 4); err != nil {
		return Config{}, err
	}
	if cfg.ProviderMaxConcurrent < 1 {
		return Config{}, fmt.Errorf("PROVIDER_MAX_CONCURRENT must be >= 1")
	}
	if cfg.ProviderCircuitEnabled, err = getEnvAsBool("PROVIDER_CIRCUIT_ENABLED", true); err != nil {
		return Config{}, err
	}
	if cfg.ProviderCircuitFailureCount, err = getEnvAsInt("PROVIDER_CIRCUIT_FAILURE_COUNT", 5); err != nil {
		return Config{}, err
	}
	if cfg.ProviderCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("PROVIDER_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	if cfg.ProviderCircuitOpenTimeout, err = getEnvAsDuration("PROVIDER_CIRCUIT_OPEN_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ProviderCircuitHalfOpenMaxRq, err = getEnvAsInt("PROVIDER_CIRCUIT_HALF_OPEN_MAX_REQ", 2); err != nil {
		return Config{}, err
	}
	if cfg.ProviderCircuitHalfOpenMaxRq < 1 {
		return Config{}, fmt.Errorf("PROVIDER_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	cfg.DiscordWebhookURL = strings.TrimSpace(getEnv("DISCORD_WEBHOOK_URL", ""))
	if cfg.DiscordTimeout, err = getEnvAsDuration("DISCORD_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}

	cfg.TelegramBotToken = strings.TrimSpace(getEnv("TELEGRAM_BOT_TOKEN", ""))
	if cfg.TelegramChatID, err = getEnvAsInt64("TELEGRAM_CHAT_ID", 0); err != nil {
		return Config{}, err
	}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID == 0 {
		return Config{}, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}

	cfg.SMTPHost = strings.TrimSpace(getEnv("SMTP_HOST", ""))
	if cfg.SMTPPort, err = getEnvAsInt("SMTP_PORT", 587); err != nil {
		return Config{}, err
	}
	cfg.SMTPUsername = strings.TrimSpace(getEnv("SMTP_USERNAME", ""))
	cfg.SMTPPassword = getEnv("SMTP_PASSWORD", "")
	cfg.SMTPFrom = strings.TrimSpace(getEnv("SMTP_FROM", ""))
	cfg.SMTPTo = splitCSV(getEnv("SMTP_TO", ""))
	if cfg.SMTPHost != "" && len(cfg.SMTPTo) == 0 {
		return Config{}, fmt.Errorf("SMTP_TO is required when SMTP_HOST is set")
	}

	cfg.ExportDir = strings.TrimSpace(getEnv("EXPORT_DIR", ""))
	if cfg.ExportInterval, err = getEnvAsDuration("EXPORT_INTERVAL", time.Minute); err != nil {
		return Config{}, err
	}

	if cfg.AlertHistoryEnabled, err = getEnvAsBool("ALERT_HISTORY_ENABLED", false); err != nil {
		return Config{}, err
	}
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", ""))
	if cfg.AlertHistoryEnabled && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required when ALERT_HISTORY_ENABLED=true")
	}

	if cfg.UptraceEnabled, err = getEnvAsBool("UPTRACE_ENABLED", false); err != nil {
		return Config{}, err
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	if cfg.PyroscopeEnabled, err = getEnvAsBool("PYROSCOPE_ENABLED", false); err != nil {
		return Config{}, err
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))
	cfg.PyroscopeBasicAuthUser = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", ""))
	cfg.PyroscopeBasicAuthPassword = getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")
	if cfg.PyroscopeUploadRate, err = getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", 15*time.Second); err != nil {
		return Config{}, err
	}

	if cfg.PprofEnabled, err = getEnvAsBool("PPROF_ENABLED", false); err != nil {
		return Config{}, err
	}
	cfg.PprofAddr = strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	return cfg, nil
}

// validateMonitorCadence rejects window combinations that would leave the
// monitor either polling nonstop or never entering the final sprint.
func validateMonitorCadence(cfg Config) error {
	if cfg.FinalSprintWindow > cfg.PreMatchWindow {
		return fmt.Errorf("MONITOR_FINAL_SPRINT_WINDOW (%s) must not exceed MONITOR_PRE_MATCH_WINDOW (%s)",
			cfg.FinalSprintWindow, cfg.PreMatchWindow)
	}
	if cfg.FinalSprintInterval > cfg.CheckInterval {
		return fmt.Errorf("MONITOR_FINAL_SPRINT_INTERVAL (%s) must not exceed MONITOR_CHECK_INTERVAL (%s)",
			cfg.FinalSprintInterval, cfg.CheckInterval)
	}
	if cfg.SafetyBound < cfg.PreMatchWindow {
		return fmt.Errorf("MONITOR_SAFETY_BOUND (%s) must be at least MONITOR_PRE_MATCH_WINDOW (%s)",
			cfg.SafetyBound, cfg.PreMatchWindow)
	}
	return nil
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
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
	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func getEnvAsInt64(key string, fallback int64) (int64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	out, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	out, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	out, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
