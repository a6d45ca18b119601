// Package app assembles the service from config: squad roster, fixture
// provider, schedule of monitors, notification channels, dashboard export,
// and the status API.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lineupwatch/lineup-tracker/external/sofascore"
	"github.com/lineupwatch/lineup-tracker/internal/config"
	"github.com/lineupwatch/lineup-tracker/internal/domain/alert"
	"github.com/lineupwatch/lineup-tracker/internal/infrastructure/notify"
	"github.com/lineupwatch/lineup-tracker/internal/infrastructure/repository/csvfile"
	"github.com/lineupwatch/lineup-tracker/internal/infrastructure/repository/memory"
	"github.com/lineupwatch/lineup-tracker/internal/infrastructure/repository/postgres"
	"github.com/lineupwatch/lineup-tracker/internal/interfaces/httpapi"
	"github.com/lineupwatch/lineup-tracker/internal/platform/limiter"
	"github.com/lineupwatch/lineup-tracker/internal/platform/logging"
	"github.com/lineupwatch/lineup-tracker/internal/platform/resilience"
	"github.com/lineupwatch/lineup-tracker/internal/usecase"
)

// App owns the long-running services and their shared resources.
type App struct {
	Schedule   *usecase.ScheduleService
	Export     *usecase.ExportService
	Notifier   *notify.Router
	HTTPServer *http.Server

	db     *sqlx.DB
	logger *logging.Logger
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	squadRepo := csvfile.NewSquadRepository(cfg.SquadCSVPath, logger)
	squads := usecase.NewSquadService(squadRepo, logger)

	var db *sqlx.DB
	var events alert.EventRepository
	if cfg.AlertHistoryEnabled {
		var err error
		db, err = postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect alert history store: %w", err)
		}
		events = postgres.NewAlertEventRepository(db)
		logger.Info("alert history store ready", "backend", "postgres")
	} else {
		events = memory.NewAlertEventRepository(0)
		logger.Info("alert history store ready", "backend", "memory")
	}

	sink, err := buildNotificationRouter(cfg, logger)
	if err != nil {
		return nil, err
	}

	provider := sofascore.NewClient(sofascore.ClientConfig{
		BaseURL:      cfg.ProviderBaseURL,
		Timeout:      cfg.ProviderTimeout,
		MaxRetries:   cfg.ProviderMaxRetries,
		TournamentID: cfg.ProviderTournamentID,
		FixturesTTL:  cfg.ProviderFixturesTTL,
		LineupsTTL:   cfg.ProviderLineupsTTL,
		Logger:       logger,
		Limiter:      limiter.New(cfg.ProviderMaxConcurrent),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ProviderCircuitEnabled,
			FailureThreshold: cfg.ProviderCircuitFailureCount,
			OpenTimeout:      cfg.ProviderCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ProviderCircuitHalfOpenMaxRq,
		},
	})

	schedule := usecase.NewScheduleService(
		provider,
		provider,
		squads,
		sink,
		events,
		usecase.ScheduleConfig{
			LookAhead:       cfg.LookAhead,
			RefreshInterval: cfg.RefreshInterval,
		},
		usecase.MonitorConfig{
			PreMatchWindow:      cfg.PreMatchWindow,
			CheckInterval:       cfg.CheckInterval,
			FinalSprintWindow:   cfg.FinalSprintWindow,
			FinalSprintInterval: cfg.FinalSprintInterval,
			SafetyBound:         cfg.SafetyBound,
		},
		usecase.GateConfig{
			MaxAttempts:           cfg.AlertMaxAttempts,
			BackoffInitial:        cfg.AlertBackoffInitial,
			SuppressConfirmations: cfg.AlertSuppressConfirmations,
		},
		logger,
	)

	var export *usecase.ExportService
	if cfg.ExportDir != "" {
		export = usecase.NewExportService(schedule, squads, events, usecase.ExportConfig{
			Dir:      cfg.ExportDir,
			Interval: cfg.ExportInterval,
		}, logger)
	}

	var exporter httpapi.Exporter
	if export != nil {
		exporter = export
	}
	handler := httpapi.NewHandler(schedule, squads, events, sink, exporter, logger)
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(handler, logger),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{
		Schedule:   schedule,
		Export:     export,
		Notifier:   sink,
		HTTPServer: server,
		db:         db,
		logger:     logger,
	}, nil
}

// Close releases shared resources after the services have stopped.
func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// buildNotificationRouter wires every configured transport. With nothing
// configured the console channel keeps alerts visible in the logs.
func buildNotificationRouter(cfg config.Config, logger *logging.Logger) (*notify.Router, error) {
	router := notify.NewRouter(logger)

	if cfg.DiscordWebhookURL != "" {
		discord, err := notify.NewDiscordChannel(notify.DiscordConfig{
			WebhookURL: cfg.DiscordWebhookURL,
			Timeout:    cfg.DiscordTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("configure discord channel: %w", err)
		}
		router.AddChat(discord)
	}

	if cfg.TelegramBotToken != "" {
		telegram, err := notify.NewTelegramChannel(notify.TelegramConfig{
			Token:  cfg.TelegramBotToken,
			ChatID: cfg.TelegramChatID,
		})
		if err != nil {
			return nil, fmt.Errorf("configure telegram channel: %w", err)
		}
		router.AddChat(telegram)
	}

	if cfg.SMTPHost != "" {
		email, err := notify.NewEmailChannel(notify.EmailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			To:       cfg.SMTPTo,
		})
		if err != nil {
			return nil, fmt.Errorf("configure email channel: %w", err)
		}
		router.AddEscalation(email)
	}

	if router.ChannelCount() == 0 {
		router.AddChat(notify.NewConsoleChannel(logger))
	}

	logger.Info("notification channels ready", "channels", router.ChannelCount())
	return router, nil
}

// ShutdownHTTP stops the API server with a bounded grace period.
func (a *App) ShutdownHTTP(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return a.HTTPServer.Shutdown(ctx)
}
