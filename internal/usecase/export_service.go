package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"

	"github.com/lineupwatch/lineup-tracker/internal/domain/alert"
	"github.com/lineupwatch/lineup-tracker/internal/domain/squad"
	"github.com/lineupwatch/lineup-tracker/internal/platform/logging"
)

type ExportConfig struct {
	// Dir is where the dashboard JSON files land.
	Dir string
	// Interval is the export cadence; zero disables the Run loop.
	Interval time.Duration
	// RecentEventLimit bounds the alert history included in the export.
	RecentEventLimit int
}

type exportedPlayer struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Team             string  `json:"team"`
	TeamAbbrev       string  `json:"team_abbrev"`
	Position         string  `json:"position"`
	Status           string  `json:"status"`
	ExpectedStarting bool    `json:"expected_starting"`
	FantasyPoints    float64 `json:"fantasy_points"`
	AveragePoints    float64 `json:"average_points"`
}

type exportedSquad struct {
	LoadedAt  time.Time        `json:"loaded_at"`
	SourceRef string           `json:"source_ref"`
	Players   []exportedPlayer `json:"players"`
}

type exportedEvent struct {
	MatchID        string    `json:"match_id"`
	PlayerName     string    `json:"player_name"`
	ObservedStatus string    `json:"observed_status"`
	Classification string    `json:"classification"`
	Urgency        string    `json:"urgency"`
	Status         string    `json:"status"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type exportMetadata struct {
	GeneratedAt     time.Time `json:"generated_at"`
	MonitorsRunning int       `json:"monitors_running"`
	SquadPlayers    int       `json:"squad_players"`
	RecentAlerts    int       `json:"recent_alerts"`
}

// ExportService periodically writes dashboard JSON snapshots: the roster,
// the monitor states, the recent alert history, and a metadata stamp. Each
// file is written to a temp file and renamed so dashboard readers never see
// a torn write.
type ExportService struct {
	schedule *ScheduleService
	squads   *SquadService
	events   alert.EventRepository
	cfg      ExportConfig
	logger   *logging.Logger
	now      func() time.Time
}

func NewExportService(schedule *ScheduleService, squads *SquadService, events alert.EventRepository, cfg ExportConfig, logger *logging.Logger) *ExportService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.RecentEventLimit <= 0 {
		cfg.RecentEventLimit = 100
	}

	return &ExportService{
		schedule: schedule,
		squads:   squads,
		events:   events,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Run exports on the configured interval until ctx is cancelled.
func (s *ExportService) Run(ctx context.Context) error {
	if s.cfg.Interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.Export(ctx); err != nil {
				s.logger.ErrorContext(ctx, "dashboard export failed", "error", err)
			}
		}
	}
}

// Export writes all dashboard files once.
func (s *ExportService) Export(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "ExportService.Export")
	defer span.End()

	if s.cfg.Dir == "" {
		return fmt.Errorf("%w: export directory is not configured", ErrInvalidInput)
	}
	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	snapshot, _ := s.squads.Current()
	summaries := s.schedule.ListMonitors()
	recent := s.recentEvents(ctx)

	if err := s.writeJSON("squad.json", buildExportedSquad(snapshot)); err != nil {
		return err
	}
	if err := s.writeJSON("lineup_status.json", summaries); err != nil {
		return err
	}
	if err := s.writeJSON("alerts.json", recent); err != nil {
		return err
	}
	if err := s.writeJSON("metadata.json", exportMetadata{
		GeneratedAt:     s.now().UTC(),
		MonitorsRunning: len(summaries),
		SquadPlayers:    len(snapshot.Players),
		RecentAlerts:    len(recent),
	}); err != nil {
		return err
	}

	s.logger.DebugContext(ctx, "dashboard exported", "dir", s.cfg.Dir, "monitors", len(summaries))
	return nil
}

func (s *ExportService) recentEvents(ctx context.Context) []exportedEvent {
	if s.events == nil {
		return []exportedEvent{}
	}

	events, err := s.events.ListRecent(ctx, s.cfg.RecentEventLimit)
	if err != nil {
		s.logger.WarnContext(ctx, "list recent alert events", "error", err)
		return []exportedEvent{}
	}

	out := make([]exportedEvent, 0, len(events))
	for _, e := range events {
		out = append(out, exportedEvent{
			MatchID:        e.MatchID,
			PlayerName:     e.PlayerName,
			ObservedStatus: e.ObservedStatus,
			Classification: e.Classification,
			Urgency:        e.Urgency,
			Status:         e.Status,
			OccurredAt:     e.OccurredAt,
		})
	}
	return out
}

func (s *ExportService) writeJSON(name string, payload any) error {
	data, err := sonic.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	target := filepath.Join(s.cfg.Dir, name)
	tmp, err := os.CreateTemp(s.cfg.Dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", name, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publish %s: %w", name, err)
	}

	return nil
}

func buildExportedSquad(snapshot squad.Squad) exportedSquad {
	players := make([]exportedPlayer, 0, len(snapshot.Players))
	for _, p := range snapshot.Players {
		players = append(players, exportedPlayer{
			ID:               p.ID,
			Name:             p.Name,
			Team:             p.TeamName,
			TeamAbbrev:       p.TeamAbbrev,
			Position:         p.Position,
			Status:           p.Status,
			ExpectedStarting: p.ExpectedStarting(),
			FantasyPoints:    p.FantasyPoints,
			AveragePoints:    p.AveragePoints,
		})
	}

	return exportedSquad{
		LoadedAt:  snapshot.LoadedAt,
		SourceRef: snapshot.SourceRef,
		Players:   players,
	}
}
