package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/lineupwatch/lineup-tracker/internal/domain/alert"
	"github.com/lineupwatch/lineup-tracker/internal/domain/lineup"
	"github.com/lineupwatch/lineup-tracker/internal/domain/match"
	"github.com/lineupwatch/lineup-tracker/internal/domain/squad"
	"github.com/lineupwatch/lineup-tracker/internal/platform/logging"
)

type ScheduleConfig struct {
	// LookAhead bounds how far into the future monitors are created.
	LookAhead time.Duration
	// RefreshInterval is the fixture re-discovery cadence.
	RefreshInterval time.Duration
}

func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{
		LookAhead:       24 * time.Hour,
		RefreshInterval: 24 * time.Hour,
	}
}

func (cfg ScheduleConfig) normalized() ScheduleConfig {
	defaults := DefaultScheduleConfig()
	if cfg.LookAhead <= 0 {
		cfg.LookAhead = defaults.LookAhead
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = defaults.RefreshInterval
	}
	return cfg
}

type monitorHandle struct {
	monitor *Monitor
	cancel  context.CancelFunc
}

// fixtureInvalidator is implemented by fixture sources that cache fixture
// windows locally.
type fixtureInvalidator interface {
	InvalidateFixtures(ctx context.Context)
}

// ScheduleService discovers fixtures involving squad teams and runs one
// Monitor goroutine per upcoming match. It creates and reaps monitors but
// never notifies; alerting belongs to the monitors' gates.
type ScheduleService struct {
	fixtures   match.FixtureSource
	lineups    lineup.Source
	squads     *SquadService
	sink       NotificationSink
	events     alert.EventRepository
	cfg        ScheduleConfig
	monitorCfg MonitorConfig
	gateCfg    GateConfig
	logger     *logging.Logger
	now        func() time.Time

	mu       sync.Mutex
	monitors map[string]*monitorHandle
	wg       conc.WaitGroup

	forceRefresh chan struct{}
}

func NewScheduleService(
	fixtures match.FixtureSource,
	lineups lineup.Source,
	squads *SquadService,
	sink NotificationSink,
	events alert.EventRepository,
	cfg ScheduleConfig,
	monitorCfg MonitorConfig,
	gateCfg GateConfig,
	logger *logging.Logger,
) *ScheduleService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ScheduleService{
		fixtures:     fixtures,
		lineups:      lineups,
		squads:       squads,
		sink:         sink,
		events:       events,
		cfg:          cfg.normalized(),
		monitorCfg:   monitorCfg.normalized(),
		gateCfg:      gateCfg.normalized(),
		logger:       logger,
		now:          time.Now,
		monitors:     make(map[string]*monitorHandle),
		forceRefresh: make(chan struct{}, 1),
	}
}

// Run refreshes on the configured cadence and on demand until ctx is
// cancelled, then stops every monitor and waits for their goroutines.
func (s *ScheduleService) Run(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		s.logger.ErrorContext(ctx, "initial fixture refresh failed", "error", err)
	}

	ticker := time.NewTicker(s.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return ctx.Err()
		case <-ticker.C:
		case <-s.forceRefresh:
			// A manual refresh must see fresh fixtures, not the provider's
			// cached window.
			if inv, ok := s.fixtures.(fixtureInvalidator); ok {
				inv.InvalidateFixtures(ctx)
			}
		}

		if err := s.Refresh(ctx); err != nil {
			// Existing monitors keep running; discovery retries next tick.
			s.logger.ErrorContext(ctx, "fixture refresh failed", "error", err)
		}
	}
}

// ForceRefresh requests an immediate refresh from the Run loop. It never
// blocks; a refresh already pending absorbs the request.
func (s *ScheduleService) ForceRefresh() {
	select {
	case s.forceRefresh <- struct{}{}:
	default:
	}
}

// Refresh reloads the squad snapshot, fetches fixtures inside the look-ahead
// window, starts monitors for newly discovered squad-relevant matches,
// refreshes the match status of existing monitors, and reaps completed ones.
func (s *ScheduleService) Refresh(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "ScheduleService.Refresh")
	defer span.End()

	if err := s.squads.Refresh(ctx); err != nil {
		// A stale roster is still usable; only fail when none was ever loaded.
		if _, ok := s.squads.Current(); !ok {
			return fmt.Errorf("no squad snapshot available: %w", err)
		}
		s.logger.WarnContext(ctx, "squad refresh failed, keeping previous snapshot", "error", err)
	}
	snapshot, _ := s.squads.Current()
	squadTeams := snapshot.TeamNames()

	now := s.now()
	fixtures, err := s.fixtures.Fixtures(ctx, now, s.cfg.LookAhead)
	if err != nil {
		s.reap()
		return fmt.Errorf("fetch fixtures: %w", err)
	}

	created := 0
	updated := 0
	for _, m := range fixtures {
		if !matchesSquad(m, squadTeams) {
			continue
		}

		s.mu.Lock()
		handle, exists := s.monitors[m.ID]
		s.mu.Unlock()

		if exists {
			handle.monitor.UpdateMatch(m)
			updated++
			continue
		}

		if m.KickoffAt.After(now.Add(s.cfg.LookAhead)) {
			continue
		}

		s.startMonitor(ctx, m)
		created++
	}

	reaped := s.reap()
	s.logger.InfoContext(ctx, "schedule refreshed",
		"fixtures", len(fixtures),
		"monitors_created", created,
		"monitors_updated", updated,
		"monitors_reaped", reaped,
		"monitors_running", s.MonitorCount(),
	)

	return nil
}

// ListMonitors returns summaries sorted by kickoff.
func (s *ScheduleService) ListMonitors() []MonitorSummary {
	s.mu.Lock()
	summaries := make([]MonitorSummary, 0, len(s.monitors))
	for _, handle := range s.monitors {
		summaries = append(summaries, handle.monitor.Summary())
	}
	s.mu.Unlock()

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].KickoffAt.Equal(summaries[j].KickoffAt) {
			return summaries[i].MatchID < summaries[j].MatchID
		}
		return summaries[i].KickoffAt.Before(summaries[j].KickoffAt)
	})
	return summaries
}

func (s *ScheduleService) MonitorCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.monitors)
}

func (s *ScheduleService) startMonitor(ctx context.Context, m match.Match) {
	gate := NewNotificationGate(s.sink, s.events, s.gateCfg, s.logger)
	monitor := NewMonitor(m, s.lineups, s.squads, gate, s.monitorCfg, s.logger)

	monitorCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	s.mu.Lock()
	s.monitors[m.ID] = &monitorHandle{monitor: monitor, cancel: cancel}
	s.mu.Unlock()

	s.wg.Go(func() {
		defer cancel()
		monitor.Run(monitorCtx)
	})

	s.logger.InfoContext(ctx, "monitor started",
		"match_id", m.ID,
		"home", m.HomeTeam.Name,
		"away", m.AwayTeam.Name,
		"kickoff_at", m.KickoffAt,
	)
}

// reap drops monitors whose match reached a terminal state.
func (s *ScheduleService) reap() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	reaped := 0
	for id, handle := range s.monitors {
		if handle.monitor.Phase() != PhaseCompleted {
			continue
		}
		handle.cancel()
		delete(s.monitors, id)
		reaped++
	}
	return reaped
}

func (s *ScheduleService) shutdown() {
	s.mu.Lock()
	for id, handle := range s.monitors {
		handle.cancel()
		delete(s.monitors, id)
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func matchesSquad(m match.Match, squadTeams map[string]struct{}) bool {
	if _, ok := squadTeams[squad.CanonicalTeamName(m.HomeTeam.Name)]; ok {
		return true
	}
	_, ok := squadTeams[squad.CanonicalTeamName(m.AwayTeam.Name)]
	return ok
}
