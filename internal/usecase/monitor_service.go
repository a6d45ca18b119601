package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/lineupwatch/lineup-tracker/internal/domain/analysis"
	"github.com/lineupwatch/lineup-tracker/internal/domain/lineup"
	"github.com/lineupwatch/lineup-tracker/internal/domain/match"
	"github.com/lineupwatch/lineup-tracker/internal/platform/logging"
)

type Phase string

const (
	PhaseScheduled   Phase = "SCHEDULED"
	PhasePreMatch    Phase = "PRE_MATCH"
	PhaseFinalSprint Phase = "FINAL_SPRINT"
	PhaseActive      Phase = "ACTIVE"
	PhaseCompleted   Phase = "COMPLETED"
)

// phaseRank orders phases so transitions only ever move forward. ACTIVE
// outranks FINAL_SPRINT: once the match is live the countdown windows no
// longer apply.
func phaseRank(p Phase) int {
	switch p {
	case PhaseScheduled:
		return 0
	case PhasePreMatch:
		return 1
	case PhaseFinalSprint:
		return 2
	case PhaseActive:
		return 3
	case PhaseCompleted:
		return 4
	default:
		return 0
	}
}

type MonitorConfig struct {
	// PreMatchWindow is how long before kickoff polling starts.
	PreMatchWindow time.Duration
	// CheckInterval is the PRE_MATCH and ACTIVE poll cadence.
	CheckInterval time.Duration
	// FinalSprintWindow is how long before kickoff the fast cadence starts.
	FinalSprintWindow time.Duration
	// FinalSprintInterval is the FINAL_SPRINT poll cadence.
	FinalSprintInterval time.Duration
	// SafetyBound forces COMPLETED when kickoff passed this long ago and the
	// provider never reported the match finished.
	SafetyBound time.Duration
}

func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		PreMatchWindow:      60 * time.Minute,
		CheckInterval:       15 * time.Minute,
		FinalSprintWindow:   5 * time.Minute,
		FinalSprintInterval: time.Minute,
		SafetyBound:         3 * time.Hour,
	}
}

func (cfg MonitorConfig) normalized() MonitorConfig {
	defaults := DefaultMonitorConfig()
	if cfg.PreMatchWindow <= 0 {
		cfg.PreMatchWindow = defaults.PreMatchWindow
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = defaults.CheckInterval
	}
	if cfg.FinalSprintWindow <= 0 {
		cfg.FinalSprintWindow = defaults.FinalSprintWindow
	}
	if cfg.FinalSprintInterval <= 0 {
		cfg.FinalSprintInterval = defaults.FinalSprintInterval
	}
	if cfg.SafetyBound <= 0 {
		cfg.SafetyBound = defaults.SafetyBound
	}
	return cfg
}

// MonitorSummary is the read-only view exposed by the status API and the
// dashboard export.
type MonitorSummary struct {
	MatchID        string     `json:"match_id"`
	HomeTeam       string     `json:"home_team"`
	AwayTeam       string     `json:"away_team"`
	KickoffAt      time.Time  `json:"kickoff_at"`
	MatchStatus    string     `json:"match_status"`
	Phase          Phase      `json:"phase"`
	NextPollAt     *time.Time `json:"next_poll_at,omitempty"`
	LastPolledAt   *time.Time `json:"last_polled_at,omitempty"`
	LineupSeen     bool       `json:"lineup_seen"`
	AlertsSent     int        `json:"alerts_sent"`
	FullyDelivered bool       `json:"fully_delivered"`
}

// Monitor tracks one match from discovery to completion. All state is owned
// by the monitor's own goroutine; the mutex exists only for the schedule
// manager's status refreshes and the read-only summaries.
type Monitor struct {
	lineups lineup.Source
	squads  *SquadService
	gate    *NotificationGate
	cfg     MonitorConfig
	logger  *logging.Logger
	now     func() time.Time

	mu            sync.Mutex
	match         match.Match
	phase         Phase
	nextPollAt    time.Time
	lastPolledAt  time.Time
	lastSignature string
	lastDelivered bool
}

func NewMonitor(m match.Match, lineups lineup.Source, squads *SquadService, gate *NotificationGate, cfg MonitorConfig, logger *logging.Logger) *Monitor {
	if logger == nil {
		logger = logging.Default()
	}

	return &Monitor{
		lineups: lineups,
		squads:  squads,
		gate:    gate,
		cfg:     cfg.normalized(),
		logger:  logger.With("match_id", m.ID, "home", m.HomeTeam.Name, "away", m.AwayTeam.Name),
		now:     time.Now,
		match:   m,
		phase:   PhaseScheduled,
	}
}

// Run drives the monitor until the match completes or ctx is cancelled. An
// in-flight poll finishes before Run returns; no poll starts after cancel.
func (mon *Monitor) Run(ctx context.Context) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		now := mon.now()
		if mon.Tick(ctx, now) == PhaseCompleted {
			return
		}

		timer.Reset(mon.sleepUntilNextTick(now))
	}
}

// Tick advances the phase for the given instant and polls when a poll is
// due. It returns the phase after the transition.
func (mon *Monitor) Tick(ctx context.Context, now time.Time) Phase {
	mon.mu.Lock()
	current := mon.match
	prev := mon.phase

	next := mon.resolvePhase(current, now)
	if phaseRank(next) < phaseRank(prev) {
		next = prev
	}
	mon.phase = next

	if next == PhaseCompleted {
		mon.nextPollAt = time.Time{}
		mon.mu.Unlock()
		if prev != next {
			mon.logger.InfoContext(ctx, "monitoring completed", "from", string(prev), "status", current.Status)
		}
		return next
	}

	if next == PhaseScheduled {
		mon.nextPollAt = current.KickoffAt.Add(-mon.cfg.PreMatchWindow)
		mon.mu.Unlock()
		return next
	}

	due := mon.nextPollAt.IsZero() || !now.Before(mon.nextPollAt)
	if due {
		mon.nextPollAt = now.Add(mon.pollInterval(next))
		if next == PhasePreMatch {
			// Never schedule past the sprint boundary, or a late pre-match
			// poll would skip the tight-interval window entirely.
			sprintStart := current.KickoffAt.Add(-mon.cfg.FinalSprintWindow)
			if mon.nextPollAt.After(sprintStart) {
				mon.nextPollAt = sprintStart
			}
		}
	}
	mon.mu.Unlock()

	if prev != next {
		mon.logger.InfoContext(ctx, "phase transition", "from", string(prev), "to", string(next))
	}
	if due {
		mon.poll(ctx, current, now)
	}

	return next
}

// UpdateMatch refreshes the fixture fields the schedule manager re-fetches:
// status, elapsed time, and a possibly rescheduled kickoff.
func (mon *Monitor) UpdateMatch(updated match.Match) {
	mon.mu.Lock()
	defer mon.mu.Unlock()

	if updated.ID != mon.match.ID {
		return
	}
	mon.match.Status = match.NormalizeStatus(updated.Status)
	mon.match.ElapsedMinutes = updated.ElapsedMinutes
	if !updated.KickoffAt.IsZero() {
		mon.match.KickoffAt = updated.KickoffAt
	}

	// A terminal status ends monitoring right away; no further polls.
	if match.IsTerminalStatus(mon.match.Status) {
		mon.phase = PhaseCompleted
		mon.nextPollAt = time.Time{}
	}
}

func (mon *Monitor) Phase() Phase {
	mon.mu.Lock()
	defer mon.mu.Unlock()
	return mon.phase
}

func (mon *Monitor) MatchID() string {
	mon.mu.Lock()
	defer mon.mu.Unlock()
	return mon.match.ID
}

func (mon *Monitor) Summary() MonitorSummary {
	mon.mu.Lock()
	defer mon.mu.Unlock()

	summary := MonitorSummary{
		MatchID:        mon.match.ID,
		HomeTeam:       mon.match.HomeTeam.Name,
		AwayTeam:       mon.match.AwayTeam.Name,
		KickoffAt:      mon.match.KickoffAt,
		MatchStatus:    mon.match.Status,
		Phase:          mon.phase,
		LineupSeen:     mon.lastSignature != "",
		AlertsSent:     mon.gate.NotifiedCount(),
		FullyDelivered: mon.lastDelivered,
	}
	if !mon.nextPollAt.IsZero() {
		next := mon.nextPollAt
		summary.NextPollAt = &next
	}
	if !mon.lastPolledAt.IsZero() {
		last := mon.lastPolledAt
		summary.LastPolledAt = &last
	}
	return summary
}

func (mon *Monitor) resolvePhase(current match.Match, now time.Time) Phase {
	if match.IsTerminalStatus(current.Status) {
		return PhaseCompleted
	}
	if match.IsLiveStatus(current.Status) {
		return PhaseActive
	}

	delta := current.KickoffAt.Sub(now)
	switch {
	case delta <= -mon.cfg.SafetyBound:
		// Kickoff long past and the provider never flipped the status.
		return PhaseCompleted
	case delta <= mon.cfg.FinalSprintWindow:
		return PhaseFinalSprint
	case delta <= mon.cfg.PreMatchWindow:
		return PhasePreMatch
	default:
		return PhaseScheduled
	}
}

func (mon *Monitor) pollInterval(phase Phase) time.Duration {
	if phase == PhaseFinalSprint {
		return mon.cfg.FinalSprintInterval
	}
	return mon.cfg.CheckInterval
}

// sleepUntilNextTick caps the sleep so a status refresh applied by the
// schedule manager is noticed within one check interval even while the
// monitor is far from its next poll.
func (mon *Monitor) sleepUntilNextTick(now time.Time) time.Duration {
	mon.mu.Lock()
	next := mon.nextPollAt
	mon.mu.Unlock()

	wait := next.Sub(now)
	if wait < time.Second {
		wait = time.Second
	}
	if wait > mon.cfg.CheckInterval {
		wait = mon.cfg.CheckInterval
	}
	return wait
}

func (mon *Monitor) poll(ctx context.Context, current match.Match, now time.Time) {
	ctx, span := startUsecaseSpan(ctx, "Monitor.Poll")
	defer span.End()

	lineups, found, err := mon.lineups.Lineups(ctx, current.ID)
	if err != nil {
		// Transient by contract; the next tick retries.
		mon.logger.WarnContext(ctx, "lineup poll failed", "error", err)
		return
	}
	if !found {
		mon.logger.DebugContext(ctx, "lineups not announced yet")
		return
	}

	signature := lineups.Signature()

	mon.mu.Lock()
	unchanged := signature == mon.lastSignature && mon.lastDelivered
	mon.lastPolledAt = now
	mon.mu.Unlock()
	if unchanged {
		mon.logger.DebugContext(ctx, "lineup unchanged, skipping analysis", "signature", signature)
		return
	}

	snapshot, ok := mon.squads.Current()
	if !ok {
		mon.logger.WarnContext(ctx, "no squad snapshot loaded, skipping analysis")
		return
	}

	discrepancies, unmatched := analysis.Analyze(current, lineups, snapshot)
	for _, u := range unmatched {
		mon.logger.WarnContext(ctx, "squad player unmatched in announced lineup",
			"player", u.Player.Name,
			"team", u.Player.TeamName,
			"reason", u.Reason,
		)
	}

	_, complete := mon.gate.Publish(ctx, discrepancies)

	mon.mu.Lock()
	mon.lastSignature = signature
	mon.lastDelivered = complete
	mon.mu.Unlock()

	counts := analysis.Summarize(discrepancies)
	mon.logger.InfoContext(ctx, "lineup analyzed",
		"signature", signature,
		"benchings", counts.Benchings,
		"unexpected_starts", counts.UnexpectedStarts,
		"confirmations", counts.Confirmations,
		"fully_delivered", complete,
	)
}
