package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/lineupwatch/lineup-tracker/internal/domain/squad"
	"github.com/lineupwatch/lineup-tracker/internal/platform/logging"
)

// SquadService owns the current roster snapshot. Refresh replaces the whole
// snapshot atomically; readers never observe a partially loaded roster.
type SquadService struct {
	repo    squad.Repository
	logger  *logging.Logger
	current atomic.Pointer[squad.Squad]
	now     func() time.Time
}

func NewSquadService(repo squad.Repository, logger *logging.Logger) *SquadService {
	if logger == nil {
		logger = logging.Default()
	}

	return &SquadService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Refresh loads a fresh snapshot and swaps it in. On failure the previous
// snapshot stays current.
func (s *SquadService) Refresh(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "SquadService.Refresh")
	defer span.End()

	loaded, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load squad snapshot: %w", err)
	}
	if len(loaded.Players) == 0 {
		return fmt.Errorf("%w: squad snapshot is empty", ErrInvalidInput)
	}
	if loaded.LoadedAt.IsZero() {
		loaded.LoadedAt = s.now()
	}

	s.current.Store(&loaded)
	s.logger.InfoContext(ctx, "squad snapshot refreshed",
		"players", len(loaded.Players),
		"active", loaded.ActiveCount(),
		"teams", len(loaded.TeamNames()),
		"source", loaded.SourceRef,
	)

	return nil
}

// Current returns the latest snapshot. ok is false until the first
// successful Refresh.
func (s *SquadService) Current() (squad.Squad, bool) {
	snapshot := s.current.Load()
	if snapshot == nil {
		return squad.Squad{}, false
	}
	return *snapshot, true
}
