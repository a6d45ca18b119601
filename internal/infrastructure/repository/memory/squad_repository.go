package memory

import (
	"context"
	"sync"

	"github.com/lineupwatch/lineup-tracker/internal/domain/squad"
)

// SquadRepository serves a fixed roster snapshot. Used in tests and as a
// stand-in when no CSV path is configured.
type SquadRepository struct {
	mu       sync.RWMutex
	snapshot squad.Squad
}

func NewSquadRepository(snapshot squad.Squad) *SquadRepository {
	return &SquadRepository{snapshot: snapshot}
}

func (r *SquadRepository) Load(_ context.Context) (squad.Squad, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	copied := r.snapshot
	copied.Players = append([]squad.Player(nil), r.snapshot.Players...)
	return copied, nil
}

// Replace swaps the snapshot served by subsequent loads.
func (r *SquadRepository) Replace(snapshot squad.Squad) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot = snapshot
}
