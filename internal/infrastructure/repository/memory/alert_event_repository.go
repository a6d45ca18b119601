package memory

import (
	"context"
	"sync"

	"github.com/lineupwatch/lineup-tracker/internal/domain/alert"
)

// AlertEventRepository keeps delivery history in memory. It is the default
// when no database is configured; history survives only as long as the
// process.
type AlertEventRepository struct {
	mu     sync.RWMutex
	events []alert.DeliveryEvent
	max    int
}

func NewAlertEventRepository(maxEvents int) *AlertEventRepository {
	if maxEvents <= 0 {
		maxEvents = 1000
	}
	return &AlertEventRepository{max: maxEvents}
}

func (r *AlertEventRepository) Record(_ context.Context, event alert.DeliveryEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
	if len(r.events) > r.max {
		r.events = r.events[len(r.events)-r.max:]
	}
	return nil
}

// ListRecent returns up to limit events, newest first.
func (r *AlertEventRepository) ListRecent(_ context.Context, limit int) ([]alert.DeliveryEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.events) {
		limit = len(r.events)
	}

	out := make([]alert.DeliveryEvent, 0, limit)
	for i := len(r.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.events[i])
	}
	return out, nil
}
