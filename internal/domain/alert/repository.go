package alert

import (
	"context"
	"time"
)

const (
	DeliveryStatusDelivered = "delivered"
	DeliveryStatusFailed    = "failed"
	DeliveryStatusSkipped   = "skipped"
)

// DeliveryEvent records the outcome of one gate decision for audit and the
// status API. The dedup ledger itself lives in memory with the monitor; this
// history is observational only.
type DeliveryEvent struct {
	ID             string
	MatchID        string
	PlayerID       string
	PlayerName     string
	ObservedStatus string
	Classification string
	Urgency        string
	Status         string
	Attempts       int
	ErrorMessage   string
	OccurredAt     time.Time
}

// EventRepository persists delivery events.
type EventRepository interface {
	Record(ctx context.Context, event DeliveryEvent) error
	ListRecent(ctx context.Context, limit int) ([]DeliveryEvent, error)
}
