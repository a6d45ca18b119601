package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/lineupwatch/lineup-tracker/internal/domain/alert"
	"github.com/lineupwatch/lineup-tracker/internal/platform/logging"
)

// NotificationSink delivers one alert to its channels. An error means the
// delivery did not happen; deduplication is the gate's job, never the
// sink's.
type NotificationSink interface {
	Deliver(ctx context.Context, a alert.Alert) error
}

type GateConfig struct {
	MaxAttempts           int
	BackoffInitial        time.Duration
	SuppressConfirmations bool
}

func DefaultGateConfig() GateConfig {
	return GateConfig{
		MaxAttempts:    3,
		BackoffInitial: 2 * time.Second,
	}
}

func (cfg GateConfig) normalized() GateConfig {
	defaults := DefaultGateConfig()
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.BackoffInitial <= 0 {
		cfg.BackoffInitial = defaults.BackoffInitial
	}
	return cfg
}

// NotificationGate sits between the analyzer and the sink. One gate is owned
// by one monitor; its notified ledger lives exactly as long as the monitor
// does, so an alert for a given (match, player, observed status) is
// delivered at most once per match.
type NotificationGate struct {
	sink   NotificationSink
	events alert.EventRepository
	cfg    GateConfig
	logger *logging.Logger
	now    func() time.Time

	// mu guards notified: Publish runs on the monitor goroutine while
	// NotifiedCount is read from HTTP and export goroutines.
	mu       sync.Mutex
	notified map[alert.Key]struct{}
}

func NewNotificationGate(sink NotificationSink, events alert.EventRepository, cfg GateConfig, logger *logging.Logger) *NotificationGate {
	if logger == nil {
		logger = logging.Default()
	}

	return &NotificationGate{
		sink:     sink,
		events:   events,
		cfg:      cfg.normalized(),
		logger:   logger,
		now:      time.Now,
		notified: make(map[alert.Key]struct{}),
	}
}

// Publish pushes every discrepancy through the dedup ledger and the sink.
// complete is true only when nothing is left pending: every discrepancy was
// either delivered now, delivered earlier, or intentionally suppressed.
// Callers use complete to decide whether an unchanged lineup may skip
// re-analysis.
func (g *NotificationGate) Publish(ctx context.Context, discrepancies []alert.Discrepancy) (delivered int, complete bool) {
	ctx, span := startUsecaseSpan(ctx, "NotificationGate.Publish")
	defer span.End()

	complete = true
	for _, d := range discrepancies {
		a := alert.New(d, g.now())

		if g.alreadyNotified(a.Key) {
			continue
		}

		if g.cfg.SuppressConfirmations && a.Classification == alert.ClassAsExpected {
			g.recordEvent(ctx, a, alert.DeliveryStatusSkipped, 0, "")
			continue
		}

		attempts, err := g.deliver(ctx, a)
		if err != nil {
			complete = false
			g.logger.ErrorContext(ctx, "alert delivery exhausted",
				"key", a.Key.String(),
				"classification", a.Classification,
				"attempts", attempts,
				"error", err,
			)
			g.recordEvent(ctx, a, alert.DeliveryStatusFailed, attempts, err.Error())
			continue
		}

		g.markNotified(a.Key)
		delivered++
		g.logger.InfoContext(ctx, "alert delivered",
			"key", a.Key.String(),
			"classification", a.Classification,
			"urgency", a.Urgency,
			"attempts", attempts,
		)
		g.recordEvent(ctx, a, alert.DeliveryStatusDelivered, attempts, "")
	}

	return delivered, complete
}

// NotifiedCount reports the ledger size, for monitor summaries.
func (g *NotificationGate) NotifiedCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.notified)
}

func (g *NotificationGate) alreadyNotified(key alert.Key) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, seen := g.notified[key]
	return seen
}

func (g *NotificationGate) markNotified(key alert.Key) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.notified[key] = struct{}{}
}

// backoffPolicy doubles the pause between delivery attempts, starting from
// the configured initial interval, with jitter disabled so retry pacing is
// predictable.
func (g *NotificationGate) backoffPolicy() *backoff.ExponentialBackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = g.cfg.BackoffInitial
	policy.RandomizationFactor = 0
	policy.Multiplier = 2
	return policy
}

func (g *NotificationGate) deliver(ctx context.Context, a alert.Alert) (int, error) {
	policy := g.backoffPolicy()

	attempts := 0
	operation := func() error {
		attempts++
		return g.sink.Deliver(ctx, a)
	}

	err := backoff.Retry(operation, backoff.WithContext(
		backoff.WithMaxRetries(policy, uint64(g.cfg.MaxAttempts-1)), ctx))
	return attempts, err
}

func (g *NotificationGate) recordEvent(ctx context.Context, a alert.Alert, status string, attempts int, errMsg string) {
	if g.events == nil {
		return
	}

	event := alert.DeliveryEvent{
		ID:             uuid.NewString(),
		MatchID:        a.Key.MatchID,
		PlayerID:       a.Key.PlayerID,
		PlayerName:     a.Player.Name,
		ObservedStatus: a.Key.ObservedStatus,
		Classification: a.Classification,
		Urgency:        a.Urgency,
		Status:         status,
		Attempts:       attempts,
		ErrorMessage:   errMsg,
		OccurredAt:     g.now(),
	}
	if err := g.events.Record(ctx, event); err != nil {
		g.logger.WarnContext(ctx, "record delivery event", "key", a.Key.String(), "error", err)
	}
}
