package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lineupwatch/lineup-tracker/internal/domain/alert"
	"github.com/lineupwatch/lineup-tracker/internal/domain/match"
	"github.com/lineupwatch/lineup-tracker/internal/domain/squad"
	"github.com/lineupwatch/lineup-tracker/internal/infrastructure/repository/memory"
)

type fakeSink struct {
	mu        sync.Mutex
	delivered []alert.Alert
	failUntil map[alert.Key]int
	attempts  map[alert.Key]int
}

func newFakeSink() *fakeSink {
	return &fakeSink{
		failUntil: make(map[alert.Key]int),
		attempts:  make(map[alert.Key]int),
	}
}

func (s *fakeSink) Deliver(_ context.Context, a alert.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts[a.Key]++
	if s.attempts[a.Key] <= s.failUntil[a.Key] {
		return errors.New("channel unavailable")
	}
	s.delivered = append(s.delivered, a)
	return nil
}

func (s *fakeSink) deliveredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.delivered)
}

func (s *fakeSink) attemptsFor(key alert.Key) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts[key]
}

func benchingDiscrepancy() alert.Discrepancy {
	return alert.Discrepancy{
		Player: squad.Player{ID: "arsenal-saka", Name: "Bukayo Saka", TeamName: "Arsenal", Status: squad.StatusActive},
		Match: match.Match{
			ID:        "m1",
			HomeTeam:  match.Team{Name: "Arsenal"},
			AwayTeam:  match.Team{Name: "Chelsea"},
			KickoffAt: time.Date(2026, time.August, 22, 15, 0, 0, 0, time.UTC),
			Status:    match.StatusNotStarted,
		},
		ExpectedStarting: true,
		ActuallyStarting: false,
	}
}

func confirmationDiscrepancy() alert.Discrepancy {
	d := benchingDiscrepancy()
	d.ActuallyStarting = true
	return d
}

func fastGateConfig() GateConfig {
	return GateConfig{MaxAttempts: 3, BackoffInitial: time.Millisecond}
}

func TestNotificationGate_DeliversOnceForSameKey(t *testing.T) {
	sink := newFakeSink()
	gate := NewNotificationGate(sink, nil, fastGateConfig(), nil)

	d := benchingDiscrepancy()
	delivered, complete := gate.Publish(t.Context(), []alert.Discrepancy{d})
	if delivered != 1 || !complete {
		t.Fatalf("expected 1 delivery and complete, got %d complete=%v", delivered, complete)
	}

	// The same discrepancy on a later poll must not notify again.
	delivered, complete = gate.Publish(t.Context(), []alert.Discrepancy{d})
	if delivered != 0 || !complete {
		t.Fatalf("expected duplicate to be suppressed, got %d complete=%v", delivered, complete)
	}
	if sink.deliveredCount() != 1 {
		t.Fatalf("expected exactly one sink delivery, got %d", sink.deliveredCount())
	}
}

func TestNotificationGate_StatusFlipIsNewKey(t *testing.T) {
	sink := newFakeSink()
	gate := NewNotificationGate(sink, nil, fastGateConfig(), nil)

	benched := benchingDiscrepancy()
	gate.Publish(t.Context(), []alert.Discrepancy{benched})

	started := benched
	started.ActuallyStarting = true
	delivered, _ := gate.Publish(t.Context(), []alert.Discrepancy{started})
	if delivered != 1 {
		t.Fatalf("expected flipped status to deliver, got %d", delivered)
	}
	if sink.deliveredCount() != 2 {
		t.Fatalf("expected two deliveries total, got %d", sink.deliveredCount())
	}
}

func TestNotificationGate_RetriesTransientFailure(t *testing.T) {
	sink := newFakeSink()
	gate := NewNotificationGate(sink, nil, fastGateConfig(), nil)

	d := benchingDiscrepancy()
	key := alert.Key{MatchID: "m1", PlayerID: "arsenal-saka", ObservedStatus: "benched"}
	sink.failUntil[key] = 2

	delivered, complete := gate.Publish(t.Context(), []alert.Discrepancy{d})
	if delivered != 1 || !complete {
		t.Fatalf("expected delivery after retries, got %d complete=%v", delivered, complete)
	}
	if got := sink.attemptsFor(key); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestNotificationGate_ExhaustionLeavesKeyUndelivered(t *testing.T) {
	sink := newFakeSink()
	events := memory.NewAlertEventRepository(10)
	gate := NewNotificationGate(sink, events, fastGateConfig(), nil)

	d := benchingDiscrepancy()
	key := alert.Key{MatchID: "m1", PlayerID: "arsenal-saka", ObservedStatus: "benched"}
	sink.failUntil[key] = 10

	delivered, complete := gate.Publish(t.Context(), []alert.Discrepancy{d})
	if delivered != 0 || complete {
		t.Fatalf("expected exhausted delivery to be incomplete, got %d complete=%v", delivered, complete)
	}
	if got := sink.attemptsFor(key); got != 3 {
		t.Fatalf("expected attempts bounded at 3, got %d", got)
	}

	// The next poll retries because the key never entered the ledger.
	sink.failUntil[key] = 0
	delivered, complete = gate.Publish(t.Context(), []alert.Discrepancy{d})
	if delivered != 1 || !complete {
		t.Fatalf("expected retry on next publish to deliver, got %d complete=%v", delivered, complete)
	}

	recorded, err := events.ListRecent(t.Context(), 10)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(recorded) != 2 {
		t.Fatalf("expected failed + delivered events, got %d", len(recorded))
	}
	if recorded[0].Status != alert.DeliveryStatusDelivered || recorded[1].Status != alert.DeliveryStatusFailed {
		t.Fatalf("unexpected event order: %s then %s", recorded[0].Status, recorded[1].Status)
	}
}

func TestNotificationGate_SuppressesConfirmations(t *testing.T) {
	sink := newFakeSink()
	cfg := fastGateConfig()
	cfg.SuppressConfirmations = true
	gate := NewNotificationGate(sink, nil, cfg, nil)

	delivered, complete := gate.Publish(t.Context(), []alert.Discrepancy{confirmationDiscrepancy()})
	if delivered != 0 || !complete {
		t.Fatalf("expected suppressed confirmation to count as complete, got %d complete=%v", delivered, complete)
	}
	if sink.deliveredCount() != 0 {
		t.Fatalf("expected no sink deliveries, got %d", sink.deliveredCount())
	}

	// Discrepancies are never suppressed.
	delivered, _ = gate.Publish(t.Context(), []alert.Discrepancy{benchingDiscrepancy()})
	if delivered != 1 {
		t.Fatalf("expected benching alert to deliver, got %d", delivered)
	}
}

func TestNotificationGate_NotifiedCountSafeDuringPublish(t *testing.T) {
	sink := newFakeSink()
	gate := NewNotificationGate(sink, nil, fastGateConfig(), nil)

	discrepancies := make([]alert.Discrepancy, 0, 50)
	for i := 0; i < 50; i++ {
		d := benchingDiscrepancy()
		d.Player.ID = fmt.Sprintf("arsenal-p%d", i)
		discrepancies = append(discrepancies, d)
	}

	// Summaries read the ledger from other goroutines while the monitor
	// goroutine is publishing.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			_ = gate.NotifiedCount()
		}
	}()

	delivered, complete := gate.Publish(t.Context(), discrepancies)
	<-done

	if !complete || delivered != len(discrepancies) {
		t.Fatalf("expected all %d delivered, got %d complete=%v", len(discrepancies), delivered, complete)
	}
	if got := gate.NotifiedCount(); got != len(discrepancies) {
		t.Fatalf("ledger size = %d, want %d", got, len(discrepancies))
	}
}

func TestNotificationGate_BackoffDoublesBetweenAttempts(t *testing.T) {
	cfg := GateConfig{MaxAttempts: 4, BackoffInitial: 2 * time.Second}
	gate := NewNotificationGate(newFakeSink(), nil, cfg, nil)

	policy := gate.backoffPolicy()
	if policy.InitialInterval != 2*time.Second {
		t.Fatalf("initial interval = %v, want 2s", policy.InitialInterval)
	}
	if policy.Multiplier != 2 {
		t.Fatalf("multiplier = %v, want 2", policy.Multiplier)
	}
	if policy.RandomizationFactor != 0 {
		t.Fatalf("randomization factor = %v, want 0", policy.RandomizationFactor)
	}

	// 2s, 4s, 8s.
	policy.Reset()
	for _, want := range []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second} {
		if got := policy.NextBackOff(); got != want {
			t.Fatalf("next backoff = %v, want %v", got, want)
		}
	}
}
