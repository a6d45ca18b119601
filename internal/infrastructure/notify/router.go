// Package notify fans alerts out to the configured delivery channels.
//
// The router implements the gate's sink contract: a delivery succeeds only
// when every selected channel accepted the alert, so a partial failure is
// surfaced and retried by the gate rather than silently dropped.
package notify

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/lineupwatch/lineup-tracker/internal/domain/alert"
	"github.com/lineupwatch/lineup-tracker/internal/platform/logging"
)

// Channel is a single alert transport (Discord webhook, Telegram chat,
// email, console).
type Channel interface {
	Name() string
	Send(ctx context.Context, a alert.Alert) error
}

// Router selects channels by urgency and delivers to them concurrently.
// Chat channels receive every alert; escalation channels only receive
// urgent and important ones, so confirmations never page anyone.
type Router struct {
	chat       []Channel
	escalation []Channel
	logger     *logging.Logger

	// mu guards delivered, the per-alert record of channels that already
	// accepted the alert. A gate retry after a partial failure must only
	// reach the channels that failed.
	mu        sync.Mutex
	delivered map[string]map[string]struct{}
}

func NewRouter(logger *logging.Logger) *Router {
	if logger == nil {
		logger = logging.Default()
	}
	return &Router{
		logger:    logger.With("component", "notify_router"),
		delivered: make(map[string]map[string]struct{}),
	}
}

// AddChat registers a channel that receives alerts of every urgency.
func (r *Router) AddChat(ch Channel) *Router {
	if ch != nil {
		r.chat = append(r.chat, ch)
	}
	return r
}

// AddEscalation registers a channel that only receives urgent and
// important alerts.
func (r *Router) AddEscalation(ch Channel) *Router {
	if ch != nil {
		r.escalation = append(r.escalation, ch)
	}
	return r
}

// ChannelCount reports how many channels are registered in total.
func (r *Router) ChannelCount() int {
	return len(r.chat) + len(r.escalation)
}

// Deliver sends the alert to every selected channel and returns the joined
// error when any of them failed. Channels that already accepted this alert
// on an earlier attempt are skipped, so a gate retry after a partial failure
// never resends to the channels that succeeded.
func (r *Router) Deliver(ctx context.Context, a alert.Alert) error {
	targets := r.pendingTargets(a)
	if len(targets) == 0 {
		if r.ChannelCount() == 0 {
			return stderrors.New("no notification channels configured")
		}
		return nil
	}

	pool, err := ants.NewPool(len(targets))
	if err != nil {
		return fmt.Errorf("create delivery pool: %w", err)
	}
	defer pool.Release()

	errs := make([]error, len(targets))

	var workers sync.WaitGroup
	for i, ch := range targets {
		i, ch := i, ch
		workers.Add(1)
		if submitErr := pool.Submit(func() {
			defer workers.Done()

			if sendErr := ch.Send(ctx, a); sendErr != nil {
				errs[i] = fmt.Errorf("%s: %w", ch.Name(), sendErr)
				r.logger.WarnContext(ctx, "alert delivery failed on channel",
					"channel", ch.Name(),
					"alert_key", a.Key.String(),
					"error", sendErr)
				return
			}
			r.logger.DebugContext(ctx, "alert delivered on channel",
				"channel", ch.Name(),
				"alert_key", a.Key.String(),
				"urgency", a.Urgency)
		}); submitErr != nil {
			workers.Done()
			errs[i] = fmt.Errorf("%s: submit delivery: %w", ch.Name(), submitErr)
		}
	}
	workers.Wait()

	joined := stderrors.Join(errs...)
	r.recordOutcome(a.Key.String(), targets, errs, joined == nil)
	return joined
}

// pendingTargets returns the urgency-selected channels that have not yet
// accepted this alert.
func (r *Router) pendingTargets(a alert.Alert) []Channel {
	targets := r.targetsFor(a)

	r.mu.Lock()
	defer r.mu.Unlock()
	done := r.delivered[a.Key.String()]
	if len(done) == 0 {
		return targets
	}

	pending := targets[:0]
	for _, ch := range targets {
		if _, ok := done[ch.Name()]; ok {
			continue
		}
		pending = append(pending, ch)
	}
	return pending
}

// recordOutcome remembers which channels accepted the alert. Once every
// channel has accepted, the gate marks the alert notified and never resends
// it, so the record is dropped.
func (r *Router) recordOutcome(key string, targets []Channel, errs []error, complete bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if complete {
		delete(r.delivered, key)
		return
	}
	done := r.delivered[key]
	if done == nil {
		done = make(map[string]struct{})
		r.delivered[key] = done
	}
	for i, ch := range targets {
		if errs[i] == nil {
			done[ch.Name()] = struct{}{}
		}
	}
}

// Announce sends an informational service notice to the chat channels,
// used for startup and shutdown messages.
func (r *Router) Announce(ctx context.Context, message string, now time.Time) error {
	return r.Deliver(ctx, alert.Alert{
		Key: alert.Key{
			MatchID:        "service",
			PlayerID:       uuid.NewString(),
			ObservedStatus: "notice",
		},
		Classification: "service_notice",
		Urgency:        alert.UrgencyInfo,
		Message:        message,
		CreatedAt:      now,
	})
}

func (r *Router) targetsFor(a alert.Alert) []Channel {
	targets := make([]Channel, 0, len(r.chat)+len(r.escalation))
	targets = append(targets, r.chat...)
	switch a.Urgency {
	case alert.UrgencyUrgent, alert.UrgencyImportant:
		targets = append(targets, r.escalation...)
	}
	return targets
}
