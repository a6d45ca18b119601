package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/lineupwatch/lineup-tracker/internal/domain/alert"
	"github.com/lineupwatch/lineup-tracker/internal/domain/squad"
	"github.com/lineupwatch/lineup-tracker/internal/platform/logging"
	"github.com/lineupwatch/lineup-tracker/internal/usecase"
)

const maxAlertListLimit = 500

// ScheduleStatus is the slice of the schedule service the API reads.
type ScheduleStatus interface {
	ListMonitors() []usecase.MonitorSummary
	ForceRefresh()
}

// SquadStatus exposes the current roster snapshot and its reload.
type SquadStatus interface {
	Current() (squad.Squad, bool)
	Refresh(ctx context.Context) error
}

// matchEventLister is implemented by event stores that can filter history
// by match server-side. Others fall back to in-memory filtering.
type matchEventLister interface {
	ListByMatch(ctx context.Context, matchID string, limit int) ([]alert.DeliveryEvent, error)
}

// Exporter triggers an immediate dashboard snapshot. Nil when exporting is
// not configured.
type Exporter interface {
	Export(ctx context.Context) error
}

type Handler struct {
	schedule  ScheduleStatus
	squads    SquadStatus
	events    alert.EventRepository
	sink      usecase.NotificationSink
	exporter  Exporter
	logger    *logging.Logger
	validator *validator.Validate
	now       func() time.Time
}

func NewHandler(
	schedule ScheduleStatus,
	squads SquadStatus,
	events alert.EventRepository,
	sink usecase.NotificationSink,
	exporter Exporter,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		schedule:  schedule,
		squads:    squads,
		events:    events,
		sink:      sink,
		exporter:  exporter,
		logger:    logger,
		validator: validator.New(),
		now:       time.Now,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListMonitors(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMonitors")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.schedule.ListMonitors())
}

func (h *Handler) GetMonitor(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMonitor")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	if matchID == "" {
		writeError(ctx, w, fmt.Errorf("%w: match id is required", usecase.ErrInvalidInput))
		return
	}

	for _, summary := range h.schedule.ListMonitors() {
		if summary.MatchID == matchID {
			writeSuccess(ctx, w, http.StatusOK, summary)
			return
		}
	}

	writeError(ctx, w, fmt.Errorf("%w: no monitor for match %s", usecase.ErrNotFound, matchID))
}

func (h *Handler) RefreshSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshSchedule")
	defer span.End()

	h.schedule.ForceRefresh()
	writeSuccess(ctx, w, http.StatusAccepted, map[string]string{"status": "refresh scheduled"})
}

func (h *Handler) TriggerExport(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TriggerExport")
	defer span.End()

	if h.exporter == nil {
		writeError(ctx, w, fmt.Errorf("%w: export is not configured", usecase.ErrDependencyUnavailable))
		return
	}
	if err := h.exporter.Export(ctx); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err))
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "export written"})
}

func (h *Handler) GetSquad(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSquad")
	defer span.End()

	snapshot, ok := h.squads.Current()
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: squad has not been loaded yet", usecase.ErrDataUnavailable))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, squadToDTO(snapshot))
}

func (h *Handler) ReloadSquad(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReloadSquad")
	defer span.End()

	if err := h.squads.Refresh(ctx); err != nil {
		h.logger.ErrorContext(ctx, "squad reload failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	snapshot, _ := h.squads.Current()
	writeSuccess(ctx, w, http.StatusOK, squadToDTO(snapshot))
}

func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAlerts")
	defer span.End()

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	matchID := strings.TrimSpace(r.URL.Query().Get("match_id"))

	events, err := h.listEvents(ctx, matchID, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list alert events failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]alertEventDTO, 0, len(events))
	for _, event := range events {
		items = append(items, alertEventToDTO(event))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

type testAlertRequest struct {
	Message string `json:"message" validate:"required,min=3"`
	Urgency string `json:"urgency" validate:"omitempty,oneof=urgent important info warning"`
}

// SendTestAlert pushes a synthetic alert through the real delivery channels
// so operators can verify webhook and bot wiring without waiting for a
// lineup surprise.
func (h *Handler) SendTestAlert(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SendTestAlert")
	defer span.End()

	var payload testAlertRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: decode request body: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	urgency := payload.Urgency
	if urgency == "" {
		urgency = alert.UrgencyInfo
	}

	testAlert := alert.Alert{
		Key: alert.Key{
			MatchID:        "test",
			PlayerID:       uuid.NewString(),
			ObservedStatus: "test",
		},
		Classification: "test_alert",
		Urgency:        urgency,
		Message:        payload.Message,
		CreatedAt:      h.now(),
	}

	if err := h.sink.Deliver(ctx, testAlert); err != nil {
		h.logger.ErrorContext(ctx, "test alert delivery failed", "error", err)
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{
		"status":  "delivered",
		"urgency": urgency,
	})
}

func (h *Handler) listEvents(ctx context.Context, matchID string, limit int) ([]alert.DeliveryEvent, error) {
	if matchID == "" {
		return h.events.ListRecent(ctx, limit)
	}

	if lister, ok := h.events.(matchEventLister); ok {
		return lister.ListByMatch(ctx, matchID, limit)
	}

	recent, err := h.events.ListRecent(ctx, 0)
	if err != nil {
		return nil, err
	}
	filtered := make([]alert.DeliveryEvent, 0, len(recent))
	for _, event := range recent {
		if event.MatchID != matchID {
			continue
		}
		filtered = append(filtered, event)
		if len(filtered) == limit {
			break
		}
	}
	return filtered, nil
}

func parseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 100, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxAlertListLimit {
		return 0, fmt.Errorf("%w: limit must be an integer between 1 and %d", usecase.ErrInvalidInput, maxAlertListLimit)
	}
	return limit, nil
}
