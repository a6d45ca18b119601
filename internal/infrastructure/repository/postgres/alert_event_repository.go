package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/lineupwatch/lineup-tracker/internal/domain/alert"
	qb "github.com/lineupwatch/lineup-tracker/internal/platform/querybuilder"
)

const defaultListLimit = 100

// AlertEventRepository stores gate delivery outcomes in Postgres.
type AlertEventRepository struct {
	db *sqlx.DB
}

func NewAlertEventRepository(db *sqlx.DB) *AlertEventRepository {
	return &AlertEventRepository{db: db}
}

func (r *AlertEventRepository) Record(ctx context.Context, event alert.DeliveryEvent) error {
	if strings.TrimSpace(event.ID) == "" {
		return fmt.Errorf("delivery event id is required")
	}

	query, args, err := qb.InsertModel("alert_events", alertEventToModel(event), "ON CONFLICT (id) DO NOTHING")
	if err != nil {
		return fmt.Errorf("build insert alert event query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert alert event id=%s: %w", event.ID, err)
	}
	return nil
}

func (r *AlertEventRepository) ListRecent(ctx context.Context, limit int) ([]alert.DeliveryEvent, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query, args, err := alertEventSelectBuilder().
		OrderBy("occurred_at DESC", "id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list recent alert events query: %w", err)
	}

	return r.selectEvents(ctx, query, args)
}

// ListByMatch returns the delivery history for one match, newest first.
func (r *AlertEventRepository) ListByMatch(ctx context.Context, matchID string, limit int) ([]alert.DeliveryEvent, error) {
	if strings.TrimSpace(matchID) == "" {
		return nil, fmt.Errorf("match id is required")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	query, args, err := alertEventSelectBuilder().
		Where(qb.Eq("match_id", matchID)).
		OrderBy("occurred_at DESC", "id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list alert events by match query: %w", err)
	}

	return r.selectEvents(ctx, query, args)
}

func (r *AlertEventRepository) selectEvents(ctx context.Context, query string, args []any) ([]alert.DeliveryEvent, error) {
	var rows []alertEventModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select alert events: %w", err)
	}

	out := make([]alert.DeliveryEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, alertEventFromModel(row))
	}
	return out, nil
}

func alertEventSelectBuilder() *qb.SelectBuilder {
	return qb.Select(
		"id",
		"match_id",
		"player_id",
		"player_name",
		"observed_status",
		"classification",
		"urgency",
		"status",
		"attempts",
		"error_message",
		"occurred_at",
	).From("alert_events")
}
