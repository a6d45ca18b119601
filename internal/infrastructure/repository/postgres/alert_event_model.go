package postgres

import (
	"time"

	"github.com/lineupwatch/lineup-tracker/internal/domain/alert"
)

type alertEventModel struct {
	ID             string    `db:"id"`
	MatchID        string    `db:"match_id"`
	PlayerID       string    `db:"player_id"`
	PlayerName     string    `db:"player_name"`
	ObservedStatus string    `db:"observed_status"`
	Classification string    `db:"classification"`
	Urgency        string    `db:"urgency"`
	Status         string    `db:"status"`
	Attempts       int       `db:"attempts"`
	ErrorMessage   *string   `db:"error_message"`
	OccurredAt     time.Time `db:"occurred_at"`
}

func alertEventToModel(event alert.DeliveryEvent) alertEventModel {
	return alertEventModel{
		ID:             event.ID,
		MatchID:        event.MatchID,
		PlayerID:       event.PlayerID,
		PlayerName:     event.PlayerName,
		ObservedStatus: event.ObservedStatus,
		Classification: event.Classification,
		Urgency:        event.Urgency,
		Status:         event.Status,
		Attempts:       event.Attempts,
		ErrorMessage:   optionalString(event.ErrorMessage),
		OccurredAt:     event.OccurredAt.UTC(),
	}
}

func alertEventFromModel(row alertEventModel) alert.DeliveryEvent {
	event := alert.DeliveryEvent{
		ID:             row.ID,
		MatchID:        row.MatchID,
		PlayerID:       row.PlayerID,
		PlayerName:     row.PlayerName,
		ObservedStatus: row.ObservedStatus,
		Classification: row.Classification,
		Urgency:        row.Urgency,
		Status:         row.Status,
		Attempts:       row.Attempts,
		OccurredAt:     row.OccurredAt,
	}
	if row.ErrorMessage != nil {
		event.ErrorMessage = *row.ErrorMessage
	}
	return event
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
