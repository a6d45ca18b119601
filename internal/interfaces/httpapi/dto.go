package httpapi

import (
	"time"

	"github.com/lineupwatch/lineup-tracker/internal/domain/alert"
	"github.com/lineupwatch/lineup-tracker/internal/domain/squad"
)

type squadDTO struct {
	LoadedAt  time.Time        `json:"loaded_at"`
	SourceRef string           `json:"source_ref"`
	Players   []squadPlayerDTO `json:"players"`
}

type squadPlayerDTO struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Team          string  `json:"team"`
	Position      string  `json:"position"`
	Status        string  `json:"status"`
	FantasyPoints float64 `json:"fantasy_points"`
	AveragePoints float64 `json:"average_points"`
	GamesPlayed   int     `json:"games_played"`
}

func squadToDTO(s squad.Squad) squadDTO {
	players := make([]squadPlayerDTO, 0, len(s.Players))
	for _, p := range s.Players {
		players = append(players, squadPlayerDTO{
			ID:            p.ID,
			Name:          p.Name,
			Team:          p.TeamName,
			Position:      p.Position,
			Status:        p.Status,
			FantasyPoints: p.FantasyPoints,
			AveragePoints: p.AveragePoints,
			GamesPlayed:   p.GamesPlayed,
		})
	}
	return squadDTO{
		LoadedAt:  s.LoadedAt,
		SourceRef: s.SourceRef,
		Players:   players,
	}
}

type alertEventDTO struct {
	ID             string    `json:"id"`
	MatchID        string    `json:"match_id"`
	PlayerID       string    `json:"player_id"`
	PlayerName     string    `json:"player_name"`
	ObservedStatus string    `json:"observed_status"`
	Classification string    `json:"classification"`
	Urgency        string    `json:"urgency"`
	Status         string    `json:"status"`
	Attempts       int       `json:"attempts"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func alertEventToDTO(event alert.DeliveryEvent) alertEventDTO {
	return alertEventDTO{
		ID:             event.ID,
		MatchID:        event.MatchID,
		PlayerID:       event.PlayerID,
		PlayerName:     event.PlayerName,
		ObservedStatus: event.ObservedStatus,
		Classification: event.Classification,
		Urgency:        event.Urgency,
		Status:         event.Status,
		Attempts:       event.Attempts,
		ErrorMessage:   event.ErrorMessage,
		OccurredAt:     event.OccurredAt,
	}
}
