package memory

import (
	"time"

	"github.com/lineupwatch/lineup-tracker/internal/domain/squad"
)

// SeedSquad returns a small roster spanning two teams, used by tests and
// the demo configuration.
func SeedSquad() squad.Squad {
	return squad.Squad{
		LoadedAt:  time.Date(2026, time.August, 20, 8, 0, 0, 0, time.UTC),
		SourceRef: "seed",
		Players: []squad.Player{
			{
				ID:       "arsenal-saka",
				Name:     "Bukayo Saka",
				TeamName: "Arsenal", TeamAbbrev: "ARS",
				Position: squad.PositionForward,
				Status:   squad.StatusActive,
			},
			{
				ID:       "arsenal-rice",
				Name:     "Declan Rice",
				TeamName: "Arsenal", TeamAbbrev: "ARS",
				Position: squad.PositionMidfielder,
				Status:   squad.StatusActive,
			},
			{
				ID:       "arsenal-nketiah",
				Name:     "Eddie Nketiah",
				TeamName: "Arsenal", TeamAbbrev: "ARS",
				Position: squad.PositionForward,
				Status:   squad.StatusReserve,
			},
			{
				ID:       "city-haaland",
				Name:     "Erling Haaland",
				TeamName: "Manchester City", TeamAbbrev: "MCI",
				Position: squad.PositionForward,
				Status:   squad.StatusActive,
			},
			{
				ID:       "city-doku",
				Name:     "Jeremy Doku",
				TeamName: "Manchester City", TeamAbbrev: "MCI",
				Position: squad.PositionForward,
				Status:   squad.StatusReserve,
			},
		},
	}
}
