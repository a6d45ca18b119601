package squad

import (
	"strings"
	"time"
)

const (
	StatusActive  = "Act"
	StatusReserve = "Res"
)

const (
	PositionGoalkeeper = "Goalkeeper"
	PositionDefender   = "Defender"
	PositionMidfielder = "Midfielder"
	PositionForward    = "Forward"
)

// Player is one roster entry with its starting expectation.
type Player struct {
	ID              string
	Name            string
	TeamName        string
	TeamAbbrev      string
	Position        string
	Status          string
	FantasyPoints   float64
	AveragePoints   float64
	GamesPlayed     int
	DraftPercentage string
}

// ExpectedStarting reports whether the manager expects this player in the
// starting eleven.
func (p Player) ExpectedStarting() bool {
	return p.Status == StatusActive
}

// Squad is an immutable roster snapshot. Monitors read whole snapshots;
// refreshes replace the snapshot rather than mutating it in place.
type Squad struct {
	Players   []Player
	LoadedAt  time.Time
	SourceRef string
}

func (s Squad) PlayersForTeams(teamNames ...string) []Player {
	wanted := make(map[string]struct{}, len(teamNames))
	for _, name := range teamNames {
		wanted[CanonicalTeamName(name)] = struct{}{}
	}

	out := make([]Player, 0, len(s.Players))
	for _, p := range s.Players {
		if _, ok := wanted[CanonicalTeamName(p.TeamName)]; ok {
			out = append(out, p)
		}
	}
	return out
}

// TeamNames returns the distinct canonical team names present in the squad.
func (s Squad) TeamNames() map[string]struct{} {
	out := make(map[string]struct{}, len(s.Players))
	for _, p := range s.Players {
		out[CanonicalTeamName(p.TeamName)] = struct{}{}
	}
	return out
}

func (s Squad) ActiveCount() int {
	count := 0
	for _, p := range s.Players {
		if p.ExpectedStarting() {
			count++
		}
	}
	return count
}

// NormalizeName folds case and surrounding whitespace so roster names and
// provider names compare consistently.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
