package analysis

import (
	"github.com/lineupwatch/lineup-tracker/internal/domain/alert"
	"github.com/lineupwatch/lineup-tracker/internal/domain/lineup"
	"github.com/lineupwatch/lineup-tracker/internal/domain/match"
	"github.com/lineupwatch/lineup-tracker/internal/domain/squad"
)

// Unmatched reports a squad player whose identity could not be resolved
// against the announced lineup. Such players are excluded from the result
// rather than assumed either way; callers log these as data-quality
// warnings.
type Unmatched struct {
	Player squad.Player
	Reason string
}

// Analyze compares the announced lineups for a match against the squad's
// starting expectations. It is pure: same inputs, same outputs, no side
// effects.
//
// Only squad players belonging to either team in the match are considered.
// Each considered player yields exactly one Discrepancy (including the
// as_expected confirmations) unless identity resolution fails, in which case
// the player is returned in the Unmatched slice instead.
func Analyze(m match.Match, lineups lineup.MatchLineups, s squad.Squad) ([]alert.Discrepancy, []Unmatched) {
	relevant := s.PlayersForTeams(m.HomeTeam.Name, m.AwayTeam.Name)
	if len(relevant) == 0 {
		return nil, nil
	}

	discrepancies := make([]alert.Discrepancy, 0, len(relevant))
	var unmatched []Unmatched

	for _, player := range relevant {
		teamLineup, ok := lineups.ForTeam(player.TeamName)
		if !ok {
			// The provider has published only the other side so far.
			unmatched = append(unmatched, Unmatched{Player: player, Reason: "team lineup not announced"})
			continue
		}

		starting := teamLineup.HasStarting(player.Name)
		if !starting && len(teamLineup.Substitutes) > 0 && !teamLineup.HasOnBench(player.Name) {
			// The full matchday squad is known and the player is in neither
			// list; likely a name mismatch between roster and provider.
			unmatched = append(unmatched, Unmatched{Player: player, Reason: "player absent from announced squad"})
			continue
		}

		discrepancies = append(discrepancies, alert.Discrepancy{
			Player:           player,
			Match:            m,
			ExpectedStarting: player.ExpectedStarting(),
			ActuallyStarting: starting,
		})
	}

	return discrepancies, unmatched
}

// Summary counts analyzer output by classification.
type Summary struct {
	Benchings        int
	UnexpectedStarts int
	Confirmations    int
}

func Summarize(discrepancies []alert.Discrepancy) Summary {
	var out Summary
	for _, d := range discrepancies {
		switch d.Classification() {
		case alert.ClassUnexpectedBenching:
			out.Benchings++
		case alert.ClassUnexpectedStarting:
			out.UnexpectedStarts++
		default:
			out.Confirmations++
		}
	}
	return out
}
