package lineup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/lineupwatch/lineup-tracker/internal/domain/squad"
)

// TeamLineup is one team's announced lineup for one match.
type TeamLineup struct {
	TeamName    string
	Formation   string
	StartingXI  []string
	Substitutes []string
}

func (l TeamLineup) HasStarting(playerName string) bool {
	return containsName(l.StartingXI, playerName)
}

func (l TeamLineup) HasOnBench(playerName string) bool {
	return containsName(l.Substitutes, playerName)
}

// MatchLineups carries both announced lineups for a match. Either side may be
// missing when the provider has published only one team so far.
type MatchLineups struct {
	MatchID string
	Home    *TeamLineup
	Away    *TeamLineup
}

func (m MatchLineups) ForTeam(teamName string) (TeamLineup, bool) {
	canonical := squad.CanonicalTeamName(teamName)
	if m.Home != nil && squad.CanonicalTeamName(m.Home.TeamName) == canonical {
		return *m.Home, true
	}
	if m.Away != nil && squad.CanonicalTeamName(m.Away.TeamName) == canonical {
		return *m.Away, true
	}
	return TeamLineup{}, false
}

// Signature is a stable digest of the starting sets, insensitive to player
// order within a lineup. Two polls that observe the same starters produce the
// same signature.
func (m MatchLineups) Signature() string {
	h := sha256.New()
	writeTeam := func(l *TeamLineup) {
		if l == nil {
			h.Write([]byte{0})
			return
		}
		h.Write([]byte(squad.NormalizeName(l.TeamName)))
		h.Write([]byte{'|'})
		names := make([]string, 0, len(l.StartingXI))
		for _, name := range l.StartingXI {
			names = append(names, squad.NormalizeName(name))
		}
		sort.Strings(names)
		h.Write([]byte(strings.Join(names, ",")))
		h.Write([]byte{';'})
	}
	writeTeam(m.Home)
	writeTeam(m.Away)
	return hex.EncodeToString(h.Sum(nil)[:16])
}

func containsName(names []string, candidate string) bool {
	normalized := squad.NormalizeName(candidate)
	for _, name := range names {
		if squad.NormalizeName(name) == normalized {
			return true
		}
	}
	return false
}

// Source fetches announced lineups for one match. found is false while the
// provider has not published a lineup yet; that is a normal pre-announcement
// state, not an error. Connectivity failures are returned as transient
// errors.
type Source interface {
	Lineups(ctx context.Context, matchID string) (lineups MatchLineups, found bool, err error)
}
