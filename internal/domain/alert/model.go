package alert

import (
	"fmt"
	"time"

	"github.com/lineupwatch/lineup-tracker/internal/domain/match"
	"github.com/lineupwatch/lineup-tracker/internal/domain/squad"
)

const (
	ClassUnexpectedBenching = "unexpected_benching"
	ClassUnexpectedStarting = "unexpected_starting"
	ClassAsExpected         = "as_expected"
)

const (
	UrgencyUrgent    = "urgent"
	UrgencyImportant = "important"
	UrgencyInfo      = "info"
	UrgencyWarning   = "warning"
)

// Discrepancy is one player's expected-vs-observed starting comparison for
// one match.
type Discrepancy struct {
	Player           squad.Player
	Match            match.Match
	ExpectedStarting bool
	ActuallyStarting bool
}

func (d Discrepancy) Classification() string {
	switch {
	case d.ExpectedStarting && !d.ActuallyStarting:
		return ClassUnexpectedBenching
	case !d.ExpectedStarting && d.ActuallyStarting:
		return ClassUnexpectedStarting
	default:
		return ClassAsExpected
	}
}

func (d Discrepancy) Urgency() string {
	switch d.Classification() {
	case ClassUnexpectedBenching:
		return UrgencyUrgent
	case ClassUnexpectedStarting:
		return UrgencyImportant
	default:
		return UrgencyInfo
	}
}

// ObservedStatus is the observed half of the idempotency key: what the
// lineup actually said about the player.
func (d Discrepancy) ObservedStatus() string {
	if d.ActuallyStarting {
		return "starting"
	}
	return "benched"
}

// Key identifies one notifiable event. A gate delivers at most one alert per
// key for the lifetime of the owning monitor.
type Key struct {
	MatchID        string
	PlayerID       string
	ObservedStatus string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.MatchID, k.PlayerID, k.ObservedStatus)
}

// Alert is a discrepancy or confirmation bound to a match, ready for
// delivery.
type Alert struct {
	Key            Key
	Classification string
	Urgency        string
	Player         squad.Player
	Match          match.Match
	Message        string
	CreatedAt      time.Time
}

// New builds the delivery-ready alert for a discrepancy.
func New(d Discrepancy, now time.Time) Alert {
	return Alert{
		Key: Key{
			MatchID:        d.Match.ID,
			PlayerID:       d.Player.ID,
			ObservedStatus: d.ObservedStatus(),
		},
		Classification: d.Classification(),
		Urgency:        d.Urgency(),
		Player:         d.Player,
		Match:          d.Match,
		Message:        formatMessage(d),
		CreatedAt:      now,
	}
}

func formatMessage(d Discrepancy) string {
	opponent := d.Match.AwayTeam.Name
	if squad.NormalizeName(d.Player.TeamName) == squad.NormalizeName(d.Match.AwayTeam.Name) {
		opponent = d.Match.HomeTeam.Name
	}
	kickoff := d.Match.KickoffAt.Format("15:04")

	switch d.Classification() {
	case ClassUnexpectedBenching:
		return fmt.Sprintf("%s BENCHED - %s (%s) vs %s, kickoff %s. You may want to update your lineup.",
			d.Player.Name, d.Player.TeamName, d.Player.Position, opponent, kickoff)
	case ClassUnexpectedStarting:
		return fmt.Sprintf("%s STARTING - %s (%s) vs %s, kickoff %s. Consider moving them into your XI.",
			d.Player.Name, d.Player.TeamName, d.Player.Position, opponent, kickoff)
	default:
		return fmt.Sprintf("%s confirmed as expected for %s vs %s, kickoff %s.",
			d.Player.Name, d.Player.TeamName, opponent, kickoff)
	}
}
