package match

import (
	"strings"
	"time"
)

const (
	StatusNotStarted = "NOT_STARTED"
	StatusLive       = "LIVE"
	StatusFinished   = "FINISHED"
	StatusPostponed  = "POSTPONED"
	StatusCancelled  = "CANCELLED"
)

// Team identifies one side of a match.
type Team struct {
	Name         string
	Abbreviation string
}

// Match represents one scheduled fixture. Everything except Status and
// ElapsedMinutes is immutable once discovered; those two fields are refreshed
// from the fixture source.
type Match struct {
	ID             string
	HomeTeam       Team
	AwayTeam       Team
	KickoffAt      time.Time
	Status         string
	ElapsedMinutes *int
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusNotStarted
	}
	return status
}

func IsLiveStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusLive, "IN_PLAY", "HT", "1H", "2H", "ET":
		return true
	default:
		return false
	}
}

func IsFinishedStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinished, "FT", "AET", "PEN":
		return true
	default:
		return false
	}
}

// IsAbandonedStatus reports statuses that end monitoring early without the
// match having been played.
func IsAbandonedStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusPostponed, StatusCancelled, "ABANDONED":
		return true
	default:
		return false
	}
}

// IsTerminalStatus reports whether no further lineup activity can occur.
func IsTerminalStatus(status string) bool {
	return IsFinishedStatus(status) || IsAbandonedStatus(status)
}
