package alert

import (
	"strings"
	"testing"
	"time"

	"github.com/lineupwatch/lineup-tracker/internal/domain/match"
	"github.com/lineupwatch/lineup-tracker/internal/domain/squad"
)

func sampleDiscrepancy(expected, actual bool) Discrepancy {
	return Discrepancy{
		Player: squad.Player{
			ID:       "p-saka",
			Name:     "Bukayo Saka",
			TeamName: "Arsenal",
			Position: squad.PositionForward,
			Status:   squad.StatusActive,
		},
		Match: match.Match{
			ID:        "m1",
			HomeTeam:  match.Team{Name: "Arsenal", Abbreviation: "ARS"},
			AwayTeam:  match.Team{Name: "Chelsea", Abbreviation: "CHE"},
			KickoffAt: time.Date(2026, time.August, 22, 15, 0, 0, 0, time.UTC),
		},
		ExpectedStarting: expected,
		ActuallyStarting: actual,
	}
}

func TestDiscrepancy_ClassificationAndUrgency(t *testing.T) {
	cases := []struct {
		name           string
		expected       bool
		actual         bool
		classification string
		urgency        string
	}{
		{"benched starter", true, false, ClassUnexpectedBenching, UrgencyUrgent},
		{"starting reserve", false, true, ClassUnexpectedStarting, UrgencyImportant},
		{"confirmed starter", true, true, ClassAsExpected, UrgencyInfo},
		{"confirmed reserve", false, false, ClassAsExpected, UrgencyInfo},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := sampleDiscrepancy(tc.expected, tc.actual)
			if got := d.Classification(); got != tc.classification {
				t.Fatalf("classification = %q, want %q", got, tc.classification)
			}
			if got := d.Urgency(); got != tc.urgency {
				t.Fatalf("urgency = %q, want %q", got, tc.urgency)
			}
		})
	}
}

func TestNew_KeyUsesObservedStatus(t *testing.T) {
	now := time.Date(2026, time.August, 22, 14, 5, 0, 0, time.UTC)

	benched := New(sampleDiscrepancy(true, false), now)
	if benched.Key != (Key{MatchID: "m1", PlayerID: "p-saka", ObservedStatus: "benched"}) {
		t.Fatalf("unexpected key %+v", benched.Key)
	}
	if !benched.CreatedAt.Equal(now) {
		t.Fatalf("created at = %v, want %v", benched.CreatedAt, now)
	}

	starting := New(sampleDiscrepancy(true, true), now)
	if starting.Key.ObservedStatus != "starting" {
		t.Fatalf("observed status = %q, want starting", starting.Key.ObservedStatus)
	}
	if benched.Key == starting.Key {
		t.Fatal("different observations must produce distinct keys")
	}
}

func TestNew_MessageNamesTheOpponent(t *testing.T) {
	now := time.Now()

	a := New(sampleDiscrepancy(true, false), now)
	if !strings.Contains(a.Message, "BENCHED") {
		t.Fatalf("benching message missing marker: %q", a.Message)
	}
	if !strings.Contains(a.Message, "vs Chelsea") {
		t.Fatalf("message should name the opponent: %q", a.Message)
	}
	if !strings.Contains(a.Message, "15:00") {
		t.Fatalf("message should carry kickoff time: %q", a.Message)
	}

	// Away-side player: the opponent flips to the home team.
	d := sampleDiscrepancy(false, true)
	d.Player.TeamName = "Chelsea"
	d.Player.Name = "Cole Palmer"
	away := New(d, now)
	if !strings.Contains(away.Message, "vs Arsenal") {
		t.Fatalf("away player message should name the home side: %q", away.Message)
	}
}

func TestKey_String(t *testing.T) {
	k := Key{MatchID: "m1", PlayerID: "p-saka", ObservedStatus: "benched"}
	if got := k.String(); got != "m1/p-saka/benched" {
		t.Fatalf("key string = %q", got)
	}
}
