package analysis

import (
	"testing"
	"time"

	"github.com/lineupwatch/lineup-tracker/internal/domain/alert"
	"github.com/lineupwatch/lineup-tracker/internal/domain/lineup"
	"github.com/lineupwatch/lineup-tracker/internal/domain/match"
	"github.com/lineupwatch/lineup-tracker/internal/domain/squad"
)

func fixture() match.Match {
	return match.Match{
		ID:        "m1",
		HomeTeam:  match.Team{Name: "Arsenal", Abbreviation: "ARS"},
		AwayTeam:  match.Team{Name: "Chelsea", Abbreviation: "CHE"},
		KickoffAt: time.Date(2026, time.August, 22, 15, 0, 0, 0, time.UTC),
		Status:    match.StatusNotStarted,
	}
}

func roster() squad.Squad {
	return squad.Squad{Players: []squad.Player{
		{ID: "p-saka", Name: "Bukayo Saka", TeamName: "Arsenal", Position: squad.PositionForward, Status: squad.StatusActive},
		{ID: "p-nketiah", Name: "Eddie Nketiah", TeamName: "Arsenal", Position: squad.PositionForward, Status: squad.StatusReserve},
		{ID: "p-palmer", Name: "Cole Palmer", TeamName: "Chelsea", Position: squad.PositionMidfielder, Status: squad.StatusActive},
		{ID: "p-haaland", Name: "Erling Haaland", TeamName: "Manchester City", Position: squad.PositionForward, Status: squad.StatusActive},
	}}
}

func TestAnalyze_ClassifiesEachRelevantPlayer(t *testing.T) {
	lineups := lineup.MatchLineups{
		MatchID: "m1",
		Home: &lineup.TeamLineup{
			TeamName:    "Arsenal",
			StartingXI:  []string{"Eddie Nketiah", "Declan Rice"},
			Substitutes: []string{"Bukayo Saka"},
		},
		Away: &lineup.TeamLineup{
			TeamName:    "Chelsea",
			StartingXI:  []string{"Cole Palmer"},
			Substitutes: []string{"Nicolas Jackson"},
		},
	}

	discrepancies, unmatched := Analyze(fixture(), lineups, roster())
	if len(unmatched) != 0 {
		t.Fatalf("expected no unmatched players, got %+v", unmatched)
	}
	if len(discrepancies) != 3 {
		t.Fatalf("expected 3 discrepancies, got %d", len(discrepancies))
	}

	byPlayer := make(map[string]alert.Discrepancy, len(discrepancies))
	for _, d := range discrepancies {
		byPlayer[d.Player.ID] = d
	}

	if got := byPlayer["p-saka"].Classification(); got != alert.ClassUnexpectedBenching {
		t.Fatalf("benched starter classified as %q", got)
	}
	if got := byPlayer["p-nketiah"].Classification(); got != alert.ClassUnexpectedStarting {
		t.Fatalf("starting reserve classified as %q", got)
	}
	if got := byPlayer["p-palmer"].Classification(); got != alert.ClassAsExpected {
		t.Fatalf("expected starter classified as %q", got)
	}
	if _, ok := byPlayer["p-haaland"]; ok {
		t.Fatal("player from an uninvolved team should not be analyzed")
	}
}

func TestAnalyze_MissingTeamLineupIsUnmatched(t *testing.T) {
	lineups := lineup.MatchLineups{
		MatchID: "m1",
		Home: &lineup.TeamLineup{
			TeamName:   "Arsenal",
			StartingXI: []string{"Bukayo Saka", "Eddie Nketiah"},
		},
	}

	discrepancies, unmatched := Analyze(fixture(), lineups, roster())
	if len(discrepancies) != 2 {
		t.Fatalf("expected 2 discrepancies for the announced side, got %d", len(discrepancies))
	}
	if len(unmatched) != 1 || unmatched[0].Player.ID != "p-palmer" {
		t.Fatalf("expected the away player unmatched, got %+v", unmatched)
	}
}

func TestAnalyze_PlayerAbsentFromAnnouncedSquadIsUnmatched(t *testing.T) {
	lineups := lineup.MatchLineups{
		MatchID: "m1",
		Home: &lineup.TeamLineup{
			TeamName:    "Arsenal",
			StartingXI:  []string{"Declan Rice"},
			Substitutes: []string{"Eddie Nketiah"},
		},
		Away: &lineup.TeamLineup{
			TeamName:    "Chelsea",
			StartingXI:  []string{"Cole Palmer"},
			Substitutes: []string{"Nicolas Jackson"},
		},
	}

	_, unmatched := Analyze(fixture(), lineups, roster())
	if len(unmatched) != 1 || unmatched[0].Player.ID != "p-saka" {
		t.Fatalf("expected Saka unmatched, got %+v", unmatched)
	}
	if unmatched[0].Reason != "player absent from announced squad" {
		t.Fatalf("unexpected reason %q", unmatched[0].Reason)
	}
}

func TestAnalyze_BenchNotPublishedStillClassifiesAsBenched(t *testing.T) {
	// Some providers publish the starting eleven before the bench. A rostered
	// starter missing from the eleven counts as benched once that happens.
	lineups := lineup.MatchLineups{
		MatchID: "m1",
		Home: &lineup.TeamLineup{
			TeamName:   "Arsenal",
			StartingXI: []string{"Declan Rice"},
		},
		Away: &lineup.TeamLineup{
			TeamName:   "Chelsea",
			StartingXI: []string{"Cole Palmer"},
		},
	}

	discrepancies, unmatched := Analyze(fixture(), lineups, roster())
	if len(unmatched) != 0 {
		t.Fatalf("expected no unmatched players, got %+v", unmatched)
	}

	for _, d := range discrepancies {
		if d.Player.ID == "p-saka" {
			if got := d.Classification(); got != alert.ClassUnexpectedBenching {
				t.Fatalf("expected benching, got %q", got)
			}
			return
		}
	}
	t.Fatal("Saka missing from analyzer output")
}

func TestAnalyze_NoRelevantPlayers(t *testing.T) {
	s := squad.Squad{Players: []squad.Player{
		{ID: "p-haaland", Name: "Erling Haaland", TeamName: "Manchester City", Status: squad.StatusActive},
	}}

	discrepancies, unmatched := Analyze(fixture(), lineup.MatchLineups{MatchID: "m1"}, s)
	if discrepancies != nil || unmatched != nil {
		t.Fatalf("expected empty result for uninvolved squad, got %d/%d", len(discrepancies), len(unmatched))
	}
}

func TestSummarize_CountsByClassification(t *testing.T) {
	starter := squad.Player{Status: squad.StatusActive}
	reserve := squad.Player{Status: squad.StatusReserve}

	summary := Summarize([]alert.Discrepancy{
		{Player: starter, ExpectedStarting: true, ActuallyStarting: false},
		{Player: starter, ExpectedStarting: true, ActuallyStarting: true},
		{Player: reserve, ExpectedStarting: false, ActuallyStarting: true},
		{Player: reserve, ExpectedStarting: false, ActuallyStarting: false},
	})

	if summary.Benchings != 1 || summary.UnexpectedStarts != 1 || summary.Confirmations != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}
