package squad

import "testing"

func sampleSquad() Squad {
	return Squad{Players: []Player{
		{ID: "p1", Name: "Bukayo Saka", TeamName: "Arsenal", Status: StatusActive},
		{ID: "p2", Name: "Eddie Nketiah", TeamName: "Arsenal", Status: StatusReserve},
		{ID: "p3", Name: "Son Heung-min", TeamName: "Spurs", Status: StatusActive},
		{ID: "p4", Name: "Erling Haaland", TeamName: "Man City", Status: StatusActive},
	}}
}

func TestSquad_PlayersForTeamsFoldsAliases(t *testing.T) {
	got := sampleSquad().PlayersForTeams("Arsenal", "Tottenham Hotspur")
	if len(got) != 3 {
		t.Fatalf("expected 3 players, got %d", len(got))
	}
	for _, p := range got {
		if p.ID == "p4" {
			t.Fatal("unrequested team included")
		}
	}
}

func TestSquad_TeamNames(t *testing.T) {
	names := sampleSquad().TeamNames()
	if len(names) != 3 {
		t.Fatalf("expected 3 distinct teams, got %d", len(names))
	}
	if _, ok := names["tottenham"]; !ok {
		t.Fatal("alias was not canonicalized")
	}
	if _, ok := names["manchester city"]; !ok {
		t.Fatal("short form was not canonicalized")
	}
}

func TestSquad_ActiveCount(t *testing.T) {
	if got := sampleSquad().ActiveCount(); got != 3 {
		t.Fatalf("active count = %d, want 3", got)
	}
}

func TestPlayer_ExpectedStarting(t *testing.T) {
	if !(Player{Status: StatusActive}).ExpectedStarting() {
		t.Fatal("active player should be expected to start")
	}
	if (Player{Status: StatusReserve}).ExpectedStarting() {
		t.Fatal("reserve player should not be expected to start")
	}
}

func TestNormalizeName(t *testing.T) {
	if got := NormalizeName("  Bukayo   SAKA "); got != "bukayo saka" {
		t.Fatalf("normalize = %q", got)
	}
}

func TestFullTeamName(t *testing.T) {
	if got := FullTeamName("ARS"); got != "Arsenal" {
		t.Fatalf("ARS = %q", got)
	}
	if got := FullTeamName("XXX"); got != "XXX" {
		t.Fatalf("unknown abbreviation should pass through, got %q", got)
	}
}

func TestCanonicalTeamName(t *testing.T) {
	cases := map[string]string{
		"Brighton & Hove Albion": "brighton",
		"Spurs":                  "tottenham",
		"Wolves":                 "wolverhampton wanderers",
		"Arsenal":                "arsenal",
	}
	for in, want := range cases {
		if got := CanonicalTeamName(in); got != want {
			t.Errorf("CanonicalTeamName(%q) = %q, want %q", in, got, want)
		}
	}
}
