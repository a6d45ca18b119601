package lineup

import "testing"

func arsenalLineup(starters ...string) *TeamLineup {
	return &TeamLineup{
		TeamName:    "Arsenal",
		Formation:   "4-3-3",
		StartingXI:  starters,
		Substitutes: []string{"Eddie Nketiah"},
	}
}

func TestTeamLineup_NameMatchingIsCaseAndSpaceInsensitive(t *testing.T) {
	l := arsenalLineup("Bukayo Saka", "Declan  Rice")

	if !l.HasStarting("bukayo saka") {
		t.Fatal("case folding failed for starter lookup")
	}
	if !l.HasStarting("Declan Rice") {
		t.Fatal("whitespace folding failed for starter lookup")
	}
	if l.HasStarting("Eddie Nketiah") {
		t.Fatal("substitute reported as starting")
	}
	if !l.HasOnBench("EDDIE NKETIAH") {
		t.Fatal("bench lookup failed")
	}
}

func TestMatchLineups_ForTeamFoldsAliases(t *testing.T) {
	m := MatchLineups{
		MatchID: "m1",
		Home:    arsenalLineup("Bukayo Saka"),
		Away:    &TeamLineup{TeamName: "Tottenham Hotspur", StartingXI: []string{"Son Heung-min"}},
	}

	if _, ok := m.ForTeam("Arsenal"); !ok {
		t.Fatal("home lookup failed")
	}
	if got, ok := m.ForTeam("Spurs"); !ok || got.TeamName != "Tottenham Hotspur" {
		t.Fatalf("alias lookup failed: ok=%v team=%q", ok, got.TeamName)
	}
	if _, ok := m.ForTeam("Chelsea"); ok {
		t.Fatal("uninvolved team resolved a lineup")
	}
}

func TestMatchLineups_SignatureIgnoresStarterOrder(t *testing.T) {
	a := MatchLineups{
		MatchID: "m1",
		Home:    arsenalLineup("Bukayo Saka", "Declan Rice"),
	}
	b := MatchLineups{
		MatchID: "m1",
		Home:    arsenalLineup("Declan Rice", "Bukayo Saka"),
	}

	if a.Signature() != b.Signature() {
		t.Fatal("signature must not depend on starter order")
	}
}

func TestMatchLineups_SignatureChangesWithStarters(t *testing.T) {
	a := MatchLineups{MatchID: "m1", Home: arsenalLineup("Bukayo Saka")}
	b := MatchLineups{MatchID: "m1", Home: arsenalLineup("Gabriel Martinelli")}

	if a.Signature() == b.Signature() {
		t.Fatal("different starters must produce different signatures")
	}
}

func TestMatchLineups_SignatureDistinguishesMissingSide(t *testing.T) {
	homeOnly := MatchLineups{MatchID: "m1", Home: arsenalLineup("Bukayo Saka")}
	both := MatchLineups{
		MatchID: "m1",
		Home:    arsenalLineup("Bukayo Saka"),
		Away:    &TeamLineup{TeamName: "Chelsea", StartingXI: []string{"Cole Palmer"}},
	}

	if homeOnly.Signature() == both.Signature() {
		t.Fatal("publishing the second side must change the signature")
	}
}
