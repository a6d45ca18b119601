package csvfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lineupwatch/lineup-tracker/internal/domain/squad"
)

const sampleRoster = `"","Goalkeeper","",""
ID,Player,Team,Pos,Status,Fantasy Points,Average Fantasy Points per Game,GP
*abc01*,David Raya,ARS,G,Act,120.5,6.7,18
*abc02*,Ederson,MCI,G,Res,80.0,5.0,16
"","Outfielder","",""
ID,Player,Team,Pos,Status,Fantasy Points,Average Fantasy Points per Game,GP,% of leagues in which player was drafted
*def01*,Bukayo Saka,ARS,F,Act,210.3,11.1,19,99%
*def02*,Declan Rice,ARS,M,Act,180.0,9.5,19,95%
*def03*,Eddie Nketiah,ARS,,Res,40.2,2.3,12,20%
not-a-player-row,ignored
*def04*,,MCI,F,Act,0,0,0,0%
`

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}
	return path
}

func TestSquadRepository_LoadParsesSections(t *testing.T) {
	repo := NewSquadRepository(writeRoster(t, sampleRoster), nil)

	loaded, err := repo.Load(t.Context())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// The row with no player name is dropped.
	if len(loaded.Players) != 5 {
		t.Fatalf("expected 5 players, got %d", len(loaded.Players))
	}

	byID := make(map[string]squad.Player, len(loaded.Players))
	for _, p := range loaded.Players {
		byID[p.ID] = p
	}

	raya := byID["*abc01*"]
	if raya.Name != "David Raya" || raya.Position != squad.PositionGoalkeeper {
		t.Fatalf("unexpected goalkeeper row: %+v", raya)
	}
	if raya.TeamName != "Arsenal" || raya.TeamAbbrev != "ARS" {
		t.Fatalf("expected abbreviation expansion, got %+v", raya)
	}
	if !raya.ExpectedStarting() {
		t.Fatal("expected Act status to mean expected starting")
	}
	if raya.FantasyPoints != 120.5 || raya.GamesPlayed != 18 {
		t.Fatalf("unexpected numeric fields: %+v", raya)
	}

	saka := byID["*def01*"]
	if saka.Position != squad.PositionForward || saka.DraftPercentage != "99%" {
		t.Fatalf("unexpected outfielder row: %+v", saka)
	}

	// Missing position code falls back to the section default.
	nketiah := byID["*def03*"]
	if nketiah.Position != squad.PositionMidfielder {
		t.Fatalf("expected outfielder fallback position, got %+v", nketiah)
	}
	if nketiah.ExpectedStarting() {
		t.Fatal("expected Res status to mean reserve")
	}
}

func TestSquadRepository_LoadMissingFile(t *testing.T) {
	repo := NewSquadRepository(filepath.Join(t.TempDir(), "absent.csv"), nil)

	if _, err := repo.Load(t.Context()); err == nil {
		t.Fatal("expected error for missing roster file")
	}
}

func TestSquadRepository_LoadEmptyRoster(t *testing.T) {
	repo := NewSquadRepository(writeRoster(t, "header only\n"), nil)

	if _, err := repo.Load(t.Context()); err == nil {
		t.Fatal("expected error for roster without players")
	}
}
