package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/lineupwatch/lineup-tracker/internal/domain/squad"
	"github.com/lineupwatch/lineup-tracker/internal/infrastructure/repository/memory"
)

type failingSquadRepo struct{ err error }

func (r failingSquadRepo) Load(context.Context) (squad.Squad, error) {
	return squad.Squad{}, r.err
}

func TestSquadService_RefreshSwapsSnapshot(t *testing.T) {
	repo := memory.NewSquadRepository(memory.SeedSquad())
	svc := NewSquadService(repo, nil)

	if _, ok := svc.Current(); ok {
		t.Fatal("expected no snapshot before first refresh")
	}

	if err := svc.Refresh(t.Context()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	first, ok := svc.Current()
	if !ok || len(first.Players) == 0 {
		t.Fatalf("expected loaded snapshot, got ok=%v players=%d", ok, len(first.Players))
	}

	smaller := memory.SeedSquad()
	smaller.Players = smaller.Players[:2]
	repo.Replace(smaller)

	if err := svc.Refresh(t.Context()); err != nil {
		t.Fatalf("second refresh: %v", err)
	}

	second, _ := svc.Current()
	if len(second.Players) != 2 {
		t.Fatalf("expected replaced snapshot with 2 players, got %d", len(second.Players))
	}
}

func TestSquadService_RefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	repo := memory.NewSquadRepository(memory.SeedSquad())
	svc := NewSquadService(repo, nil)

	if err := svc.Refresh(t.Context()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	svc.repo = failingSquadRepo{err: errors.New("csv missing")}
	if err := svc.Refresh(t.Context()); err == nil {
		t.Fatal("expected refresh error")
	}

	snapshot, ok := svc.Current()
	if !ok || len(snapshot.Players) == 0 {
		t.Fatal("expected previous snapshot to survive a failed refresh")
	}
}

func TestSquadService_RejectsEmptySnapshot(t *testing.T) {
	svc := NewSquadService(memory.NewSquadRepository(squad.Squad{}), nil)

	err := svc.Refresh(t.Context())
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty roster, got %v", err)
	}
}
