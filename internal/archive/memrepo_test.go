package archive

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kapu/chess-coach-client-go/internal/domain"
)

func record(uuid string, endedAt time.Time) *domain.GameRecord {
	return &domain.GameRecord{
		SessionUUID: uuid,
		Side:        "white",
		Difficulty:  "medium",
		Result:      "1-0",
		MovesUCI:    []string{"e2e4", "e7e5"},
		EndedAt:     endedAt,
	}
}

func TestMemorySaveAndList(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 3; i++ {
		rec := record(fmt.Sprintf("sess-%d", i), base.Add(time.Duration(i)*time.Minute))
		if err := repo.SaveFinishedGame(ctx, rec); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	games, err := repo.RecentGames(ctx, 10)
	if err != nil {
		t.Fatalf("RecentGames: %v", err)
	}
	if len(games) != 3 {
		t.Fatalf("expected 3 games, got %d", len(games))
	}
	// newest first
	if games[0].SessionUUID != "sess-2" || games[2].SessionUUID != "sess-0" {
		t.Fatalf("wrong order: %s, %s", games[0].SessionUUID, games[2].SessionUUID)
	}
}

func TestMemoryUpsertBySession(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	first := record("sess-1", time.Now())
	if err := repo.SaveFinishedGame(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	second := record("sess-1", time.Now())
	second.Result = "0-1"
	if err := repo.SaveFinishedGame(ctx, second); err != nil {
		t.Fatalf("resave: %v", err)
	}

	games, err := repo.RecentGames(ctx, 10)
	if err != nil {
		t.Fatalf("RecentGames: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("upsert duplicated record: %d", len(games))
	}
	if games[0].Result != "0-1" {
		t.Fatalf("result not updated: %q", games[0].Result)
	}
}

func TestMemoryLimit(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 5; i++ {
		if err := repo.SaveFinishedGame(ctx, record(fmt.Sprintf("s%d", i), base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	games, err := repo.RecentGames(ctx, 2)
	if err != nil {
		t.Fatalf("RecentGames: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("limit ignored: %d", len(games))
	}
	if games[0].SessionUUID != "s4" {
		t.Fatalf("expected newest first, got %s", games[0].SessionUUID)
	}
}

func TestMemoryListReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	if err := repo.SaveFinishedGame(ctx, record("sess-1", time.Now())); err != nil {
		t.Fatalf("save: %v", err)
	}

	games, _ := repo.RecentGames(ctx, 1)
	games[0].Result = "mutated"

	again, _ := repo.RecentGames(ctx, 1)
	if again[0].Result != "1-0" {
		t.Fatalf("repository state aliased by caller")
	}
}

func TestMemoryNilRecordIgnored(t *testing.T) {
	repo := NewMemoryRepository()
	if err := repo.SaveFinishedGame(context.Background(), nil); err != nil {
		t.Fatalf("nil save: %v", err)
	}
	games, _ := repo.RecentGames(context.Background(), 10)
	if len(games) != 0 {
		t.Fatalf("nil record stored")
	}
}
