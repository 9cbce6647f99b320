package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tsumo-app/tsumo-server/models"
	"github.com/tsumo-app/tsumo-server/repositories"
)

func seedGroupGame(t *testing.T, store *repositories.MemoryStore, id, groupID string, date time.Time, players []models.PlayerScore) {
	t.Helper()
	game := &models.Game{
		ID:       id,
		GroupID:  &groupID,
		GameType: models.GameTypeFourPlayer,
		Date:     date,
		Players:  players,
		Rules:    models.DefaultRuleSet(),
	}
	if err := store.GameRepo().Create(context.Background(), game); err != nil {
		t.Fatalf("seed game %s: %v", id, err)
	}
}

func TestGroupLeaderboardAuthoritative(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedUser(t, store, "u1", "Akira")
	seedUser(t, store, "u2", "Botan")
	seedUser(t, store, "u3", "Chie")
	seedGroup(t, store, "g1", "u1", "u2", "u3")

	day := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	seedGroupGame(t, store, "game1", "g1", day, []models.PlayerScore{
		{UserID: "u1", Rank: 1, FinalAmount: 12000},
		{UserID: "u2", Rank: 2, FinalAmount: -12000},
	})
	seedGroupGame(t, store, "game2", "g1", day.AddDate(0, 0, 1), []models.PlayerScore{
		{UserID: "u1", Rank: 2, FinalAmount: -3000},
		{UserID: "u2", Rank: 1, FinalAmount: 3000},
	})

	svc := NewRankingService(store.GroupRepo(), store.MemberRepo(), store.GameRepo(), store.UserRepo())
	board, err := svc.GroupLeaderboard(context.Background(), "g1")
	if err != nil {
		t.Fatalf("GroupLeaderboard: %v", err)
	}

	if board.MembersSource != MembersAuthoritative {
		t.Errorf("MembersSource = %q, want %q", board.MembersSource, MembersAuthoritative)
	}
	if len(board.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(board.Entries))
	}

	want := []struct {
		userID string
		name   string
		total  int
	}{
		{"u1", "Akira", 9000},
		{"u3", "Chie", 0}, // never played, still ranked
		{"u2", "Botan", -9000},
	}
	for i, w := range want {
		e := board.Entries[i]
		if e.UserID != w.userID || e.Name != w.name || e.TotalScore != w.total {
			t.Errorf("entry %d = %+v, want %+v", i, e, w)
		}
		if e.Position != i+1 {
			t.Errorf("entry %d position = %d, want %d", i, e.Position, i+1)
		}
	}
}

func TestGroupLeaderboardInferred(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedUser(t, store, "u1", "Akira")
	ctx := context.Background()

	// A group with no membership records: the leaderboard is rebuilt from
	// game participation.
	group := &models.Group{ID: "g1", Name: "Orphan", OwnerID: "u1"}
	if err := store.GroupRepo().Create(ctx, group); err != nil {
		t.Fatalf("seed group: %v", err)
	}
	seedGroupGame(t, store, "game1", "g1", time.Now(), []models.PlayerScore{
		{UserID: "u1", Rank: 1, FinalAmount: 5000},
		{UserID: "ghost", Rank: 2, FinalAmount: -5000},
	})

	svc := NewRankingService(store.GroupRepo(), store.MemberRepo(), store.GameRepo(), store.UserRepo())
	board, err := svc.GroupLeaderboard(ctx, "g1")
	if err != nil {
		t.Fatalf("GroupLeaderboard: %v", err)
	}

	if board.MembersSource != MembersInferred {
		t.Errorf("MembersSource = %q, want %q", board.MembersSource, MembersInferred)
	}
	if len(board.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(board.Entries))
	}
	if board.Entries[0].UserID != "u1" || board.Entries[0].Name != "Akira" {
		t.Errorf("entry 0 = %+v, want u1/Akira", board.Entries[0])
	}
	// Unknown users fall back to a generated display name.
	if board.Entries[1].Name == "" || board.Entries[1].Name == "ghost" {
		t.Errorf("expected fallback name for ghost, got %q", board.Entries[1].Name)
	}
}

func TestGroupLeaderboardUnknownGroup(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc := NewRankingService(store.GroupRepo(), store.MemberRepo(), store.GameRepo(), store.UserRepo())

	if _, err := svc.GroupLeaderboard(context.Background(), "missing"); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("error = %v, want %v", err, ErrGroupNotFound)
	}
}
