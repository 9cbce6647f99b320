package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tsumo-app/tsumo-server/models"
	"github.com/tsumo-app/tsumo-server/repositories"
	"github.com/tsumo-app/tsumo-server/stats"
)

func seedFreeGame(t *testing.T, store *repositories.MemoryStore, id string, date time.Time, players []models.PlayerScore) {
	t.Helper()
	game := &models.Game{
		ID:       id,
		GameType: models.GameTypeFourPlayer,
		Date:     date,
		Players:  players,
		Rules:    models.DefaultRuleSet(),
	}
	if err := store.GameRepo().Create(context.Background(), game); err != nil {
		t.Fatalf("seed game %s: %v", id, err)
	}
}

func TestMonthlyStatistics(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedUser(t, store, "u1", "Akira")

	june := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	seedFreeGame(t, store, "in1", june, []models.PlayerScore{
		{UserID: "u1", Rank: 1, FinalAmount: 8000},
		{UserID: "u2", Rank: 2, FinalAmount: -8000},
	})
	seedFreeGame(t, store, "in2", june.AddDate(0, 0, 5), []models.PlayerScore{
		{UserID: "u1", Rank: 2, FinalAmount: -3000},
		{UserID: "u2", Rank: 1, FinalAmount: 3000},
	})
	// Outside the month, must not contribute.
	seedFreeGame(t, store, "out", june.AddDate(0, 1, 0), []models.PlayerScore{
		{UserID: "u1", Rank: 1, FinalAmount: 99999},
	})

	svc := NewStatsService(store.GameRepo(), store.UserRepo())
	got, err := svc.MonthlyStatistics(context.Background(), "u1", june, stats.FilterAll)
	if err != nil {
		t.Fatalf("MonthlyStatistics: %v", err)
	}

	if got.Summary.GameCount != 2 {
		t.Errorf("GameCount = %d, want 2", got.Summary.GameCount)
	}
	if got.Summary.Net != 5000 {
		t.Errorf("Net = %d, want 5000", got.Summary.Net)
	}
	if got.Summary.RankCounts[1] != 1 || got.Summary.RankCounts[2] != 1 {
		t.Errorf("RankCounts = %v, want one 1st and one 2nd", got.Summary.RankCounts)
	}
	if len(got.Daily) != 30 {
		t.Errorf("daily entries = %d, want 30 for June", len(got.Daily))
	}
}

func TestMonthlyStatisticsNoGames(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedUser(t, store, "u1", "Akira")

	svc := NewStatsService(store.GameRepo(), store.UserRepo())
	got, err := svc.MonthlyStatistics(context.Background(), "u1", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), stats.FilterAll)
	if err != nil {
		t.Fatalf("MonthlyStatistics: %v", err)
	}
	if got.Summary.GameCount != 0 || got.Summary.Net != 0 {
		t.Errorf("empty month summary = %+v, want zeros", got.Summary)
	}
	if len(got.Daily) != 28 {
		t.Errorf("daily entries = %d, want 28 for February 2025", len(got.Daily))
	}
}

func TestMonthlyStatisticsUnknownUser(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc := NewStatsService(store.GameRepo(), store.UserRepo())

	if _, err := svc.MonthlyStatistics(context.Background(), "missing", time.Now(), stats.FilterAll); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("error = %v, want %v", err, ErrUserNotFound)
	}
}
