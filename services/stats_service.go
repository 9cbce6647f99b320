package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tsumo-app/tsumo-server/models"
	"github.com/tsumo-app/tsumo-server/repositories"
	"github.com/tsumo-app/tsumo-server/stats"
)

// PlayerStatistics is one month of aggregated results for a player.
type PlayerStatistics struct {
	UserID  string           `json:"user_id"`
	From    time.Time        `json:"from"`
	To      time.Time        `json:"to"`
	Filter  stats.GameFilter `json:"filter"`
	Summary stats.Summary    `json:"summary"`
	Daily   []stats.DayTotal `json:"daily"`
}

type StatsService interface {
	MonthlyStatistics(ctx context.Context, userID string, month time.Time, filter stats.GameFilter) (*PlayerStatistics, error)
}

type statsService struct {
	gameRepo repositories.GameRepository
	userRepo repositories.UserRepository
}

func NewStatsService(gameRepo repositories.GameRepository, userRepo repositories.UserRepository) StatsService {
	return &statsService{gameRepo: gameRepo, userRepo: userRepo}
}

// MonthlyStatistics aggregates the user's games for the month containing
// the given time. A failed game fetch degrades to an empty month rather
// than an error; aggregation itself never faults.
func (s *statsService) MonthlyStatistics(ctx context.Context, userID string, month time.Time, filter stats.GameFilter) (*PlayerStatistics, error) {
	from, to := stats.MonthRange(month)

	var games []models.Game
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fetched, err := s.gameRepo.ListByUserID(gctx, userID, nil)
		if err == nil {
			games = fetched
		}
		return nil
	})
	g.Go(func() error {
		_, err := s.userRepo.GetByID(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, ErrUserNotFound
	}

	filtered := stats.FilterGames(games, from, to, filter)
	return &PlayerStatistics{
		UserID:  userID,
		From:    from,
		To:      to,
		Filter:  filter,
		Summary: stats.Summarize(filtered, userID),
		Daily:   stats.DailyTotals(filtered, userID, from, to),
	}, nil
}
