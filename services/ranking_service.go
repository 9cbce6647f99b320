package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tsumo-app/tsumo-server/models"
	"github.com/tsumo-app/tsumo-server/repositories"
	"github.com/tsumo-app/tsumo-server/stats"
)

// Membership source for a leaderboard. Authoritative means actual group
// membership records were used; inferred means membership was
// reconstructed from game participation.
const (
	MembersAuthoritative = "authoritative"
	MembersInferred      = "inferred"
)

type LeaderboardEntry struct {
	Position   int    `json:"position"`
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	TotalScore int    `json:"total_score"`
}

type Leaderboard struct {
	GroupID       string             `json:"group_id"`
	MembersSource string             `json:"members_source"`
	Entries       []LeaderboardEntry `json:"entries"`
}

type RankingService interface {
	GroupLeaderboard(ctx context.Context, groupID string) (*Leaderboard, error)
}

type rankingService struct {
	groupRepo  repositories.GroupRepository
	memberRepo repositories.GroupMemberRepository
	gameRepo   repositories.GameRepository
	userRepo   repositories.UserRepository
}

func NewRankingService(
	groupRepo repositories.GroupRepository,
	memberRepo repositories.GroupMemberRepository,
	gameRepo repositories.GameRepository,
	userRepo repositories.UserRepository,
) RankingService {
	return &rankingService{
		groupRepo:  groupRepo,
		memberRepo: memberRepo,
		gameRepo:   gameRepo,
		userRepo:   userRepo,
	}
}

// GroupLeaderboard totals settled results per member across the group's
// games. When no membership records exist, membership is inferred from
// game participation and the result is flagged accordingly.
func (s *rankingService) GroupLeaderboard(ctx context.Context, groupID string) (*Leaderboard, error) {
	var (
		group   *models.Group
		members []models.GroupMember
		games   []models.Game
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fetched, err := s.groupRepo.GetByID(gctx, groupID)
		if err != nil {
			if errors.Is(err, repositories.ErrGroupNotFound) {
				return ErrGroupNotFound
			}
			return fmt.Errorf("failed to get group %s: %w", groupID, err)
		}
		group = fetched
		return nil
	})
	g.Go(func() error {
		// Membership records being unavailable is not fatal: the
		// leaderboard degrades to inferred membership below.
		if fetched, err := s.memberRepo.ListByGroupID(gctx, groupID); err == nil {
			members = fetched
		}
		return nil
	})
	g.Go(func() error {
		fetched, err := s.gameRepo.ListByGroupID(gctx, groupID)
		if err != nil {
			return fmt.Errorf("failed to list games for group %s: %w", groupID, err)
		}
		games = fetched
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	source := MembersAuthoritative
	if len(members) == 0 {
		members = stats.InferMembers(groupID, games, group.OwnerID)
		source = MembersInferred
	}

	rows := stats.GroupRanking(groupID, games, members)
	entries := make([]LeaderboardEntry, len(rows))
	for i, row := range rows {
		entries[i] = LeaderboardEntry{
			Position:   i + 1,
			UserID:     row.UserID,
			TotalScore: row.TotalScore,
			Name:       s.resolveName(ctx, row.UserID),
		}
	}

	return &Leaderboard{
		GroupID:       groupID,
		MembersSource: source,
		Entries:       entries,
	}, nil
}

func (s *rankingService) resolveName(ctx context.Context, userID string) string {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || user.Name == "" {
		return fallbackUserName(userID)
	}
	return user.Name
}
