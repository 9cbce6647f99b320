package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tsumo-app/tsumo-server/models"
	"github.com/tsumo-app/tsumo-server/repositories"
	"github.com/tsumo-app/tsumo-server/scoring"
	"github.com/tsumo-app/tsumo-server/stats"
)

// LeaderboardBroadcaster pushes a refreshed leaderboard to live
// subscribers of a group room. Satisfied by *live.Hub.
type LeaderboardBroadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

// GroupRoomID names the live room for a group.
func GroupRoomID(groupID string) string {
	return "group_" + groupID
}

// PlayerEntry is one participant's raw result as submitted by the
// client. Settlement amounts are computed server-side.
type PlayerEntry struct {
	UserID string `json:"user_id"`
	Rank   int    `json:"rank"`
	Score  int    `json:"score"`
}

type RecordGameInput struct {
	GroupID  *string         `json:"group_id,omitempty"`
	GameType models.GameType `json:"game_type"`
	Date     time.Time       `json:"date"`
	Players  []PlayerEntry   `json:"players"`
	Chip     int             `json:"chip"`
	TableFee int             `json:"table_fee"`
	GameFee  int             `json:"game_fee"`
	Rules    models.RuleSet  `json:"rules"`
}

type GameService interface {
	RecordGame(ctx context.Context, currentUserID string, input RecordGameInput) (*models.Game, error)
	GetGame(ctx context.Context, gameID string) (*models.Game, error)
	ListUserGames(ctx context.Context, userID string, groupID *string) ([]models.Game, error)
	ListGroupGames(ctx context.Context, groupID string) ([]models.Game, error)
	DeleteGame(ctx context.Context, gameID, currentUserID string) error
}

type gameService struct {
	gameRepo    repositories.GameRepository
	groupRepo   repositories.GroupRepository
	memberRepo  repositories.GroupMemberRepository
	broadcaster LeaderboardBroadcaster
}

// NewGameService builds a GameService. broadcaster may be nil, in which
// case recorded group games do not trigger a live update.
func NewGameService(
	gameRepo repositories.GameRepository,
	groupRepo repositories.GroupRepository,
	memberRepo repositories.GroupMemberRepository,
	broadcaster LeaderboardBroadcaster,
) GameService {
	return &gameService{
		gameRepo:    gameRepo,
		groupRepo:   groupRepo,
		memberRepo:  memberRepo,
		broadcaster: broadcaster,
	}
}

func (s *gameService) RecordGame(ctx context.Context, currentUserID string, input RecordGameInput) (*models.Game, error) {
	if err := s.validateInput(ctx, input); err != nil {
		return nil, err
	}

	players := make([]models.PlayerScore, len(input.Players))
	for i, p := range input.Players {
		players[i] = models.PlayerScore{
			UserID: p.UserID,
			Rank:   p.Rank,
			Score:  p.Score,
		}
	}

	playerCount := len(players)
	settled := scoring.SettleScores(players, input.Rules, input.Chip)
	settled = scoring.DistributeFees(settled, input.TableFee, input.GameFee, playerCount)

	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	game := &models.Game{
		ID:       newID(),
		GroupID:  input.GroupID,
		GameType: input.GameType,
		Date:     date,
		Players:  settled,
		Rate:     input.Rules.Rate,
		Chip:     input.Chip,
		TableFee: input.TableFee,
		GameFee:  input.GameFee,
		Rules:    input.Rules,
	}
	if err := s.gameRepo.Create(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if game.GroupID != nil {
		s.broadcastLeaderboard(ctx, *game.GroupID)
	}
	return game, nil
}

func (s *gameService) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game %s: %w", gameID, err)
	}
	return game, nil
}

func (s *gameService) ListUserGames(ctx context.Context, userID string, groupID *string) ([]models.Game, error) {
	games, err := s.gameRepo.ListByUserID(ctx, userID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list games for user %s: %w", userID, err)
	}
	return games, nil
}

func (s *gameService) ListGroupGames(ctx context.Context, groupID string) ([]models.Game, error) {
	games, err := s.gameRepo.ListByGroupID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list games for group %s: %w", groupID, err)
	}
	return games, nil
}

// DeleteGame removes a game. Only a participant of the game may delete
// it.
func (s *gameService) DeleteGame(ctx context.Context, gameID, currentUserID string) error {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return ErrGameNotFound
		}
		return fmt.Errorf("failed to get game %s: %w", gameID, err)
	}
	if _, ok := game.PlayerResult(currentUserID); !ok {
		return ErrLastGameParticipant
	}

	if err := s.gameRepo.Delete(ctx, gameID); err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return ErrGameNotFound
		}
		return fmt.Errorf("failed to delete game %s: %w", gameID, err)
	}

	if game.GroupID != nil {
		s.broadcastLeaderboard(ctx, *game.GroupID)
	}
	return nil
}

func (s *gameService) validateInput(ctx context.Context, input RecordGameInput) error {
	switch input.GameType {
	case models.GameTypeFourPlayer, models.GameTypeThreePlayer, models.GameTypeFree:
	default:
		return ErrInvalidGameType
	}

	count := len(input.Players)
	if required := input.GameType.PlayerCount(); required > 0 {
		if count != required {
			return ErrInvalidPlayerCount
		}
	} else if count < 2 || count > 4 {
		return ErrInvalidPlayerCount
	}

	seen := make(map[string]bool, count)
	for _, p := range input.Players {
		if p.UserID == "" {
			return ErrValidationFailed
		}
		if seen[p.UserID] {
			return ErrDuplicatePlayer
		}
		seen[p.UserID] = true
	}

	// Ranks must form the permutation 1..count.
	ranks := make(map[int]bool, count)
	for _, p := range input.Players {
		if p.Rank < 1 || p.Rank > count || ranks[p.Rank] {
			return ErrInvalidRanks
		}
		ranks[p.Rank] = true
	}

	if input.GroupID != nil {
		members, err := s.memberRepo.ListByGroupID(ctx, *input.GroupID)
		if err != nil {
			return fmt.Errorf("failed to list members of group %s: %w", *input.GroupID, err)
		}
		memberSet := make(map[string]bool, len(members))
		for _, m := range members {
			memberSet[m.UserID] = true
		}
		for _, p := range input.Players {
			if !memberSet[p.UserID] {
				return ErrGamePlayersNotMembers
			}
		}
	}
	return nil
}

// broadcastLeaderboard recomputes the group ranking and pushes it to the
// group's live room. Failures are swallowed; the write already
// succeeded.
func (s *gameService) broadcastLeaderboard(ctx context.Context, groupID string) {
	if s.broadcaster == nil {
		return
	}
	games, err := s.gameRepo.ListByGroupID(ctx, groupID)
	if err != nil {
		return
	}
	members, err := s.memberRepo.ListByGroupID(ctx, groupID)
	if err != nil {
		return
	}
	if len(members) == 0 {
		group, err := s.groupRepo.GetByID(ctx, groupID)
		if err != nil {
			return
		}
		members = stats.InferMembers(groupID, games, group.OwnerID)
	}
	rows := stats.GroupRanking(groupID, games, members)
	s.broadcaster.BroadcastToRoom(GroupRoomID(groupID), rows)
}
