package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tsumo-app/tsumo-server/models"
)

var ErrGameNotFound = errors.New("game not found")

type GameRepository interface {
	Create(ctx context.Context, game *models.Game) error
	GetByID(ctx context.Context, id string) (*models.Game, error)
	// ListByUserID returns every game the user took part in, group and
	// free games alike, newest first. A non-nil groupID narrows the list
	// to that group's games.
	ListByUserID(ctx context.Context, userID string, groupID *string) ([]models.Game, error)
	ListByGroupID(ctx context.Context, groupID string) ([]models.Game, error)
	Delete(ctx context.Context, id string) error
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

func (r *postgresGameRepository) Create(ctx context.Context, game *models.Game) error {
	playersJSON, err := json.Marshal(game.Players)
	if err != nil {
		return fmt.Errorf("failed to encode players: %w", err)
	}
	rulesJSON, err := json.Marshal(game.Rules)
	if err != nil {
		return fmt.Errorf("failed to encode rules: %w", err)
	}

	query := `
		INSERT INTO games (id, group_id, game_type, date, players, rate, chip, table_fee, game_fee, rules)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		game.ID,
		game.GroupID,
		game.GameType,
		game.Date,
		playersJSON,
		game.Rate,
		game.Chip,
		game.TableFee,
		game.GameFee,
		rulesJSON,
	).Scan(&game.CreatedAt, &game.UpdatedAt)
	if err != nil {
		return err
	}
	return nil
}

func (r *postgresGameRepository) GetByID(ctx context.Context, id string) (*models.Game, error) {
	query := selectGameColumns + ` WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	game, err := scanGame(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return game, nil
}

func (r *postgresGameRepository) ListByUserID(ctx context.Context, userID string, groupID *string) ([]models.Game, error) {
	// Participation is matched inside the players JSONB document.
	needle, err := json.Marshal([]map[string]string{{"user_id": userID}})
	if err != nil {
		return nil, err
	}

	query := selectGameColumns + ` WHERE players @> $1::jsonb`
	args := []interface{}{needle}
	if groupID != nil {
		query += ` AND group_id = $2`
		args = append(args, *groupID)
	}
	query += ` ORDER BY date DESC`

	return r.listGames(ctx, query, args...)
}

func (r *postgresGameRepository) ListByGroupID(ctx context.Context, groupID string) ([]models.Game, error) {
	query := selectGameColumns + ` WHERE group_id = $1 ORDER BY date DESC`
	return r.listGames(ctx, query, groupID)
}

func (r *postgresGameRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

const selectGameColumns = `
	SELECT id, group_id, game_type, date, players, rate, chip, table_fee, game_fee, rules, created_at, updated_at
	FROM games`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGame(row rowScanner) (*models.Game, error) {
	var (
		game        models.Game
		playersJSON []byte
		rulesJSON   []byte
	)
	err := row.Scan(
		&game.ID,
		&game.GroupID,
		&game.GameType,
		&game.Date,
		&playersJSON,
		&game.Rate,
		&game.Chip,
		&game.TableFee,
		&game.GameFee,
		&rulesJSON,
		&game.CreatedAt,
		&game.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(playersJSON, &game.Players); err != nil {
		return nil, fmt.Errorf("failed to decode players for game %s: %w", game.ID, err)
	}
	if err := json.Unmarshal(rulesJSON, &game.Rules); err != nil {
		return nil, fmt.Errorf("failed to decode rules for game %s: %w", game.ID, err)
	}
	return &game, nil
}

func (r *postgresGameRepository) listGames(ctx context.Context, query string, args ...interface{}) ([]models.Game, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := make([]models.Game, 0)
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, *game)
	}
	return games, rows.Err()
}
