package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/tsumo-app/tsumo-server/models"
)

var (
	ErrGroupNotFound      = errors.New("group not found")
	ErrGroupTokenConflict = errors.New("group invite token conflict")
)

type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id string) (*models.Group, error)
	GetByInviteToken(ctx context.Context, token string) (*models.Group, error)
	ListByUserID(ctx context.Context, userID string) ([]models.Group, error)
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id string) error
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) Create(ctx context.Context, group *models.Group) error {
	query := `
		INSERT INTO groups (id, name, owner_id, invite_token, invite_token_expires_at, logo_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		group.ID,
		group.Name,
		group.OwnerID,
		group.InviteToken,
		group.InviteTokenExpiresAt,
		group.LogoKey,
	).Scan(&group.CreatedAt, &group.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "groups_invite_token_key" {
				return ErrGroupTokenConflict
			}
		}
		return err
	}
	return nil
}

func (r *postgresGroupRepository) GetByID(ctx context.Context, id string) (*models.Group, error) {
	query := `
		SELECT id, name, owner_id, invite_token, invite_token_expires_at, logo_key, created_at, updated_at
		FROM groups
		WHERE id = $1`
	return r.scanGroup(ctx, query, id)
}

func (r *postgresGroupRepository) GetByInviteToken(ctx context.Context, token string) (*models.Group, error) {
	query := `
		SELECT id, name, owner_id, invite_token, invite_token_expires_at, logo_key, created_at, updated_at
		FROM groups
		WHERE invite_token = $1`
	return r.scanGroup(ctx, query, token)
}

// ListByUserID returns the groups the user is a member of, resolved through
// the group_members collection.
func (r *postgresGroupRepository) ListByUserID(ctx context.Context, userID string) ([]models.Group, error) {
	query := `
		SELECT g.id, g.name, g.owner_id, g.invite_token, g.invite_token_expires_at, g.logo_key, g.created_at, g.updated_at
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = $1
		ORDER BY g.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]models.Group, 0)
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(
			&g.ID,
			&g.Name,
			&g.OwnerID,
			&g.InviteToken,
			&g.InviteTokenExpiresAt,
			&g.LogoKey,
			&g.CreatedAt,
			&g.UpdatedAt,
		); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *postgresGroupRepository) Update(ctx context.Context, group *models.Group) error {
	query := `
		UPDATE groups SET
			name = $1,
			owner_id = $2,
			invite_token = $3,
			invite_token_expires_at = $4,
			logo_key = $5,
			updated_at = now()
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		group.Name,
		group.OwnerID,
		group.InviteToken,
		group.InviteTokenExpiresAt,
		group.LogoKey,
		group.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "groups_invite_token_key" {
				return ErrGroupTokenConflict
			}
		}
		return err
	}
	return checkAffectedRows(result, ErrGroupNotFound)
}

func (r *postgresGroupRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGroupNotFound)
}

func (r *postgresGroupRepository) scanGroup(ctx context.Context, query string, args ...interface{}) (*models.Group, error) {
	group := &models.Group{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&group.ID,
		&group.Name,
		&group.OwnerID,
		&group.InviteToken,
		&group.InviteTokenExpiresAt,
		&group.LogoKey,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to scan group: %w", err)
	}
	return group, nil
}
