package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/tsumo-app/tsumo-server/models"
)

var (
	ErrMemberNotFound = errors.New("group member not found")
	ErrMemberConflict = errors.New("user is already a member of the group")
)

type GroupMemberRepository interface {
	Add(ctx context.Context, member *models.GroupMember) error
	ListByGroupID(ctx context.Context, groupID string) ([]models.GroupMember, error)
	ListByUserID(ctx context.Context, userID string) ([]models.GroupMember, error)
	UpdateRole(ctx context.Context, groupID, userID string, role models.MemberRole) error
	Remove(ctx context.Context, groupID, userID string) error
}

type postgresGroupMemberRepository struct {
	db *sql.DB
}

func NewPostgresGroupMemberRepository(db *sql.DB) GroupMemberRepository {
	return &postgresGroupMemberRepository{db: db}
}

func (r *postgresGroupMemberRepository) Add(ctx context.Context, member *models.GroupMember) error {
	query := `
		INSERT INTO group_members (id, group_id, user_id, role)
		VALUES ($1, $2, $3, $4)
		RETURNING joined_at`

	err := r.db.QueryRowContext(ctx, query,
		member.ID,
		member.GroupID,
		member.UserID,
		member.Role,
	).Scan(&member.JoinedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrMemberConflict
		}
		return err
	}
	return nil
}

// ListByGroupID returns the group's members in join order, which is the
// order the ranking tie-break stabilizes on.
func (r *postgresGroupMemberRepository) ListByGroupID(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	query := `
		SELECT id, group_id, user_id, role, joined_at
		FROM group_members
		WHERE group_id = $1
		ORDER BY joined_at ASC`
	return r.listMembers(ctx, query, groupID)
}

func (r *postgresGroupMemberRepository) ListByUserID(ctx context.Context, userID string) ([]models.GroupMember, error) {
	query := `
		SELECT id, group_id, user_id, role, joined_at
		FROM group_members
		WHERE user_id = $1
		ORDER BY joined_at ASC`
	return r.listMembers(ctx, query, userID)
}

func (r *postgresGroupMemberRepository) UpdateRole(ctx context.Context, groupID, userID string, role models.MemberRole) error {
	query := `UPDATE group_members SET role = $1 WHERE group_id = $2 AND user_id = $3`
	result, err := r.db.ExecContext(ctx, query, role, groupID, userID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMemberNotFound)
}

func (r *postgresGroupMemberRepository) Remove(ctx context.Context, groupID, userID string) error {
	query := `DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, groupID, userID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMemberNotFound)
}

func (r *postgresGroupMemberRepository) listMembers(ctx context.Context, query string, args ...interface{}) ([]models.GroupMember, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]models.GroupMember, 0)
	for rows.Next() {
		var m models.GroupMember
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
