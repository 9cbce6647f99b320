package models

import "time"

// MemberRole mirrors the member_role ENUM in the database.
type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleMember MemberRole = "member"
)

type GroupMember struct {
	ID       string     `json:"id" db:"id"`
	GroupID  string     `json:"group_id" db:"group_id"`
	UserID   string     `json:"user_id" db:"user_id"`
	Role     MemberRole `json:"role" db:"role"`
	JoinedAt time.Time  `json:"joined_at" db:"joined_at"`

	// Optional linked data, populated by the service layer.
	User *User `json:"user,omitempty" db:"-"`
}
