package models

import "time"

// Group is a mahjong circle. Authoritative membership lives in the
// group_members collection, not on the group record itself.
type Group struct {
	ID                   string     `json:"id" db:"id"`
	Name                 string     `json:"name" db:"name"`
	OwnerID              string     `json:"owner_id" db:"owner_id"`
	InviteToken          *string    `json:"invite_token,omitempty" db:"invite_token"`
	InviteTokenExpiresAt *time.Time `json:"invite_token_expires_at,omitempty" db:"invite_token_expires_at"`
	LogoKey              *string    `json:"-" db:"logo_key"`
	LogoURL              *string    `json:"logo_url,omitempty" db:"-"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`

	// Optional linked data, populated by the service layer.
	Members []GroupMember `json:"members,omitempty" db:"-"`
}

// IsInviteTokenValid reports whether the group currently carries an
// unexpired invite token.
func (g *Group) IsInviteTokenValid(now time.Time) bool {
	if g.InviteToken == nil || g.InviteTokenExpiresAt == nil {
		return false
	}
	return now.Before(*g.InviteTokenExpiresAt)
}
