package services

import "errors"

// Shared errors used across services and the HTTP error mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed      = errors.New("validation failed")
	ErrPasswordTooShort      = errors.New("password must be at least 8 characters")
	ErrNameRequired          = errors.New("name is required")
	ErrGroupNameRequired     = errors.New("group name is required")
	ErrInvalidGameType       = errors.New("invalid game type")
	ErrInvalidPlayerCount    = errors.New("player count does not match the game type")
	ErrInvalidRanks          = errors.New("ranks must be a permutation of 1..N with no ties")
	ErrDuplicatePlayer       = errors.New("a player appears more than once in the game")
	ErrInviteExpired         = errors.New("invite link is invalid or has expired")
	ErrAlreadyMember         = errors.New("user is already a member of the group")
	ErrOwnerCannotLeave      = errors.New("owner must transfer ownership before leaving a non-empty group")
	ErrLastGameParticipant   = errors.New("only a participant of the game can delete it")
	ErrGamePlayersNotMembers = errors.New("all players of a group game must be members of the group")

	// Authentication and authorization
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
	ErrOwnerActionForbidden   = errors.New("only the group owner can perform this action")

	// Entity-specific not-found errors
	ErrUserNotFound   = errors.New("user not found")
	ErrGroupNotFound  = errors.New("group not found")
	ErrGameNotFound   = errors.New("game not found")
	ErrMemberNotFound = errors.New("group member not found")
)
