package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tsumo-app/tsumo-server/models"
	"github.com/tsumo-app/tsumo-server/repositories"
	"github.com/tsumo-app/tsumo-server/storage"
)

// Invite tokens expire 24 hours after generation.
const inviteTokenDuration = 24 * time.Hour

const inviteTokenLength = 16 // bytes, 32 hex characters

type GroupService interface {
	CreateGroup(ctx context.Context, name string, ownerID string) (*models.Group, error)
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	ListUserGroups(ctx context.Context, userID string) ([]models.Group, error)
	RenameGroup(ctx context.Context, groupID, currentUserID, name string) (*models.Group, error)
	DeleteGroup(ctx context.Context, groupID, currentUserID string) error

	GenerateInviteToken(ctx context.Context, groupID, currentUserID string) (*models.Group, error)
	InvalidateInviteToken(ctx context.Context, groupID, currentUserID string) error
	JoinByInviteToken(ctx context.Context, token, userID string) (*models.Group, error)

	LeaveGroup(ctx context.Context, groupID, userID string) error
	RemoveMember(ctx context.Context, groupID, currentUserID, memberUserID string) error
	TransferOwnership(ctx context.Context, groupID, currentOwnerID, newOwnerID string) error

	UpdateGroupLogo(ctx context.Context, groupID, currentUserID string, file io.Reader, contentType string) (*models.Group, error)
}

type groupService struct {
	groupRepo  repositories.GroupRepository
	memberRepo repositories.GroupMemberRepository
	userRepo   repositories.UserRepository
	uploader   storage.FileUploader
}

func NewGroupService(
	groupRepo repositories.GroupRepository,
	memberRepo repositories.GroupMemberRepository,
	userRepo repositories.UserRepository,
	uploader storage.FileUploader,
) GroupService {
	return &groupService{
		groupRepo:  groupRepo,
		memberRepo: memberRepo,
		userRepo:   userRepo,
		uploader:   uploader,
	}
}

func (s *groupService) CreateGroup(ctx context.Context, name string, ownerID string) (*models.Group, error) {
	if name == "" {
		return nil, ErrGroupNameRequired
	}
	if _, err := s.userRepo.GetByID(ctx, ownerID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", ownerID, err)
	}

	group := &models.Group{
		ID:      newID(),
		Name:    name,
		OwnerID: ownerID,
	}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	// The creator is the first member, with the owner role.
	member := &models.GroupMember{
		ID:      newID(),
		GroupID: group.ID,
		UserID:  ownerID,
		Role:    models.RoleOwner,
	}
	if err := s.memberRepo.Add(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to add owner to group %s: %w", group.ID, err)
	}

	group.Members = []models.GroupMember{*member}
	return group, nil
}

func (s *groupService) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group %s: %w", groupID, err)
	}

	members, err := s.memberRepo.ListByGroupID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of group %s: %w", groupID, err)
	}
	for i := range members {
		if user, err := s.userRepo.GetByID(ctx, members[i].UserID); err == nil {
			user.PasswordHash = ""
			members[i].User = user
		}
	}
	group.Members = members
	s.populateLogoURL(group)
	return group, nil
}

func (s *groupService) ListUserGroups(ctx context.Context, userID string) ([]models.Group, error) {
	groups, err := s.groupRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for user %s: %w", userID, err)
	}
	return groups, nil
}

func (s *groupService) RenameGroup(ctx context.Context, groupID, currentUserID, name string) (*models.Group, error) {
	if name == "" {
		return nil, ErrGroupNameRequired
	}
	group, err := s.requireOwner(ctx, groupID, currentUserID)
	if err != nil {
		return nil, err
	}

	group.Name = name
	if err := s.groupRepo.Update(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to rename group %s: %w", groupID, err)
	}
	return group, nil
}

func (s *groupService) DeleteGroup(ctx context.Context, groupID, currentUserID string) error {
	if _, err := s.requireOwner(ctx, groupID, currentUserID); err != nil {
		return err
	}
	if err := s.groupRepo.Delete(ctx, groupID); err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return ErrGroupNotFound
		}
		return fmt.Errorf("failed to delete group %s: %w", groupID, err)
	}
	return nil
}

// GenerateInviteToken issues a fresh 24h invite token, replacing any
// previous one.
func (s *groupService) GenerateInviteToken(ctx context.Context, groupID, currentUserID string) (*models.Group, error) {
	group, err := s.requireOwner(ctx, groupID, currentUserID)
	if err != nil {
		return nil, err
	}

	token, err := generateSecureToken(inviteTokenLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite token: %w", err)
	}
	expiresAt := time.Now().Add(inviteTokenDuration)

	group.InviteToken = &token
	group.InviteTokenExpiresAt = &expiresAt
	if err := s.groupRepo.Update(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to store invite token for group %s: %w", groupID, err)
	}
	return group, nil
}

func (s *groupService) InvalidateInviteToken(ctx context.Context, groupID, currentUserID string) error {
	group, err := s.requireOwner(ctx, groupID, currentUserID)
	if err != nil {
		return err
	}

	group.InviteToken = nil
	group.InviteTokenExpiresAt = nil
	if err := s.groupRepo.Update(ctx, group); err != nil {
		return fmt.Errorf("failed to invalidate invite token for group %s: %w", groupID, err)
	}
	return nil
}

func (s *groupService) JoinByInviteToken(ctx context.Context, token, userID string) (*models.Group, error) {
	group, err := s.groupRepo.GetByInviteToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, ErrInviteExpired
		}
		return nil, fmt.Errorf("failed to look up invite token: %w", err)
	}
	if !group.IsInviteTokenValid(time.Now()) {
		return nil, ErrInviteExpired
	}

	member := &models.GroupMember{
		ID:      newID(),
		GroupID: group.ID,
		UserID:  userID,
		Role:    models.RoleMember,
	}
	if err := s.memberRepo.Add(ctx, member); err != nil {
		if errors.Is(err, repositories.ErrMemberConflict) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to join group %s: %w", group.ID, err)
	}
	return group, nil
}

// LeaveGroup removes the user from the group. The owner may only leave
// when no other members remain; the empty group is deleted with them.
func (s *groupService) LeaveGroup(ctx context.Context, groupID, userID string) error {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return ErrGroupNotFound
		}
		return fmt.Errorf("failed to get group %s: %w", groupID, err)
	}

	if group.OwnerID == userID {
		members, err := s.memberRepo.ListByGroupID(ctx, groupID)
		if err != nil {
			return fmt.Errorf("failed to list members of group %s: %w", groupID, err)
		}
		for _, m := range members {
			if m.UserID != userID {
				return ErrOwnerCannotLeave
			}
		}
		return s.groupRepo.Delete(ctx, groupID)
	}

	if err := s.memberRepo.Remove(ctx, groupID, userID); err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to remove member %s from group %s: %w", userID, groupID, err)
	}
	return nil
}

func (s *groupService) RemoveMember(ctx context.Context, groupID, currentUserID, memberUserID string) error {
	if _, err := s.requireOwner(ctx, groupID, currentUserID); err != nil {
		return err
	}
	if memberUserID == currentUserID {
		// The owner leaves through LeaveGroup, not by self-removal.
		return ErrForbiddenOperation
	}
	if err := s.memberRepo.Remove(ctx, groupID, memberUserID); err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to remove member %s from group %s: %w", memberUserID, groupID, err)
	}
	return nil
}

func (s *groupService) TransferOwnership(ctx context.Context, groupID, currentOwnerID, newOwnerID string) error {
	group, err := s.requireOwner(ctx, groupID, currentOwnerID)
	if err != nil {
		return err
	}

	members, err := s.memberRepo.ListByGroupID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to list members of group %s: %w", groupID, err)
	}
	found := false
	for _, m := range members {
		if m.UserID == newOwnerID {
			found = true
			break
		}
	}
	if !found {
		return ErrMemberNotFound
	}

	if err := s.memberRepo.UpdateRole(ctx, groupID, newOwnerID, models.RoleOwner); err != nil {
		return fmt.Errorf("failed to promote member %s: %w", newOwnerID, err)
	}
	if err := s.memberRepo.UpdateRole(ctx, groupID, currentOwnerID, models.RoleMember); err != nil {
		return fmt.Errorf("failed to demote owner %s: %w", currentOwnerID, err)
	}

	group.OwnerID = newOwnerID
	if err := s.groupRepo.Update(ctx, group); err != nil {
		return fmt.Errorf("failed to update owner of group %s: %w", groupID, err)
	}
	return nil
}

func (s *groupService) UpdateGroupLogo(ctx context.Context, groupID, currentUserID string, file io.Reader, contentType string) (*models.Group, error) {
	if s.uploader == nil {
		return nil, ErrForbiddenOperation
	}
	group, err := s.requireOwner(ctx, groupID, currentUserID)
	if err != nil {
		return nil, err
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	key := fmt.Sprintf("avatars/groups/%s%s", groupID, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload logo for group %s: %w", groupID, err)
	}

	oldKey := group.LogoKey
	group.LogoKey = &key
	if err := s.groupRepo.Update(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to save logo key for group %s: %w", groupID, err)
	}

	if oldKey != nil && *oldKey != key {
		// Best effort; a stale object is not worth failing the request.
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	s.populateLogoURL(group)
	return group, nil
}

func (s *groupService) populateLogoURL(group *models.Group) {
	if group == nil || group.LogoKey == nil || s.uploader == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*group.LogoKey); url != "" {
		group.LogoURL = &url
	}
}

func (s *groupService) requireOwner(ctx context.Context, groupID, userID string) (*models.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group %s: %w", groupID, err)
	}
	if group.OwnerID != userID {
		return nil, ErrOwnerActionForbidden
	}
	return group, nil
}
