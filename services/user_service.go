package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/tsumo-app/tsumo-server/models"
	"github.com/tsumo-app/tsumo-server/repositories"
	"github.com/tsumo-app/tsumo-server/storage"
)

type UserService interface {
	GetProfileByID(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*models.User, error)
	UpdateUserAvatar(ctx context.Context, userID string, file io.Reader, contentType string) (*models.User, error)
}

type UpdateProfileInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type userService struct {
	userRepo repositories.UserRepository
	uploader storage.FileUploader
}

func NewUserService(userRepo repositories.UserRepository, uploader storage.FileUploader) UserService {
	return &userService{
		userRepo: userRepo,
		uploader: uploader,
	}
}

func (s *userService) GetProfileByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	s.populateAvatarURL(user)
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, ErrNameRequired
		}
		user.Name = *input.Name
	}
	if input.Email != nil {
		user.Email = input.Email
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, ErrAuthEmailTaken
		}
		return nil, fmt.Errorf("failed to update user %s: %w", userID, err)
	}
	s.populateAvatarURL(user)
	return user, nil
}

func (s *userService) UpdateUserAvatar(ctx context.Context, userID string, file io.Reader, contentType string) (*models.User, error) {
	if s.uploader == nil {
		return nil, ErrForbiddenOperation
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	key := fmt.Sprintf("avatars/users/%s%s", userID, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload avatar for user %s: %w", userID, err)
	}

	oldKey := user.AvatarKey
	user.AvatarKey = &key
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save avatar key for user %s: %w", userID, err)
	}

	if oldKey != nil && *oldKey != key {
		// Best effort; a stale object is not worth failing the request.
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	s.populateAvatarURL(user)
	return user, nil
}

func (s *userService) populateAvatarURL(user *models.User) {
	if user == nil || user.AvatarKey == nil || s.uploader == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*user.AvatarKey); url != "" {
		user.AvatarURL = &url
	}
}
