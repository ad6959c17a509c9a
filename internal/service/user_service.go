package service

import (
	"context"
	"errors"

	"huddle/internal/models"
	"huddle/internal/repository"
)

// UserService covers user lookups and first-sight provisioning.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetOrCreate returns the user for an authenticated identity, creating the
// row on first sight. The identity token comes from the auth collaborator and
// is immutable once stored.
func (s *UserService) GetOrCreate(ctx context.Context, id, name string) (*models.User, error) {
	if id == "" {
		return nil, models.NewValidationError("User ID is required")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err == nil {
		return user, nil
	}

	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != "NOT_FOUND" {
		return nil, err
	}

	user = &models.User{ID: id, Name: name}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Get returns the user by identity token.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}
