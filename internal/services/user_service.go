package services

import (
	"context"
	"fmt"
	"strings"

	"farmcloud/internal/apperrors"
	"farmcloud/internal/models"
	"farmcloud/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context, opts repository.ListOptions) ([]models.User, int64, error)
	ListByRole(ctx context.Context, role string) ([]models.User, error)
	// UpdateUser saves profile fields. An empty password keeps the current one.
	UpdateUser(ctx context.Context, user *models.User, password string) (*models.User, error)
	ToggleStatus(ctx context.Context, id uint) (*models.User, error)
	DeleteUser(ctx context.Context, id uint) error
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (s *userService) CreateUser(ctx context.Context, user *models.User, password string) error {
	if strings.TrimSpace(password) == "" {
		return apperrors.NewValidationError("password", "is required")
	}
	user.ApplyDefaults()
	user.SyncActive()
	user.EnsureAvatar()
	if err := user.Validate(); err != nil {
		return err
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return err
	}
	user.Password = hashed
	return s.repo.Create(ctx, user)
}

func (s *userService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *userService) ListUsers(ctx context.Context, opts repository.ListOptions) ([]models.User, int64, error) {
	return s.repo.List(ctx, opts)
}

func (s *userService) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	if role == "" {
		return nil, apperrors.NewValidationError("role", "Role parameter required")
	}
	return s.repo.ListByRole(ctx, models.UserRole(strings.ToUpper(role)))
}

func (s *userService) UpdateUser(ctx context.Context, user *models.User, password string) (*models.User, error) {
	existing, err := s.repo.GetByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Password = existing.Password
	user.DateJoined = existing.DateJoined
	user.LastLogin = existing.LastLogin
	user.IsSuperuser = existing.IsSuperuser

	user.ApplyDefaults()
	user.SyncActive()
	user.EnsureAvatar()
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if password != "" {
		if user.Password, err = hashPassword(password); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, user.ID)
}

func (s *userService) ToggleStatus(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.ToggleStatus()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}
