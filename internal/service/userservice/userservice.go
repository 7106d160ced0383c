package userservice

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/school-store/backend/internal/domain"
)

//go:generate mockgen -source=userservice.go -destination=userservice_mock.go -package=userservice

type UserRepo interface {
	GetByID(ctx context.Context, userID int) (*domain.User, error)
	List(ctx context.Context, role domain.Role) ([]domain.User, error)
}

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidRole  = errors.New("role must be student or teacher")
)

type Service struct {
	userRepo UserRepo
}

func New(userRepo UserRepo) *Service {
	return &Service{
		userRepo: userRepo,
	}
}

// List returns all accounts, optionally filtered by role. Teachers use
// it to pick award targets.
func (s *Service) List(ctx context.Context, role domain.Role) ([]domain.User, error) {
	if role != "" && role != domain.RoleStudent && role != domain.RoleTeacher {
		return nil, ErrInvalidRole
	}
	users, err := s.userRepo.List(ctx, role)
	if err != nil {
		zap.L().Error("failed to list users", zap.Error(err))
		return nil, err
	}
	return users, nil
}

func (s *Service) Get(ctx context.Context, userID int) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get user", zap.Error(err))
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
