package service

import (
	"context"
	"errors"

	"github.com/postwavehq/postwave/internal/models"
	"github.com/postwavehq/postwave/internal/repository"
)

type UserService interface {
	GetUserInfo(ctx context.Context, userID int64) (*models.User, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) GetUserInfo(ctx context.Context, userID int64) (*models.User, error) {
	if userID == 0 {
		return nil, errors.New("user id is not valid")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user doesn't exist")
	}
	return user, nil
}
