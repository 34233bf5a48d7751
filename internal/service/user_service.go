package service

import (
	"context"

	"user-registry/internal/domain"
	"user-registry/internal/repository"
)

// CreateUserInput carries the caller-supplied fields of a new record.
// No field is validated: any text is accepted, empty strings included,
// matching the registry's accept-everything contract.
type CreateUserInput struct {
	Username  string
	Email     string
	FirstName *string
	LastName  *string
}

// UserService coordinates registry operations over User records.
type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	user := &domain.User{
		Username:  input.Username,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}
