package repository

import (
	"context"

	"user-registry/internal/domain"
)

// UserRepository defines the registry operations over User records.
// Lookup misses are reported as domain.ErrUserNotFound.
type UserRepository interface {
	// Create assigns the next id, stamps CreatedAt and stores the record.
	// Id assignment and insertion happen as one atomic step.
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// List returns all records in creation order.
	List(ctx context.Context) ([]domain.User, error)
}
