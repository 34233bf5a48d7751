package memory

import (
	"context"
	"sync"
	"time"

	"user-registry/internal/domain"
	"user-registry/internal/repository"
)

// UserRepository keeps the registry in process memory. A single mutex
// guards both the id counter and the record slice so that id assignment
// and insertion are one indivisible step and reads observe a consistent
// snapshot.
type UserRepository struct {
	mu     sync.RWMutex
	users  []domain.User
	nextID int64
}

func NewUserRepository() repository.UserRepository {
	return &UserRepository{nextID: 1}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.ID = r.nextID
	user.CreatedAt = time.Now().UTC()
	r.nextID++
	r.users = append(r.users, *user)

	return user.ID, nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// ids are unique, the first match is the only match
	for i := range r.users {
		if r.users[i].ID == id {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, len(r.users))
	copy(out, r.users)
	return out, nil
}
