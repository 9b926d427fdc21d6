package storage

import (
	"context"
	"sync"

	"facegate/internal/domain/entity"
	"facegate/internal/domain/port"
)

// MemoryUserRepository keeps chat users in process memory.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[int64]*entity.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[int64]*entity.User),
	}
}

// Get returns a copy of the user, creating one in the main menu if unknown.
// Changes to the copy are not stored; use UpdateState.
func (r *MemoryUserRepository) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[userID]
	if !exists {
		user = entity.NewUser(userID, chatID)
		r.users[userID] = user
	}

	copied := *user
	return &copied, nil
}

// UpdateState is a no-op for unknown users.
func (r *MemoryUserRepository) UpdateState(ctx context.Context, userID int64, state entity.UserState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, exists := r.users[userID]; exists {
		user.SetState(state)
	}

	return nil
}

var _ port.UserRepository = (*MemoryUserRepository)(nil)
