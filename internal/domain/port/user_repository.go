package port

import (
	"context"

	"facegate/internal/domain/entity"
)

// UserRepository stores chat users and their dialog state
type UserRepository interface {
	// Get returns a snapshot of the user, creating one in the main menu if unknown
	Get(ctx context.Context, userID, chatID int64) (*entity.User, error)

	// UpdateState changes the dialog state of a known user
	UpdateState(ctx context.Context, userID int64, state entity.UserState) error
}
