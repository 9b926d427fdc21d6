package app

import (
	"context"
	"fmt"

	"facegate/internal/domain/entity"
	"facegate/internal/domain/port"
)

// UserService moves chat users through the verification dialog.
type UserService struct {
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

// Advance moves the user to next, refusing steps the dialog does not allow.
func (s *UserService) Advance(ctx context.Context, userID, chatID int64, next entity.UserState) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	if !user.State.CanMoveTo(next) {
		return user, fmt.Errorf("%w: %s -> %s", entity.ErrInvalidTransition, user.State, next)
	}

	if err := s.repo.UpdateState(ctx, userID, next); err != nil {
		return nil, err
	}
	user.SetState(next)
	return user, nil
}

func (s *UserService) BeginVerification(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.Advance(ctx, userID, chatID, entity.StateAwaitingReference)
}

func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.Advance(ctx, userID, chatID, entity.StateMainMenu)
}
