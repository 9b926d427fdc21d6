package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"facegate/internal/domain/entity"
)

// ErrNoReference is returned when a selfie arrives before the reference photo.
var ErrNoReference = errors.New("reference photo is not found")

// SessionService drives the two-upload chat dialog: reference photo first, live selfie second.
type SessionService struct {
	users      *UserService
	verifier   Verifier
	references map[int64][]byte
	mu         sync.RWMutex
}

func NewSessionService(users *UserService, verifier Verifier) *SessionService {
	return &SessionService{
		users:      users,
		verifier:   verifier,
		references: make(map[int64][]byte),
	}
}

// Begin forgets any earlier reference and waits for a new one.
func (s *SessionService) Begin(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	s.forget(userID)
	return s.users.BeginVerification(ctx, userID, chatID)
}

// AcceptReference keeps the reference photo in memory until the selfie arrives.
func (s *SessionService) AcceptReference(ctx context.Context, userID, chatID int64, photo []byte) (*entity.User, error) {
	user, err := s.users.Advance(ctx, userID, chatID, entity.StateAwaitingProbe)
	if err != nil {
		return user, err
	}

	s.mu.Lock()
	s.references[userID] = photo
	s.mu.Unlock()
	return user, nil
}

// AcceptProbe verifies the selfie against the stored reference and returns the user to the menu.
// The reference is dropped whatever the result.
func (s *SessionService) AcceptProbe(ctx context.Context, userID, chatID int64, probe []byte) (entity.Outcome, error) {
	if s.verifier == nil {
		return nil, fmt.Errorf("verifier: %w", entity.ErrBackendUnavailable)
	}

	s.mu.RLock()
	reference, ok := s.references[userID]
	s.mu.RUnlock()
	if !ok || len(reference) == 0 {
		return nil, ErrNoReference
	}

	if _, err := s.users.Advance(ctx, userID, chatID, entity.StateProcessing); err != nil {
		return nil, err
	}
	defer func() {
		s.forget(userID)
		_, _ = s.users.Cancel(context.WithoutCancel(ctx), userID, chatID)
	}()

	return s.verifier.Verify(ctx, reference, probe)
}

// Cancel drops the dialog.
func (s *SessionService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	s.forget(userID)
	return s.users.Cancel(ctx, userID, chatID)
}

// hasReference reports whether a reference is waiting for its selfie.
func (s *SessionService) hasReference(userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.references[userID]) > 0
}

func (s *SessionService) forget(userID int64) {
	s.mu.Lock()
	delete(s.references, userID)
	s.mu.Unlock()
}
