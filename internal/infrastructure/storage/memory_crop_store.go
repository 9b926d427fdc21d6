package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"facegate/internal/domain/entity"
	"facegate/internal/domain/port"
)

// MemoryCropStore keeps crops in a map. Used by the CLI and tests.
type MemoryCropStore struct {
	mu    sync.Mutex
	crops map[string]entity.FaceCrop
}

func NewMemoryCropStore() *MemoryCropStore {
	return &MemoryCropStore{crops: make(map[string]entity.FaceCrop)}
}

func (s *MemoryCropStore) Put(ctx context.Context, crop entity.FaceCrop) (entity.FaceCrop, error) {
	if err := ctx.Err(); err != nil {
		return entity.FaceCrop{}, err
	}
	crop.ID = uuid.NewString()

	s.mu.Lock()
	s.crops[crop.ID] = crop
	s.mu.Unlock()
	return crop, nil
}

func (s *MemoryCropStore) Release(crop entity.FaceCrop) error {
	s.mu.Lock()
	delete(s.crops, crop.ID)
	s.mu.Unlock()
	return nil
}

// Len is the number of crops not yet released.
func (s *MemoryCropStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.crops)
}

var _ port.CropStore = (*MemoryCropStore)(nil)
