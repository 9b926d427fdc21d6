package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"facegate/internal/domain/entity"
	"facegate/internal/domain/port"
)

// writeFile is replaced in tests to simulate a write that fails half way.
var writeFile = os.WriteFile

// TempCropStore writes crops as JPEG files under a directory until released.
type TempCropStore struct {
	dir string
}

// NewTempCropStore uses dir, or the system temp directory when dir is empty.
func NewTempCropStore(dir string) (*TempCropStore, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create crop dir: %w", err)
	}
	return &TempCropStore{dir: dir}, nil
}

func (s *TempCropStore) Put(ctx context.Context, crop entity.FaceCrop) (entity.FaceCrop, error) {
	if err := ctx.Err(); err != nil {
		return entity.FaceCrop{}, err
	}

	crop.ID = uuid.NewString()
	crop.Path = filepath.Join(s.dir, fmt.Sprintf("%s-%s.jpg", crop.Role, crop.ID))
	if err := writeFile(crop.Path, crop.Data, 0o600); err != nil {
		// WriteFile may fail after creating the file
		_ = os.Remove(crop.Path)
		return entity.FaceCrop{}, fmt.Errorf("write crop: %w", err)
	}
	return crop, nil
}

func (s *TempCropStore) Release(crop entity.FaceCrop) error {
	if crop.Path == "" {
		return nil
	}
	if err := os.Remove(crop.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove crop: %w", err)
	}
	return nil
}

var _ port.CropStore = (*TempCropStore)(nil)
