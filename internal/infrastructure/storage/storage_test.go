package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"facegate/internal/domain/entity"
)

func TestMemoryUserRepository_GetCreates(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	u, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, u.State)

	require.NoError(t, repo.UpdateState(ctx, 1, entity.StateAwaitingProbe))
	u, err = repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingProbe, u.State)

	require.NoError(t, repo.UpdateState(ctx, 99, entity.StateProcessing))
}

func TestMemoryUserRepository_GetReturnsCopy(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	u, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	u.SetState(entity.StateProcessing)

	stored, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, stored.State)
}

func TestMemoryUserRepository_ConcurrentAccess(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = repo.UpdateState(ctx, 1, entity.StateAwaitingReference)
		}()
		go func() {
			defer wg.Done()
			u, err := repo.Get(ctx, 1, 10)
			if err != nil {
				t.Error(err)
				return
			}
			_ = u.InFlow()
		}()
	}
	wg.Wait()
}

func TestMemoryCropStore_PutRelease(t *testing.T) {
	store := NewMemoryCropStore()
	ctx := context.Background()

	crop, err := store.Put(ctx, entity.FaceCrop{Role: entity.RoleProbe, Data: []byte("jpeg")})
	require.NoError(t, err)
	require.NotEmpty(t, crop.ID)
	require.Equal(t, 1, store.Len())

	require.NoError(t, store.Release(crop))
	require.NoError(t, store.Release(crop))
	require.Zero(t, store.Len())
}

func TestTempCropStore_PutRelease(t *testing.T) {
	store, err := NewTempCropStore(t.TempDir())
	require.NoError(t, err)

	crop, err := store.Put(context.Background(), entity.FaceCrop{Role: entity.RoleReference, Data: []byte("jpeg")})
	require.NoError(t, err)
	require.FileExists(t, crop.Path)

	data, err := os.ReadFile(crop.Path)
	require.NoError(t, err)
	require.Equal(t, []byte("jpeg"), data)

	require.NoError(t, store.Release(crop))
	require.NoFileExists(t, crop.Path)
	require.NoError(t, store.Release(crop))
}

func TestTempCropStore_CancelledContext(t *testing.T) {
	store, err := NewTempCropStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Put(ctx, entity.FaceCrop{Data: []byte("jpeg")})
	require.ErrorIs(t, err, context.Canceled)
}

func TestTempCropStore_RemovesPartialFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewTempCropStore(dir)
	require.NoError(t, err)

	errDiskFull := errors.New("no space left on device")
	writeFile = func(name string, data []byte, perm os.FileMode) error {
		require.NoError(t, os.WriteFile(name, data[:1], perm))
		return errDiskFull
	}
	defer func() { writeFile = os.WriteFile }()

	_, err = store.Put(context.Background(), entity.FaceCrop{Role: entity.RoleProbe, Data: []byte("jpeg")})
	require.ErrorIs(t, err, errDiskFull)

	left, err := filepath.Glob(filepath.Join(dir, "*"))
	require.NoError(t, err)
	require.Empty(t, left)
}
