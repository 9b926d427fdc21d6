package port

import (
	"context"

	"facegate/internal/domain/entity"
)

// CropStore holds face crops for the span between alignment and the ensemble.
type CropStore interface {
	// Put stores the crop and returns it with its ID (and Path, if any) set.
	Put(ctx context.Context, crop entity.FaceCrop) (entity.FaceCrop, error)

	// Release deletes a stored crop. Releasing twice is not an error.
	Release(crop entity.FaceCrop) error
}
