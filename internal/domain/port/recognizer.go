package port

import (
	"context"

	"facegate/internal/domain/entity"
)

// DistanceBackend compares two face crops with a named recognition model.
// Crops are already located faces, so implementations must skip detection.
type DistanceBackend interface {
	Distance(ctx context.Context, a, b entity.FaceCrop, modelID string) (float64, error)
}

// Embedder turns a face crop into a feature vector.
type Embedder interface {
	ModelID() string
	Embed(ctx context.Context, crop entity.FaceCrop) ([]float32, error)
}
