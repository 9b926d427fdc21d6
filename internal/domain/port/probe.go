package port

import (
	"context"

	"facegate/internal/domain/entity"
)

// QualityProbe measures the pixel statistics of a face region.
type QualityProbe interface {
	Measure(ctx context.Context, frame Frame, box entity.BBox) (entity.QualityMeasures, error)
}

// LivenessProbe measures texture, frequency and skin signals of a face region.
type LivenessProbe interface {
	Signals(ctx context.Context, frame Frame, box entity.BBox) (entity.LivenessSignals, error)
}
