//go:build !gocv
// +build !gocv

package vision

import (
	"context"

	"facegate/internal/domain/entity"
	"facegate/internal/domain/port"
)

type QualityProbe struct{}

func NewQualityProbe() *QualityProbe { return &QualityProbe{} }

// Measure fails in builds without the gocv tag.
func (p *QualityProbe) Measure(ctx context.Context, frame port.Frame, box entity.BBox) (entity.QualityMeasures, error) {
	return entity.QualityMeasures{}, ErrGoCVDisabled
}

type LivenessProbe struct{}

func NewLivenessProbe() *LivenessProbe { return &LivenessProbe{} }

func (p *LivenessProbe) Signals(ctx context.Context, frame port.Frame, box entity.BBox) (entity.LivenessSignals, error) {
	return entity.LivenessSignals{}, ErrGoCVDisabled
}
