package app

import (
	"context"
	"fmt"

	"facegate/internal/domain/entity"
	"facegate/internal/domain/port"
)

// QualityAssessor grades a detected face region.
type QualityAssessor struct {
	probe       port.QualityProbe
	minFaceSize int
}

func NewQualityAssessor(probe port.QualityProbe, minFaceSize int) *QualityAssessor {
	return &QualityAssessor{probe: probe, minFaceSize: minFaceSize}
}

// Assess measures the region and grades it. The face size always comes from the box.
func (a *QualityAssessor) Assess(ctx context.Context, frame port.Frame, box entity.BBox) (entity.QualityMetrics, error) {
	if a.probe == nil {
		return entity.QualityMetrics{}, fmt.Errorf("quality probe: %w", entity.ErrBackendUnavailable)
	}

	m, err := a.probe.Measure(ctx, frame, box)
	if err != nil {
		return entity.QualityMetrics{}, fmt.Errorf("measure quality: %w", err)
	}
	m.Width, m.Height = box.Width(), box.Height()

	return entity.GradeQuality(m, a.minFaceSize), nil
}
