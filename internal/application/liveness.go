package app

import (
	"context"
	"fmt"

	"facegate/internal/domain/entity"
	"facegate/internal/domain/port"
)

// LivenessScorer checks that the live capture is not a printed or replayed photo.
type LivenessScorer struct {
	probe   port.LivenessProbe
	enabled bool
}

func NewLivenessScorer(probe port.LivenessProbe, enabled bool) *LivenessScorer {
	return &LivenessScorer{probe: probe, enabled: enabled}
}

// Assess scores the face region. When disabled it passes without touching the probe.
func (s *LivenessScorer) Assess(ctx context.Context, frame port.Frame, box entity.BBox) (entity.LivenessAssessment, error) {
	if !s.enabled {
		return entity.LivenessSkipped(), nil
	}
	if s.probe == nil {
		return entity.LivenessAssessment{}, fmt.Errorf("liveness probe: %w", entity.ErrBackendUnavailable)
	}

	signals, err := s.probe.Signals(ctx, frame, box)
	if err != nil {
		return entity.LivenessAssessment{}, fmt.Errorf("measure liveness: %w", err)
	}
	return entity.ScoreLiveness(signals), nil
}
