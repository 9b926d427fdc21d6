package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"facegate/internal/domain/entity"
	"facegate/internal/domain/port"
)

// CascadeReport tells which detector answered and how many broke on the way.
type CascadeReport struct {
	Method   entity.DetectionMethod
	Found    bool
	Attempts int
	Failures int
}

// Unavailable is true when every detector that was tried returned an error.
func (r CascadeReport) Unavailable() bool {
	return r.Attempts > 0 && r.Failures == r.Attempts
}

// DetectionCascade tries detectors in priority order and stops at the first one that finds a face.
type DetectionCascade struct {
	detectors []port.FaceDetector
	log       *zap.Logger
}

// NewDetectionCascade keeps the detectors in the order given.
func NewDetectionCascade(log *zap.Logger, detectors ...port.FaceDetector) (*DetectionCascade, error) {
	if len(detectors) == 0 {
		return nil, entity.ErrNoDetectors
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &DetectionCascade{detectors: detectors, log: log}, nil
}

// Detect returns the candidates of the first detector with a non-empty result.
// Results of different detectors are never merged.
func (c *DetectionCascade) Detect(ctx context.Context, frame port.Frame) ([]entity.FaceCandidate, CascadeReport) {
	var report CascadeReport

	for _, d := range c.detectors {
		if ctx.Err() != nil {
			break
		}

		report.Attempts++
		found, err := c.run(ctx, d, frame)
		if err != nil {
			report.Failures++
			c.log.Warn("detector failed",
				zap.String("stage", "detect"),
				zap.String("detector", d.Name()),
				zap.Error(err))
			continue
		}

		found = clipCandidates(found, d.Method(), frame.Width(), frame.Height())
		c.log.Debug("detector finished",
			zap.String("stage", "detect"),
			zap.String("detector", d.Name()),
			zap.Int("faces", len(found)))
		if len(found) > 0 {
			report.Method = d.Method()
			report.Found = true
			return found, report
		}
	}

	return nil, report
}

func (c *DetectionCascade) run(ctx context.Context, d port.FaceDetector, frame port.Frame) (found []entity.FaceCandidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			found = nil
			err = fmt.Errorf("%s detector panic: %v", d.Name(), r)
		}
	}()
	return d.Detect(ctx, frame)
}

// clipCandidates stamps the cascade method and drops boxes left empty by clipping.
func clipCandidates(found []entity.FaceCandidate, method entity.DetectionMethod, w, h int) []entity.FaceCandidate {
	out := make([]entity.FaceCandidate, 0, len(found))
	for _, c := range found {
		c.Box = c.Box.Clip(w, h)
		if c.Box.Empty() {
			continue
		}
		c.Method = method
		out = append(out, c)
	}
	return out
}
