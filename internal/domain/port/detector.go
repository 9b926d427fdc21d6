package port

import (
	"context"

	"facegate/internal/domain/entity"
)

// FaceDetector is one stage of the detection cascade.
type FaceDetector interface {
	// Method is the cascade position the detector reports its candidates under.
	Method() entity.DetectionMethod

	// Name identifies the backend in logs.
	Name() string

	// Detect returns every face found in the frame, possibly none.
	Detect(ctx context.Context, frame Frame) ([]entity.FaceCandidate, error)
}

// LandmarkLocator finds the eyes of an already detected face.
type LandmarkLocator interface {
	Name() string

	// Locate returns nil landmarks when the face has no usable eyes.
	Locate(ctx context.Context, frame Frame, box entity.BBox) (*entity.EyeLandmarks, error)
}
