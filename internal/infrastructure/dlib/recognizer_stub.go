//go:build !dlib
// +build !dlib

package dlib

import (
	"context"

	"facegate/internal/domain/entity"
	"facegate/internal/domain/port"
)

type Recognizer struct{}

func NewRecognizer(modelsDir string) (*Recognizer, error) { return nil, ErrDlibDisabled }

func (r *Recognizer) Method() entity.DetectionMethod { return entity.MethodFallback2 }
func (r *Recognizer) Name() string                   { return "dlib-hog" }
func (r *Recognizer) ModelID() string                { return ModelID }
func (r *Recognizer) Close() error                   { return nil }

func (r *Recognizer) Detect(ctx context.Context, frame port.Frame) ([]entity.FaceCandidate, error) {
	return nil, ErrDlibDisabled
}

func (r *Recognizer) Locate(ctx context.Context, frame port.Frame, box entity.BBox) (*entity.EyeLandmarks, error) {
	return nil, ErrDlibDisabled
}

func (r *Recognizer) Embed(ctx context.Context, crop entity.FaceCrop) ([]float32, error) {
	return nil, ErrDlibDisabled
}
