//go:build !gocv
// +build !gocv

package vision

import (
	"context"

	"facegate/internal/domain/entity"
	"facegate/internal/domain/port"
)

// Without OpenCV no detector can be constructed; the constructors report
// ErrGoCVDisabled so the container leaves them out of the cascade.

type YOLODetector struct{}

func NewYOLODetector(modelPath string) (*YOLODetector, error) { return nil, ErrGoCVDisabled }

func (d *YOLODetector) Method() entity.DetectionMethod { return entity.MethodPrimary }
func (d *YOLODetector) Name() string                   { return "yolov8-face" }
func (d *YOLODetector) Close() error                   { return nil }

func (d *YOLODetector) Detect(ctx context.Context, frame port.Frame) ([]entity.FaceCandidate, error) {
	return nil, ErrGoCVDisabled
}

type HaarDetector struct{}

func NewHaarDetector(cascadePath string) (*HaarDetector, error) { return nil, ErrGoCVDisabled }

func (d *HaarDetector) Method() entity.DetectionMethod { return entity.MethodFallback1 }
func (d *HaarDetector) Name() string                   { return "haar" }
func (d *HaarDetector) Close() error                   { return nil }

func (d *HaarDetector) Detect(ctx context.Context, frame port.Frame) ([]entity.FaceCandidate, error) {
	return nil, ErrGoCVDisabled
}

type YuNet struct{}

func NewYuNet(modelPath string) (*YuNet, error) { return nil, ErrGoCVDisabled }

func (y *YuNet) Method() entity.DetectionMethod { return entity.MethodFallback3 }
func (y *YuNet) Name() string                   { return "yunet" }
func (y *YuNet) Close() error                   { return nil }

func (y *YuNet) Detect(ctx context.Context, frame port.Frame) ([]entity.FaceCandidate, error) {
	return nil, ErrGoCVDisabled
}

func (y *YuNet) Locate(ctx context.Context, frame port.Frame, box entity.BBox) (*entity.EyeLandmarks, error) {
	return nil, ErrGoCVDisabled
}
