//go:build gocv
// +build gocv

package vision

import (
	"context"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"facegate/internal/domain/entity"
	"facegate/internal/domain/port"
)

// Haar cascade settings. Scales are tried in order, smallest step first.
var haarScales = []float64{1.05, 1.1, 1.2, 1.3}

const (
	haarMinNeighbors = 4
	haarMinSize      = 20
	haarConfidence   = 0.75 // the cascade has no score, every hit gets this
	haarScaleImage   = 2    // CASCADE_SCALE_IMAGE
)

// HaarDetector is the frontal face Haar cascade.
type HaarDetector struct {
	mu         sync.Mutex
	classifier gocv.CascadeClassifier
}

var _ port.FaceDetector = (*HaarDetector)(nil)

func NewHaarDetector(cascadePath string) (*HaarDetector, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(cascadePath) {
		classifier.Close()
		return nil, fmt.Errorf("failed to load haar cascade from %s", cascadePath)
	}
	return &HaarDetector{classifier: classifier}, nil
}

func (d *HaarDetector) Method() entity.DetectionMethod { return entity.MethodFallback1 }
func (d *HaarDetector) Name() string                   { return "haar" }

func (d *HaarDetector) Detect(ctx context.Context, frame port.Frame) ([]entity.FaceCandidate, error) {
	mat, err := matOf(frame)
	if err != nil {
		return nil, err
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	d.mu.Lock()
	defer d.mu.Unlock()

	boxes, err := entity.ScanScales(haarScales, func(scale float64) ([]entity.BBox, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rects := d.classifier.DetectMultiScaleWithParams(gray, scale, haarMinNeighbors, haarScaleImage,
			image.Pt(haarMinSize, haarMinSize), image.Pt(0, 0))

		out := make([]entity.BBox, 0, len(rects))
		for _, r := range rects {
			out = append(out, entity.BBoxFromRect(r))
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	found := make([]entity.FaceCandidate, 0, len(boxes))
	for _, b := range boxes {
		found = append(found, entity.FaceCandidate{Box: b, Confidence: haarConfidence, Method: entity.MethodFallback1})
	}
	return found, nil
}

func (d *HaarDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.classifier.Close()
}
