//go:build dlib
// +build dlib

package dlib

import (
	"context"
	"fmt"
	"sync"

	"github.com/Kagami/go-face"

	"facegate/internal/domain/entity"
	"facegate/internal/domain/port"
)

// HOG gives no score for its hits.
const hogConfidence = 0.8

// Recognizer wraps the go-face models: HOG detector, 5-point shape
// predictor and the ResNet descriptor.
type Recognizer struct {
	mu  sync.Mutex
	rec *face.Recognizer
}

var (
	_ port.FaceDetector    = (*Recognizer)(nil)
	_ port.LandmarkLocator = (*Recognizer)(nil)
	_ port.Embedder        = (*Recognizer)(nil)
)

// NewRecognizer loads the dlib model files from modelsDir.
func NewRecognizer(modelsDir string) (*Recognizer, error) {
	rec, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load dlib models: %w", err)
	}
	return &Recognizer{rec: rec}, nil
}

func (r *Recognizer) Method() entity.DetectionMethod { return entity.MethodFallback2 }
func (r *Recognizer) Name() string                   { return "dlib-hog" }
func (r *Recognizer) ModelID() string                { return ModelID }

func (r *Recognizer) recognize(data []byte) ([]face.Face, error) {
	if len(data) == 0 {
		return nil, ErrNoEncodedFrame
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	faces, err := r.rec.Recognize(data)
	if err != nil {
		return nil, fmt.Errorf("dlib recognize: %w", err)
	}
	return faces, nil
}

func (r *Recognizer) Detect(ctx context.Context, frame port.Frame) ([]entity.FaceCandidate, error) {
	faces, err := r.recognize(frame.Encoded())
	if err != nil {
		return nil, err
	}

	found := make([]entity.FaceCandidate, 0, len(faces))
	for _, f := range faces {
		found = append(found, entity.FaceCandidate{
			Box:        entity.BBoxFromRect(f.Rectangle),
			Confidence: hogConfidence,
			Method:     entity.MethodFallback2,
		})
	}
	return found, nil
}

// Locate runs the shape predictor and keeps the face matching box best.
func (r *Recognizer) Locate(ctx context.Context, frame port.Frame, box entity.BBox) (*entity.EyeLandmarks, error) {
	faces, err := r.recognize(frame.Encoded())
	if err != nil {
		return nil, err
	}

	var best *face.Face
	bestIoU := 0.0
	for i := range faces {
		if iou := entity.IoU(entity.BBoxFromRect(faces[i].Rectangle), box); iou > bestIoU {
			best, bestIoU = &faces[i], iou
		}
	}
	if best == nil {
		return nil, entity.ErrNoLandmarks
	}

	eyes, ok := entity.EyesFromShape(best.Shapes)
	if !ok {
		return nil, entity.ErrNoLandmarks
	}
	return &eyes, nil
}

// Embed returns the 128-d descriptor of the face in the crop.
// go-face cannot skip its own detector, so a crop it finds no face in fails.
func (r *Recognizer) Embed(ctx context.Context, crop entity.FaceCrop) ([]float32, error) {
	if len(crop.Data) == 0 {
		return nil, ErrNoEncodedFrame
	}

	r.mu.Lock()
	f, err := r.rec.RecognizeSingle(crop.Data)
	r.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("dlib descriptor: %w", err)
	}
	if f == nil {
		return nil, entity.ErrNoLandmarks
	}

	desc := [128]float32(f.Descriptor)
	out := make([]float32, len(desc))
	copy(out, desc[:])
	return out, nil
}

func (r *Recognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rec != nil {
		r.rec.Close()
		r.rec = nil
	}
	return nil
}
