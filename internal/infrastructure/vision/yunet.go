//go:build gocv
// +build gocv

package vision

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"facegate/internal/domain/entity"
	"facegate/internal/domain/port"
)

const (
	yunetScore = 0.6
	yunetNMS   = 0.3
	yunetTopK  = 50
)

// YuNet is the OpenCV FaceDetectorYN model. It serves both as the last
// detector of the cascade and as a 5-point landmark locator.
type YuNet struct {
	mu       sync.Mutex
	detector gocv.FaceDetectorYN
}

var (
	_ port.FaceDetector    = (*YuNet)(nil)
	_ port.LandmarkLocator = (*YuNet)(nil)
)

func NewYuNet(modelPath string) (*YuNet, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("yunet model: %w", err)
	}

	detector := gocv.NewFaceDetectorYN(modelPath, "", image.Pt(320, 320))
	detector.SetScoreThreshold(yunetScore)
	detector.SetNMSThreshold(yunetNMS)
	detector.SetTopK(yunetTopK)

	return &YuNet{detector: detector}, nil
}

func (y *YuNet) Method() entity.DetectionMethod { return entity.MethodFallback3 }
func (y *YuNet) Name() string                   { return "yunet" }

type yunetFace struct {
	candidate entity.FaceCandidate
	eyes      entity.EyeLandmarks
}

func (y *YuNet) Detect(ctx context.Context, frame port.Frame) ([]entity.FaceCandidate, error) {
	faces, err := y.run(frame)
	if err != nil {
		return nil, err
	}

	found := make([]entity.FaceCandidate, 0, len(faces))
	for _, f := range faces {
		found = append(found, f.candidate)
	}
	return found, nil
}

// Locate picks the YuNet face overlapping box the most and returns its eyes.
func (y *YuNet) Locate(ctx context.Context, frame port.Frame, box entity.BBox) (*entity.EyeLandmarks, error) {
	faces, err := y.run(frame)
	if err != nil {
		return nil, err
	}

	best, bestIoU := -1, 0.0
	for i, f := range faces {
		if iou := entity.IoU(f.candidate.Box, box); iou > bestIoU {
			best, bestIoU = i, iou
		}
	}
	if best < 0 {
		return nil, entity.ErrNoLandmarks
	}
	eyes := faces[best].eyes
	return &eyes, nil
}

func (y *YuNet) run(frame port.Frame) ([]yunetFace, error) {
	mat, err := matOf(frame)
	if err != nil {
		return nil, err
	}

	y.mu.Lock()
	defer y.mu.Unlock()

	y.detector.SetInputSize(image.Pt(mat.Cols(), mat.Rows()))

	out := gocv.NewMat()
	defer out.Close()
	y.detector.Detect(mat, &out)

	// row: x, y, w, h, right eye, left eye, nose, mouth corners, score
	faces := make([]yunetFace, 0, out.Rows())
	for i := 0; i < out.Rows(); i++ {
		x := int(out.GetFloatAt(i, 0))
		yy := int(out.GetFloatAt(i, 1))
		w := int(out.GetFloatAt(i, 2))
		h := int(out.GetFloatAt(i, 3))

		faces = append(faces, yunetFace{
			candidate: entity.FaceCandidate{
				Box:        entity.BBox{X1: x, Y1: yy, X2: x + w, Y2: yy + h},
				Confidence: float64(out.GetFloatAt(i, 14)),
				Method:     entity.MethodFallback3,
			},
			eyes: entity.NewEyeLandmarks(
				image.Pt(int(out.GetFloatAt(i, 4)), int(out.GetFloatAt(i, 5))),
				image.Pt(int(out.GetFloatAt(i, 6)), int(out.GetFloatAt(i, 7))),
			),
		})
	}
	return faces, nil
}

func (y *YuNet) Close() error {
	y.mu.Lock()
	defer y.mu.Unlock()
	y.detector.Close()
	return nil
}
