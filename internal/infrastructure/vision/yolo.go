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
	yoloInputSize = 640
	yoloMinConf   = 0.25
	yoloNMSIoU    = 0.45
)

// YOLODetector runs a YOLOv8-face ONNX export through the OpenCV DNN module.
type YOLODetector struct {
	mu  sync.Mutex
	net gocv.Net
}

var _ port.FaceDetector = (*YOLODetector)(nil)

func NewYOLODetector(modelPath string) (*YOLODetector, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("yolo model: %w", err)
	}

	net := gocv.ReadNet(modelPath, "")
	if net.Empty() {
		return nil, fmt.Errorf("failed to load yolo model from %s", modelPath)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &YOLODetector{net: net}, nil
}

func (d *YOLODetector) Method() entity.DetectionMethod { return entity.MethodPrimary }
func (d *YOLODetector) Name() string                   { return "yolov8-face" }

func (d *YOLODetector) Detect(ctx context.Context, frame port.Frame) ([]entity.FaceCandidate, error) {
	_ = ctx
	mat, err := matOf(frame)
	if err != nil {
		return nil, err
	}

	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(yoloInputSize, yoloInputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.mu.Lock()
	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	d.mu.Unlock()
	defer out.Close()

	// [1, 4+1(+landmarks), anchors]
	dims := out.Size()
	if len(dims) != 3 || dims[1] < 5 {
		return nil, fmt.Errorf("unexpected yolo output shape %v", dims)
	}
	rows := out.Reshape(1, dims[1])
	defer rows.Close()

	sx := float64(mat.Cols()) / yoloInputSize
	sy := float64(mat.Rows()) / yoloInputSize

	var found []entity.FaceCandidate
	for i := 0; i < dims[2]; i++ {
		conf := float64(rows.GetFloatAt(4, i))
		if conf < yoloMinConf {
			continue
		}
		cx := float64(rows.GetFloatAt(0, i))
		cy := float64(rows.GetFloatAt(1, i))
		w := float64(rows.GetFloatAt(2, i))
		h := float64(rows.GetFloatAt(3, i))

		box := entity.BBox{
			X1: int((cx - w/2) * sx),
			Y1: int((cy - h/2) * sy),
			X2: int((cx + w/2) * sx),
			Y2: int((cy + h/2) * sy),
		}
		if box.Empty() {
			continue
		}
		found = append(found, entity.FaceCandidate{Box: box, Confidence: conf, Method: entity.MethodPrimary})
	}

	return entity.SuppressNonMax(found, yoloNMSIoU), nil
}

func (d *YOLODetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}
