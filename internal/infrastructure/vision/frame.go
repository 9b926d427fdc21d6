//go:build gocv
// +build gocv

package vision

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"facegate/internal/domain/entity"
	"facegate/internal/domain/port"
)

// Enabled reports whether the OpenCV adapters are compiled in.
const Enabled = true

// Frame is a BGR image held in an OpenCV matrix.
type Frame struct {
	mat  gocv.Mat
	data []byte
}

func (f *Frame) Width() int  { return f.mat.Cols() }
func (f *Frame) Height() int { return f.mat.Rows() }

// Encoded returns the upload bytes, or nil for frames derived by the Processor.
func (f *Frame) Encoded() []byte { return f.data }

func (f *Frame) Close() error {
	return f.mat.Close()
}

// matOf unwraps frames produced by this package.
func matOf(frame port.Frame) (gocv.Mat, error) {
	f, ok := frame.(*Frame)
	if !ok || f == nil {
		return gocv.Mat{}, fmt.Errorf("unsupported frame type %T", frame)
	}
	if f.mat.Empty() {
		return gocv.Mat{}, errors.New("empty frame")
	}
	return f.mat, nil
}

// Codec decodes uploads with OpenCV.
type Codec struct{}

func NewCodec() *Codec { return &Codec{} }

func (c *Codec) Decode(data []byte) (port.Frame, error) {
	mat, err := decodeToMat(data)
	if err != nil {
		return nil, err
	}
	return &Frame{mat: mat, data: data}, nil
}

// Processor crops, rotates and encodes frames.
type Processor struct {
	jpegQuality int
}

func NewProcessor(jpegQuality int) *Processor {
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = 95
	}
	return &Processor{jpegQuality: jpegQuality}
}

func (p *Processor) Crop(frame port.Frame, box entity.BBox) (port.Frame, error) {
	mat, err := matOf(frame)
	if err != nil {
		return nil, err
	}

	box = box.Clip(mat.Cols(), mat.Rows())
	if box.Empty() {
		return nil, fmt.Errorf("crop box %+v is outside the frame", box)
	}

	region := mat.Region(box.Rect())
	defer region.Close()
	return &Frame{mat: region.Clone()}, nil
}

func (p *Processor) Rotate(frame port.Frame, center image.Point, angle float64) (port.Frame, error) {
	mat, err := matOf(frame)
	if err != nil {
		return nil, err
	}

	rot := gocv.GetRotationMatrix2D(center, angle, 1.0)
	defer rot.Close()

	rotated := gocv.NewMat()
	gocv.WarpAffine(mat, &rotated, rot, image.Pt(mat.Cols(), mat.Rows()))
	if rotated.Empty() {
		rotated.Close()
		return nil, errors.New("rotation produced an empty image")
	}
	return &Frame{mat: rotated}, nil
}

func (p *Processor) Encode(frame port.Frame) ([]byte, error) {
	mat, err := matOf(frame)
	if err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, mat, []int{int(gocv.IMWriteJpegQuality), p.jpegQuality})
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()

	// the native buffer is freed on Close
	return append([]byte(nil), buf.GetBytes()...), nil
}

func decodeToMat(imageData []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("decode image: %w", err)
	}
	if mat.Empty() {
		mat.Close()
		return gocv.Mat{}, errors.New("failed to decode image")
	}
	return mat, nil
}

func ratioOfMask(mask gocv.Mat) float64 {
	total := mask.Cols() * mask.Rows()
	if total <= 0 {
		return 0
	}
	return float64(gocv.CountNonZero(mask)) / float64(total)
}
