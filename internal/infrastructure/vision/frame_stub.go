//go:build !gocv
// +build !gocv

package vision

import (
	"image"

	"facegate/internal/domain/entity"
	"facegate/internal/domain/port"
)

const Enabled = false

type Codec struct{}

func NewCodec() *Codec { return &Codec{} }

// Decode always fails without OpenCV.
func (c *Codec) Decode(data []byte) (port.Frame, error) {
	return nil, ErrGoCVDisabled
}

type Processor struct{}

func NewProcessor(jpegQuality int) *Processor { return &Processor{} }

func (p *Processor) Crop(frame port.Frame, box entity.BBox) (port.Frame, error) {
	return nil, ErrGoCVDisabled
}

func (p *Processor) Rotate(frame port.Frame, center image.Point, angle float64) (port.Frame, error) {
	return nil, ErrGoCVDisabled
}

func (p *Processor) Encode(frame port.Frame) ([]byte, error) {
	return nil, ErrGoCVDisabled
}
