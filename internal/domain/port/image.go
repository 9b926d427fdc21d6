package port

import (
	"image"

	"facegate/internal/domain/entity"
)

// Frame is a decoded image owned by the caller until Close.
type Frame interface {
	Width() int
	Height() int
	// Encoded returns the bytes the frame was decoded from.
	Encoded() []byte
	Close() error
}

// ImageCodec turns raw upload bytes into frames.
type ImageCodec interface {
	Decode(data []byte) (Frame, error)
}

// ImageProcessor performs the geometric operations the aligner needs.
type ImageProcessor interface {
	// Crop copies box out of frame. The box is already clipped to the frame.
	Crop(frame Frame, box entity.BBox) (Frame, error)

	// Rotate turns the whole frame by angle degrees around center, keeping its size.
	Rotate(frame Frame, center image.Point, angle float64) (Frame, error)

	// Encode writes the frame as JPEG.
	Encode(frame Frame) ([]byte, error)
}
