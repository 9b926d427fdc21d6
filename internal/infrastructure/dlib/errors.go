package dlib

import "errors"

var (
	// ErrDlibDisabled is returned by every adapter in builds without the dlib tag.
	ErrDlibDisabled = errors.New("dlib build tag is not enabled")

	ErrNoEncodedFrame = errors.New("frame has no encoded bytes")
)

// ModelID is the ensemble name of the dlib ResNet descriptor.
const ModelID = "Dlib"
