//go:build gocv
// +build gocv

package vision

import "gocv.io/x/gocv"

// netProfile is the input normalisation a recognition model was trained with.
type netProfile struct {
	size   int
	scale  float64
	mean   gocv.Scalar
	swapRB bool
}

var netProfiles = map[string]netProfile{
	"ArcFace": {
		size:   112,
		scale:  1.0 / 127.5,
		mean:   gocv.NewScalar(127.5, 127.5, 127.5, 0),
		swapRB: true,
	},
	"Facenet512": {
		size:   160,
		scale:  1.0 / 127.5,
		mean:   gocv.NewScalar(127.5, 127.5, 127.5, 0),
		swapRB: true,
	},
	// VGG-Face expects BGR with the per channel training mean removed.
	"VGG-Face": {
		size:   224,
		scale:  1.0,
		mean:   gocv.NewScalar(93.5940, 104.7624, 129.1863, 0),
		swapRB: false,
	},
}
