package entity

import (
	"image"
	"math"
)

// EyeLandmarks are the eye centers of a face, Left being the one with the smaller x.
type EyeLandmarks struct {
	Left  image.Point
	Right image.Point
}

// NewEyeLandmarks orders two eye points by x.
func NewEyeLandmarks(a, b image.Point) EyeLandmarks {
	if b.X < a.X {
		a, b = b, a
	}
	return EyeLandmarks{Left: a, Right: b}
}

// Angle is the roll of the eye line in degrees.
func (e EyeLandmarks) Angle() float64 {
	dy := float64(e.Right.Y - e.Left.Y)
	dx := float64(e.Right.X - e.Left.X)
	return math.Atan2(dy, dx) * 180 / math.Pi
}

// Center is the midpoint between the eyes.
func (e EyeLandmarks) Center() image.Point {
	return image.Pt((e.Left.X+e.Right.X)/2, (e.Left.Y+e.Right.Y)/2)
}

// EyesFromShape averages dlib 5-point shape indices into two eye centers.
// Points 0,1 are one eye corners and 2,3 the other; point 4 is the nose.
func EyesFromShape(shape []image.Point) (EyeLandmarks, bool) {
	if len(shape) < 4 {
		return EyeLandmarks{}, false
	}
	a := image.Pt((shape[0].X+shape[1].X)/2, (shape[0].Y+shape[1].Y)/2)
	b := image.Pt((shape[2].X+shape[3].X)/2, (shape[2].Y+shape[3].Y)/2)
	if a == b {
		return EyeLandmarks{}, false
	}
	return NewEyeLandmarks(a, b), true
}
