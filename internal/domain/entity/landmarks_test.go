package entity

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEyeLandmarks_AngleAndCenter(t *testing.T) {
	e := NewEyeLandmarks(image.Pt(60, 40), image.Pt(20, 40))
	require.Equal(t, image.Pt(20, 40), e.Left)
	require.InDelta(t, 0.0, e.Angle(), 1e-9)
	require.Equal(t, image.Pt(40, 40), e.Center())

	e = NewEyeLandmarks(image.Pt(0, 0), image.Pt(10, 10))
	require.InDelta(t, 45.0, e.Angle(), 1e-9)
}

func TestEyesFromShape(t *testing.T) {
	shape := []image.Point{{100, 50}, {80, 50}, {20, 54}, {40, 54}, {60, 90}}
	e, ok := EyesFromShape(shape)
	require.True(t, ok)
	require.Equal(t, image.Pt(30, 54), e.Left)
	require.Equal(t, image.Pt(90, 50), e.Right)

	_, ok = EyesFromShape(shape[:2])
	require.False(t, ok)
}
