//go:build gocv
// +build gocv

package vision

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"facegate/internal/domain/entity"
	"facegate/internal/domain/port"
)

// decodePNG runs a lossless fixture through the codec.
func decodePNG(t *testing.T, img image.Image) port.Frame {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	frame, err := NewCodec().Decode(buf.Bytes())
	require.NoError(t, err)
	t.Cleanup(func() { _ = frame.Close() })
	return frame
}

func grayImage(w, h int, value func(x, y int) uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: value(x, y)})
		}
	}
	return img
}

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func fullBox(frame port.Frame) entity.BBox {
	return entity.BBox{X2: frame.Width(), Y2: frame.Height()}
}

func signals(t *testing.T, img image.Image) entity.LivenessSignals {
	t.Helper()
	frame := decodePNG(t, img)
	s, err := NewLivenessProbe().Signals(context.Background(), frame, fullBox(frame))
	require.NoError(t, err)
	return s
}

func TestQualityProbe_PixelLevelBoundaries(t *testing.T) {
	tests := []struct {
		gray         uint8
		dark, bright float64
	}{
		{gray: 29, dark: 1, bright: 0},
		{gray: 30, dark: 0, bright: 0},
		{gray: 225, dark: 0, bright: 0},
		{gray: 226, dark: 0, bright: 1},
	}

	for _, tt := range tests {
		frame := decodePNG(t, grayImage(40, 40, func(int, int) uint8 { return tt.gray }))

		m, err := NewQualityProbe().Measure(context.Background(), frame, fullBox(frame))
		require.NoError(t, err)
		require.Equal(t, tt.dark, m.DarkRatio, "gray %d", tt.gray)
		require.Equal(t, tt.bright, m.BrightRatio, "gray %d", tt.gray)
		require.InDelta(t, float64(tt.gray), m.MeanIntensity, 1e-9)
		require.Zero(t, m.BlurVariance)
	}
}

func TestLivenessProbe_GradientVariance(t *testing.T) {
	const w, h = 64, 32

	flat := signals(t, grayImage(w, h, func(int, int) uint8 { return 128 }))
	require.Zero(t, flat.GradientVariance)

	// A vertical step gives |Sobel x| = 4*255 on the two columns next to the
	// edge and 0 elsewhere, so the variance is 1020^2 * p * (1-p) with p = 2/w.
	step := signals(t, grayImage(w, h, func(x, _ int) uint8 {
		if x < w/2 {
			return 0
		}
		return 255
	}))
	p := 2.0 / w
	require.InEpsilon(t, 1020*1020*p*(1-p), step.GradientVariance, 1e-6)
}

func TestLivenessProbe_HighFrequencyEnergy(t *testing.T) {
	const w, h = 64, 64
	dc := 128.0 * w * h

	t.Run("uniform frame keeps the DC term out of the summed rows", func(t *testing.T) {
		s := signals(t, grayImage(w, h, func(int, int) uint8 { return 128 }))
		require.Less(t, s.HighFrequencyEnergy, 1e-3*dc)
	})

	t.Run("alternating rows land on the first summed row", func(t *testing.T) {
		s := signals(t, grayImage(w, h, func(_, y int) uint8 { return uint8(255 * (y % 2)) }))
		// |F(h/2, 0)| = 255 * (h/2) * w
		require.InEpsilon(t, 255.0*h/2*w, s.HighFrequencyEnergy, 1e-3)
	})

	t.Run("alternating columns stay on the DC row", func(t *testing.T) {
		s := signals(t, grayImage(w, h, func(x, _ int) uint8 { return uint8(255 * (x % 2)) }))
		require.Less(t, s.HighFrequencyEnergy, 1e-3*dc)
	})
}

// With an odd height the centring shift is h - h/2 rows, which is not the
// same as h/2. A vertical cosine of frequency 17 on 63 rows shows up in
// spectrum rows 17 and 46; only row 46 is among the summed rows 32..46.
func TestLivenessProbe_HighFrequencyRowShiftOddHeight(t *testing.T) {
	const w, h, freq = 64, 63, 17

	s := signals(t, grayImage(w, h, func(_, y int) uint8 {
		v := 128 + 100*math.Cos(2*math.Pi*freq*float64(y)/h)
		return uint8(math.Round(v))
	}))

	peak := 100.0 / 2 * w * h
	require.Greater(t, s.HighFrequencyEnergy, 0.75*peak)
	require.Less(t, s.HighFrequencyEnergy, 1.25*peak)
}

func TestLivenessProbe_SkinHueBands(t *testing.T) {
	tests := []struct {
		name string
		c    color.RGBA
		want float64
	}{
		// OpenCV hue is degrees / 2
		{"hue 10", color.RGBA{R: 255, G: 85, B: 0, A: 255}, 1},
		{"hue 90", color.RGBA{R: 0, G: 255, B: 255, A: 255}, 0},
		{"hue 0", color.RGBA{R: 255, G: 0, B: 0, A: 255}, 1},
		{"hue 60", color.RGBA{R: 0, G: 255, B: 0, A: 255}, 0},
		{"hue 170", color.RGBA{R: 255, G: 0, B: 85, A: 255}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := signals(t, solidImage(32, 32, tt.c))
			require.Equal(t, tt.want, s.SkinRatio)
		})
	}
}
