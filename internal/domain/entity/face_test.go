package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIoU_Identity(t *testing.T) {
	b := BBox{X1: 10, Y1: 10, X2: 60, Y2: 80}
	require.InDelta(t, 1.0, IoU(b, b), 1e-9)
}

func TestIoU_Symmetric(t *testing.T) {
	a := BBox{X1: 0, Y1: 0, X2: 40, Y2: 40}
	b := BBox{X1: 20, Y1: 10, X2: 70, Y2: 50}
	require.Equal(t, IoU(a, b), IoU(b, a))
	// intersection 20x30=600, union 1600+2000-600=3000
	require.InDelta(t, 0.2, IoU(a, b), 1e-9)
}

func TestIoU_DisjointAndDegenerate(t *testing.T) {
	a := BBox{X1: 0, Y1: 0, X2: 10, Y2: 10}
	require.Zero(t, IoU(a, BBox{X1: 20, Y1: 20, X2: 30, Y2: 30}))
	// touching edges share no area
	require.Zero(t, IoU(a, BBox{X1: 10, Y1: 0, X2: 20, Y2: 10}))
	require.Zero(t, IoU(a, BBox{X1: 5, Y1: 5, X2: 5, Y2: 9}))
	require.Zero(t, IoU(BBox{}, BBox{}))
}

func TestBBox_PadClipsToFrame(t *testing.T) {
	b := BBox{X1: 5, Y1: 10, X2: 55, Y2: 110}
	p := b.Pad(0.2, 60, 200)
	require.Equal(t, BBox{X1: 0, Y1: 0, X2: 60, Y2: 130}, p)
}

func TestAppendDistinct_DropsOverlaps(t *testing.T) {
	a := BBox{X1: 0, Y1: 0, X2: 100, Y2: 100}
	nearA := BBox{X1: 5, Y1: 5, X2: 100, Y2: 100}
	other := BBox{X1: 200, Y1: 0, X2: 300, Y2: 100}

	kept := AppendDistinct(nil, []BBox{a, nearA, other}, DuplicateIoU)
	require.Equal(t, []BBox{a, other}, kept)
}

func TestScanScales_StopsAtFirstHit(t *testing.T) {
	face := BBox{X1: 10, Y1: 10, X2: 60, Y2: 60}
	var seen []float64

	boxes, err := ScanScales([]float64{1.05, 1.1, 1.2, 1.3}, func(scale float64) ([]BBox, error) {
		seen = append(seen, scale)
		if scale == 1.1 {
			return []BBox{face, face}, nil
		}
		return nil, nil
	})
	require.NoError(t, err)
	require.Equal(t, []BBox{face}, boxes)
	require.Equal(t, []float64{1.05, 1.1}, seen)
}

func TestScanScales_NoHits(t *testing.T) {
	calls := 0
	boxes, err := ScanScales([]float64{1.05, 1.1}, func(float64) ([]BBox, error) {
		calls++
		return nil, nil
	})
	require.NoError(t, err)
	require.Empty(t, boxes)
	require.Equal(t, 2, calls)
}

func TestScanScales_Error(t *testing.T) {
	boom := errors.New("boom")
	_, err := ScanScales([]float64{1.05}, func(float64) ([]BBox, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
}

func TestSuppressNonMax_KeepsMostConfident(t *testing.T) {
	weak := FaceCandidate{Box: BBox{X1: 2, Y1: 2, X2: 102, Y2: 102}, Confidence: 0.4}
	strong := FaceCandidate{Box: BBox{X1: 0, Y1: 0, X2: 100, Y2: 100}, Confidence: 0.9}
	apart := FaceCandidate{Box: BBox{X1: 300, Y1: 0, X2: 400, Y2: 100}, Confidence: 0.5}

	kept := SuppressNonMax([]FaceCandidate{weak, strong, apart}, 0.45)
	require.Equal(t, []FaceCandidate{strong, apart}, kept)
}

func TestDetectionMethod_MarshalText(t *testing.T) {
	b, err := MethodFallback2.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "fallback2", string(b))
}
