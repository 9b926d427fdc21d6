package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func goodMeasures() QualityMeasures {
	return QualityMeasures{
		BlurVariance:  250,
		MeanIntensity: 120,
		DarkRatio:     0.05,
		BrightRatio:   0.02,
		Width:         120,
		Height:        150,
	}
}

func TestGradeQuality_Excellent(t *testing.T) {
	q := GradeQuality(goodMeasures(), DefaultMinFaceSize)
	require.Equal(t, 4, q.Score)
	require.Equal(t, QualityExcellent, q.Overall)
	require.True(t, q.IsFrontal)
	require.False(t, q.HasOcclusion)
	require.Equal(t, FaceSize{W: 120, H: 150}, q.FaceSize)
	require.InDelta(t, 0.0, q.PoseAngle, 1e-9)
}

func TestGradeQuality_Poor(t *testing.T) {
	m := QualityMeasures{BlurVariance: 10, MeanIntensity: 20, DarkRatio: 0.8, Width: 30, Height: 30}
	q := GradeQuality(m, DefaultMinFaceSize)
	require.Equal(t, 0, q.Score)
	require.Equal(t, QualityPoor, q.Overall)
	require.True(t, q.HasOcclusion)
}

func TestGradeQuality_OcclusionEitherSide(t *testing.T) {
	m := goodMeasures()
	m.BrightRatio = 0.31
	require.True(t, GradeQuality(m, DefaultMinFaceSize).HasOcclusion)

	m = goodMeasures()
	m.DarkRatio = 0.31
	require.True(t, GradeQuality(m, DefaultMinFaceSize).HasOcclusion)
}

func TestGradeQuality_Monotonic(t *testing.T) {
	base := QualityMeasures{BlurVariance: 10, MeanIntensity: 20, DarkRatio: 0.5, Width: 30, Height: 30}
	improvements := []func(*QualityMeasures){
		func(m *QualityMeasures) { m.BlurVariance = 300 },
		func(m *QualityMeasures) { m.MeanIntensity = 128 },
		func(m *QualityMeasures) { m.Width, m.Height = 100, 120 },
		func(m *QualityMeasures) { m.DarkRatio = 0 },
	}

	m := base
	prev := GradeQuality(m, DefaultMinFaceSize)
	for _, improve := range improvements {
		improve(&m)
		next := GradeQuality(m, DefaultMinFaceSize)
		require.Equal(t, prev.Score+1, next.Score)
		require.GreaterOrEqual(t, next.Overall.rank(), prev.Overall.rank())
		prev = next
	}
}

func TestGradeQuality_PoseIsInformational(t *testing.T) {
	m := goodMeasures()
	m.Width, m.Height = 400, 100
	q := GradeQuality(m, DefaultMinFaceSize)
	require.False(t, q.IsFrontal)
	require.InDelta(t, 320.0, q.PoseAngle, 1e-9)
	require.Equal(t, QualityExcellent, q.Overall)
}

func TestTierForScore(t *testing.T) {
	require.Equal(t, QualityExcellent, TierForScore(4))
	require.Equal(t, QualityExcellent, TierForScore(3))
	require.Equal(t, QualityGood, TierForScore(2))
	require.Equal(t, QualityFair, TierForScore(1))
	require.Equal(t, QualityPoor, TierForScore(0))
}
