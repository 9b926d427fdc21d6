package entity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewModelVerdict_Threshold(t *testing.T) {
	spec := ModelSpec{ID: "ArcFace", Threshold: 0.15}

	v := NewModelVerdict(spec, 0.149)
	require.True(t, v.Verified)
	require.False(t, v.Degraded)

	v = NewModelVerdict(spec, 0.15)
	require.False(t, v.Verified, "distance equal to threshold is not a match")
}

func TestNewModelVerdict_InvalidDistance(t *testing.T) {
	spec := ModelSpec{ID: "ArcFace", Threshold: 0.15}
	for _, d := range []float64{-0.1, math.NaN(), math.Inf(1)} {
		v := NewModelVerdict(spec, d)
		require.True(t, v.Degraded)
		require.False(t, v.Verified)
		require.Equal(t, FailedDistance, v.Distance)
	}
}

func TestFailedVerdict(t *testing.T) {
	v := FailedVerdict(ModelSpec{ID: "VGG-Face", Threshold: 0.3}, "timeout")
	require.Equal(t, ModelVerdict{
		ModelID:   "VGG-Face",
		Distance:  1.0,
		Threshold: 0.3,
		Degraded:  true,
		Err:       "timeout",
	}, v)
}

// Every pass/fail combination of three models under every quota.
func TestDecide_AllCombinations(t *testing.T) {
	specs := DefaultModels()
	for mask := 0; mask < 1<<len(specs); mask++ {
		verdicts := make([]ModelVerdict, len(specs))
		passing := 0
		for i, s := range specs {
			if mask&(1<<i) != 0 {
				verdicts[i] = NewModelVerdict(s, s.Threshold/2)
				passing++
			} else {
				verdicts[i] = NewModelVerdict(s, s.Threshold+0.1)
			}
		}

		for required := 1; required <= len(specs); required++ {
			d := Decide(verdicts, required)
			require.Equal(t, passing, d.AgreeCount)
			require.Equal(t, passing >= required, d.Verified)
			require.Equal(t, required, d.RequiredAgreement)
			for _, v := range d.Verdicts {
				require.Equal(t, v.Distance < v.Threshold, v.Verified)
			}
		}
	}
}

func TestDecide_ScenarioDistances(t *testing.T) {
	specs := DefaultModels()
	verdicts := []ModelVerdict{
		NewModelVerdict(specs[0], 0.10),
		NewModelVerdict(specs[1], 0.18),
		NewModelVerdict(specs[2], 0.22),
	}
	d := Decide(verdicts, 3)
	require.True(t, d.Verified)
	require.Equal(t, 3, d.AgreeCount)
	require.InDelta(t, 0.1667, d.AverageDistance, 1e-4)
	require.InDelta(t, 83.33, d.SimilarityPercent(), 1e-9)

	verdicts[1] = NewModelVerdict(specs[1], 0.40)
	verdicts[2] = NewModelVerdict(specs[2], 0.45)
	d = Decide(verdicts, 3)
	require.False(t, d.Verified)
	require.Equal(t, 1, d.AgreeCount)
	require.Equal(t, 3, d.TotalModels())
}

func TestDecide_FailedModelCountsAgainst(t *testing.T) {
	specs := DefaultModels()
	verdicts := []ModelVerdict{
		NewModelVerdict(specs[0], 0.05),
		FailedVerdict(specs[1], "crash"),
		NewModelVerdict(specs[2], 0.10),
	}

	require.False(t, Decide(verdicts, 3).Verified)
	d := Decide(verdicts, 2)
	require.True(t, d.Verified)
	require.Equal(t, 1, d.Degraded())
}

func TestDecide_Empty(t *testing.T) {
	d := Decide(nil, 1)
	require.False(t, d.Verified)
	require.Zero(t, d.AverageDistance)
}
