package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"facegate/internal/domain/entity"
)

func TestEnsembleVerifier_KeepsConfigurationOrder(t *testing.T) {
	backend := newFakeBackend(matchingDistances())
	v := NewEnsembleVerifier(backend, entity.DefaultModels(), 3, zaptest.NewLogger(t))

	d, err := v.Verify(context.Background(), entity.FaceCrop{}, entity.FaceCrop{})
	require.NoError(t, err)
	require.True(t, d.Verified)

	ids := make([]string, len(d.Verdicts))
	for i, verdict := range d.Verdicts {
		ids[i] = verdict.ModelID
	}
	require.Equal(t, []string{"ArcFace", "Facenet512", "VGG-Face"}, ids)
	for _, id := range ids {
		require.Equal(t, 1, backend.calls[id])
	}
}

func TestEnsembleVerifier_FailureIsolation(t *testing.T) {
	backend := newFakeBackend(matchingDistances())
	backend.errs["ArcFace"] = errors.New("timeout")
	backend.panics["Facenet512"] = true

	v := NewEnsembleVerifier(backend, entity.DefaultModels(), 1, nil)
	d, err := v.Verify(context.Background(), entity.FaceCrop{}, entity.FaceCrop{})
	require.NoError(t, err)

	require.Equal(t, entity.ModelVerdict{ModelID: "ArcFace", Distance: 1.0, Threshold: 0.15, Degraded: true, Err: "timeout"}, d.Verdicts[0])
	require.True(t, d.Verdicts[1].Degraded)
	require.Contains(t, d.Verdicts[1].Err, "model crash")
	require.True(t, d.Verdicts[2].Verified)
	require.Equal(t, 1, d.AgreeCount)
	require.True(t, d.Verified)
	require.InDelta(t, (1.0+1.0+0.22)/3, d.AverageDistance, 1e-9)
}

func TestEnsembleVerifier_AllFailed(t *testing.T) {
	backend := newFakeBackend(nil)
	v := NewEnsembleVerifier(backend, entity.DefaultModels(), 3, nil)

	_, err := v.Verify(context.Background(), entity.FaceCrop{}, entity.FaceCrop{})
	require.ErrorIs(t, err, entity.ErrBackendUnavailable)
}

func TestEnsembleVerifier_NoBackend(t *testing.T) {
	v := NewEnsembleVerifier(nil, entity.DefaultModels(), 3, nil)
	_, err := v.Verify(context.Background(), entity.FaceCrop{}, entity.FaceCrop{})
	require.ErrorIs(t, err, entity.ErrBackendUnavailable)
}
