package app

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"facegate/internal/domain/entity"
)

var faceBox = entity.BBox{X1: 200, Y1: 100, X2: 300, Y2: 220}

func TestAligner_PlainCropWithoutLocators(t *testing.T) {
	proc := &fakeProcessor{}
	a := NewAligner(proc, zaptest.NewLogger(t))

	crop, err := a.Align(context.Background(), newFrame("img"), faceBox, entity.RoleReference, 0.1)
	require.NoError(t, err)
	require.False(t, crop.Aligned)
	require.Equal(t, entity.RoleReference, crop.Role)
	require.Equal(t, []entity.BBox{{X1: 190, Y1: 88, X2: 310, Y2: 232}}, proc.cropped)
	require.Equal(t, 120, crop.Width)
	require.Empty(t, proc.rotated)
}

func TestAligner_RotatesOnEyes(t *testing.T) {
	proc := &fakeProcessor{}
	eyes := entity.NewEyeLandmarks(image.Pt(230, 150), image.Pt(270, 190))
	a := NewAligner(proc, nil, &fakeLocator{eyes: &eyes})

	crop, err := a.Align(context.Background(), newFrame("img"), faceBox, entity.RoleProbe, 0.2)
	require.NoError(t, err)
	require.True(t, crop.Aligned)
	require.Equal(t, []byte("img/rotated/crop"), crop.Data)
	require.Len(t, proc.rotated, 1)
	require.InDelta(t, 45.0, proc.rotated[0], 1e-9)
	require.Equal(t, []entity.BBox{{X1: 180, Y1: 76, X2: 320, Y2: 244}}, proc.cropped)
}

func TestAligner_FallsBackOnLocatorTrouble(t *testing.T) {
	proc := &fakeProcessor{}
	broken := &fakeLocator{err: errors.New("no model")}
	crashing := &fakeLocator{panics: true}
	empty := &fakeLocator{}
	a := NewAligner(proc, zaptest.NewLogger(t), broken, crashing, empty)

	crop, err := a.Align(context.Background(), newFrame("img"), faceBox, entity.RoleProbe, 0.2)
	require.NoError(t, err)
	require.False(t, crop.Aligned)
	require.Equal(t, 1, broken.calls)
	require.Equal(t, 1, crashing.calls)
	require.Equal(t, 1, empty.calls)
}

func TestAligner_CropFailure(t *testing.T) {
	a := NewAligner(&fakeProcessor{failCrop: true}, nil)
	_, err := a.Align(context.Background(), newFrame("img"), faceBox, entity.RoleProbe, 0.2)
	require.Error(t, err)
}
