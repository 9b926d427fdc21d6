//go:build !gocv
// +build !gocv

package vision

import (
	"context"

	"facegate/internal/domain/entity"
)

type NetEmbedder struct {
	modelID string
}

func NewNetEmbedder(modelID, modelPath string) (*NetEmbedder, error) {
	return nil, ErrGoCVDisabled
}

func (e *NetEmbedder) ModelID() string { return e.modelID }
func (e *NetEmbedder) Close() error    { return nil }

func (e *NetEmbedder) Embed(ctx context.Context, crop entity.FaceCrop) ([]float32, error) {
	return nil, ErrGoCVDisabled
}
