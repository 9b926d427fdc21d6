//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"facegate/internal/domain/entity"
	"facegate/internal/domain/port"
)

// NetEmbedder computes face embeddings with an ONNX recognition model.
type NetEmbedder struct {
	mu      sync.Mutex
	net     gocv.Net
	modelID string
	profile netProfile
}

var _ port.Embedder = (*NetEmbedder)(nil)

func NewNetEmbedder(modelID, modelPath string) (*NetEmbedder, error) {
	profile, ok := netProfiles[modelID]
	if !ok {
		return nil, fmt.Errorf("no input profile for model %s", modelID)
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("%s model: %w", modelID, err)
	}

	net := gocv.ReadNet(modelPath, "")
	if net.Empty() {
		return nil, fmt.Errorf("failed to load %s model from %s", modelID, modelPath)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &NetEmbedder{net: net, modelID: modelID, profile: profile}, nil
}

func (e *NetEmbedder) ModelID() string { return e.modelID }

// Embed runs the model on the crop as is, without detecting the face again.
func (e *NetEmbedder) Embed(ctx context.Context, crop entity.FaceCrop) ([]float32, error) {
	_ = ctx
	face, err := decodeToMat(crop.Data)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	p := e.profile
	blob := gocv.BlobFromImage(face, p.scale, image.Pt(p.size, p.size), p.mean, p.swapRB, false)
	defer blob.Close()

	e.mu.Lock()
	e.net.SetInput(blob, "")
	out := e.net.Forward("")
	e.mu.Unlock()
	defer out.Close()

	total := out.Total()
	if total == 0 {
		return nil, errors.New("model returned an empty embedding")
	}
	flat := out.Reshape(1, 1)
	defer flat.Close()

	embedding := make([]float32, total)
	for i := range embedding {
		embedding[i] = flat.GetFloatAt(0, i)
	}
	return embedding, nil
}

func (e *NetEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.net.Close()
}
