package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"facegate/internal/domain/entity"
	"facegate/internal/domain/port"
)

var (
	ErrUnknownModel      = errors.New("unknown recognition model")
	ErrDimensionMismatch = errors.New("embedding dimensions differ")
	ErrZeroVector        = errors.New("zero embedding")
)

// Router serves DistanceBackend by dispatching each model ID to its embedder.
type Router struct {
	mu        sync.RWMutex
	embedders map[string]port.Embedder
}

var _ port.DistanceBackend = (*Router)(nil)

func NewRouter(embedders ...port.Embedder) *Router {
	r := &Router{embedders: make(map[string]port.Embedder, len(embedders))}
	for _, e := range embedders {
		r.Register(e)
	}
	return r
}

// Register adds or replaces the embedder for its model ID.
func (r *Router) Register(e port.Embedder) {
	r.mu.Lock()
	r.embedders[e.ModelID()] = e
	r.mu.Unlock()
}

// Models lists the registered model IDs.
func (r *Router) Models() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.embedders))
	for id := range r.embedders {
		ids = append(ids, id)
	}
	return ids
}

func (r *Router) Has(modelID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.embedders[modelID]
	return ok
}

// Distance embeds both crops with the model and returns their cosine distance.
func (r *Router) Distance(ctx context.Context, a, b entity.FaceCrop, modelID string) (float64, error) {
	r.mu.RLock()
	e, ok := r.embedders[modelID]
	r.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownModel, modelID)
	}

	ea, err := e.Embed(ctx, a)
	if err != nil {
		return 0, fmt.Errorf("%s embed %s: %w", modelID, a.Role, err)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	eb, err := e.Embed(ctx, b)
	if err != nil {
		return 0, fmt.Errorf("%s embed %s: %w", modelID, b.Role, err)
	}

	return CosineDistance(ea, eb)
}

// CosineDistance is 1 - cosine similarity, in [0, 2].
func CosineDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, ErrZeroVector
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	sim = math.Max(-1, math.Min(1, sim))
	return 1 - sim, nil
}
