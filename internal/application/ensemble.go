package app

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"facegate/internal/domain/entity"
	"facegate/internal/domain/port"
)

// EnsembleVerifier asks every configured model whether two crops show the same person.
type EnsembleVerifier struct {
	backend  port.DistanceBackend
	models   []entity.ModelSpec
	required int
	log      *zap.Logger
}

func NewEnsembleVerifier(backend port.DistanceBackend, models []entity.ModelSpec, required int, log *zap.Logger) *EnsembleVerifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &EnsembleVerifier{backend: backend, models: models, required: required, log: log}
}

// Verify runs the models concurrently. Verdicts keep configuration order.
// A failing model counts as a rejecting vote; if all fail the backend is unavailable.
func (v *EnsembleVerifier) Verify(ctx context.Context, a, b entity.FaceCrop) (entity.EnsembleDecision, error) {
	if v.backend == nil {
		return entity.EnsembleDecision{}, fmt.Errorf("distance backend: %w", entity.ErrBackendUnavailable)
	}

	verdicts := make([]entity.ModelVerdict, len(v.models))
	var wg sync.WaitGroup
	for i, spec := range v.models {
		wg.Add(1)
		go func(i int, spec entity.ModelSpec) {
			defer wg.Done()
			verdicts[i] = v.compare(ctx, spec, a, b)
		}(i, spec)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return entity.EnsembleDecision{}, err
	}

	failed := 0
	for _, verdict := range verdicts {
		if verdict.Degraded {
			failed++
			v.log.Warn("model failed",
				zap.String("stage", "ensemble"),
				zap.String("model", verdict.ModelID),
				zap.String("error", verdict.Err))
			continue
		}
		v.log.Debug("model verdict",
			zap.String("stage", "ensemble"),
			zap.String("model", verdict.ModelID),
			zap.Float64("distance", verdict.Distance),
			zap.Float64("threshold", verdict.Threshold),
			zap.Bool("verified", verdict.Verified))
	}
	if failed == len(verdicts) {
		return entity.EnsembleDecision{}, fmt.Errorf("all %d models failed: %w", failed, entity.ErrBackendUnavailable)
	}

	return entity.Decide(verdicts, v.required), nil
}

func (v *EnsembleVerifier) compare(ctx context.Context, spec entity.ModelSpec, a, b entity.FaceCrop) (verdict entity.ModelVerdict) {
	defer func() {
		if r := recover(); r != nil {
			verdict = entity.FailedVerdict(spec, fmt.Sprintf("panic: %v", r))
		}
	}()

	distance, err := v.backend.Distance(ctx, a, b, spec.ID)
	if err != nil {
		return entity.FailedVerdict(spec, err.Error())
	}
	return entity.NewModelVerdict(spec, distance)
}
