package entity

import "math"

// FailedDistance is recorded for a model that could not produce a distance.
const FailedDistance = 1.0

// ModelSpec is a recognition model and its own acceptance threshold.
type ModelSpec struct {
	ID        string  `json:"model" validate:"required,model_id"`
	Threshold float64 `json:"threshold" validate:"gt=0"`
}

// ModelVerdict is the result of one recognition model.
type ModelVerdict struct {
	ModelID   string  `json:"model"`
	Distance  float64 `json:"distance"`
	Threshold float64 `json:"threshold"`
	Verified  bool    `json:"verified"`
	Degraded  bool    `json:"degraded,omitempty"`
	// Err is kept for operator logs and never shown to end users.
	Err string `json:"-"`
}

// NewModelVerdict applies the model threshold to a distance.
// Negative or NaN distances are treated as a failed model.
func NewModelVerdict(spec ModelSpec, distance float64) ModelVerdict {
	if math.IsNaN(distance) || math.IsInf(distance, 0) || distance < 0 {
		return FailedVerdict(spec, "invalid distance")
	}
	return ModelVerdict{
		ModelID:   spec.ID,
		Distance:  distance,
		Threshold: spec.Threshold,
		Verified:  distance < spec.Threshold,
	}
}

// FailedVerdict is the worst-case verdict for a model that failed.
func FailedVerdict(spec ModelSpec, reason string) ModelVerdict {
	return ModelVerdict{
		ModelID:   spec.ID,
		Distance:  FailedDistance,
		Threshold: spec.Threshold,
		Verified:  false,
		Degraded:  true,
		Err:       reason,
	}
}

// EnsembleDecision combines per-model verdicts by an agreement quota.
type EnsembleDecision struct {
	Verdicts          []ModelVerdict `json:"model_details"`
	AgreeCount        int            `json:"models_verified"`
	RequiredAgreement int            `json:"required_agreement"`
	AverageDistance   float64        `json:"average_distance"`
	Verified          bool           `json:"verified"`
}

// Decide counts agreeing models and applies the quota.
func Decide(verdicts []ModelVerdict, required int) EnsembleDecision {
	d := EnsembleDecision{
		Verdicts:          verdicts,
		RequiredAgreement: required,
	}

	sum := 0.0
	for _, v := range verdicts {
		if v.Verified {
			d.AgreeCount++
		}
		sum += v.Distance
	}
	if len(verdicts) > 0 {
		d.AverageDistance = sum / float64(len(verdicts))
	}

	d.Verified = d.AgreeCount >= required
	return d
}

// TotalModels is the number of models that voted.
func (d EnsembleDecision) TotalModels() int {
	return len(d.Verdicts)
}

// Degraded reports how many models failed and were counted as rejecting.
func (d EnsembleDecision) Degraded() int {
	n := 0
	for _, v := range d.Verdicts {
		if v.Degraded {
			n++
		}
	}
	return n
}

// SimilarityPercent is (1 - average distance) * 100, for display only.
func (d EnsembleDecision) SimilarityPercent() float64 {
	return math.Round((1-d.AverageDistance)*10000) / 100
}
