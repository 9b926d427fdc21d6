package entity

import "fmt"

const (
	DefaultMinConfidence    = 0.6
	DefaultMinFaceSize      = 60
	DefaultMaxImageBytes    = 10 * 1024 * 1024
	DefaultReferencePadding = 0.1
	DefaultProbePadding     = 0.2
	AlignedPadding          = 0.2
)

// DefaultThresholds is the per-model cosine distance table.
// Models are not interchangeable, so every model has its own entry.
var DefaultThresholds = map[string]float64{
	"ArcFace":    0.15,
	"Facenet512": 0.25,
	"VGG-Face":   0.30,
	"Dlib":       0.07,
}

// DefaultModels is the ensemble used when nothing else is configured.
func DefaultModels() []ModelSpec {
	return []ModelSpec{
		{ID: "ArcFace", Threshold: DefaultThresholds["ArcFace"]},
		{ID: "Facenet512", Threshold: DefaultThresholds["Facenet512"]},
		{ID: "VGG-Face", Threshold: DefaultThresholds["VGG-Face"]},
	}
}

// Policy holds every knob of the verification pipeline.
// Field rules live in the validate tags; CheckAgreement covers the quota.
type Policy struct {
	RequiredAgreement int         `validate:"min=1"`
	Models            []ModelSpec `validate:"min=1,unique=ID,dive"`
	MinConfidence     float64     `validate:"gte=0,lte=1"`
	MinFaceSize       int         `validate:"gte=0"`
	MaxImageBytes     int         `validate:"gt=0"`
	ReferencePadding  float64     `validate:"gte=0"`
	ProbePadding      float64     `validate:"gte=0"`
	LivenessEnabled   bool
}

// DefaultPolicy requires every model to agree and keeps liveness on.
func DefaultPolicy() Policy {
	models := DefaultModels()
	return Policy{
		RequiredAgreement: len(models),
		LivenessEnabled:   true,
		Models:            models,
		MinConfidence:     DefaultMinConfidence,
		MinFaceSize:       DefaultMinFaceSize,
		MaxImageBytes:     DefaultMaxImageBytes,
		ReferencePadding:  DefaultReferencePadding,
		ProbePadding:      DefaultProbePadding,
	}
}

// CheckAgreement checks the quota against the number of configured models.
func (p Policy) CheckAgreement() error {
	if p.RequiredAgreement < 1 || p.RequiredAgreement > len(p.Models) {
		return fmt.Errorf("%w: required agreement %d out of range 1..%d", ErrInvalidPolicy, p.RequiredAgreement, len(p.Models))
	}
	return nil
}

// Padding returns the plain crop padding for an image role.
func (p Policy) Padding(role Role) float64 {
	if role == RoleReference {
		return p.ReferencePadding
	}
	return p.ProbePadding
}
