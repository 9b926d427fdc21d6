package entity

import "fmt"

// Role tells which of the two images a result refers to.
type Role string

const (
	RoleReference Role = "reference"
	RoleProbe     Role = "probe"
)

// Label is the user facing name of the role.
func (r Role) Label() string {
	if r == RoleReference {
		return "reference photo"
	}
	return "live capture"
}

// RejectReason is the machine readable tag of a rejection.
type RejectReason string

const (
	ReasonInvalidImage         RejectReason = "invalid_image"
	ReasonImageTooLarge        RejectReason = "image_too_large"
	ReasonNoFaceDetected       RejectReason = "no_face_detected"
	ReasonMultipleFaces        RejectReason = "multiple_faces_detected"
	ReasonLowConfidence        RejectReason = "low_confidence_detection"
	ReasonQualityTooPoor       RejectReason = "quality_too_poor"
	ReasonLivenessFailed       RejectReason = "liveness_failed"
	ReasonEnsembleDisagreement RejectReason = "ensemble_disagreement"
)

// Outcome is either *Accepted or *Rejected.
type Outcome interface {
	Verified() bool
	Text() string
	outcome()
}

// Report bundles every intermediate result of a completed comparison.
type Report struct {
	ReferenceFace    FaceCandidate      `json:"reference_face"`
	ProbeFace        FaceCandidate      `json:"probe_face"`
	ReferenceQuality QualityMetrics     `json:"reference_quality"`
	ProbeQuality     QualityMetrics     `json:"probe_quality"`
	Liveness         LivenessAssessment `json:"liveness"`
	Ensemble         EnsembleDecision   `json:"ensemble"`
	Similarity       float64            `json:"similarity_percentage"`
}

// NewReport fills the derived similarity percentage.
func NewReport(refFace, probeFace FaceCandidate, refQ, probeQ QualityMetrics, live LivenessAssessment, ens EnsembleDecision) *Report {
	return &Report{
		ReferenceFace:    refFace,
		ProbeFace:        probeFace,
		ReferenceQuality: refQ,
		ProbeQuality:     probeQ,
		Liveness:         live,
		Ensemble:         ens,
		Similarity:       ens.SimilarityPercent(),
	}
}

// Accepted is a positive verification.
type Accepted struct {
	Report  *Report `json:"report"`
	Message string  `json:"message"`
}

// Rejected is a negative verification with the stage that stopped it.
type Rejected struct {
	Reason  RejectReason `json:"reason"`
	Role    Role         `json:"role,omitempty"`
	Message string       `json:"message"`
	// Report is set only for ensemble disagreement.
	Report *Report `json:"report,omitempty"`
}

func (*Accepted) outcome() {}
func (*Rejected) outcome() {}

func (*Accepted) Verified() bool { return true }
func (*Rejected) Verified() bool { return false }

func (a *Accepted) Text() string { return a.Message }
func (r *Rejected) Text() string { return r.Message }

// Accept builds the positive outcome for a report.
func Accept(report *Report) *Accepted {
	e := report.Ensemble
	return &Accepted{
		Report:  report,
		Message: fmt.Sprintf("Face verified successfully! %d/%d models agree.", e.AgreeCount, e.TotalModels()),
	}
}

// RejectDisagreement builds the rejection for an ensemble that missed the quota.
func RejectDisagreement(report *Report) *Rejected {
	e := report.Ensemble
	msg := fmt.Sprintf("Face verification failed. Only %d/%d models agree (need %d).",
		e.AgreeCount, e.TotalModels(), e.RequiredAgreement)
	return &Rejected{
		Reason:  ReasonEnsembleDisagreement,
		Message: msg,
		Report:  report,
	}
}

// Reject builds a gate rejection with the fixed message for the reason.
func Reject(reason RejectReason, role Role) *Rejected {
	return &Rejected{
		Reason:  reason,
		Role:    role,
		Message: rejectMessage(reason, role),
	}
}

func rejectMessage(reason RejectReason, role Role) string {
	switch reason {
	case ReasonInvalidImage:
		return fmt.Sprintf("The %s could not be read as an image.", role.Label())
	case ReasonImageTooLarge:
		return fmt.Sprintf("The %s is too large. Maximum size is 10MB.", role.Label())
	case ReasonNoFaceDetected:
		return fmt.Sprintf("No face detected in the %s.", role.Label())
	case ReasonMultipleFaces:
		return fmt.Sprintf("Multiple faces detected in the %s. Only one person should be visible.", role.Label())
	case ReasonLowConfidence:
		return fmt.Sprintf("The face in the %s could not be detected reliably.", role.Label())
	case ReasonQualityTooPoor:
		return fmt.Sprintf("The %s quality is too poor. Ensure a clear, well-lit photo.", role.Label())
	case ReasonLivenessFailed:
		return "Liveness check failed. Please use a live camera, not a photo."
	case ReasonEnsembleDisagreement:
		return "Face verification failed."
	default:
		return "Verification failed."
	}
}
