package entity

import "math"

// QualityTier is the coarse quality label of a face region.
type QualityTier string

const (
	QualityExcellent QualityTier = "excellent"
	QualityGood      QualityTier = "good"
	QualityFair      QualityTier = "fair"
	QualityPoor      QualityTier = "poor"
)

// rank orders tiers from poor (0) to excellent (3).
func (t QualityTier) rank() int {
	switch t {
	case QualityExcellent:
		return 3
	case QualityGood:
		return 2
	case QualityFair:
		return 1
	default:
		return 0
	}
}

const (
	SharpBlurVariance = 100.0 // laplacian variance above which a crop is sharp
	MinBrightness     = 50.0
	MaxBrightness     = 200.0
	DarkPixelLevel    = 30  // pixels below are "very dark"
	BrightPixelLevel  = 225 // pixels above are "very bright"
	OcclusionRatio    = 0.3
	FrontalAspectMin  = 0.5
	FrontalAspectMax  = 1.5
	neutralAspect     = 0.8
)

// QualityMeasures are the raw pixel statistics of a face crop.
type QualityMeasures struct {
	BlurVariance  float64 // variance of the laplacian of the grayscale crop
	MeanIntensity float64 // 0..255
	DarkRatio     float64 // share of pixels < DarkPixelLevel
	BrightRatio   float64 // share of pixels > BrightPixelLevel
	Width         int
	Height        int
}

// FaceSize is the width and height of the assessed region.
type FaceSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

// QualityMetrics is the graded quality of one face region.
type QualityMetrics struct {
	BlurScore       float64     `json:"blur_score"`
	BrightnessScore float64     `json:"brightness_score"`
	FaceSize        FaceSize    `json:"face_size"`
	PoseAngle       float64     `json:"pose_angle"`
	IsFrontal       bool        `json:"is_frontal"`
	HasOcclusion    bool        `json:"has_occlusion"`
	Score           int         `json:"score"`
	Overall         QualityTier `json:"overall_quality"`
}

// GradeQuality reduces raw measures to QualityMetrics.
// Pose is informational only and does not contribute to the score.
func GradeQuality(m QualityMeasures, minFaceSize int) QualityMetrics {
	aspect := 0.0
	if m.Height > 0 {
		aspect = float64(m.Width) / float64(m.Height)
	}

	q := QualityMetrics{
		BlurScore:       m.BlurVariance,
		BrightnessScore: m.MeanIntensity,
		FaceSize:        FaceSize{W: m.Width, H: m.Height},
		PoseAngle:       math.Abs(neutralAspect-aspect) * 100,
		IsFrontal:       aspect > FrontalAspectMin && aspect < FrontalAspectMax,
		HasOcclusion:    m.DarkRatio > OcclusionRatio || m.BrightRatio > OcclusionRatio,
	}

	if q.BlurScore > SharpBlurVariance {
		q.Score++
	}
	if q.BrightnessScore > MinBrightness && q.BrightnessScore < MaxBrightness {
		q.Score++
	}
	if m.Width >= minFaceSize && m.Height >= minFaceSize {
		q.Score++
	}
	if !q.HasOcclusion {
		q.Score++
	}

	q.Overall = TierForScore(q.Score)
	return q
}

// TierForScore maps a 0..4 quality score to a tier.
func TierForScore(score int) QualityTier {
	switch {
	case score >= 3:
		return QualityExcellent
	case score == 2:
		return QualityGood
	case score == 1:
		return QualityFair
	default:
		return QualityPoor
	}
}
