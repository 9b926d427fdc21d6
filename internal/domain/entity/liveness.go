package entity

const (
	GradientVarianceFloor = 50.0
	HighFrequencyFloor    = 1000.0
	SkinRatioFloor        = 0.3
	LiveScoreFloor        = 0.6
)

// Signal weights in tenths so the total stays exact.
const (
	gradientWeight  = 4
	frequencyWeight = 3
	skinWeight      = 3
)

// LivenessSignals are the raw texture, frequency and color statistics of a probe crop.
type LivenessSignals struct {
	GradientVariance    float64 `json:"gradient_variance"`
	HighFrequencyEnergy float64 `json:"high_frequency_energy"`
	SkinRatio           float64 `json:"skin_ratio"`
}

// LivenessAssessment is the liveness verdict for the live capture.
type LivenessAssessment struct {
	Score   float64          `json:"score"`
	IsLive  bool             `json:"is_live"`
	Enabled bool             `json:"enabled"`
	Signals *LivenessSignals `json:"signals,omitempty"`
}

// ScoreLiveness sums the weights of the signals above their floors.
func ScoreLiveness(s LivenessSignals) LivenessAssessment {
	tenths := 0
	if s.GradientVariance > GradientVarianceFloor {
		tenths += gradientWeight
	}
	if s.HighFrequencyEnergy > HighFrequencyFloor {
		tenths += frequencyWeight
	}
	if s.SkinRatio > SkinRatioFloor {
		tenths += skinWeight
	}

	score := float64(tenths) / 10
	signals := s
	return LivenessAssessment{
		Score:   score,
		IsLive:  score > LiveScoreFloor,
		Enabled: true,
		Signals: &signals,
	}
}

// LivenessSkipped is the assessment used when the check is switched off.
func LivenessSkipped() LivenessAssessment {
	return LivenessAssessment{Score: 1.0, IsLive: true}
}
