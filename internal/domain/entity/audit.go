package entity

import (
	"time"

	"github.com/google/uuid"
)

// AuditRecord is the persisted trace of one verification. It never holds images or embeddings.
type AuditRecord struct {
	ID              uuid.UUID
	CreatedAt       time.Time
	Verified        bool
	Reason          RejectReason
	Role            Role
	DetectionMethod DetectionMethod
	AgreeCount      int
	TotalModels     int
	AverageDistance float64
	LivenessScore   float64
	Verdicts        []ModelVerdict
	Elapsed         time.Duration
}

// NewAuditRecord summarizes an outcome for the audit trail.
func NewAuditRecord(outcome Outcome, elapsed time.Duration) AuditRecord {
	rec := AuditRecord{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Verified:  outcome.Verified(),
		Elapsed:   elapsed,
	}

	var report *Report
	switch o := outcome.(type) {
	case *Accepted:
		report = o.Report
	case *Rejected:
		rec.Reason = o.Reason
		rec.Role = o.Role
		report = o.Report
	}

	if report != nil {
		rec.DetectionMethod = report.ProbeFace.Method
		rec.AgreeCount = report.Ensemble.AgreeCount
		rec.TotalModels = report.Ensemble.TotalModels()
		rec.AverageDistance = report.Ensemble.AverageDistance
		rec.LivenessScore = report.Liveness.Score
		rec.Verdicts = report.Ensemble.Verdicts
	}
	return rec
}
