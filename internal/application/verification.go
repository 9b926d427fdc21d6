package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"facegate/internal/domain/entity"
	"facegate/internal/domain/port"
	"facegate/internal/infrastructure/validator"
)

// Verifier decides whether two photos show the same person.
type Verifier interface {
	Verify(ctx context.Context, reference, probe []byte) (entity.Outcome, error)
}

// VerificationDeps are the backends the pipeline is assembled from.
type VerificationDeps struct {
	Codec         port.ImageCodec
	Processor     port.ImageProcessor
	Detectors     []port.FaceDetector
	Locators      []port.LandmarkLocator
	QualityProbe  port.QualityProbe
	LivenessProbe port.LivenessProbe
	Backend       port.DistanceBackend
	Crops         port.CropStore
	Audit         port.AuditSink // optional
	Logger        *zap.Logger
}

// VerificationService runs the whole decision pipeline for one pair of photos.
type VerificationService struct {
	policy   entity.Policy
	codec    port.ImageCodec
	cascade  *DetectionCascade
	quality  *QualityAssessor
	liveness *LivenessScorer
	aligner  *Aligner
	ensemble *EnsembleVerifier
	crops    port.CropStore
	audit    port.AuditSink
	log      *zap.Logger
}

var _ Verifier = (*VerificationService)(nil)

// NewVerificationService validates the policy and assembles the pipeline stages.
func NewVerificationService(policy entity.Policy, deps VerificationDeps) (*VerificationService, error) {
	if err := validator.ValidatorInstance.ValidatePolicy(policy); err != nil {
		return nil, err
	}
	if deps.Codec == nil || deps.Processor == nil || deps.Crops == nil {
		return nil, fmt.Errorf("codec, processor and crop store are required: %w", entity.ErrBackendUnavailable)
	}

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	cascade, err := NewDetectionCascade(log, deps.Detectors...)
	if err != nil {
		return nil, err
	}

	return &VerificationService{
		policy:   policy,
		codec:    deps.Codec,
		cascade:  cascade,
		quality:  NewQualityAssessor(deps.QualityProbe, policy.MinFaceSize),
		liveness: NewLivenessScorer(deps.LivenessProbe, policy.LivenessEnabled),
		aligner:  NewAligner(deps.Processor, log, deps.Locators...),
		ensemble: NewEnsembleVerifier(deps.Backend, policy.Models, policy.RequiredAgreement, log),
		crops:    deps.Crops,
		audit:    deps.Audit,
		log:      log,
	}, nil
}

// Verify returns an Outcome for every decision, including rejections.
// The error is reserved for cancellation, unavailable backends and internal faults.
func (s *VerificationService) Verify(ctx context.Context, reference, probe []byte) (entity.Outcome, error) {
	start := time.Now()

	outcome, err := s.verify(ctx, reference, probe)
	if err != nil {
		s.log.Error("verification aborted", zap.String("stage", "decision"), zap.Error(err))
		return nil, err
	}

	elapsed := time.Since(start)
	fields := []zap.Field{
		zap.String("stage", "decision"),
		zap.Bool("verified", outcome.Verified()),
		zap.Duration("elapsed", elapsed),
	}
	if r, ok := outcome.(*entity.Rejected); ok {
		fields = append(fields, zap.String("reason", string(r.Reason)), zap.String("role", string(r.Role)))
	}
	s.log.Info("verification finished", fields...)

	s.record(ctx, outcome, elapsed)
	return outcome, nil
}

func (s *VerificationService) verify(ctx context.Context, reference, probe []byte) (entity.Outcome, error) {
	if rej := s.checkPayload(reference, entity.RoleReference); rej != nil {
		return rej, nil
	}
	if rej := s.checkPayload(probe, entity.RoleProbe); rej != nil {
		return rej, nil
	}

	refFrame, err := s.codec.Decode(reference)
	if err != nil {
		s.log.Info("decode failed", zap.String("stage", "decode"), zap.String("role", "reference"), zap.Error(err))
		return entity.Reject(entity.ReasonInvalidImage, entity.RoleReference), nil
	}
	defer refFrame.Close()

	probeFrame, err := s.codec.Decode(probe)
	if err != nil {
		s.log.Info("decode failed", zap.String("stage", "decode"), zap.String("role", "probe"), zap.Error(err))
		return entity.Reject(entity.ReasonInvalidImage, entity.RoleProbe), nil
	}
	defer probeFrame.Close()

	refFaces, err := s.detect(ctx, refFrame, entity.RoleReference)
	if err != nil {
		return nil, err
	}
	probeFaces, err := s.detect(ctx, probeFrame, entity.RoleProbe)
	if err != nil {
		return nil, err
	}

	if rej := s.singleFace(refFaces, probeFaces); rej != nil {
		return rej, nil
	}
	refFace, probeFace := refFaces[0], probeFaces[0]

	if rej := s.confidence(refFace, probeFace); rej != nil {
		return rej, nil
	}

	refQuality, err := s.quality.Assess(ctx, refFrame, refFace.Box)
	if err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}
	probeQuality, err := s.quality.Assess(ctx, probeFrame, probeFace.Box)
	if err != nil {
		return nil, fmt.Errorf("probe: %w", err)
	}
	s.logQuality(entity.RoleReference, refQuality)
	s.logQuality(entity.RoleProbe, probeQuality)
	if refQuality.Overall == entity.QualityPoor {
		return entity.Reject(entity.ReasonQualityTooPoor, entity.RoleReference), nil
	}
	if probeQuality.Overall == entity.QualityPoor {
		return entity.Reject(entity.ReasonQualityTooPoor, entity.RoleProbe), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	live, err := s.liveness.Assess(ctx, probeFrame, probeFace.Box)
	if err != nil {
		return nil, fmt.Errorf("probe: %w", err)
	}
	s.log.Info("liveness assessed",
		zap.String("stage", "liveness"),
		zap.Bool("enabled", live.Enabled),
		zap.Float64("score", live.Score),
		zap.Bool("is_live", live.IsLive))
	if !live.IsLive {
		return entity.Reject(entity.ReasonLivenessFailed, entity.RoleProbe), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	refCrop, err := s.alignAndStore(ctx, refFrame, refFace.Box, entity.RoleReference)
	if err != nil {
		return nil, err
	}
	defer s.release(refCrop)

	probeCrop, err := s.alignAndStore(ctx, probeFrame, probeFace.Box, entity.RoleProbe)
	if err != nil {
		return nil, err
	}
	defer s.release(probeCrop)

	decision, err := s.ensemble.Verify(ctx, refCrop, probeCrop)
	if err != nil {
		return nil, err
	}
	s.log.Info("ensemble decided",
		zap.String("stage", "ensemble"),
		zap.Int("agree", decision.AgreeCount),
		zap.Int("total", decision.TotalModels()),
		zap.Int("required", decision.RequiredAgreement),
		zap.Float64("average_distance", decision.AverageDistance),
		zap.Int("degraded", decision.Degraded()))

	report := entity.NewReport(refFace, probeFace, refQuality, probeQuality, live, decision)
	if !decision.Verified {
		return entity.RejectDisagreement(report), nil
	}
	return entity.Accept(report), nil
}

func (s *VerificationService) checkPayload(data []byte, role entity.Role) *entity.Rejected {
	switch {
	case len(data) == 0:
		return entity.Reject(entity.ReasonInvalidImage, role)
	case len(data) > s.policy.MaxImageBytes:
		s.log.Info("payload too large",
			zap.String("stage", "decode"),
			zap.String("role", string(role)),
			zap.Int("bytes", len(data)))
		return entity.Reject(entity.ReasonImageTooLarge, role)
	}
	return nil
}

func (s *VerificationService) detect(ctx context.Context, frame port.Frame, role entity.Role) ([]entity.FaceCandidate, error) {
	faces, report := s.cascade.Detect(ctx, frame)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if report.Unavailable() {
		return nil, fmt.Errorf("detect %s: all %d detectors failed: %w", role, report.Failures, entity.ErrBackendUnavailable)
	}

	s.log.Info("faces detected",
		zap.String("stage", "detect"),
		zap.String("role", string(role)),
		zap.Int("faces", len(faces)),
		zap.Stringer("method", report.Method),
		zap.Int("attempts", report.Attempts),
		zap.Int("failures", report.Failures))
	return faces, nil
}

// singleFace applies the none checks before the multiple checks, reference first.
func (s *VerificationService) singleFace(refFaces, probeFaces []entity.FaceCandidate) *entity.Rejected {
	switch {
	case len(refFaces) == 0:
		return s.gate("single_face", entity.ReasonNoFaceDetected, entity.RoleReference)
	case len(probeFaces) == 0:
		return s.gate("single_face", entity.ReasonNoFaceDetected, entity.RoleProbe)
	case len(refFaces) > 1:
		return s.gate("single_face", entity.ReasonMultipleFaces, entity.RoleReference)
	case len(probeFaces) > 1:
		return s.gate("single_face", entity.ReasonMultipleFaces, entity.RoleProbe)
	}
	return nil
}

func (s *VerificationService) confidence(refFace, probeFace entity.FaceCandidate) *entity.Rejected {
	s.log.Debug("detection confidence",
		zap.String("stage", "confidence"),
		zap.Float64("reference", refFace.Confidence),
		zap.Float64("probe", probeFace.Confidence),
		zap.Float64("min", s.policy.MinConfidence))

	switch {
	case refFace.Confidence < s.policy.MinConfidence:
		return s.gate("confidence", entity.ReasonLowConfidence, entity.RoleReference)
	case probeFace.Confidence < s.policy.MinConfidence:
		return s.gate("confidence", entity.ReasonLowConfidence, entity.RoleProbe)
	}
	return nil
}

func (s *VerificationService) gate(stage string, reason entity.RejectReason, role entity.Role) *entity.Rejected {
	s.log.Info("gate rejected",
		zap.String("stage", stage),
		zap.String("reason", string(reason)),
		zap.String("role", string(role)))
	return entity.Reject(reason, role)
}

func (s *VerificationService) logQuality(role entity.Role, q entity.QualityMetrics) {
	s.log.Info("quality assessed",
		zap.String("stage", "quality"),
		zap.String("role", string(role)),
		zap.String("overall", string(q.Overall)),
		zap.Int("score", q.Score),
		zap.Float64("blur", q.BlurScore),
		zap.Float64("brightness", q.BrightnessScore),
		zap.Bool("frontal", q.IsFrontal),
		zap.Float64("pose", q.PoseAngle),
		zap.Bool("occlusion", q.HasOcclusion))
}

func (s *VerificationService) alignAndStore(ctx context.Context, frame port.Frame, box entity.BBox, role entity.Role) (entity.FaceCrop, error) {
	crop, err := s.aligner.Align(ctx, frame, box, role, s.policy.Padding(role))
	if err != nil {
		return entity.FaceCrop{}, err
	}

	stored, err := s.crops.Put(ctx, crop)
	if err != nil {
		return entity.FaceCrop{}, fmt.Errorf("store %s crop: %w", role, err)
	}
	return stored, nil
}

func (s *VerificationService) release(crop entity.FaceCrop) {
	if err := s.crops.Release(crop); err != nil {
		s.log.Warn("crop release failed", zap.String("stage", "align"), zap.String("crop", crop.ID), zap.Error(err))
	}
}

func (s *VerificationService) record(ctx context.Context, outcome entity.Outcome, elapsed time.Duration) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, entity.NewAuditRecord(outcome, elapsed)); err != nil {
		s.log.Warn("audit record failed", zap.String("stage", "decision"), zap.Error(err))
	}
}
