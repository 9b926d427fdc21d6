package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"facegate/config"
	app "facegate/internal/application"
	"facegate/internal/domain/entity"
	"facegate/internal/domain/port"
	"facegate/internal/infrastructure/dlib"
	"facegate/internal/infrastructure/embedding"
	"facegate/internal/infrastructure/postgres"
	"facegate/internal/infrastructure/storage"
	"facegate/internal/infrastructure/vision"
)

const (
	yoloModelFile   = "yolov8n-face.onnx"
	yunetModelFile  = "face_detection_yunet_2023mar.onnx"
	dlibModelsDir   = "dlib"
	cropJPEGQuality = 95
)

// embedderFiles maps ensemble model IDs to their ONNX files under the models directory.
var embedderFiles = map[string]string{
	"ArcFace":    "arcface.onnx",
	"Facenet512": "facenet512.onnx",
	"VGG-Face":   "vgg_face.onnx",
}

// Container owns every long lived handle of the process.
type Container struct {
	UserService         *app.UserService
	SessionService      *app.SessionService
	VerificationService *app.VerificationService
	// AuditStore is nil when DATABASE_URL is empty.
	AuditStore *postgres.AuditStore

	log     *zap.Logger
	closers []io.Closer
}

// New loads every backend the build and the models directory allow and
// assembles the pipeline. Missing optional backends are logged and skipped.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, userRepo port.UserRepository) (*Container, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if !vision.Enabled {
		return nil, fmt.Errorf("image decoding needs OpenCV: %w", vision.ErrGoCVDisabled)
	}

	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	c := &Container{log: log}
	if err := c.build(ctx, cfg, policy, userRepo); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) build(ctx context.Context, cfg *config.Config, policy entity.Policy, userRepo port.UserRepository) error {
	var (
		detectors []port.FaceDetector
		locators  []port.LandmarkLocator
	)

	if yolo, err := vision.NewYOLODetector(filepath.Join(cfg.ModelsDir, yoloModelFile)); c.loaded("yolov8-face", err) {
		c.closers = append(c.closers, yolo)
		detectors = append(detectors, yolo)
	}
	if haar, err := vision.NewHaarDetector(cfg.HaarCascadePath); c.loaded("haar", err) {
		c.closers = append(c.closers, haar)
		detectors = append(detectors, haar)
	}

	rec, err := dlib.NewRecognizer(filepath.Join(cfg.ModelsDir, dlibModelsDir))
	dlibLoaded := c.loaded("dlib", err)
	if dlibLoaded {
		c.closers = append(c.closers, rec)
		detectors = append(detectors, rec)
	}

	if yunet, err := vision.NewYuNet(filepath.Join(cfg.ModelsDir, yunetModelFile)); c.loaded("yunet", err) {
		c.closers = append(c.closers, yunet)
		detectors = append(detectors, yunet)
		locators = append(locators, yunet)
	}
	if dlibLoaded {
		locators = append(locators, rec)
	}

	router := embedding.NewRouter()
	for _, m := range policy.Models {
		if m.ID == dlib.ModelID {
			if dlibLoaded {
				router.Register(rec)
			}
			continue
		}
		file, ok := embedderFiles[m.ID]
		if !ok {
			continue
		}
		e, err := vision.NewNetEmbedder(m.ID, filepath.Join(cfg.ModelsDir, file))
		if c.loaded(m.ID, err) {
			c.closers = append(c.closers, e)
			router.Register(e)
		}
	}

	// A configured model without an embedder stays in the ensemble and fails
	// as a degraded verdict, so the agreement quota keeps its meaning.
	for _, m := range policy.Models {
		if !router.Has(m.ID) {
			c.log.Warn("recognition model unavailable",
				zap.String("stage", "startup"),
				zap.String("model", m.ID))
		}
	}
	if len(router.Models()) == 0 {
		return fmt.Errorf("no recognition model could be loaded: %w", entity.ErrBackendUnavailable)
	}

	var crops port.CropStore
	if cfg.CropDir != "" {
		store, err := storage.NewTempCropStore(cfg.CropDir)
		if err != nil {
			return err
		}
		crops = store
	} else {
		crops = storage.NewMemoryCropStore()
	}

	var audit port.AuditSink
	if cfg.DatabaseURL != "" {
		store, err := postgres.NewAuditStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("audit store: %w", err)
		}
		c.AuditStore = store
		c.closers = append(c.closers, closerFunc(func() error {
			store.Close()
			return nil
		}))
		audit = store
	}

	verification, err := app.NewVerificationService(policy, app.VerificationDeps{
		Codec:         vision.NewCodec(),
		Processor:     vision.NewProcessor(cropJPEGQuality),
		Detectors:     detectors,
		Locators:      locators,
		QualityProbe:  vision.NewQualityProbe(),
		LivenessProbe: vision.NewLivenessProbe(),
		Backend:       router,
		Crops:         crops,
		Audit:         audit,
		Logger:        c.log,
	})
	if err != nil {
		return err
	}

	c.VerificationService = verification
	c.UserService = app.NewUserService(userRepo)
	c.SessionService = app.NewSessionService(c.UserService, verification)

	c.log.Info("pipeline assembled",
		zap.String("stage", "startup"),
		zap.Int("detectors", len(detectors)),
		zap.Int("locators", len(locators)),
		zap.Strings("models", router.Models()),
		zap.Int("required_agreement", policy.RequiredAgreement),
		zap.Bool("liveness", policy.LivenessEnabled),
		zap.Bool("audit", audit != nil))
	return nil
}

// loaded logs the result of loading an optional backend.
func (c *Container) loaded(name string, err error) bool {
	if err != nil {
		c.log.Warn("backend skipped", zap.String("stage", "startup"), zap.String("backend", name), zap.Error(err))
		return false
	}
	c.log.Info("backend loaded", zap.String("stage", "startup"), zap.String("backend", name))
	return true
}

// Close releases every handle in reverse load order.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
