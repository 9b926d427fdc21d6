package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"facegate/internal/domain/entity"
	"facegate/internal/infrastructure/validator"
)

type Config struct {
	TelegramToken string

	ModelsDir       string
	HaarCascadePath string
	CropDir         string // empty keeps crops in memory
	DatabaseURL     string // empty disables the audit trail

	// RequiredAgreement of 0 means every configured model must agree.
	RequiredAgreement int
	LivenessEnabled   bool
	MinConfidence     float64
	MinFaceSize       int
	MaxImageBytes     int
	ReferencePadding  float64 // share of the face box added around the reference crop
	ProbePadding      float64
	FaceModels        string // comma separated, e.g. "ArcFace,Facenet512,VGG-Face"
	ModelThresholds   string // overrides, e.g. "ArcFace=0.15,Dlib=0.07"

	LogLevel  string
	DebugMode bool
}

func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		ModelsDir:        "models",
		HaarCascadePath:  "models/haarcascade_frontalface_default.xml",
		LivenessEnabled:  true,
		MinConfidence:    entity.DefaultMinConfidence,
		MinFaceSize:      entity.DefaultMinFaceSize,
		MaxImageBytes:    entity.DefaultMaxImageBytes,
		ReferencePadding: entity.DefaultReferencePadding,
		ProbePadding:     entity.DefaultProbePadding,
		FaceModels:       "ArcFace,Facenet512,VGG-Face",
		LogLevel:         "info",
	}

	readEnvString("TELEGRAM_TOKEN", &cfg.TelegramToken)
	readEnvString("MODELS_DIR", &cfg.ModelsDir)
	readEnvString("HAAR_CASCADE_PATH", &cfg.HaarCascadePath)
	readEnvString("CROP_DIR", &cfg.CropDir)
	readEnvString("DATABASE_URL", &cfg.DatabaseURL)
	readEnvInt("REQUIRED_AGREEMENT", &cfg.RequiredAgreement)
	readEnvBool("LIVENESS_ENABLED", &cfg.LivenessEnabled)
	readEnvFloat("MIN_CONFIDENCE", &cfg.MinConfidence)
	readEnvInt("MIN_FACE_SIZE", &cfg.MinFaceSize)
	readEnvInt("MAX_IMAGE_BYTES", &cfg.MaxImageBytes)
	readEnvFloat("REFERENCE_PADDING", &cfg.ReferencePadding)
	readEnvFloat("PROBE_PADDING", &cfg.ProbePadding)
	readEnvString("FACE_MODELS", &cfg.FaceModels)
	readEnvString("FACE_MODEL_THRESHOLDS", &cfg.ModelThresholds)
	readEnvString("LOG_LEVEL", &cfg.LogLevel)
	readEnvBool("DEBUG_MODE", &cfg.DebugMode)

	return cfg, nil
}

// Policy builds and validates the pipeline policy.
func (c *Config) Policy() (entity.Policy, error) {
	thresholds, err := parseThresholds(c.ModelThresholds)
	if err != nil {
		return entity.Policy{}, err
	}

	var models []entity.ModelSpec
	for _, id := range strings.Split(c.FaceModels, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		t, ok := thresholds[id]
		if !ok {
			return entity.Policy{}, fmt.Errorf("%w: no threshold for model %s", entity.ErrInvalidPolicy, id)
		}
		models = append(models, entity.ModelSpec{ID: id, Threshold: t})
	}

	required := c.RequiredAgreement
	if required == 0 {
		required = len(models)
	}

	policy := entity.DefaultPolicy()
	policy.Models = models
	policy.RequiredAgreement = required
	policy.LivenessEnabled = c.LivenessEnabled
	policy.MinConfidence = c.MinConfidence
	policy.MinFaceSize = c.MinFaceSize
	policy.MaxImageBytes = c.MaxImageBytes
	policy.ReferencePadding = c.ReferencePadding
	policy.ProbePadding = c.ProbePadding

	if err := validator.ValidatorInstance.ValidatePolicy(policy); err != nil {
		return entity.Policy{}, err
	}
	return policy, nil
}

// parseThresholds merges "Model=value" pairs over the default table.
func parseThresholds(s string) (map[string]float64, error) {
	out := make(map[string]float64, len(entity.DefaultThresholds))
	for k, v := range entity.DefaultThresholds {
		out[k] = v
	}

	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		id, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("%w: threshold %q is not Model=value", entity.ErrInvalidPolicy, pair)
		}
		t, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: threshold for %s: %v", entity.ErrInvalidPolicy, id, err)
		}
		out[strings.TrimSpace(id)] = t
	}
	return out, nil
}

func readEnvString(name string, value *string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	*value = v
}

func readEnvBool(name string, value *bool) {
	v := strings.ToLower(os.Getenv(name))
	if v == "true" || v == "1" || v == "yes" || v == "on" {
		*value = true
	} else if v == "false" || v == "0" || v == "no" || v == "off" {
		*value = false
	}
}

func readEnvFloat(name string, value *float64) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return
	}
	*value = f
}

func readEnvInt(name string, value *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*value = i
}
