package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"facegate/internal/domain/entity"
	"facegate/internal/domain/port"
)

// Aligner levels the eye line of a face before cropping it.
// Without landmarks it falls back to a plain padded crop.
type Aligner struct {
	processor port.ImageProcessor
	locators  []port.LandmarkLocator
	log       *zap.Logger
}

func NewAligner(processor port.ImageProcessor, log *zap.Logger, locators ...port.LandmarkLocator) *Aligner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Aligner{processor: processor, locators: locators, log: log}
}

// Align returns the encoded face crop. padding is used only for the plain crop.
func (a *Aligner) Align(ctx context.Context, frame port.Frame, box entity.BBox, role entity.Role, padding float64) (entity.FaceCrop, error) {
	if a.processor == nil {
		return entity.FaceCrop{}, fmt.Errorf("image processor: %w", entity.ErrBackendUnavailable)
	}

	if eyes, locator := a.locate(ctx, frame, box); eyes != nil {
		crop, err := a.alignedCrop(frame, box, *eyes)
		if err == nil {
			crop.Role = role
			a.log.Debug("face aligned",
				zap.String("stage", "align"),
				zap.String("role", string(role)),
				zap.String("locator", locator),
				zap.Float64("angle", eyes.Angle()))
			return crop, nil
		}
		a.log.Warn("alignment failed, using plain crop",
			zap.String("stage", "align"),
			zap.String("role", string(role)),
			zap.Error(err))
	}

	crop, err := a.plainCrop(frame, box, padding)
	if err != nil {
		return entity.FaceCrop{}, fmt.Errorf("crop %s face: %w", role, err)
	}
	crop.Role = role
	return crop, nil
}

// locate asks each locator in turn and returns the first eyes found.
func (a *Aligner) locate(ctx context.Context, frame port.Frame, box entity.BBox) (*entity.EyeLandmarks, string) {
	for _, l := range a.locators {
		eyes, err := safeLocate(ctx, l, frame, box)
		if err != nil {
			if !errors.Is(err, entity.ErrNoLandmarks) {
				a.log.Warn("landmark locator failed",
					zap.String("stage", "align"),
					zap.String("locator", l.Name()),
					zap.Error(err))
			}
			continue
		}
		if eyes != nil {
			return eyes, l.Name()
		}
	}
	return nil, ""
}

func safeLocate(ctx context.Context, l port.LandmarkLocator, frame port.Frame, box entity.BBox) (eyes *entity.EyeLandmarks, err error) {
	defer func() {
		if r := recover(); r != nil {
			eyes = nil
			err = fmt.Errorf("%s locator panic: %v", l.Name(), r)
		}
	}()
	return l.Locate(ctx, frame, box)
}

func (a *Aligner) alignedCrop(frame port.Frame, box entity.BBox, eyes entity.EyeLandmarks) (entity.FaceCrop, error) {
	rotated, err := a.processor.Rotate(frame, eyes.Center(), eyes.Angle())
	if err != nil {
		return entity.FaceCrop{}, fmt.Errorf("rotate: %w", err)
	}
	defer rotated.Close()

	crop, err := a.plainCrop(rotated, box, entity.AlignedPadding)
	if err != nil {
		return entity.FaceCrop{}, err
	}
	crop.Aligned = true
	return crop, nil
}

func (a *Aligner) plainCrop(frame port.Frame, box entity.BBox, padding float64) (entity.FaceCrop, error) {
	region := box.Pad(padding, frame.Width(), frame.Height())
	if region.Empty() {
		return entity.FaceCrop{}, fmt.Errorf("empty crop region %+v", region)
	}

	face, err := a.processor.Crop(frame, region)
	if err != nil {
		return entity.FaceCrop{}, fmt.Errorf("crop: %w", err)
	}
	defer face.Close()

	data, err := a.processor.Encode(face)
	if err != nil {
		return entity.FaceCrop{}, fmt.Errorf("encode: %w", err)
	}

	return entity.FaceCrop{
		Data:   data,
		Width:  face.Width(),
		Height: face.Height(),
	}, nil
}
