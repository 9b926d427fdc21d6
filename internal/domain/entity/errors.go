package entity

import "errors"

var (
	// ErrBackendUnavailable means a whole capability (detection or recognition) is down.
	ErrBackendUnavailable = errors.New("face backend unavailable")

	// ErrNoDetectors is returned when no detection strategy could be loaded.
	ErrNoDetectors = errors.New("no face detectors configured")

	// ErrInvalidPolicy is returned for unusable pipeline settings.
	ErrInvalidPolicy = errors.New("invalid verification policy")

	// ErrInvalidTransition is returned for a dialog step out of order.
	ErrInvalidTransition = errors.New("invalid dialog transition")

	// ErrNoLandmarks is returned by locators that found no eyes for a box.
	ErrNoLandmarks = errors.New("no landmarks for face")
)
