package detector

import (
	"context"

	"gocv.io/x/gocv"
)

// Detector defines the interface for hand pose estimators.
type Detector interface {
	// Detect analyzes a video frame and returns raw detections in pixel space.
	// Returns an empty slice if no hands are detected.
	Detect(ctx context.Context, frame *gocv.Mat) ([]RawHand, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the score below which a hand is treated as absent.
	MinConfidence float64

	// ModelType selects the estimator model variant ("lite" or "full").
	ModelType string
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:      2,
		MinConfidence: 0.6,
		ModelType:     "full",
	}
}
