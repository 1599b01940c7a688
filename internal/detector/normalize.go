package detector

import (
	"errors"
	"fmt"
)

var (
	// ErrFrameNotReady is returned when the frame has no usable dimensions yet.
	// Callers skip the tick.
	ErrFrameNotReady = errors.New("frame not ready")

	// ErrIncompleteHand is returned for detections that do not carry 21
	// finite keypoints.
	ErrIncompleteHand = errors.New("incomplete hand")
)

// RawKeypoint is a provider-native keypoint in pixel space.
type RawKeypoint struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
	Name string  `json:"name,omitempty"`
}

// RawHand is one detection as returned by an estimator.
type RawHand struct {
	Keypoints  []RawKeypoint `json:"keypoints"`
	Score      *float64      `json:"score,omitempty"`
	Handedness string        `json:"handedness,omitempty"`
}

// NormalizeHand converts a raw detection into normalized landmarks by
// dividing x by the frame width and y by the frame height.
func NormalizeHand(raw RawHand, width, height int) (HandLandmarks, error) {
	var h HandLandmarks
	if width <= 0 || height <= 0 {
		return h, ErrFrameNotReady
	}
	if len(raw.Keypoints) < NumLandmarks {
		return h, fmt.Errorf("%w: %d keypoints", ErrIncompleteHand, len(raw.Keypoints))
	}

	w, ht := float64(width), float64(height)
	for i := 0; i < NumLandmarks; i++ {
		kp := raw.Keypoints[i]
		p := Point3D{X: kp.X / w, Y: kp.Y / ht, Z: kp.Z}
		if !p.IsFinite() {
			return HandLandmarks{}, fmt.Errorf("%w: keypoint %d is not finite", ErrIncompleteHand, i)
		}
		h.Points[i] = p
	}

	h.Handedness = ParseHandedness(raw.Handedness)
	if raw.Score != nil && isFinite(*raw.Score) {
		h.Score = *raw.Score
	}
	return h, nil
}

// NormalizeHands normalizes every detection in a frame. Incomplete hands are
// dropped; an unready frame fails the whole batch.
func NormalizeHands(raws []RawHand, width, height int) ([]HandLandmarks, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrFrameNotReady
	}

	hands := make([]HandLandmarks, 0, len(raws))
	for _, raw := range raws {
		h, err := NormalizeHand(raw, width, height)
		if err != nil {
			continue
		}
		hands = append(hands, h)
	}
	return hands, nil
}

// FilterConfident returns the hands whose score is at least minConfidence.
func FilterConfident(hands []HandLandmarks, minConfidence float64) []HandLandmarks {
	kept := hands[:0:0]
	for _, h := range hands {
		if h.Score >= minConfidence {
			kept = append(kept, h)
		}
	}
	return kept
}
