package trigger

import (
	"time"

	"github.com/ayusman/handstrike/internal/detector"
	"github.com/ayusman/handstrike/internal/gesture"
)

// PunchStrategy fires when the hand's apparent size surges, i.e. the hand
// moves quickly towards the camera.
type PunchStrategy struct {
	SurgeThreshold float64
	Cooldown       time.Duration
}

// DefaultPunch returns the tuned punch trigger.
func DefaultPunch() PunchStrategy {
	return PunchStrategy{
		SurgeThreshold: 0.04,
		Cooldown:       500 * time.Millisecond,
	}
}

// Kind implements Strategy.
func (p PunchStrategy) Kind() ActionKind { return Punch }

// Evaluate implements Strategy.
func (p PunchStrategy) Evaluate(state *HandTrackState, hand *detector.HandLandmarks, _ gesture.Facts, now time.Time) bool {
	size := hand.Size()

	fire := false
	if state.HasSize {
		delta := size - state.LastSize
		cooled := state.LastAction.IsZero() || now.Sub(state.LastAction) > p.Cooldown
		fire = delta > p.SurgeThreshold && cooled
	}

	state.LastSize = size
	state.HasSize = true
	return fire
}

// ShootStrategy fires on an upward flick of the index finger while the hand
// holds a gun pose.
type ShootStrategy struct {
	FlickThreshold float64
}

// DefaultShoot returns the tuned shoot trigger.
func DefaultShoot() ShootStrategy {
	return ShootStrategy{FlickThreshold: 0.05}
}

// Kind implements Strategy.
func (s ShootStrategy) Kind() ActionKind { return Shoot }

// Evaluate implements Strategy.
func (s ShootStrategy) Evaluate(state *HandTrackState, hand *detector.HandLandmarks, facts gesture.Facts, _ time.Time) bool {
	y := hand.Points[detector.IndexTip].Y

	fire := false
	if state.HasFingerY {
		// Image y grows downwards, so a positive delta is an upward flick.
		deltaY := state.LastFingerY - y
		fire = deltaY > s.FlickThreshold && facts.GunPose
	}

	state.LastFingerY = y
	state.HasFingerY = true
	return fire
}
