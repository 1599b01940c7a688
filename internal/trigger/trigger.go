// Package trigger turns per-frame hand observations into discrete, debounced
// game actions.
package trigger

import (
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/handstrike/internal/detector"
	"github.com/ayusman/handstrike/internal/gesture"
)

// ActionKind identifies what a gesture fired.
type ActionKind string

const (
	Shoot ActionKind = "shoot"
	Punch ActionKind = "punch"
)

// ActionEvent is produced and consumed within a single tick.
type ActionEvent struct {
	Kind       ActionKind
	Handedness detector.Handedness
	// Aim is the normalized screen point the action was made at.
	Aim detector.Point3D
	// Origin and Direction are the world-space ray, filled in by the session.
	Origin    r3.Vec
	Direction r3.Vec
	At        time.Time
}

// HandTrackState is the per-hand memory carried between frames.
type HandTrackState struct {
	LastSize    float64
	HasSize     bool
	LastFingerY float64
	HasFingerY  bool
	LastAction  time.Time
}

// Strategy evaluates one trigger rule against a hand's state. It must update
// the state it tracks every time it is called, whether or not it fires.
type Strategy interface {
	Kind() ActionKind
	Evaluate(state *HandTrackState, hand *detector.HandLandmarks, facts gesture.Facts, now time.Time) bool
}

// Engine routes observations to strategies and keeps state per handedness.
type Engine struct {
	strategies []Strategy
	states     map[detector.Handedness]*HandTrackState
}

// NewEngine creates an Engine running the given strategies in order.
func NewEngine(strategies ...Strategy) *Engine {
	return &Engine{
		strategies: strategies,
		states:     make(map[detector.Handedness]*HandTrackState),
	}
}

// Process evaluates one confident hand observation and returns the actions it fired.
func (e *Engine) Process(hand *detector.HandLandmarks, facts gesture.Facts, now time.Time) []ActionEvent {
	if hand == nil {
		return nil
	}

	state, ok := e.states[hand.Handedness]
	if !ok {
		state = &HandTrackState{}
		e.states[hand.Handedness] = state
	}

	var events []ActionEvent
	for _, s := range e.strategies {
		if !s.Evaluate(state, hand, facts, now) {
			continue
		}
		state.LastAction = now
		events = append(events, ActionEvent{
			Kind:       s.Kind(),
			Handedness: hand.Handedness,
			Aim:        aimPoint(s.Kind(), hand),
			At:         now,
		})
	}
	return events
}

// State returns a copy of the tracked state for a hand.
func (e *Engine) State(label detector.Handedness) (HandTrackState, bool) {
	s, ok := e.states[label]
	if !ok {
		return HandTrackState{}, false
	}
	return *s, true
}

// Reset forgets every hand, as on game restart.
func (e *Engine) Reset() {
	e.states = make(map[detector.Handedness]*HandTrackState)
}

func aimPoint(kind ActionKind, hand *detector.HandLandmarks) detector.Point3D {
	if kind == Shoot {
		return hand.Points[detector.IndexTip]
	}
	return hand.Points[detector.Wrist]
}
