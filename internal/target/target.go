// Package target holds the shootable and punchable objects of a session and
// their hit state machine.
package target

import (
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/handstrike/internal/particle"
)

// ErrUnknownType is returned when a target type name is not recognised.
var ErrUnknownType = errors.New("unknown target type")

// Type is a player-selectable target set.
type Type string

const (
	Rabbit Type = "rabbit"
	Photo  Type = "photo"
	Cell   Type = "cell"
	Sphere Type = "sphere"
	Rings  Type = "rings"
)

// Types lists every selectable target type in menu order.
func Types() []Type {
	return []Type{Rabbit, Photo, Cell, Sphere, Rings}
}

// ParseType validates a target type name.
func ParseType(s string) (Type, error) {
	for _, t := range Types() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Kind is the geometric representation of a target.
type Kind string

const (
	KindRing          Kind = "ring"
	KindSphere        Kind = "sphere"
	KindMeshModel     Kind = "mesh"
	KindCutout        Kind = "cutout"
	KindParticleCloud Kind = "cloud"
)

// FeedbackKind names a render-side hit effect.
type FeedbackKind string

const (
	FeedbackFlash   FeedbackKind = "flash"
	FeedbackPulse   FeedbackKind = "pulse"
	FeedbackExplode FeedbackKind = "explode"
)

// Feedback is a directive for the scene layer describing how to show a hit.
type Feedback struct {
	TargetID   string       `json:"target_id"`
	Kind       FeedbackKind `json:"kind"`
	Color      string       `json:"color,omitempty"`
	Emissive   float64      `json:"emissive,omitempty"`
	Scale      float64      `json:"scale,omitempty"`
	Tilt       float64      `json:"tilt,omitempty"`
	Particles  int          `json:"particles,omitempty"`
	DurationMS int64        `json:"duration_ms,omitempty"`
}

// Target is one hittable object. Only the Registry mutates it.
type Target struct {
	ID       string
	Type     Type
	Kind     Kind
	Name     string
	Position r3.Vec
	// Radius is the world-space bounding radius, or the outer band for rings.
	Radius float64
	// Scale converts world distances into the target's local scoring units.
	Scale  float64
	Normal r3.Vec

	Visible  bool
	IsHit    bool
	HitUntil time.Time

	FlashUntil time.Time
	Tilt       float64

	Cloud *particle.Cloud

	generation int
	feedback   Feedback
}

// Center returns the scoring center in world space.
func (t *Target) Center() r3.Vec {
	return t.Position
}

// HitTest intersects a ray with the target's geometry.
func (t *Target) HitTest(r Ray) (Intersection, bool) {
	if !r.Valid() {
		return Intersection{}, false
	}
	switch t.Kind {
	case KindRing:
		return rayDisc(r, t.Position, t.Normal, t.Radius)
	case KindParticleCloud:
		if t.Cloud == nil || len(t.Cloud.Members) == 0 {
			return Intersection{}, false
		}
		return raySphere(r, t.Position, t.Radius)
	default:
		return raySphere(r, t.Position, t.Radius)
	}
}

// Feedback returns the hit directive for the target's kind.
func (t *Target) Feedback() Feedback {
	f := t.feedback
	f.TargetID = t.ID
	if t.Kind == KindParticleCloud && t.Cloud != nil {
		f.Particles = len(t.Cloud.Members)
	}
	return f
}

// Dispose hides the target and releases its cloud.
func (t *Target) Dispose() {
	t.Visible = false
	t.IsHit = false
	t.HitUntil = time.Time{}
	t.Tilt = 0
	t.generation++
	if t.Cloud != nil {
		t.Cloud.Members = nil
	}
}

// Eligible reports whether the target can currently be credited with a hit.
func (t *Target) Eligible() bool {
	return t.Visible && !t.IsHit
}
