package target

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/handstrike/internal/particle"
	"github.com/ayusman/handstrike/internal/scheduler"
)

// Particles is the part of the explosion system the registry drives.
type Particles interface {
	NewCloud(center r3.Vec) *particle.Cloud
	Regenerate(c *particle.Cloud)
	Explode(owner string, c *particle.Cloud, incoming r3.Vec) int
	Flush(owner string) int
}

// Config holds target placement and hit feedback tuning.
type Config struct {
	Anchor r3.Vec

	RingScale    float64
	RingSpacing  float64
	SphereRadius float64
	ModelRadius  float64

	RingCooldown   time.Duration
	SphereCooldown time.Duration
	ModelCooldown  time.Duration
	RespawnDelay   time.Duration

	FlashDuration time.Duration
	FlashEmissive float64
	HitTilt       float64
	SwayDecay     float64
	PulseScale    float64
}

// DefaultConfig returns the stock target layout.
func DefaultConfig() Config {
	return Config{
		Anchor:         r3.Vec{X: 0, Y: 1.5, Z: 0},
		RingScale:      1.5,
		RingSpacing:    3.5,
		SphereRadius:   1.5,
		ModelRadius:    1.0,
		RingCooldown:   1000 * time.Millisecond,
		SphereCooldown: 1000 * time.Millisecond,
		ModelCooldown:  450 * time.Millisecond,
		RespawnDelay:   600 * time.Millisecond,
		FlashDuration:  200 * time.Millisecond,
		FlashEmissive:  0.8,
		HitTilt:        -math.Pi / 8,
		SwayDecay:      0.95,
		PulseScale:     1.2,
	}
}

// Registry owns every target and tracks which type is active.
type Registry struct {
	cfg     Config
	sched   *scheduler.Scheduler
	parts   Particles
	targets map[Type][]*Target
	active  Type
}

// NewRegistry builds the full target set, all hidden until Switch.
func NewRegistry(cfg Config, sched *scheduler.Scheduler, parts Particles) *Registry {
	r := &Registry{
		cfg:     cfg,
		sched:   sched,
		parts:   parts,
		targets: make(map[Type][]*Target),
	}

	red := colorful.Hsl(0, 1, 0.5).Hex()
	yellow := colorful.Hsl(60, 1, 0.5).Hex()
	flashMS := cfg.FlashDuration.Milliseconds()

	model := func(typ Type, kind Kind, name string) *Target {
		return &Target{
			ID: uuid.NewString(), Type: typ, Kind: kind, Name: name,
			Position: cfg.Anchor, Radius: cfg.ModelRadius, Scale: 1,
			feedback: Feedback{Kind: FeedbackFlash, Color: red, Emissive: cfg.FlashEmissive, Tilt: cfg.HitTilt, DurationMS: flashMS},
		}
	}
	r.targets[Rabbit] = []*Target{model(Rabbit, KindMeshModel, "rabbit")}
	r.targets[Photo] = []*Target{model(Photo, KindCutout, "photo")}

	r.targets[Cell] = []*Target{{
		ID: uuid.NewString(), Type: Cell, Kind: KindParticleCloud, Name: "cell",
		Position: cfg.Anchor, Scale: 1,
		feedback: Feedback{Kind: FeedbackExplode},
	}}

	r.targets[Sphere] = []*Target{{
		ID: uuid.NewString(), Type: Sphere, Kind: KindSphere, Name: "sphere",
		Position: cfg.Anchor, Radius: cfg.SphereRadius, Scale: 1,
		feedback: Feedback{Kind: FeedbackPulse, Color: yellow, Scale: cfg.PulseScale, DurationMS: flashMS},
	}}

	for i, name := range []string{"left ring", "center ring", "right ring"} {
		pos := cfg.Anchor
		pos.X += float64(i-1) * cfg.RingSpacing
		r.targets[Rings] = append(r.targets[Rings], &Target{
			ID: uuid.NewString(), Type: Rings, Kind: KindRing, Name: name,
			Position: pos, Radius: cfg.RingScale, Scale: cfg.RingScale,
			Normal:   r3.Vec{Z: 1},
			feedback: Feedback{Kind: FeedbackPulse, Color: yellow, Scale: cfg.PulseScale, DurationMS: flashMS},
		})
	}
	return r
}

// ActiveType returns the current target type, empty before the first Switch.
func (r *Registry) ActiveType() Type {
	return r.active
}

// Active returns the targets of the active type, visible or not.
func (r *Registry) Active() []*Target {
	return r.targets[r.active]
}

// Visible returns the visible targets of the active type.
func (r *Registry) Visible() []*Target {
	var out []*Target
	for _, t := range r.Active() {
		if t.Visible {
			out = append(out, t)
		}
	}
	return out
}

// Get returns an active target by ID.
func (r *Registry) Get(id string) (*Target, bool) {
	for _, t := range r.Active() {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// Switch makes typ the active target type. The previous targets are hidden,
// their pending timers cancelled and any particles they own destroyed.
func (r *Registry) Switch(typ Type) error {
	if _, ok := r.targets[typ]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}

	for _, t := range r.targets[r.active] {
		r.retire(t)
	}

	r.active = typ
	for _, t := range r.targets[typ] {
		t.generation++
		t.Visible = true
		t.IsHit = false
		t.HitUntil = time.Time{}
		t.FlashUntil = time.Time{}
		t.Tilt = 0
		if t.Kind == KindParticleCloud {
			if t.Cloud == nil {
				t.Cloud = r.parts.NewCloud(t.Position)
				t.Radius = t.Cloud.Radius
			} else if len(t.Cloud.Members) == 0 {
				r.parts.Regenerate(t.Cloud)
			}
		}
	}
	log.Printf("Switched target to %s", typ)
	return nil
}

func (r *Registry) retire(t *Target) {
	r.sched.Cancel(resetKey(t))
	r.sched.Cancel(respawnKey(t))
	if t.Kind == KindParticleCloud {
		r.parts.Flush(t.ID)
	}
	t.Visible = false
	t.IsHit = false
	t.HitUntil = time.Time{}
	t.Tilt = 0
	t.generation++
}

// MarkHit credits a hit on target id. It returns false when the target is not
// active and eligible, so the first of two racing hits wins.
func (r *Registry) MarkHit(now time.Time, id string, incoming r3.Vec) (Feedback, bool) {
	t, ok := r.Get(id)
	if !ok || !t.Eligible() {
		return Feedback{}, false
	}
	return r.hit(now, t, incoming), true
}

// Strike credits a hit on a visible target even while it is still cooling
// down from the last one; the flash, sway and cooldown start over. A cloud
// is hidden until it respawns, so it cannot be struck twice.
func (r *Registry) Strike(now time.Time, id string, incoming r3.Vec) (Feedback, bool) {
	t, ok := r.Get(id)
	if !ok || !t.Visible {
		return Feedback{}, false
	}
	return r.hit(now, t, incoming), true
}

func (r *Registry) hit(now time.Time, t *Target, incoming r3.Vec) Feedback {
	fb := t.Feedback()
	t.IsHit = true
	gen := t.generation
	current := func() bool { return r.active == t.Type && t.generation == gen }

	switch t.Kind {
	case KindParticleCloud:
		fb.Particles = r.parts.Explode(t.ID, t.Cloud, incoming)
		t.Visible = false
		t.HitUntil = now.Add(r.cfg.RespawnDelay)
		r.sched.After(now, r.cfg.RespawnDelay, respawnKey(t), current, func() {
			r.parts.Regenerate(t.Cloud)
			t.Visible = true
			t.IsHit = false
			t.HitUntil = time.Time{}
		})
	default:
		t.HitUntil = now.Add(r.cooldown(t.Kind))
		t.FlashUntil = now.Add(r.cfg.FlashDuration)
		if t.Kind == KindMeshModel || t.Kind == KindCutout {
			t.Tilt = r.cfg.HitTilt
		}
		r.sched.After(now, r.cooldown(t.Kind), resetKey(t), current, func() {
			t.IsHit = false
			t.HitUntil = time.Time{}
		})
	}
	return fb
}

func (r *Registry) cooldown(k Kind) time.Duration {
	switch k {
	case KindRing:
		return r.cfg.RingCooldown
	case KindSphere:
		return r.cfg.SphereCooldown
	default:
		return r.cfg.ModelCooldown
	}
}

// ResetHits clears the hit state of the active targets. A cloud waiting to
// respawn stays hit until it does.
func (r *Registry) ResetHits() {
	for _, t := range r.Active() {
		if r.sched.Pending(respawnKey(t)) {
			continue
		}
		r.sched.Cancel(resetKey(t))
		t.IsHit = false
		t.HitUntil = time.Time{}
	}
}

// Update advances per-tick target animation.
func (r *Registry) Update() {
	for _, t := range r.Active() {
		if t.Tilt == 0 {
			continue
		}
		t.Tilt *= r.cfg.SwayDecay
		if math.Abs(t.Tilt) < 1e-3 {
			t.Tilt = 0
		}
	}
}

// Close disposes every target.
func (r *Registry) Close() {
	for _, ts := range r.targets {
		for _, t := range ts {
			r.retire(t)
			t.Dispose()
		}
	}
	r.active = ""
}

func resetKey(t *Target) string   { return "reset:" + t.ID }
func respawnKey(t *Target) string { return "respawn:" + t.ID }
