// Package hit decides which target, if any, an action lands on and how many
// points it is worth.
package hit

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/handstrike/internal/target"
)

// Mode selects how actions are resolved.
type Mode int

const (
	// ModeGuaranteed credits every action to the active target, even one
	// still flashing from the previous hit.
	ModeGuaranteed Mode = iota
	// ModeGeometric intersects the action ray with the targets.
	ModeGeometric
)

// Geometry selects the intersection policy used in ModeGeometric.
type Geometry int

const (
	// GeometryRay intersects the ray with each target's shape.
	GeometryRay Geometry = iota
	// GeometryCenter compares the ray's closest approach to each center
	// against the bounding radius.
	GeometryCenter
)

// Band awards Points to offsets strictly below Within.
type Band struct {
	Within float64 `json:"within"`
	Points int     `json:"points"`
}

// Tiers is a step function from offset to points. Bands must be ordered by
// increasing Within.
type Tiers struct {
	Bands []Band `json:"bands"`
	// Fallback is awarded past the last band when the target was still hit.
	Fallback int `json:"fallback"`
}

// Score returns the points for an offset in the target's local units.
func (t Tiers) Score(offset float64) int {
	for _, b := range t.Bands {
		if offset < b.Within {
			return b.Points
		}
	}
	return t.Fallback
}

// RingTiers is the four-band ring scheme in ring-local units.
func RingTiers() Tiers {
	return Tiers{Bands: []Band{{0.2, 50}, {0.4, 30}, {0.7, 20}, {1.0, 10}}}
}

// SphereTiers is the sphere scheme in world units.
func SphereTiers() Tiers {
	return Tiers{Bands: []Band{{0.5, 100}, {0.8, 75}, {1.2, 50}}, Fallback: 25}
}

// Config holds resolver tuning.
type Config struct {
	Mode            Mode
	Geometry        Geometry
	GuaranteedScore int
	Ring            Tiers
	Sphere          Tiers
}

// DefaultConfig returns the punch-bag setup.
func DefaultConfig() Config {
	return Config{
		Mode:            ModeGuaranteed,
		Geometry:        GeometryRay,
		GuaranteedScore: 50,
		Ring:            RingTiers(),
		Sphere:          SphereTiers(),
	}
}

// Result describes a resolved action.
type Result struct {
	Hit      bool
	TargetID string
	Contact  r3.Vec
	// Distance is the scored offset in the target's local units.
	Distance float64
	Points   int
}

// Resolver picks at most one target per action.
type Resolver struct {
	cfg Config
}

// NewResolver creates a Resolver.
func NewResolver(cfg Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// Mode returns the resolution mode.
func (r *Resolver) Mode() Mode {
	return r.cfg.Mode
}

// Resolve selects the credited target among candidates. It does not mutate
// the targets; the caller marks the hit, with Registry.Strike in guaranteed
// mode and Registry.MarkHit otherwise.
func (r *Resolver) Resolve(ray target.Ray, candidates []*target.Target) Result {
	if r.cfg.Mode == ModeGuaranteed {
		for _, t := range candidates {
			if t.Visible {
				return Result{Hit: true, TargetID: t.ID, Contact: t.Center(), Points: r.cfg.GuaranteedScore}
			}
		}
		return Result{}
	}

	type candidate struct {
		t  *target.Target
		ix target.Intersection
	}
	var hits []candidate
	for _, t := range candidates {
		if !t.Eligible() {
			continue
		}
		ix, ok := r.intersect(ray, t)
		if ok {
			hits = append(hits, candidate{t, ix})
		}
	}
	if len(hits) == 0 {
		return Result{}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].ix.T < hits[j].ix.T })
	nearest := hits[0]

	scale := nearest.t.Scale
	if scale <= 0 {
		scale = 1
	}
	dist := nearest.ix.Offset / scale
	return Result{
		Hit:      true,
		TargetID: nearest.t.ID,
		Contact:  nearest.ix.Contact,
		Distance: dist,
		Points:   r.tiers(nearest.t.Kind).Score(dist),
	}
}

func (r *Resolver) intersect(ray target.Ray, t *target.Target) (target.Intersection, bool) {
	if r.cfg.Geometry == GeometryRay || t.Kind == target.KindRing {
		return t.HitTest(ray)
	}
	if !ray.Valid() {
		return target.Intersection{}, false
	}
	along, offset := ray.ClosestApproach(t.Center())
	if offset > t.Radius || math.IsNaN(offset) {
		return target.Intersection{}, false
	}
	return target.Intersection{T: along, Contact: ray.At(along), Offset: offset}, true
}

func (r *Resolver) tiers(k target.Kind) Tiers {
	if k == target.KindRing {
		return r.cfg.Ring
	}
	return r.cfg.Sphere
}
