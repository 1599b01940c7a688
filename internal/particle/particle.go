// Package particle simulates the explosion of a particle cloud target.
package particle

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"
)

// Config holds the tuned explosion constants.
type Config struct {
	Count           int
	Radius          float64
	DensityExponent float64

	BaseSpeed     float64
	DistanceSpeed float64
	RandomSpeed   float64

	RadialWeight   float64
	IncomingWeight float64
	Jitter         float64

	Damping     float64
	Gravity     float64
	MinLifetime float64
	MaxLifetime float64
	FadeStart   float64

	RespawnDelay time.Duration
}

// DefaultConfig returns the cell cloud tuning.
func DefaultConfig() Config {
	return Config{
		Count:           800,
		Radius:          1.5,
		DensityExponent: 0.7,
		BaseSpeed:       2.0,
		DistanceSpeed:   1.5,
		RandomSpeed:     2.0,
		RadialWeight:    0.6,
		IncomingWeight:  0.4,
		Jitter:          0.1,
		Damping:         0.96,
		Gravity:         2.0,
		MinLifetime:     1.5,
		MaxLifetime:     3.0,
		FadeStart:       0.7,
		RespawnDelay:    600 * time.Millisecond,
	}
}

// Particle is one free-flying explosion fragment in world space.
type Particle struct {
	Position        r3.Vec
	Velocity        r3.Vec
	OriginalOpacity float64
	Opacity         float64
	Lifetime        float64
	MaxLifetime     float64
	Damping         float64
	Color           string
	// Owner is the target the particle exploded from.
	Owner string
}

// Member is a particle still bound to its cloud, positioned relative to the center.
type Member struct {
	Offset  r3.Vec
	Color   string
	Opacity float64
}

// Cloud is the resting particle population of a cloud target.
type Cloud struct {
	Center  r3.Vec
	Radius  float64
	Members []Member
}

// System owns every live explosion particle.
type System struct {
	cfg       Config
	rng       *rand.Rand
	particles []*Particle
}

// NewSystem creates a System drawing randomness from rng.
func NewSystem(cfg Config, rng *rand.Rand) *System {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &System{cfg: cfg, rng: rng}
}

// Config returns the system's constants.
func (s *System) Config() Config {
	return s.cfg
}

// NewCloud creates a populated cloud centred on center.
func (s *System) NewCloud(center r3.Vec) *Cloud {
	c := &Cloud{Center: center, Radius: s.cfg.Radius}
	s.Regenerate(c)
	return c
}

// Regenerate replaces the cloud's members with a fresh random population.
// Radii are drawn as rand^DensityExponent so members bunch toward the center.
func (s *System) Regenerate(c *Cloud) {
	members := make([]Member, s.cfg.Count)
	for i := range members {
		r := math.Pow(s.rng.Float64(), s.cfg.DensityExponent) * c.Radius
		members[i] = Member{
			Offset:  r3.Scale(r, s.randomUnit()),
			Color:   colorful.Hsl(s.rng.Float64()*360, 0.7+s.rng.Float64()*0.3, 0.5+s.rng.Float64()*0.2).Hex(),
			Opacity: 0.6 + s.rng.Float64()*0.4,
		}
	}
	c.Members = members
}

// Explode converts every member of c into a free particle owned by owner and
// empties the cloud. incoming is the direction of the action that hit it.
func (s *System) Explode(owner string, c *Cloud, incoming r3.Vec) int {
	if c == nil {
		return 0
	}
	in := unitOrZero(incoming)

	for _, m := range c.Members {
		dist := r3.Norm(m.Offset)
		radial := unitOrZero(m.Offset)
		if dist == 0 {
			radial = s.randomUnit()
		}

		dir := r3.Add(r3.Scale(s.cfg.RadialWeight, radial), r3.Scale(s.cfg.IncomingWeight, in))
		jitter := r3.Vec{
			X: (s.rng.Float64()*2 - 1) * s.cfg.Jitter,
			Y: (s.rng.Float64()*2 - 1) * s.cfg.Jitter,
			Z: (s.rng.Float64()*2 - 1) * s.cfg.Jitter,
		}
		dir = unitOrZero(r3.Add(dir, jitter))
		if dir == (r3.Vec{}) {
			dir = radial
		}

		speed := s.cfg.BaseSpeed + dist*s.cfg.DistanceSpeed + s.rng.Float64()*s.cfg.RandomSpeed

		s.particles = append(s.particles, &Particle{
			// World position is fixed at explosion time; the cloud can be
			// moved or discarded afterwards.
			Position:        r3.Add(c.Center, m.Offset),
			Velocity:        r3.Scale(speed, dir),
			OriginalOpacity: m.Opacity,
			Opacity:         m.Opacity,
			MaxLifetime:     s.cfg.MinLifetime + s.rng.Float64()*(s.cfg.MaxLifetime-s.cfg.MinLifetime),
			Damping:         s.cfg.Damping,
			Color:           m.Color,
			Owner:           owner,
		})
	}

	n := len(c.Members)
	c.Members = nil
	return n
}

// Update advances every particle by dt seconds and destroys the expired ones.
func (s *System) Update(dt float64) int {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return 0
	}

	alive := s.particles[:0]
	removed := 0
	for _, p := range s.particles {
		p.Position = r3.Add(p.Position, r3.Scale(dt, p.Velocity))
		p.Velocity = r3.Scale(p.Damping, p.Velocity)
		p.Velocity.Y -= s.cfg.Gravity * dt

		p.Lifetime += dt
		if p.Lifetime >= p.MaxLifetime {
			p.Lifetime = p.MaxLifetime
			removed++
			continue
		}
		p.Opacity = s.opacity(p)
		alive = append(alive, p)
	}
	for i := len(alive); i < len(s.particles); i++ {
		s.particles[i] = nil
	}
	s.particles = alive
	return removed
}

func (s *System) opacity(p *Particle) float64 {
	progress := p.Lifetime / p.MaxLifetime
	if progress <= s.cfg.FadeStart {
		return p.OriginalOpacity
	}
	return p.OriginalOpacity * (1 - (progress-s.cfg.FadeStart)/(1-s.cfg.FadeStart))
}

// Flush destroys every particle belonging to owner regardless of lifetime.
func (s *System) Flush(owner string) int {
	kept := s.particles[:0]
	for _, p := range s.particles {
		if p.Owner != owner {
			kept = append(kept, p)
		}
	}
	n := len(s.particles) - len(kept)
	for i := len(kept); i < len(s.particles); i++ {
		s.particles[i] = nil
	}
	s.particles = kept
	return n
}

// Len returns the number of live particles.
func (s *System) Len() int {
	return len(s.particles)
}

// CountOwned returns the number of live particles from owner.
func (s *System) CountOwned(owner string) int {
	n := 0
	for _, p := range s.particles {
		if p.Owner == owner {
			n++
		}
	}
	return n
}

// Particles returns a copy of the live particles.
func (s *System) Particles() []Particle {
	out := make([]Particle, len(s.particles))
	for i, p := range s.particles {
		out[i] = *p
	}
	return out
}

func (s *System) randomUnit() r3.Vec {
	// Uniform on the sphere: z uniform in [-1,1], azimuth uniform.
	z := s.rng.Float64()*2 - 1
	phi := s.rng.Float64() * 2 * math.Pi
	r := math.Sqrt(1 - z*z)
	return r3.Vec{X: r * math.Cos(phi), Y: r * math.Sin(phi), Z: z}
}

func unitOrZero(v r3.Vec) r3.Vec {
	if r3.Norm(v) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(v)
}
