package particle

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func newTestSystem(seed uint64) *System {
	return NewSystem(DefaultConfig(), rand.New(rand.NewPCG(seed, seed+1)))
}

func TestNewCloud_PopulatesWithinRadius(t *testing.T) {
	s := newTestSystem(1)
	c := s.NewCloud(r3.Vec{X: 0, Y: 1.5, Z: 0})

	require.Len(t, c.Members, 800)
	inner := 0
	for _, m := range c.Members {
		d := r3.Norm(m.Offset)
		assert.LessOrEqual(t, d, c.Radius+1e-9)
		assert.GreaterOrEqual(t, m.Opacity, 0.6)
		assert.LessOrEqual(t, m.Opacity, 1.0)
		assert.Len(t, m.Color, 7)
		if d < c.Radius/2 {
			inner++
		}
	}
	// P(rand^0.7 < 0.5) = 0.5^(1/0.7) ~= 0.37, well above the 0.125 a
	// volume-uniform fill would give.
	assert.Greater(t, inner, 200)
}

func TestExplode_ReparentsIntoWorldSpace(t *testing.T) {
	s := newTestSystem(2)
	center := r3.Vec{X: 1, Y: 2, Z: -3}
	c := s.NewCloud(center)
	members := append([]Member(nil), c.Members...)

	n := s.Explode("cell-1", c, r3.Vec{Z: -1})
	require.Equal(t, 800, n)
	assert.Empty(t, c.Members)
	assert.Equal(t, 800, s.Len())
	assert.Equal(t, 800, s.CountOwned("cell-1"))

	// Moving the cloud afterwards does not drag particles along.
	c.Center = r3.Vec{X: 100}

	for i, p := range s.Particles() {
		want := r3.Add(center, members[i].Offset)
		assert.InDelta(t, want.X, p.Position.X, 1e-12)
		assert.InDelta(t, want.Y, p.Position.Y, 1e-12)
		assert.InDelta(t, want.Z, p.Position.Z, 1e-12)
		assert.Equal(t, 0.0, p.Lifetime)
		assert.GreaterOrEqual(t, p.MaxLifetime, 1.5)
		assert.LessOrEqual(t, p.MaxLifetime, 3.0)

		speed := r3.Norm(p.Velocity)
		dist := r3.Norm(members[i].Offset)
		assert.GreaterOrEqual(t, speed, 2.0+dist*1.5-1e-9)
		assert.LessOrEqual(t, speed, 2.0+dist*1.5+2.0+1e-9)
	}
}

func TestExplode_DirectionFavoursRadial(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Jitter = 0
	s := NewSystem(cfg, rand.New(rand.NewPCG(3, 4)))

	c := &Cloud{Radius: 1.5, Members: []Member{{Offset: r3.Vec{X: 1}, Opacity: 1}}}
	s.Explode("cell", c, r3.Vec{Z: -1})

	p := s.Particles()[0]
	dir := r3.Unit(p.Velocity)
	want := r3.Unit(r3.Vec{X: 0.6, Z: -0.4})
	assert.InDelta(t, want.X, dir.X, 1e-9)
	assert.InDelta(t, 0, dir.Y, 1e-9)
	assert.InDelta(t, want.Z, dir.Z, 1e-9)
}

func TestUpdate_Integration(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSystem(cfg, nil)
	s.particles = []*Particle{{
		Velocity:        r3.Vec{X: 1, Y: 1},
		OriginalOpacity: 1,
		Opacity:         1,
		MaxLifetime:     2,
		Damping:         0.96,
	}}

	s.Update(0.1)
	p := s.Particles()[0]
	assert.InDelta(t, 0.1, p.Position.X, 1e-12)
	assert.InDelta(t, 0.1, p.Position.Y, 1e-12)
	assert.InDelta(t, 0.96, p.Velocity.X, 1e-12)
	assert.InDelta(t, 0.96-0.2, p.Velocity.Y, 1e-12)
	assert.InDelta(t, 0.1, p.Lifetime, 1e-12)
}

func TestUpdate_IgnoresBadDelta(t *testing.T) {
	s := newTestSystem(5)
	s.Explode("cell", s.NewCloud(r3.Vec{}), r3.Vec{})
	before := s.Particles()

	for _, dt := range []float64{0, -0.1, math.NaN(), math.Inf(1)} {
		assert.Equal(t, 0, s.Update(dt))
	}
	assert.Equal(t, before, s.Particles())
}

func TestUpdate_LifetimeAndFade(t *testing.T) {
	s := newTestSystem(6)
	s.Explode("cell", s.NewCloud(r3.Vec{}), r3.Vec{Z: -1})

	for step := 0; step < 400; step++ {
		s.Update(1.0 / 60)
		for _, p := range s.Particles() {
			require.GreaterOrEqual(t, p.Lifetime, 0.0)
			require.Less(t, p.Lifetime, p.MaxLifetime)

			progress := p.Lifetime / p.MaxLifetime
			if progress <= 0.7 {
				require.Equal(t, p.OriginalOpacity, p.Opacity)
			} else {
				want := p.OriginalOpacity * (1 - (progress-0.7)/0.3)
				require.InDelta(t, want, p.Opacity, 1e-9)
				require.Less(t, p.Opacity, p.OriginalOpacity)
			}
		}
	}
}

func TestUpdate_AllExpireAfterMaxLifetime(t *testing.T) {
	s := newTestSystem(7)
	s.Explode("cell", s.NewCloud(r3.Vec{}), r3.Vec{Z: -1})
	require.Equal(t, 800, s.Len())

	removed := 0
	for elapsed := 0.0; elapsed < 3.5; elapsed += 0.1 {
		removed += s.Update(0.1)
	}
	assert.Equal(t, 800, removed)
	assert.Equal(t, 0, s.Len())
}

func TestFlush(t *testing.T) {
	s := newTestSystem(8)
	s.Explode("a", s.NewCloud(r3.Vec{}), r3.Vec{})
	s.Explode("b", s.NewCloud(r3.Vec{X: 5}), r3.Vec{})

	assert.Equal(t, 800, s.Flush("a"))
	assert.Equal(t, 0, s.CountOwned("a"))
	assert.Equal(t, 800, s.CountOwned("b"))
	assert.Equal(t, 0, s.Flush("a"))
}

func TestRegenerate_RefillsExplodedCloud(t *testing.T) {
	s := newTestSystem(9)
	c := s.NewCloud(r3.Vec{})
	s.Explode("cell", c, r3.Vec{})
	require.Empty(t, c.Members)

	s.Regenerate(c)
	assert.Len(t, c.Members, 800)
}
