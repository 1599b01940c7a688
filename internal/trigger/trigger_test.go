package trigger

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/handstrike/internal/detector"
	"github.com/ayusman/handstrike/internal/gesture"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func sized(label detector.Handedness, size float64) *detector.HandLandmarks {
	h := detector.WithHandSize(detector.FistLandmarks(), size)
	h.Handedness = label
	return &h
}

func TestPunch_FiresOnSurge(t *testing.T) {
	e := NewEngine(DefaultPunch())

	events := e.Process(sized(detector.Right, 0.10), gesture.Facts{}, t0)
	assert.Empty(t, events, "first sample only records a baseline")

	events = e.Process(sized(detector.Right, 0.16), gesture.Facts{}, t0)
	require.Len(t, events, 1)
	assert.Equal(t, Punch, events[0].Kind)
	assert.Equal(t, detector.Right, events[0].Handedness)
	assert.Equal(t, t0, events[0].At)
}

func TestPunch_SlowDriftDoesNotFire(t *testing.T) {
	e := NewEngine(DefaultPunch())

	size := 0.10
	for i := 0; i < 50; i++ {
		events := e.Process(sized(detector.Right, size), gesture.Facts{}, t0.Add(time.Duration(i)*time.Second))
		assert.Empty(t, events)
		size += 0.03
	}
}

func TestPunch_Cooldown(t *testing.T) {
	e := NewEngine(DefaultPunch())
	e.Process(sized(detector.Right, 0.10), gesture.Facts{}, t0)

	require.Len(t, e.Process(sized(detector.Right, 0.20), gesture.Facts{}, t0), 1)

	// Back down, then surge again inside the refractory window.
	e.Process(sized(detector.Right, 0.10), gesture.Facts{}, t0.Add(100*time.Millisecond))
	assert.Empty(t, e.Process(sized(detector.Right, 0.20), gesture.Facts{}, t0.Add(500*time.Millisecond)))

	e.Process(sized(detector.Right, 0.10), gesture.Facts{}, t0.Add(520*time.Millisecond))
	assert.Len(t, e.Process(sized(detector.Right, 0.20), gesture.Facts{}, t0.Add(501*time.Millisecond+100*time.Millisecond)), 1)
}

func TestPunch_HandsAreIndependent(t *testing.T) {
	e := NewEngine(DefaultPunch())

	e.Process(sized(detector.Right, 0.10), gesture.Facts{}, t0)
	e.Process(sized(detector.Left, 0.10), gesture.Facts{}, t0)

	require.Len(t, e.Process(sized(detector.Right, 0.20), gesture.Facts{}, t0.Add(10*time.Millisecond)), 1)
	left := e.Process(sized(detector.Left, 0.20), gesture.Facts{}, t0.Add(20*time.Millisecond))
	require.Len(t, left, 1)
	assert.Equal(t, detector.Left, left[0].Handedness)
}

// TestPunch_MatchesReferenceModel replays random size sequences and checks
// that a punch fires exactly when the latest delta exceeds the threshold and
// more than the cooldown has passed since the previous punch.
func TestPunch_MatchesReferenceModel(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	p := DefaultPunch()

	for run := 0; run < 50; run++ {
		e := NewEngine(p)
		now := t0
		var (
			prev      float64
			hasPrev   bool
			lastFired time.Time
			fired     []time.Time
		)

		for i := 0; i < 200; i++ {
			now = now.Add(time.Duration(rng.IntN(120)) * time.Millisecond)
			size := 0.05 + rng.Float64()*0.2

			want := hasPrev && size-prev > p.SurgeThreshold &&
				(lastFired.IsZero() || now.Sub(lastFired) > p.Cooldown)
			got := e.Process(sized(detector.Right, size), gesture.Facts{}, now)

			assert.Equal(t, want, len(got) == 1, "run %d step %d", run, i)
			if want {
				lastFired = now
				fired = append(fired, now)
			}
			prev, hasPrev = size, true
		}

		for i := 1; i < len(fired); i++ {
			assert.Greater(t, fired[i].Sub(fired[i-1]), p.Cooldown)
		}
	}
}

func TestShoot(t *testing.T) {
	gun := gesture.Facts{GunPose: true}

	t.Run("upward flick with gun pose fires", func(t *testing.T) {
		e := NewEngine(DefaultShoot())
		h := detector.GunPoseLandmarks()
		assert.Empty(t, e.Process(&h, gun, t0))

		up := detector.Translate(h, 0, -0.06)
		events := e.Process(&up, gun, t0.Add(16*time.Millisecond))
		require.Len(t, events, 1)
		assert.Equal(t, Shoot, events[0].Kind)
		assert.Equal(t, up.Points[detector.IndexTip], events[0].Aim)
	})

	t.Run("flick without gun pose does not fire", func(t *testing.T) {
		e := NewEngine(DefaultShoot())
		h := detector.GunPoseLandmarks()
		e.Process(&h, gesture.Facts{}, t0)

		up := detector.Translate(h, 0, -0.06)
		assert.Empty(t, e.Process(&up, gesture.Facts{}, t0.Add(16*time.Millisecond)))
	})

	t.Run("downward or small moves do not fire", func(t *testing.T) {
		e := NewEngine(DefaultShoot())
		h := detector.GunPoseLandmarks()
		e.Process(&h, gun, t0)

		down := detector.Translate(h, 0, 0.2)
		assert.Empty(t, e.Process(&down, gun, t0.Add(16*time.Millisecond)))

		small := detector.Translate(down, 0, -0.04)
		assert.Empty(t, e.Process(&small, gun, t0.Add(32*time.Millisecond)))
	})

	t.Run("baseline follows the finger after firing", func(t *testing.T) {
		e := NewEngine(DefaultShoot())
		h := detector.GunPoseLandmarks()
		e.Process(&h, gun, t0)

		up := detector.Translate(h, 0, -0.06)
		require.Len(t, e.Process(&up, gun, t0.Add(16*time.Millisecond)), 1)

		state, ok := e.State(detector.Right)
		require.True(t, ok)
		assert.InDelta(t, up.Points[detector.IndexTip].Y, state.LastFingerY, 1e-12)

		// Holding still afterwards does not re-fire.
		assert.Empty(t, e.Process(&up, gun, t0.Add(32*time.Millisecond)))
	})
}

func TestEngine_Reset(t *testing.T) {
	e := NewEngine(DefaultPunch(), DefaultShoot())
	e.Process(sized(detector.Right, 0.10), gesture.Facts{}, t0)

	_, ok := e.State(detector.Right)
	require.True(t, ok)

	e.Reset()
	_, ok = e.State(detector.Right)
	assert.False(t, ok)

	// After reset the next sample is a fresh baseline.
	assert.Empty(t, e.Process(sized(detector.Right, 0.30), gesture.Facts{}, t0.Add(time.Second)))
}
