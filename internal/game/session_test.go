package game

import (
	"math"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/handstrike/internal/detector"
	"github.com/ayusman/handstrike/internal/score"
	"github.com/ayusman/handstrike/internal/target"
	"github.com/ayusman/handstrike/internal/trigger"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

type fakeImpact struct {
	mu    sync.Mutex
	plays int
}

func (f *fakeImpact) PlayImpact() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plays++
}

func (f *fakeImpact) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.plays
}

type fakeMetrics struct {
	mu       sync.Mutex
	frames   int
	failures int
	actions  map[trigger.ActionKind]int
	points   int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{actions: make(map[trigger.ActionKind]int)}
}

func (f *fakeMetrics) FrameProcessed() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames++
}

func (f *fakeMetrics) DetectFailed() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures++
}

func (f *fakeMetrics) ActionFired(kind trigger.ActionKind) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions[kind]++
}

func (f *fakeMetrics) TargetHit(_ target.Type, points int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points += points
}

func (f *fakeMetrics) frameCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames
}

func newSession(t *testing.T, cfg Config, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{WithRand(rand.New(rand.NewPCG(1, 2)))}, opts...)
	s, err := NewSession(cfg, opts...)
	require.NoError(t, err)
	return s
}

func fist(size float64) detector.HandLandmarks {
	return detector.WithHandSize(detector.FistLandmarks(), size)
}

func TestSession_PunchScenario(t *testing.T) {
	impact := &fakeImpact{}
	metrics := newFakeMetrics()
	s := newSession(t, DefaultConfig(), WithImpact(impact), WithMetrics(metrics))
	require.True(t, s.Toggle(t0))

	s.ObserveHands(t0, []detector.HandLandmarks{fist(0.10)})
	s.ObserveHands(t0, []detector.HandLandmarks{fist(0.16)})

	assert.Equal(t, score.Summary{Score: 50, Shots: 1, Hits: 1, Accuracy: 100}, s.Summary())
	assert.Equal(t, 1, impact.count())
	assert.Equal(t, 1, metrics.actions[trigger.Punch])
	assert.Equal(t, 50, metrics.points)

	snap := s.Frame(t0)
	assert.Equal(t, "ATTACK!", snap.AimStatus)
	assert.Equal(t, "1 Fist(s) Ready! PUNCH!", snap.Status)
	require.Len(t, snap.Feedback, 1)
	assert.Equal(t, target.FeedbackFlash, snap.Feedback[0].Kind)
	require.Len(t, snap.Targets, 1)
	assert.True(t, snap.Targets[0].Flashing)
	assert.Less(t, snap.Targets[0].Tilt, 0.0)

	assert.Empty(t, s.Frame(t0).Feedback, "feedback is handed out once")

	s.Tick(t0)
	s.Tick(t0.Add(300 * time.Millisecond))
	assert.Empty(t, s.Snapshot(t0.Add(300*time.Millisecond)).AimStatus)
}

func TestSession_PunchRateIsBounded(t *testing.T) {
	s := newSession(t, DefaultConfig())
	s.Toggle(t0)

	now := t0
	for i := 0; i < 40; i++ {
		s.Tick(now)
		size := 0.10
		if i%2 == 1 {
			size = 0.20
		}
		s.ObserveHands(now, []detector.HandLandmarks{fist(size)})
		now = now.Add(100 * time.Millisecond)
	}

	// 4 seconds of surges every 200ms, but at most one punch per 500ms.
	sum := s.Summary()
	assert.LessOrEqual(t, sum.Shots, 8)
	assert.Greater(t, sum.Shots, 0)
	assert.Equal(t, sum.Shots, sum.Hits, "every punch lands on the bag")
}

func TestSession_BothHandsPunchBackToBack(t *testing.T) {
	s := newSession(t, DefaultConfig())
	s.Toggle(t0)

	hand := func(h detector.Handedness, size float64) detector.HandLandmarks {
		l := fist(size)
		l.Handedness = h
		return l
	}

	s.ObserveHands(t0, []detector.HandLandmarks{hand(detector.Left, 0.10), hand(detector.Right, 0.10)})
	s.ObserveHands(t0.Add(10*time.Millisecond), []detector.HandLandmarks{hand(detector.Left, 0.16), hand(detector.Right, 0.10)})
	s.ObserveHands(t0.Add(110*time.Millisecond), []detector.HandLandmarks{hand(detector.Left, 0.16), hand(detector.Right, 0.16)})

	assert.Equal(t, score.Summary{Score: 100, Shots: 2, Hits: 2, Accuracy: 100}, s.Summary())
}

func TestSession_ManualPunchesBackToBack(t *testing.T) {
	impact := &fakeImpact{}
	s := newSession(t, DefaultConfig(), WithImpact(impact))
	s.Toggle(t0)

	require.True(t, s.ManualAction(t0))
	require.True(t, s.ManualAction(t0.Add(100*time.Millisecond)))

	assert.Equal(t, 2, s.Summary().Hits)
	assert.Equal(t, 2, s.Summary().Shots)
	assert.Equal(t, 2, impact.count())
	assert.Len(t, s.Frame(t0.Add(100*time.Millisecond)).Feedback, 2)
}

func TestSession_DueResetsApplyWithoutTick(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ModeShoot
	cfg.Target = target.Sphere
	s := newSession(t, cfg)
	s.Toggle(t0)

	require.True(t, s.ManualAction(t0))
	require.True(t, s.ManualAction(t0.Add(500*time.Millisecond)))
	assert.Equal(t, 1, s.Summary().Hits, "the sphere is still cooling down")

	// No Tick in between: the due reset is applied by the action itself.
	require.True(t, s.ManualAction(t0.Add(1100*time.Millisecond)))
	assert.Equal(t, 2, s.Summary().Hits)
	assert.Equal(t, 3, s.Summary().Shots)
}

func TestSession_IgnoresHandsWhilePaused(t *testing.T) {
	s := newSession(t, DefaultConfig())

	s.ObserveHands(t0, []detector.HandLandmarks{fist(0.10)})
	s.ObserveHands(t0, []detector.HandLandmarks{fist(0.20)})
	assert.Equal(t, 0, s.Summary().Shots)
	assert.False(t, s.ManualAction(t0))

	snap := s.Snapshot(t0)
	assert.Equal(t, 1, snap.Hands)
	assert.Equal(t, "Press SPACE to Start", snap.Status)

	s.Toggle(t0)
	assert.Equal(t, "Game Active...", s.Snapshot(t0).Status)
	s.Toggle(t0)
	snap = s.Snapshot(t0)
	assert.Equal(t, "Game Paused", snap.Status)
	assert.Equal(t, "Press SPACE to Resume", snap.AimStatus)
}

func TestSession_LowConfidenceIsAbsent(t *testing.T) {
	s := newSession(t, DefaultConfig())
	s.Toggle(t0)

	s.ObserveHands(t0, []detector.HandLandmarks{fist(0.10)})

	weak := fist(0.30)
	weak.Score = 0.4
	s.ObserveHands(t0.Add(10*time.Millisecond), []detector.HandLandmarks{weak})
	assert.Equal(t, "Waiting for gesture...", s.Snapshot(t0).Status)
	assert.Equal(t, 0, s.Summary().Shots)

	// The baseline from before the dropout is still there.
	s.ObserveHands(t0.Add(20*time.Millisecond), []detector.HandLandmarks{fist(0.16)})
	assert.Equal(t, 1, s.Summary().Shots)
}

func TestSession_CellScenario(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Target = target.Cell
	s := newSession(t, cfg)
	s.Toggle(t0)

	require.True(t, s.ManualAction(t0))
	snap := s.Frame(t0)
	assert.Equal(t, 800, snap.Particles)
	require.Len(t, snap.Feedback, 1)
	assert.Equal(t, target.FeedbackExplode, snap.Feedback[0].Kind)
	assert.Equal(t, 800, snap.Feedback[0].Particles)
	assert.Empty(t, snap.Targets, "the cloud hides while exploded")

	// The cloud cannot be hit again before it respawns.
	s.ManualAction(t0.Add(10 * time.Millisecond))
	assert.Equal(t, 1, s.Summary().Hits)

	now := t0
	for now.Before(t0.Add(3500 * time.Millisecond)) {
		now = now.Add(16 * time.Millisecond)
		s.Tick(now)
	}

	snap = s.Snapshot(now)
	assert.Equal(t, 0, snap.Particles)
	require.Len(t, snap.Targets, 1)
	assert.Equal(t, 800, snap.Targets[0].Members)
	assert.False(t, snap.Targets[0].IsHit)
}

func TestSession_SwitchTargetMidExplosion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Target = target.Cell
	s := newSession(t, cfg)
	s.Toggle(t0)

	s.ManualAction(t0)
	s.Tick(t0)
	s.Tick(t0.Add(50 * time.Millisecond))
	require.Equal(t, 800, s.Snapshot(t0).Particles)

	require.NoError(t, s.SwitchTarget("photo"))
	snap := s.Snapshot(t0)
	assert.Equal(t, 0, snap.Particles)
	assert.Equal(t, target.Photo, snap.Target)
	require.Len(t, snap.Targets, 1)
	assert.Equal(t, target.KindCutout, snap.Targets[0].Kind)

	for i := 1; i <= 100; i++ {
		s.Tick(t0.Add(time.Duration(i) * 50 * time.Millisecond))
	}
	assert.Len(t, s.Snapshot(t0).Targets, 1)

	err := s.SwitchTarget("dragon")
	assert.ErrorIs(t, err, target.ErrUnknownType)
}

func TestSession_ShootManual(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ModeShoot
	cfg.Target = target.Rings
	s := newSession(t, cfg)
	s.Toggle(t0)

	// The crosshair ray meets the center ring 0.1 below eye height.
	require.True(t, s.ManualAction(t0))
	assert.Equal(t, score.Summary{Score: 50, Shots: 1, Hits: 1, Accuracy: 100}, s.Summary())
	assert.Equal(t, "BANG!", s.Snapshot(t0).AimStatus)

	// Same ring is cooling down; the shot counts but scores nothing.
	s.ManualAction(t0.Add(100 * time.Millisecond))
	assert.Equal(t, score.Summary{Score: 50, Shots: 2, Hits: 1, Accuracy: 50}, s.Summary())

	s.Tick(t0.Add(time.Second))
	s.ManualAction(t0.Add(time.Second))
	assert.Equal(t, 3, s.Summary().Shots)
	assert.Equal(t, 2, s.Summary().Hits)
}

func TestSession_ShootGesture(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ModeShoot
	cfg.Target = target.Sphere
	s := newSession(t, cfg)
	s.Toggle(t0)

	gun := detector.GunPoseLandmarks()
	s.ObserveHands(t0, []detector.HandLandmarks{gun})
	assert.Equal(t, "1 Gun(s) Aimed! FLICK!", s.Snapshot(t0).Status)

	s.ObserveHands(t0.Add(16*time.Millisecond), []detector.HandLandmarks{detector.Translate(gun, 0, -0.06)})
	assert.Equal(t, 1, s.Summary().Shots)

	// A fist does not shoot.
	f := detector.FistLandmarks()
	s.ObserveHands(t0.Add(32*time.Millisecond), []detector.HandLandmarks{f})
	s.ObserveHands(t0.Add(48*time.Millisecond), []detector.HandLandmarks{detector.Translate(f, 0, -0.1)})
	assert.Equal(t, 1, s.Summary().Shots)
}

func TestSession_RestartAndRounds(t *testing.T) {
	var rounds []Round
	s := newSession(t, DefaultConfig(), OnRoundEnd(func(r Round) { rounds = append(rounds, r) }))

	s.Toggle(t0)
	s.ManualAction(t0)
	s.Toggle(t0.Add(time.Second))
	s.Toggle(t0.Add(2 * time.Second))
	assert.Empty(t, rounds, "pausing keeps the round open")
	assert.Equal(t, 1, s.Summary().Shots)

	s.ObserveHands(t0, []detector.HandLandmarks{fist(0.10)})
	s.Restart(t0.Add(3 * time.Second))

	require.Len(t, rounds, 1)
	assert.Equal(t, ModePunch, rounds[0].Mode)
	assert.Equal(t, target.Rabbit, rounds[0].Target)
	assert.Equal(t, 50, rounds[0].Summary.Score)
	assert.Equal(t, t0, rounds[0].StartedAt)
	assert.Equal(t, t0.Add(3*time.Second), rounds[0].EndedAt)

	assert.Equal(t, score.Summary{}, s.Summary())
	assert.True(t, s.Playing())

	// Hand state was forgotten: the next sample is only a baseline.
	s.ObserveHands(t0.Add(4*time.Second), []detector.HandLandmarks{fist(0.16)})
	assert.Equal(t, 0, s.Summary().Shots)

	// A round with no actions is not reported.
	s.Close(t0.Add(5 * time.Second))
	assert.Len(t, rounds, 1)
}

func TestSession_CameraFollowsHand(t *testing.T) {
	s := newSession(t, DefaultConfig())
	s.Toggle(t0)

	left := fist(0.10)
	left.Handedness = detector.Left
	left = detector.Translate(left, -0.3, 0)
	right := fist(0.10)

	s.ObserveHands(t0, []detector.HandLandmarks{left, right})
	got := s.Snapshot(t0).Camera
	// Only the right hand steers when both are visible: wrist at (0.5, 0.8).
	assert.InDelta(t, 0, got.Yaw, 1e-12)
	assert.InDelta(t, 0.1*0.3*math.Pi/4, got.Pitch, 1e-12)
}

func TestSession_DeltaTimeClamp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Target = target.Cell
	s := newSession(t, cfg)
	s.Toggle(t0)
	s.ManualAction(t0)
	s.Tick(t0)

	// A ten second stall integrates as a single 100ms step.
	s.Tick(t0.Add(10 * time.Second))
	assert.Equal(t, 800, s.Snapshot(t0).Particles)
}

func TestSession_DetectorStatus(t *testing.T) {
	s := newSession(t, DefaultConfig())
	s.SetDetectorStatus(detector.StatusFailed, assert.AnError)

	snap := s.Snapshot(t0)
	assert.Equal(t, detector.StatusFailed, snap.Detector)
	assert.Equal(t, assert.AnError.Error(), snap.DetectorError)
}

func TestNewSession_UnknownTarget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Target = "dragon"
	_, err := NewSession(cfg)
	assert.ErrorIs(t, err, target.ErrUnknownType)
}
