// Package game ties hand tracking, targets and scoring into a playable session.
package game

import (
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/ayusman/handstrike/internal/detector"
	"github.com/ayusman/handstrike/internal/gesture"
	"github.com/ayusman/handstrike/internal/hit"
	"github.com/ayusman/handstrike/internal/particle"
	"github.com/ayusman/handstrike/internal/scheduler"
	"github.com/ayusman/handstrike/internal/score"
	"github.com/ayusman/handstrike/internal/target"
	"github.com/ayusman/handstrike/internal/trigger"
)

const aimStatusKey = "aim-status"

// maxFeedback bounds undrained hit feedback when nothing renders frames.
const maxFeedback = 64

// ImpactPlayer plays the hit sound. It must not block.
type ImpactPlayer interface {
	PlayImpact()
}

// Metrics receives gameplay counters.
type Metrics interface {
	FrameProcessed()
	DetectFailed()
	ActionFired(kind trigger.ActionKind)
	TargetHit(typ target.Type, points int)
}

type nopMetrics struct{}

func (nopMetrics) FrameProcessed()                {}
func (nopMetrics) DetectFailed()                  {}
func (nopMetrics) ActionFired(trigger.ActionKind) {}
func (nopMetrics) TargetHit(target.Type, int)     {}

type nopImpact struct{}

func (nopImpact) PlayImpact() {}

// Round is a finished stretch of play.
type Round struct {
	Mode      Mode
	Target    target.Type
	Summary   score.Summary
	StartedAt time.Time
	EndedAt   time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithImpact sets the hit sound player.
func WithImpact(p ImpactPlayer) Option {
	return func(s *Session) { s.impact = p }
}

// WithMetrics sets the counter sink.
func WithMetrics(m Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithRand sets the randomness source for particles.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) { s.rng = r }
}

// OnRoundEnd registers a callback for finished rounds. It runs outside the
// session lock.
func OnRoundEnd(fn func(Round)) Option {
	return func(s *Session) { s.onRoundEnd = fn }
}

// Session is one player's game. All methods are safe for concurrent use;
// each runs to completion before the next starts.
type Session struct {
	mu sync.Mutex

	cfg        Config
	sched      *scheduler.Scheduler
	particles  *particle.System
	targets    *target.Registry
	resolver   *hit.Resolver
	classifier *gesture.Classifier
	engine     *trigger.Engine
	camera     *CameraRig
	tally      score.Aggregator

	playing    bool
	roundStart time.Time
	lastTick   time.Time
	status     string
	aimStatus  string
	handsSeen  int

	detectorStatus detector.Status
	detectorErr    error

	feedback []target.Feedback

	rng        *rand.Rand
	impact     ImpactPlayer
	metrics    Metrics
	onRoundEnd func(Round)
}

// NewSession creates a paused session showing cfg.Target.
func NewSession(cfg Config, opts ...Option) (*Session, error) {
	s := &Session{
		cfg:            cfg,
		impact:         nopImpact{},
		metrics:        nopMetrics{},
		status:         "Press SPACE to Start",
		detectorStatus: detector.StatusIdle,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.sched = scheduler.New()
	s.particles = particle.NewSystem(cfg.Particles, s.rng)
	s.targets = target.NewRegistry(cfg.Targets, s.sched, s.particles)
	s.resolver = hit.NewResolver(cfg.hitConfig())
	s.classifier = gesture.NewClassifier(cfg.Gesture)
	s.engine = trigger.NewEngine(cfg.strategies()...)
	s.camera = NewCameraRig(cfg.Camera)

	if err := s.targets.Switch(cfg.Target); err != nil {
		return nil, fmt.Errorf("initial target: %w", err)
	}
	return s, nil
}

// Config returns the configuration the session was built with.
func (s *Session) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Tick advances timers, particles and animation to now. The step is clamped
// so a stalled caller does not produce one huge integration step.
func (s *Session) Tick(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var dt time.Duration
	if !s.lastTick.IsZero() {
		dt = now.Sub(s.lastTick)
	}
	dt = max(0, min(dt, s.cfg.MaxFrameDelta))
	s.lastTick = now

	s.sched.Advance(now)
	s.particles.Update(dt.Seconds())
	s.targets.Update()
}

// ObserveHands consumes one frame of normalized hand observations.
func (s *Session) ObserveHands(now time.Time, hands []detector.HandLandmarks) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Due cooldown resets apply before this frame's actions resolve.
	s.sched.Advance(now)

	hands = detector.FilterConfident(hands, s.cfg.MinConfidence)
	s.handsSeen = len(hands)
	if !s.playing {
		return
	}
	if len(hands) == 0 {
		s.status = "Waiting for gesture..."
		return
	}

	ready := 0
	for i := range hands {
		h := &hands[i]
		facts := s.classifier.Classify(h)

		if h.Handedness == detector.Right || len(hands) == 1 {
			s.camera.Follow(h.Points[detector.Wrist])
		}

		if s.poseReady(facts) {
			ready++
		}
		for _, ev := range s.engine.Process(h, facts, now) {
			s.act(now, ev)
		}
	}

	s.status = s.readyStatus(ready)
}

func (s *Session) poseReady(f gesture.Facts) bool {
	if s.cfg.Mode == ModeShoot {
		return f.GunPose
	}
	return f.Fist
}

func (s *Session) readyStatus(ready int) string {
	if s.cfg.Mode == ModeShoot {
		if ready > 0 {
			return fmt.Sprintf("%d Gun(s) Aimed! FLICK!", ready)
		}
		return "Make a finger gun..."
	}
	if ready > 0 {
		return fmt.Sprintf("%d Fist(s) Ready! PUNCH!", ready)
	}
	return "Clench your fist..."
}

// act counts and resolves one fired action. Callers hold the lock.
func (s *Session) act(now time.Time, ev trigger.ActionEvent) {
	ray := s.camera.Ray(ev.Aim)
	ev.Origin, ev.Direction = ray.Origin, ray.Direction

	s.tally.RecordShot()
	s.metrics.ActionFired(ev.Kind)

	if ev.Kind == trigger.Punch {
		s.aimStatus = "ATTACK!"
	} else {
		s.aimStatus = "BANG!"
	}
	s.sched.After(now, s.cfg.AimStatusLinger, aimStatusKey,
		func() bool { return s.playing },
		func() { s.aimStatus = "" })

	res := s.resolver.Resolve(ray, s.targets.Visible())
	if !res.Hit {
		return
	}
	mark := s.targets.MarkHit
	if s.resolver.Mode() == hit.ModeGuaranteed {
		mark = s.targets.Strike
	}
	fb, ok := mark(now, res.TargetID, ev.Direction)
	if !ok {
		return
	}

	s.tally.RecordHit(res.Points)
	s.metrics.TargetHit(s.targets.ActiveType(), res.Points)
	if len(s.feedback) >= maxFeedback {
		s.feedback = s.feedback[1:]
	}
	s.feedback = append(s.feedback, fb)
	s.impact.PlayImpact()
}

// ManualAction fires the mode's action straight down the crosshair, for
// keyboard and click play. It does nothing while paused.
func (s *Session) ManualAction(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.playing {
		return false
	}
	s.sched.Advance(now)

	kind := trigger.Punch
	if s.cfg.Mode == ModeShoot {
		kind = trigger.Shoot
	}
	s.act(now, trigger.ActionEvent{
		Kind:       kind,
		Handedness: detector.Right,
		Aim:        detector.Point3D{X: 0.5, Y: 0.5},
		At:         now,
	})
	return true
}

// Toggle starts or pauses play and returns whether the game is now playing.
// Pausing keeps the score; the round continues on resume.
func (s *Session) Toggle(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.playing {
		s.playing = false
		s.status = "Game Paused"
		s.aimStatus = "Press SPACE to Resume"
	} else {
		s.startLocked(now)
	}
	return s.playing
}

// Restart ends the current round, zeroes the score and forgets all hand
// state, then starts playing.
func (s *Session) Restart(now time.Time) {
	s.mu.Lock()
	ended := s.endRoundLocked(now)
	s.tally.Reset()
	s.engine.Reset()
	s.camera.Reset()
	s.sched.Cancel(aimStatusKey)
	s.aimStatus = ""
	s.playing = false
	s.startLocked(now)
	s.mu.Unlock()

	s.reportRound(ended)
}

func (s *Session) startLocked(now time.Time) {
	s.playing = true
	if s.roundStart.IsZero() {
		s.roundStart = now
	}
	s.targets.ResetHits()
	if s.handsSeen > 0 {
		s.status = "Game Active..."
	} else {
		s.status = "Game Active... (Waiting for hands)"
	}
	s.aimStatus = ""
}

// endRoundLocked returns the round played since the last start, if any
// action was fired in it.
func (s *Session) endRoundLocked(now time.Time) *Round {
	if s.roundStart.IsZero() {
		return nil
	}
	sum := s.tally.Summary()
	start := s.roundStart
	s.roundStart = time.Time{}
	if sum.Shots == 0 {
		return nil
	}
	return &Round{
		Mode:      s.cfg.Mode,
		Target:    s.targets.ActiveType(),
		Summary:   sum,
		StartedAt: start,
		EndedAt:   now,
	}
}

func (s *Session) reportRound(r *Round) {
	if r == nil {
		return
	}
	log.Printf("Round ended: score %d, accuracy %d%%", r.Summary.Score, r.Summary.Accuracy)
	if s.onRoundEnd != nil {
		s.onRoundEnd(*r)
	}
}

// SwitchTarget replaces the active target set.
func (s *Session) SwitchTarget(name string) error {
	typ, err := target.ParseType(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.targets.Switch(typ); err != nil {
		return err
	}
	s.cfg.Target = typ
	return nil
}

// SetDetectorStatus records the estimator state for display.
func (s *Session) SetDetectorStatus(status detector.Status, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detectorStatus = status
	s.detectorErr = err
}

// Playing reports whether the game is running.
func (s *Session) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Summary returns the current tally.
func (s *Session) Summary() score.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tally.Summary()
}

// Close ends the current round and releases every target and particle.
func (s *Session) Close(now time.Time) {
	s.mu.Lock()
	ended := s.endRoundLocked(now)
	s.playing = false
	s.targets.Close()
	s.sched.Clear()
	s.mu.Unlock()

	s.reportRound(ended)
}
