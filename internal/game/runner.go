package game

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/handstrike/internal/capture"
	"github.com/ayusman/handstrike/internal/detector"
)

// DefaultTickRate is the render tick rate in frames per second.
const DefaultTickRate = 60

// DetectorSource hands out the hand estimator once it has loaded.
type DetectorSource interface {
	Status() (detector.Status, error)
	Detector() (detector.Detector, error)
}

// RunnerConfig wires a Runner.
type RunnerConfig struct {
	Session *Session
	Camera  capture.Camera
	Source  DetectorSource
	// Preview receives every captured frame when set.
	Preview  *capture.Latest
	Metrics  Metrics
	TickRate int
	Now      func() time.Time
}

type detection struct {
	hands  []detector.RawHand
	width  int
	height int
	err    error
}

// Runner drives a session from the camera: it ticks the session at the
// render rate and keeps at most one detection request in flight.
type Runner struct {
	cfg     RunnerConfig
	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	cancel  context.CancelFunc
	results chan detection
}

// NewRunner creates a stopped Runner.
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.TickRate <= 0 {
		cfg.TickRate = DefaultTickRate
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}
	return &Runner{cfg: cfg}
}

// Start opens the camera and begins the loop.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopCh != nil {
		return nil
	}
	if err := r.cfg.Camera.Open(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	r.results = make(chan detection, 1)
	go r.run(ctx, r.stopCh, r.doneCh)

	log.Println("Game loop started")
	return nil
}

// Stop halts the loop and closes the camera.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopCh == nil {
		return
	}
	close(r.stopCh)
	r.cancel()
	<-r.doneCh
	r.stopCh = nil

	if err := r.cfg.Camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	log.Println("Game loop stopped")
}

func (r *Runner) run(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(time.Second / time.Duration(r.cfg.TickRate))
	defer ticker.Stop()

	inFlight := false
	for {
		select {
		case <-stop:
			return

		case d := <-r.results:
			inFlight = false
			r.handle(d)

		case <-ticker.C:
			s := r.cfg.Session
			s.Tick(r.cfg.Now())
			s.SetDetectorStatus(r.cfg.Source.Status())

			// A new request is only issued after the previous one settled.
			if inFlight {
				continue
			}
			if r.detect(ctx) {
				inFlight = true
			}
		}
	}
}

// detect reads a frame and starts estimating it in the background.
func (r *Runner) detect(ctx context.Context) bool {
	frame, err := r.cfg.Camera.ReadFrame()
	if err != nil {
		return false
	}
	if r.cfg.Preview != nil {
		r.cfg.Preview.Publish(frame)
	}

	det, err := r.cfg.Source.Detector()
	if err != nil {
		frame.Close()
		return false
	}

	results := r.results
	go func(frame *gocv.Mat) {
		defer frame.Close()
		w, h := capture.FrameSize(frame)
		hands, err := det.Detect(ctx, frame)
		results <- detection{hands: hands, width: w, height: h, err: err}
	}(frame)
	return true
}

func (r *Runner) handle(d detection) {
	if d.err != nil {
		if !errors.Is(d.err, context.Canceled) {
			r.cfg.Metrics.DetectFailed()
		}
		return
	}

	hands, err := detector.NormalizeHands(d.hands, d.width, d.height)
	if err != nil {
		// Frame not ready: skip this tick.
		return
	}
	r.cfg.Session.ObserveHands(r.cfg.Now(), hands)
	r.cfg.Metrics.FrameProcessed()
}
