// Package app wires the game session to the camera, the hand estimator,
// persistence and the HTTP server.
package app

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/handstrike/internal/capture"
	"github.com/ayusman/handstrike/internal/detector"
	"github.com/ayusman/handstrike/internal/game"
	"github.com/ayusman/handstrike/internal/metrics"
	"github.com/ayusman/handstrike/internal/server"
	"github.com/ayusman/handstrike/internal/store"
)

// DefaultLoadTimeout bounds estimator start-up.
const DefaultLoadTimeout = 10 * time.Second

// Config holds configuration options for the application.
type Config struct {
	Store *store.Store
	// Game is the configuration before stored settings are applied.
	Game   game.Config
	Camera capture.Camera
	// Detector, when set, is used instead of loading MediaPipe.
	Detector    detector.Detector
	LoadTimeout time.Duration
	Impact      game.ImpactPlayer
	StaticDir   string
}

// App is the running game: session, capture loop and server.
type App struct {
	config  Config
	session *game.Session
	loader  *detector.Loader
	runner  *game.Runner
	server  *server.Server
	preview *capture.Latest
	metrics *metrics.Collector

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// New creates a stopped App. Stored settings are layered over config.Game;
// a malformed stored value is logged and the defaults are kept.
func New(config Config) (*App, error) {
	if config.LoadTimeout <= 0 {
		config.LoadTimeout = DefaultLoadTimeout
	}

	cfg := config.Game
	if config.Store != nil {
		settings, err := config.Store.Settings().All()
		if err != nil {
			return nil, err
		}
		if err := cfg.ApplySettings(settings); err != nil {
			log.Printf("Ignoring stored settings: %v", err)
		}
	}

	a := &App{
		config:  config,
		loader:  detector.NewLoader(),
		preview: capture.NewLatest(),
		metrics: metrics.New(),
	}

	opts := []game.Option{
		game.WithMetrics(a.metrics),
		game.OnRoundEnd(a.saveRound),
	}
	if config.Impact != nil {
		opts = append(opts, game.WithImpact(config.Impact))
	}
	session, err := game.NewSession(cfg, opts...)
	if err != nil {
		return nil, err
	}
	a.session = session

	a.runner = game.NewRunner(game.RunnerConfig{
		Session: session,
		Camera:  config.Camera,
		Source:  a.loader,
		Preview: a.preview,
		Metrics: a.metrics,
	})

	a.server = server.New(server.Config{
		StaticDir:  config.StaticDir,
		Store:      config.Store,
		Game:       session,
		Preview:    a.preview,
		Metrics:    a.metrics.Handler(),
		Base:       config.Game,
		OnSettings: a.applySettings,
	})

	return a, nil
}

// Start loads the estimator in the background and starts the capture loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	if a.config.Detector != nil {
		a.loader.Use(a.config.Detector)
	} else {
		minConf := a.session.Config().MinConfidence
		a.loader.Start(ctx, func(ctx context.Context) (detector.Detector, error) {
			dcfg := detector.DefaultConfig()
			dcfg.MinConfidence = minConf
			mp, err := detector.NewMediaPipeDetector(dcfg)
			if err != nil {
				return nil, err
			}
			if err := mp.Start(); err != nil {
				return nil, err
			}
			log.Println("Using MediaPipe hand detection")
			return mp, nil
		}, a.config.LoadTimeout)
	}

	if err := a.runner.Start(); err != nil {
		cancel()
		return err
	}

	a.cancel = cancel
	a.running = true
	log.Println("Application started")
	return nil
}

// Stop halts capture, records the round in progress and releases the
// estimator.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return
	}
	a.running = false

	a.runner.Stop()
	a.cancel()
	a.server.Close()
	a.session.Close(time.Now())
	if err := a.loader.Close(); err != nil {
		log.Printf("Failed to close detector: %v", err)
	}
	log.Println("Application stopped")
}

// Handler returns the HTTP handler for the UI and API.
func (a *App) Handler() http.Handler {
	return a.server
}

// Session returns the game session.
func (a *App) Session() *game.Session {
	return a.session
}

// DetectorStatus reports the estimator load state.
func (a *App) DetectorStatus() (detector.Status, error) {
	return a.loader.Status()
}

// WaitDetector blocks until the estimator has loaded or failed.
func (a *App) WaitDetector(ctx context.Context) (detector.Status, error) {
	return a.loader.Wait(ctx)
}

func (a *App) saveRound(r game.Round) {
	if a.config.Store == nil {
		return
	}
	err := a.config.Store.Rounds().Create(&store.Round{
		Mode:      string(r.Mode),
		Target:    string(r.Target),
		Score:     r.Summary.Score,
		Shots:     r.Summary.Shots,
		Hits:      r.Summary.Hits,
		Accuracy:  r.Summary.Accuracy,
		StartedAt: r.StartedAt,
		EndedAt:   r.EndedAt,
	})
	if err != nil {
		log.Printf("Failed to save round: %v", err)
	}
}

// applySettings reacts to settings saved through the API. The target set
// switches immediately; everything else applies on the next launch.
func (a *App) applySettings(changed map[string]string) {
	for k, v := range changed {
		if k == game.SettingTarget {
			if err := a.session.SwitchTarget(v); err != nil {
				log.Printf("Failed to switch target: %v", err)
			}
			continue
		}
		log.Printf("Setting %s saved; takes effect on restart", k)
	}
}
