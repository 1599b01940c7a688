package game

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/handstrike/internal/gesture"
	"github.com/ayusman/handstrike/internal/hit"
	"github.com/ayusman/handstrike/internal/particle"
	"github.com/ayusman/handstrike/internal/target"
	"github.com/ayusman/handstrike/internal/trigger"
)

// Mode selects the gesture and the hit rule of a session.
type Mode string

const (
	// ModePunch fires on a fist surge and always lands on the bag.
	ModePunch Mode = "punch"
	// ModeShoot fires on a finger-gun flick and aims a ray.
	ModeShoot Mode = "shoot"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModePunch, ModeShoot:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// CameraConfig describes the virtual camera the player looks through.
type CameraConfig struct {
	Position r3.Vec
	// FOV is the vertical field of view in degrees.
	FOV        float64
	Aspect     float64
	Smoothing  float64
	YawRange   float64
	PitchRange float64
}

// DefaultCameraConfig matches the scene layout of the game.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Position:   r3.Vec{X: 0, Y: 1.6, Z: 5},
		FOV:        75,
		Aspect:     4.0 / 3.0,
		Smoothing:  0.1,
		YawRange:   math.Pi / 3,
		PitchRange: math.Pi / 4,
	}
}

// Config aggregates every tuned constant of a session.
type Config struct {
	Mode          Mode
	Target        target.Type
	MinConfidence float64

	Gesture   gesture.Thresholds
	Punch     trigger.PunchStrategy
	Shoot     trigger.ShootStrategy
	Hit       hit.Config
	Targets   target.Config
	Particles particle.Config
	Camera    CameraConfig

	MaxFrameDelta   time.Duration
	AimStatusLinger time.Duration
}

// DefaultConfig returns the punch-bag game.
func DefaultConfig() Config {
	return Config{
		Mode:            ModePunch,
		Target:          target.Rabbit,
		MinConfidence:   0.6,
		Gesture:         gesture.DefaultThresholds(),
		Punch:           trigger.DefaultPunch(),
		Shoot:           trigger.DefaultShoot(),
		Hit:             hit.DefaultConfig(),
		Targets:         target.DefaultConfig(),
		Particles:       particle.DefaultConfig(),
		Camera:          DefaultCameraConfig(),
		MaxFrameDelta:   100 * time.Millisecond,
		AimStatusLinger: 300 * time.Millisecond,
	}
}

// Setting keys understood by ApplySettings.
const (
	SettingMode           = "game.mode"
	SettingTarget         = "game.target"
	SettingSurgeThreshold = "punch.surge_threshold"
	SettingPunchCooldown  = "punch.cooldown_ms"
	SettingFlickThreshold = "shoot.flick_threshold"
	SettingHitCooldown    = "hit.cooldown_ms"
	SettingParticleCount  = "particle.count"
	SettingMinConfidence  = "detector.min_confidence"
)

// SettingKeys lists the keys ApplySettings understands.
func SettingKeys() []string {
	return []string{
		SettingMode, SettingTarget,
		SettingSurgeThreshold, SettingPunchCooldown,
		SettingFlickThreshold, SettingHitCooldown,
		SettingParticleCount, SettingMinConfidence,
	}
}

// IsSettingKey reports whether key is understood by ApplySettings.
func IsSettingKey(key string) bool {
	for _, k := range SettingKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// ApplySettings overrides fields from stored key/value pairs. Unknown keys are
// ignored. The config is left unchanged if any value is malformed.
func (c *Config) ApplySettings(settings map[string]string) error {
	next := *c
	for key, value := range settings {
		if err := next.apply(key, value); err != nil {
			return fmt.Errorf("setting %s: %w", key, err)
		}
	}
	*c = next
	return nil
}

func (c *Config) apply(key, value string) error {
	switch key {
	case SettingMode:
		m, err := ParseMode(value)
		if err != nil {
			return err
		}
		c.Mode = m
	case SettingTarget:
		t, err := target.ParseType(value)
		if err != nil {
			return err
		}
		c.Target = t
	case SettingSurgeThreshold:
		return parsePositive(value, &c.Punch.SurgeThreshold)
	case SettingPunchCooldown:
		return parseMillis(value, &c.Punch.Cooldown)
	case SettingFlickThreshold:
		return parsePositive(value, &c.Shoot.FlickThreshold)
	case SettingHitCooldown:
		var d time.Duration
		if err := parseMillis(value, &d); err != nil {
			return err
		}
		c.Targets.RingCooldown = d
		c.Targets.SphereCooldown = d
	case SettingParticleCount:
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("must not be negative, got %d", n)
		}
		c.Particles.Count = n
	case SettingMinConfidence:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		if f < 0 || f > 1 || math.IsNaN(f) {
			return fmt.Errorf("must be within [0,1], got %v", f)
		}
		c.MinConfidence = f
	}
	return nil
}

func parsePositive(value string, dst *float64) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return err
	}
	if f <= 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return fmt.Errorf("must be positive, got %v", value)
	}
	*dst = f
	return nil
}

func parseMillis(value string, dst *time.Duration) error {
	ms, err := strconv.Atoi(value)
	if err != nil {
		return err
	}
	if ms < 0 {
		return fmt.Errorf("must not be negative, got %d", ms)
	}
	*dst = time.Duration(ms) * time.Millisecond
	return nil
}

// hitConfig derives the resolver setup from the mode.
func (c Config) hitConfig() hit.Config {
	h := c.Hit
	if c.Mode == ModeShoot {
		h.Mode = hit.ModeGeometric
	} else {
		h.Mode = hit.ModeGuaranteed
	}
	return h
}

func (c Config) strategies() []trigger.Strategy {
	if c.Mode == ModeShoot {
		return []trigger.Strategy{c.Shoot}
	}
	return []trigger.Strategy{c.Punch}
}
