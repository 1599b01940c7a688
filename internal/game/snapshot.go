package game

import (
	"time"

	"github.com/ayusman/handstrike/internal/detector"
	"github.com/ayusman/handstrike/internal/score"
	"github.com/ayusman/handstrike/internal/target"
)

// TargetView is the render-facing state of one visible target.
type TargetView struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Kind     target.Kind `json:"kind"`
	Position [3]float64  `json:"position"`
	Radius   float64     `json:"radius"`
	IsHit    bool        `json:"is_hit"`
	Flashing bool        `json:"flashing"`
	Tilt     float64     `json:"tilt"`
	Members  int         `json:"members,omitempty"`
}

// Snapshot is everything the UI shows for one frame.
type Snapshot struct {
	score.Summary
	Mode          Mode              `json:"mode"`
	Target        target.Type       `json:"target"`
	Playing       bool              `json:"playing"`
	Status        string            `json:"status"`
	AimStatus     string            `json:"aim_status"`
	Hands         int               `json:"hands"`
	Detector      detector.Status   `json:"detector"`
	DetectorError string            `json:"detector_error,omitempty"`
	Camera        Orientation       `json:"camera"`
	Targets       []TargetView      `json:"targets"`
	Particles     int               `json:"particles"`
	Feedback      []target.Feedback `json:"feedback,omitempty"`
	At            time.Time         `json:"at"`
}

// Snapshot returns the current state without consuming hit feedback.
func (s *Session) Snapshot(now time.Time) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(now)
}

// Frame returns the current state plus the hit feedback emitted since the
// previous Frame. It is meant for the single render consumer.
func (s *Session) Frame(now time.Time) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshotLocked(now)
	snap.Feedback = s.feedback
	s.feedback = nil
	return snap
}

func (s *Session) snapshotLocked(now time.Time) Snapshot {
	snap := Snapshot{
		Summary:   s.tally.Summary(),
		Mode:      s.cfg.Mode,
		Target:    s.targets.ActiveType(),
		Playing:   s.playing,
		Status:    s.status,
		AimStatus: s.aimStatus,
		Hands:     s.handsSeen,
		Detector:  s.detectorStatus,
		Camera:    s.camera.Orientation(),
		Particles: s.particles.Len(),
		At:        now,
	}
	if s.detectorErr != nil {
		snap.DetectorError = s.detectorErr.Error()
	}

	for _, t := range s.targets.Visible() {
		v := TargetView{
			ID:       t.ID,
			Name:     t.Name,
			Kind:     t.Kind,
			Position: [3]float64{t.Position.X, t.Position.Y, t.Position.Z},
			Radius:   t.Radius,
			IsHit:    t.IsHit,
			Flashing: now.Before(t.FlashUntil),
			Tilt:     t.Tilt,
		}
		if t.Cloud != nil {
			v.Members = len(t.Cloud.Members)
		}
		snap.Targets = append(snap.Targets, v)
	}
	return snap
}
