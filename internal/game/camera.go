package game

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/handstrike/internal/detector"
	"github.com/ayusman/handstrike/internal/target"
)

// Orientation is the camera rotation in radians. Pitch turns about the X
// axis, Yaw about the Y axis.
type Orientation struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

// CameraRig eases the camera toward the angle a hand points it at and
// projects screen points into world rays.
type CameraRig struct {
	cfg    CameraConfig
	orient Orientation
}

// NewCameraRig creates a rig looking straight down -Z.
func NewCameraRig(cfg CameraConfig) *CameraRig {
	return &CameraRig{cfg: cfg}
}

// Orientation returns the current rotation.
func (c *CameraRig) Orientation() Orientation {
	return c.orient
}

// Reset points the camera straight ahead.
func (c *CameraRig) Reset() {
	c.orient = Orientation{}
}

// Follow moves the camera one smoothing step toward the rotation implied by
// the wrist position. A non-finite target leaves the camera untouched.
func (c *CameraRig) Follow(wrist detector.Point3D) bool {
	yaw := (0.5 - wrist.X) * c.cfg.YawRange
	pitch := (wrist.Y - 0.5) * c.cfg.PitchRange
	if !finite(yaw) || !finite(pitch) {
		return false
	}

	next := Orientation{
		Yaw:   c.orient.Yaw + (yaw-c.orient.Yaw)*c.cfg.Smoothing,
		Pitch: c.orient.Pitch + (pitch-c.orient.Pitch)*c.cfg.Smoothing,
	}
	if !finite(next.Yaw) || !finite(next.Pitch) {
		return false
	}
	c.orient = next
	return true
}

// Ray projects a normalized image point into a world ray from the camera.
// Image x is mirrored so the preview behaves like a mirror.
func (c *CameraRig) Ray(aim detector.Point3D) target.Ray {
	half := math.Tan(c.cfg.FOV * math.Pi / 360)
	ndcX := 1 - 2*aim.X
	ndcY := 1 - 2*aim.Y

	dir := r3.Vec{X: ndcX * half * c.cfg.Aspect, Y: ndcY * half, Z: -1}
	dir = rotateY(dir, c.orient.Yaw)
	dir = rotateX(dir, c.orient.Pitch)
	return target.Ray{Origin: c.cfg.Position, Direction: r3.Unit(dir)}
}

func rotateX(v r3.Vec, a float64) r3.Vec {
	s, cs := math.Sincos(a)
	return r3.Vec{X: v.X, Y: v.Y*cs - v.Z*s, Z: v.Y*s + v.Z*cs}
}

func rotateY(v r3.Vec, a float64) r3.Vec {
	s, cs := math.Sincos(a)
	return r3.Vec{X: v.X*cs + v.Z*s, Y: v.Y, Z: -v.X*s + v.Z*cs}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
