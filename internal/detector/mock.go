package detector

import (
	"context"
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []RawHand
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the detections that will be returned by Detect.
func (m *MockDetector) SetHands(hands []RawHand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(ctx context.Context, frame *gocv.Mat) ([]RawHand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// ToRawHand converts normalized landmarks back to a pixel-space detection,
// the way an estimator would report them for a width x height frame.
func ToRawHand(h HandLandmarks, width, height int) RawHand {
	score := h.Score
	raw := RawHand{
		Keypoints:  make([]RawKeypoint, NumLandmarks),
		Score:      &score,
		Handedness: string(h.Handedness),
	}
	for i, p := range h.Points {
		raw.Keypoints[i] = RawKeypoint{
			X: p.X * float64(width),
			Y: p.Y * float64(height),
			Z: p.Z,
		}
	}
	return raw
}

// WithHandSize scales the hand about its wrist so that Size() equals size.
func WithHandSize(h HandLandmarks, size float64) HandLandmarks {
	current := h.Size()
	if current == 0 {
		return h
	}
	k := size / current
	wrist := h.Points[Wrist]
	for i, p := range h.Points {
		h.Points[i] = Point3D{
			X: wrist.X + (p.X-wrist.X)*k,
			Y: wrist.Y + (p.Y-wrist.Y)*k,
			Z: p.Z,
		}
	}
	return h
}

// Translate shifts every landmark by (dx, dy).
func Translate(h HandLandmarks, dx, dy float64) HandLandmarks {
	for i := range h.Points {
		h.Points[i].X += dx
		h.Points[i].Y += dy
	}
	return h
}

// FistLandmarks returns a right hand clenched into a fist with the thumb
// tucked over the fingers.
func FistLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: Right,
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8}

	// Thumb tucked
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.76}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.72}
	landmarks.Points[ThumbIP] = Point3D{X: 0.58, Y: 0.69}
	landmarks.Points[ThumbTip] = Point3D{X: 0.56, Y: 0.68}

	curledFingers(&landmarks)
	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68}
	landmarks.Points[IndexPIP] = Point3D{X: 0.56, Y: 0.62, Z: -0.03}
	landmarks.Points[IndexDIP] = Point3D{X: 0.54, Y: 0.63, Z: -0.04}
	landmarks.Points[IndexTip] = Point3D{X: 0.53, Y: 0.67, Z: -0.02}

	return landmarks
}

// OpenPalmLandmarks returns a right hand with all fingers extended.
func OpenPalmLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: Right,
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8}

	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	landmarks.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	landmarks.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68}
	landmarks.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55}
	landmarks.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45}
	landmarks.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40}
	landmarks.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28}

	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68}
	landmarks.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55}
	landmarks.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45}
	landmarks.Points[RingTip] = Point3D{X: 0.42, Y: 0.35}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50}
	landmarks.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42}

	return landmarks
}

// GunPoseLandmarks returns a right hand making a finger gun: index pointing
// up, thumb cocked sideways, remaining fingers curled.
func GunPoseLandmarks() HandLandmarks {
	landmarks := PointingLandmarks()

	landmarks.Points[ThumbCMC] = Point3D{X: 0.56, Y: 0.77}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.72}
	landmarks.Points[ThumbIP] = Point3D{X: 0.67, Y: 0.69}
	landmarks.Points[ThumbTip] = Point3D{X: 0.72, Y: 0.66}

	return landmarks
}

// PointingLandmarks returns a right hand with only the index finger extended.
func PointingLandmarks() HandLandmarks {
	landmarks := FistLandmarks()

	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68}
	landmarks.Points[IndexPIP] = Point3D{X: 0.56, Y: 0.58}
	landmarks.Points[IndexDIP] = Point3D{X: 0.565, Y: 0.51}
	landmarks.Points[IndexTip] = Point3D{X: 0.57, Y: 0.44}

	return landmarks
}

func curledFingers(h *HandLandmarks) {
	h.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.67}
	h.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.61, Z: -0.03}
	h.Points[MiddleDIP] = Point3D{X: 0.49, Y: 0.62, Z: -0.04}
	h.Points[MiddleTip] = Point3D{X: 0.49, Y: 0.66, Z: -0.02}

	h.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68}
	h.Points[RingPIP] = Point3D{X: 0.45, Y: 0.62, Z: -0.03}
	h.Points[RingDIP] = Point3D{X: 0.45, Y: 0.63, Z: -0.04}
	h.Points[RingTip] = Point3D{X: 0.46, Y: 0.67, Z: -0.02}

	h.Points[PinkyMCP] = Point3D{X: 0.41, Y: 0.70}
	h.Points[PinkyPIP] = Point3D{X: 0.41, Y: 0.65, Z: -0.03}
	h.Points[PinkyDIP] = Point3D{X: 0.41, Y: 0.66, Z: -0.04}
	h.Points[PinkyTip] = Point3D{X: 0.42, Y: 0.69, Z: -0.02}
}
