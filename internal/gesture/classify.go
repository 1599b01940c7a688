// Package gesture classifies static hand poses from normalized landmarks.
//
// All tests are ratios or small margins over planar distances, so they hold
// regardless of how far the hand is from the camera. None of them is a
// trained model; they are majority votes over per-finger heuristics.
package gesture

import "github.com/ayusman/handstrike/internal/detector"

// finger groups the landmark indices of one non-thumb finger.
type finger struct {
	mcp, pip, dip, tip int
}

var (
	index  = finger{detector.IndexMCP, detector.IndexPIP, detector.IndexDIP, detector.IndexTip}
	middle = finger{detector.MiddleMCP, detector.MiddlePIP, detector.MiddleDIP, detector.MiddleTip}
	ring   = finger{detector.RingMCP, detector.RingPIP, detector.RingDIP, detector.RingTip}
	pinky  = finger{detector.PinkyMCP, detector.PinkyPIP, detector.PinkyDIP, detector.PinkyTip}

	fourFingers = []finger{index, middle, ring, pinky}
	lowerThree  = []finger{middle, ring, pinky}
)

// Thresholds holds the tuning constants of the classifiers.
type Thresholds struct {
	// CurlRatio: a finger is curled when wrist-tip < wrist-MCP * CurlRatio.
	CurlRatio float64
	// MinCurled is how many of the four fingers must curl for a fist.
	MinCurled int
	// MaxIndexBend is the highest path/straight length ratio of an extended index.
	MaxIndexBend float64
	// MinThumbSpan is the thumb MCP-tip distance above which the thumb is extended.
	MinThumbSpan float64
	// BentMargin: a finger is bent when wrist-tip <= wrist-MCP + BentMargin.
	BentMargin float64
	// MinBent is how many of middle, ring and pinky must be bent.
	MinBent int
}

// DefaultThresholds returns the tuned defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CurlRatio:    1.3,
		MinCurled:    3,
		MaxIndexBend: 1.4,
		MinThumbSpan: 0.06,
		BentMargin:   0.05,
		MinBent:      2,
	}
}

// Facts are the gesture facts derived from one observation.
type Facts struct {
	Fist     bool `json:"fist"`
	GunPose  bool `json:"gunPose"`
	Pointing bool `json:"pointing"`
}

// Classifier evaluates poses with a fixed set of thresholds.
type Classifier struct {
	t Thresholds
}

// NewClassifier creates a Classifier.
func NewClassifier(t Thresholds) *Classifier {
	return &Classifier{t: t}
}

var defaultClassifier = NewClassifier(DefaultThresholds())

// IsFist reports whether the hand is clenched using default thresholds.
func IsFist(h *detector.HandLandmarks) bool { return defaultClassifier.IsFist(h) }

// IsGunPose reports a finger-gun pose using default thresholds.
func IsGunPose(h *detector.HandLandmarks) bool { return defaultClassifier.IsGunPose(h) }

// IsPointing reports a pointing pose using default thresholds.
func IsPointing(h *detector.HandLandmarks) bool { return defaultClassifier.IsPointing(h) }

// Classify evaluates every classifier once.
func (c *Classifier) Classify(h *detector.HandLandmarks) Facts {
	if h == nil {
		return Facts{}
	}
	return Facts{
		Fist:     c.IsFist(h),
		GunPose:  c.IsGunPose(h),
		Pointing: c.IsPointing(h),
	}
}

// IsFist is true when at least MinCurled of the four fingers have their tip
// closer to the wrist than CurlRatio times the knuckle distance.
func (c *Classifier) IsFist(h *detector.HandLandmarks) bool {
	if h == nil {
		return false
	}
	wrist := h.Points[detector.Wrist]

	curled := 0
	for _, f := range fourFingers {
		tipDist := detector.Distance2D(wrist, h.Points[f.tip])
		knuckleDist := detector.Distance2D(wrist, h.Points[f.mcp])
		if tipDist < knuckleDist*c.t.CurlRatio {
			curled++
		}
	}
	return curled >= c.t.MinCurled
}

// IsGunPose is true when the index is extended, the thumb is extended and
// enough of the remaining fingers are bent.
func (c *Classifier) IsGunPose(h *detector.HandLandmarks) bool {
	if h == nil {
		return false
	}
	return c.indexExtended(h) && c.thumbExtended(h) && c.lowerBent(h)
}

// IsPointing is the gun pose with the thumb tucked in.
func (c *Classifier) IsPointing(h *detector.HandLandmarks) bool {
	if h == nil {
		return false
	}
	return c.indexExtended(h) && !c.thumbExtended(h) && c.lowerBent(h)
}

func (c *Classifier) indexExtended(h *detector.HandLandmarks) bool {
	p := h.Points
	path := detector.Distance2D(p[index.mcp], p[index.pip]) +
		detector.Distance2D(p[index.pip], p[index.dip]) +
		detector.Distance2D(p[index.dip], p[index.tip])
	straight := detector.Distance2D(p[index.mcp], p[index.tip])
	if straight <= 0 {
		return false
	}
	return path/straight < c.t.MaxIndexBend
}

func (c *Classifier) thumbExtended(h *detector.HandLandmarks) bool {
	span := detector.Distance2D(h.Points[detector.ThumbMCP], h.Points[detector.ThumbTip])
	return span > c.t.MinThumbSpan
}

func (c *Classifier) lowerBent(h *detector.HandLandmarks) bool {
	wrist := h.Points[detector.Wrist]

	bent := 0
	for _, f := range lowerThree {
		tipDist := detector.Distance2D(wrist, h.Points[f.tip])
		mcpDist := detector.Distance2D(wrist, h.Points[f.mcp])
		if tipDist <= mcpDist+c.t.BentMargin {
			bent++
		}
	}
	return bent >= c.t.MinBent
}
