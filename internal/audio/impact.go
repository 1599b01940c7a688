// Package audio synthesizes and plays the hit sound.
package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Impact sound shape.
const (
	thudStartHz   = 150.0
	thudEndHz     = 40.0
	thudSweep     = 100 * time.Millisecond
	thudDuration  = 200 * time.Millisecond
	thudStartGain = 0.5
	thudEndGain   = 0.01

	clickHz       = 800.0
	clickDuration = 50 * time.Millisecond
	clickGain     = 0.2
)

// ramp is a square or sine tone whose frequency and gain move between two
// values over fixed spans, exponentially or linearly.
type ramp struct {
	rate   beep.SampleRate
	square bool

	f0, f1   float64
	sweepN   int
	g0, g1   float64
	expGain  bool
	totalN   int
	position int
	phase    float64
}

func (r *ramp) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if r.position >= r.totalN {
			return i, i > 0
		}

		var val float64
		if r.square {
			val = 1.0
			if r.phase >= 0.5 {
				val = -1.0
			}
		} else {
			val = math.Sin(2 * math.Pi * r.phase)
		}
		val *= r.gain()

		samples[i][0] = val
		samples[i][1] = val

		r.phase += r.freq() / float64(r.rate)
		r.phase -= math.Floor(r.phase)
		r.position++
	}
	return len(samples), true
}

func (r *ramp) Err() error { return nil }

// freq follows an exponential curve until sweepN, then holds.
func (r *ramp) freq() float64 {
	if r.sweepN <= 0 || r.position >= r.sweepN {
		return r.f1
	}
	t := float64(r.position) / float64(r.sweepN)
	return r.f0 * math.Pow(r.f1/r.f0, t)
}

func (r *ramp) gain() float64 {
	t := float64(r.position) / float64(r.totalN)
	if r.expGain {
		return r.g0 * math.Pow(r.g1/r.g0, t)
	}
	return r.g0 + (r.g1-r.g0)*t
}

// NewImpact returns the punch sound: a square thud sweeping down in pitch
// mixed with a short high click. volume scales the result, 0 is silent.
func NewImpact(rate beep.SampleRate, volume float64) beep.Streamer {
	thud := &ramp{
		rate:    rate,
		square:  true,
		f0:      thudStartHz,
		f1:      thudEndHz,
		sweepN:  rate.N(thudSweep),
		g0:      thudStartGain,
		g1:      thudEndGain,
		expGain: true,
		totalN:  rate.N(thudDuration),
	}
	click := &ramp{
		rate:   rate,
		f0:     clickHz,
		f1:     clickHz,
		g0:     clickGain,
		g1:     0,
		totalN: rate.N(clickDuration),
	}
	return withVolume(beep.Take(rate.N(thudDuration), beep.Mix(thud, click)), volume)
}

// withVolume scales a stream linearly; effects.Volume works in log2 steps.
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}
