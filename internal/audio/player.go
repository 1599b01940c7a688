package audio

import (
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Output is where sounds are sent.
type Output interface {
	Init(rate beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
}

type speakerOutput struct{}

func (speakerOutput) Init(rate beep.SampleRate, bufferSize int) error {
	return speaker.Init(rate, bufferSize)
}

func (speakerOutput) Play(s beep.Streamer) {
	speaker.Play(s)
}

// Player plays impact sounds without blocking the caller. When the audio
// device cannot be opened it stays silent.
type Player struct {
	mu      sync.Mutex
	out     Output
	volume  float64
	started bool
	ready   bool
}

// NewPlayer creates a Player on the system speaker.
func NewPlayer(volume float64) *Player {
	return NewPlayerWithOutput(speakerOutput{}, volume)
}

// NewPlayerWithOutput creates a Player on a custom output.
func NewPlayerWithOutput(out Output, volume float64) *Player {
	return &Player{out: out, volume: volume}
}

// Start opens the output device. It is safe to call more than once; only the
// first call has an effect.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return nil
	}
	p.started = true

	if err := p.out.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		log.Printf("Audio unavailable, playing silently: %v", err)
		return err
	}
	p.ready = true
	return nil
}

// Ready reports whether sounds will be heard.
func (p *Player) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

// PlayImpact queues the hit sound. It does nothing until Start has succeeded.
func (p *Player) PlayImpact() {
	p.mu.Lock()
	ready := p.ready
	p.mu.Unlock()

	if !ready {
		return
	}
	p.out.Play(NewImpact(sampleRate, p.volume))
}
