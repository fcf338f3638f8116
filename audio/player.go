// Package audio plays short tones for scheduler events
package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/vi-rts/scheduler"
)

const (
	sampleRate = beep.SampleRate(44100)

	// MinVolume and below is treated as muted
	MinVolume = -8.0
)

// Cue identifies one of the event tones
type Cue uint8

const (
	CueFinalize Cue = iota
	CueCancel
	CuePreempt
	cueCount
)

type tone struct {
	freq     int
	duration time.Duration
}

var tones = [cueCount]tone{
	CueFinalize: {freq: 880, duration: 40 * time.Millisecond},
	CueCancel:   {freq: 330, duration: 80 * time.Millisecond},
	CuePreempt:  {freq: 220, duration: 120 * time.Millisecond},
}

// Player mixes cue tones into the speaker
// Volume is a base-2 gain: 0 is unity, -1 half
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	initialized bool
	played      [cueCount]int
}

// NewPlayer creates a player; nothing is audible until Init
func NewPlayer(volume float64) *Player {
	return &Player{
		mixer:  &beep.Mixer{},
		volume: volume,
	}
}

// Init opens the speaker and starts the mixer
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Close stops playback and releases the speaker
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	p.initialized = false
}

// Stream builds the finite streamer for c
func (p *Player) Stream(c Cue) beep.Streamer {
	t := tones[CueFinalize]
	if c < cueCount {
		t = tones[c]
	}
	sine, err := generators.SineTone(sampleRate, float64(t.freq))
	if err != nil {
		return beep.Silence(0)
	}
	return &effects.Volume{
		Streamer: beep.Take(sampleRate.N(t.duration), sine),
		Base:     2,
		Volume:   p.volume,
		Silent:   p.volume <= MinVolume,
	}
}

// Play queues c on the mixer; it is a no-op before Init
func (p *Player) Play(c Cue) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c >= cueCount {
		return
	}
	p.played[c]++
	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Add(p.Stream(c))
	speaker.Unlock()
}

// Played returns how many times c was requested
func (p *Player) Played(c Cue) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c >= cueCount {
		return 0
	}
	return p.played[c]
}

// Observe plays at most one cue per tick, the most significant event winning
// Its signature matches engine.Observer
func (p *Player) Observe(_ uint64, r scheduler.Report) {
	if c, ok := CueFor(r); ok {
		p.Play(c)
	}
}

// CueFor picks the cue for a tick report
func CueFor(r scheduler.Report) (Cue, bool) {
	switch {
	case r.Preempted > 0:
		return CuePreempt, true
	case r.Cancelled > 0:
		return CueCancel, true
	case r.Finalized > 0:
		return CueFinalize, true
	default:
		return 0, false
	}
}
