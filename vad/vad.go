// Package vad implements a lightweight RMS-energy voice-activity detector.
//
// The detector consumes raw PCM sample frames and reports speech-present /
// speech-absent transitions. It is deliberately simple: the capture
// controller that consumes the transitions applies its own duration guards,
// so the detector only needs a threshold plus a short hangover to smooth
// single-frame flicker at utterance boundaries.
package vad

import (
	"math"
	"time"
)

// Config holds detector tuning. Values are passed through unmodified from
// the application configuration.
type Config struct {
	// Threshold is the RMS level above which a frame counts as speech.
	Threshold float32

	// Hangover keeps the detector in the speech state for this long after
	// the level last exceeded Threshold, absorbing short intra-word dips.
	Hangover time.Duration
}

// DefaultConfig returns tuning that works well for 16 kHz microphone input.
func DefaultConfig() Config {
	return Config{
		Threshold: 0.015,
		Hangover:  200 * time.Millisecond,
	}
}

// Detector tracks the speech/silence state across frames. Not safe for
// concurrent use; call Process from a single goroutine (the audio callback).
type Detector struct {
	cfg Config

	inSpeech   bool
	lastSpeech time.Time

	// now is overridable in tests.
	now func() time.Time
}

// New creates a Detector. Zero config fields fall back to defaults.
func New(cfg Config) *Detector {
	def := DefaultConfig()
	if cfg.Threshold == 0 {
		cfg.Threshold = def.Threshold
	}
	if cfg.Hangover == 0 {
		cfg.Hangover = def.Hangover
	}
	return &Detector{cfg: cfg, now: time.Now}
}

// Transition describes a state change produced by Process.
type Transition int

const (
	// None means the speech state did not change.
	None Transition = iota

	// SpeechStart means the frame flipped the detector into speech.
	SpeechStart

	// SpeechEnd means silence outlasted the hangover and speech ended.
	SpeechEnd
)

// Process classifies one frame of samples and returns the resulting
// transition, if any.
func (d *Detector) Process(samples []float32) Transition {
	now := d.now()
	active := rms(samples) > d.cfg.Threshold

	if active {
		d.lastSpeech = now
		if !d.inSpeech {
			d.inSpeech = true
			return SpeechStart
		}
		return None
	}

	if d.inSpeech && now.Sub(d.lastSpeech) > d.cfg.Hangover {
		d.inSpeech = false
		return SpeechEnd
	}
	return None
}

// InSpeech reports whether the detector currently considers the stream to
// contain speech.
func (d *Detector) InSpeech() bool {
	return d.inSpeech
}

// Reset clears detector state. Use when the audio stream restarts so stale
// state from the previous segment cannot leak into the next one.
func (d *Detector) Reset() {
	d.inSpeech = false
	d.lastSpeech = time.Time{}
}

// rms computes the root mean square of a sample frame.
func rms(samples []float32) float32 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return float32(math.Sqrt(sum / float64(len(samples))))
}
