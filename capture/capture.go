// Package capture provides microphone audio capture for the voice pipeline.
//
// A Microphone streams sample frames continuously to registered handlers so
// that the voice-activity detector can monitor the room, and separately
// accumulates samples into a recording buffer between Start and Stop calls.
// Stop hands back the full clip; the caller owns it from that point on.
package capture

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Sentinel errors.
var (
	// ErrNoDevice is returned when no capture backend is available on this
	// platform or no input device exists.
	ErrNoDevice = errors.New("no capture device available")

	// ErrAlreadyCapturing is returned when Start is called while a recording
	// is already accumulating.
	ErrAlreadyCapturing = errors.New("already capturing")

	// ErrNotCapturing is returned when Stop is called without a recording.
	ErrNotCapturing = errors.New("not capturing")
)

// Handler receives raw sample frames in the range [-1, 1].
type Handler func(samples []float32)

// deviceImpl is the platform-specific capture backend.
type deviceImpl interface {
	start(sampleRate int, callback func(samples []float32)) error
	stop() error
}

// Clip is one finished recording handed to the transcription pipeline.
type Clip struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Duration returns the audio length of the clip.
func (c Clip) Duration() time.Duration {
	if c.SampleRate == 0 || c.Channels == 0 {
		return 0
	}
	frames := len(c.Samples) / c.Channels
	return time.Duration(frames) * time.Second / time.Duration(c.SampleRate)
}

// Seconds returns the audio length of the clip in seconds.
func (c Clip) Seconds() float64 {
	return c.Duration().Seconds()
}

// Empty reports whether the clip holds no samples.
func (c Clip) Empty() bool {
	return len(c.Samples) == 0
}

// Config holds capture configuration.
type Config struct {
	SampleRate int           // default 16000 Hz (what the transcribers expect)
	Channels   int           // default 1 (mono)
	PreRoll    time.Duration // audio kept before Start to cover VAD latency
}

// DefaultConfig returns the default capture configuration.
func DefaultConfig() Config {
	return Config{
		SampleRate: 16000,
		Channels:   1,
		PreRoll:    300 * time.Millisecond,
	}
}

// Microphone owns the single input device handle. Only one recording can
// accumulate at a time; concurrent monitor handlers are fanned out from the
// device callback.
type Microphone struct {
	mu sync.Mutex

	impl       deviceImpl
	sampleRate int
	channels   int

	monitoring bool
	recording  bool
	recBuf     []float32

	// ring keeps the most recent audio so a recording can be seeded with the
	// onset that played out before the VAD fired.
	ring    *RingBuffer
	preRoll int // samples

	handlers []Handler
}

// New probes the platform capture backend and returns a Microphone.
// Returns ErrNoDevice (wrapped) when no device can be opened.
func New(cfg Config) (*Microphone, error) {
	def := DefaultConfig()
	if cfg.SampleRate == 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.Channels == 0 {
		cfg.Channels = def.Channels
	}
	if cfg.PreRoll == 0 {
		cfg.PreRoll = def.PreRoll
	}

	impl, err := newDeviceImpl()
	if err != nil {
		return nil, fmt.Errorf("open capture device: %w", err)
	}

	preRoll := int(cfg.PreRoll.Seconds() * float64(cfg.SampleRate) * float64(cfg.Channels))

	return &Microphone{
		impl:       impl,
		sampleRate: cfg.SampleRate,
		channels:   cfg.Channels,
		ring:       NewRingBuffer(preRoll),
		preRoll:    preRoll,
	}, nil
}

// OnSamples registers a handler called for every frame while monitoring.
// Register handlers before StartMonitor.
func (m *Microphone) OnSamples(h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, h)
}

// StartMonitor opens the device stream. Frames flow to registered handlers
// and into the pre-roll ring until StopMonitor.
func (m *Microphone) StartMonitor() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.monitoring {
		return nil
	}
	if err := m.impl.start(m.sampleRate, m.handleFrame); err != nil {
		return fmt.Errorf("start device stream: %w", err)
	}
	m.monitoring = true
	return nil
}

// StopMonitor closes the device stream and discards any partial recording.
func (m *Microphone) StopMonitor() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.monitoring {
		return nil
	}
	err := m.impl.stop()
	m.monitoring = false
	m.recording = false
	m.recBuf = nil
	m.ring.Clear()
	return err
}

// Start begins accumulating a recording, seeded with the pre-roll audio
// already in the ring.
func (m *Microphone) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.recording {
		return ErrAlreadyCapturing
	}
	m.recBuf = m.ring.Read(m.preRoll)
	m.recording = true
	return nil
}

// Stop finishes the recording and transfers ownership of the clip to the
// caller. The internal buffer is released.
func (m *Microphone) Stop() (Clip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.recording {
		return Clip{}, ErrNotCapturing
	}
	clip := Clip{
		Samples:    m.recBuf,
		SampleRate: m.sampleRate,
		Channels:   m.channels,
	}
	m.recBuf = nil
	m.recording = false
	return clip, nil
}

// Capturing reports whether a recording is currently accumulating.
func (m *Microphone) Capturing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recording
}

// SampleRate returns the configured sample rate.
func (m *Microphone) SampleRate() int {
	return m.sampleRate
}

// Close stops the stream and releases the device handle.
func (m *Microphone) Close() error {
	return m.StopMonitor()
}

// handleFrame runs on the device callback thread.
func (m *Microphone) handleFrame(samples []float32) {
	m.mu.Lock()
	m.ring.Write(samples)
	if m.recording {
		m.recBuf = append(m.recBuf, samples...)
	}
	handlers := m.handlers
	m.mu.Unlock()

	for _, h := range handlers {
		h(samples)
	}
}
