package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// trackRate is the sample rate of the outgoing Opus track.
const trackRate = 48000

// Partial is an incremental transcription update. Final marks the last
// update for an utterance; Text then holds the complete transcript.
type Partial struct {
	ItemID string
	Text   string
	Final  bool
}

// Stream provides live partial transcripts for an ongoing capture. Audio is
// pushed in with SendAudio; updates come out on Partials. A Stream is
// single-use: once stopped it cannot be restarted.
type Stream struct {
	client     *Client
	sampleRate int // rate of incoming audio

	partials chan Partial
	errs     chan error

	mu      sync.RWMutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc

	// finished is closed when processEvents returns. Stop waits on it before
	// closing partials and errs, so no send can race the close.
	finished chan struct{}

	// Per-utterance accumulation keyed by item ID.
	pending map[string]string
}

// StreamConfig holds configuration for a Stream.
type StreamConfig struct {
	APIKey     string
	Language   string
	SampleRate int // rate of the audio pushed via SendAudio
}

// NewStream creates a new partial-transcript stream.
func NewStream(cfg StreamConfig) *Stream {
	return &Stream{
		client:     NewClient(ClientConfig{APIKey: cfg.APIKey, Language: cfg.Language}),
		sampleRate: cfg.SampleRate,
		partials:   make(chan Partial, 16),
		errs:       make(chan error, 1),
		pending:    make(map[string]string),
	}
}

// Start connects to the Realtime API and begins processing events.
func (s *Stream) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("stream already running")
	}

	ctx, cancel := context.WithCancel(ctx)
	if err := s.client.Connect(ctx); err != nil {
		cancel()
		return fmt.Errorf("connect: %w", err)
	}

	s.ctx = ctx
	s.cancel = cancel
	s.finished = make(chan struct{})
	s.running = true

	go s.processEvents()

	return nil
}

// SendAudio forwards mono float32 samples at the configured rate. The
// samples are upsampled to the track rate before encoding.
func (s *Stream) SendAudio(samples []float32) {
	s.mu.RLock()
	running := s.running
	s.mu.RUnlock()

	if !running || len(samples) == 0 {
		return
	}

	if err := s.client.SendAudio(resampleLinear(samples, s.sampleRate, trackRate)); err != nil {
		slog.Debug("send audio", "error", err)
	}
}

// Partials returns the channel of incremental transcripts. It is closed
// when the stream stops.
func (s *Stream) Partials() <-chan Partial {
	return s.partials
}

// Errors returns the channel of connection errors. It is closed when the
// stream stops.
func (s *Stream) Errors() <-chan error {
	return s.errs
}

// Stop tears down the connection and closes both output channels. The
// channels close only after the event goroutine has exited, so an event
// mid-handle can never hit a closed channel.
func (s *Stream) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.cancel()
	err := s.client.Close()

	<-s.finished
	close(s.partials)
	close(s.errs)
	return err
}

func (s *Stream) processEvents() {
	defer close(s.finished)
	for {
		select {
		case event, ok := <-s.client.Events():
			if !ok {
				return
			}
			s.handleEvent(event)
		case err := <-s.client.Errors():
			select {
			case s.errs <- err:
			default:
			}
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Stream) handleEvent(event ServerEvent) {
	switch event.Type {
	case TypeTranscriptionDelta:
		delta, ok := event.Delta()
		if !ok {
			slog.Warn("delta event missing delta field")
			return
		}
		itemID, _ := event.ItemID()

		s.mu.Lock()
		s.pending[itemID] += delta
		text := s.pending[itemID]
		s.mu.Unlock()

		s.emit(Partial{ItemID: itemID, Text: text, Final: false})

	case TypeTranscriptionCompleted:
		text, ok := event.Transcript()
		if !ok {
			slog.Warn("completed event missing transcript field")
			return
		}
		itemID, _ := event.ItemID()

		s.mu.Lock()
		delete(s.pending, itemID)
		s.mu.Unlock()

		s.emit(Partial{ItemID: itemID, Text: text, Final: true})

	case TypeError:
		if event.Error != nil {
			slog.Error("realtime api error",
				"type", event.Error.Type,
				"code", event.Error.Code,
				"message", event.Error.Message)
			select {
			case s.errs <- fmt.Errorf("realtime api error [%s]: %s", event.Error.Code, event.Error.Message):
			default:
			}
		}
	}
}

func (s *Stream) emit(p Partial) {
	s.mu.RLock()
	running := s.running
	s.mu.RUnlock()
	if !running {
		return
	}

	select {
	case s.partials <- p:
	default:
		slog.Warn("partials channel full, dropping update")
	}
}

// resampleLinear converts samples from one rate to another by linear
// interpolation. Good enough for speech; we are not doing hi-fi here.
func resampleLinear(in []float32, from, to int) []float32 {
	if from == to || from <= 0 || len(in) == 0 {
		return in
	}

	outLen := len(in) * to / from
	out := make([]float32, outLen)
	ratio := float64(from) / float64(to)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := float32(pos - float64(idx))
		out[i] = in[idx]*(1-frac) + in[idx+1]*frac
	}
	return out
}
