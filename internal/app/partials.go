package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/earshot-app/earshot/stt/realtime"
)

// partialAdapter manages the optional streaming side-channel that produces
// transcript-in-progress updates while an utterance is being recorded.
type partialAdapter struct {
	mu     sync.Mutex
	stream *realtime.Stream
}

// start opens a realtime stream and forwards its partials as events.
func (p *partialAdapter) start(apiKey, language string, sampleRate int, emit func(name string, data any)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream != nil {
		return fmt.Errorf("partial stream already running")
	}

	stream := realtime.NewStream(realtime.StreamConfig{
		APIKey:     apiKey,
		Language:   language,
		SampleRate: sampleRate,
	})
	if err := stream.Start(context.Background()); err != nil {
		return fmt.Errorf("start partial stream: %w", err)
	}
	p.stream = stream

	go func() {
		for part := range stream.Partials() {
			emit(EventLivePartial, LivePartial{Text: part.Text, Final: part.Final})
		}
	}()
	go func() {
		for err := range stream.Errors() {
			slog.Error("partial stream error", "error", err)
		}
	}()

	slog.Info("partial transcript stream started")
	return nil
}

// sendAudio forwards a frame of monitor audio; a no-op when not running.
func (p *partialAdapter) sendAudio(samples []float32) {
	p.mu.Lock()
	stream := p.stream
	p.mu.Unlock()

	if stream != nil {
		stream.SendAudio(samples)
	}
}

// stop tears down the stream if running.
func (p *partialAdapter) stop() {
	p.mu.Lock()
	stream := p.stream
	p.stream = nil
	p.mu.Unlock()

	if stream != nil {
		if err := stream.Stop(); err != nil {
			slog.Error("stop partial stream", "error", err)
		}
	}
}
