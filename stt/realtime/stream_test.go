package realtime

import (
	"context"
	"testing"
	"time"
)

// startForTest wires the stream's run loop without a network connection so
// the event handling and teardown paths can be exercised directly.
func startForTest(t *testing.T, s *Stream) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	s.ctx = ctx
	s.cancel = cancel
	s.finished = make(chan struct{})
	s.running = true
	go s.processEvents()
}

func TestStreamStopClosesOutputs(t *testing.T) {
	s := NewStream(StreamConfig{SampleRate: 16000})
	startForTest(t, s)

	s.client.msgChan <- ServerEvent{
		Type:  TypeTranscriptionDelta,
		Extra: map[string]interface{}{"delta": "hel", "item_id": "item_1"},
	}

	select {
	case p := <-s.Partials():
		if p.Text != "hel" || p.Final {
			t.Errorf("partial = %+v, want non-final text %q", p, "hel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for partial")
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	// Both output channels must be closed so ranging consumers terminate.
	if _, ok := <-s.Partials(); ok {
		t.Error("partials channel still open after Stop")
	}
	if _, ok := <-s.Errors(); ok {
		t.Error("errors channel still open after Stop")
	}

	// Second Stop is a no-op.
	if err := s.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestStreamStopDuringEventFlood(t *testing.T) {
	s := NewStream(StreamConfig{SampleRate: 16000})
	startForTest(t, s)

	// Keep events arriving while Stop runs; none of them may reach a closed
	// channel.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			select {
			case s.client.msgChan <- ServerEvent{
				Type:  TypeTranscriptionDelta,
				Extra: map[string]interface{}{"delta": "x", "item_id": "item_1"},
			}:
			case <-s.finished:
				return
			}
		}
	}()

	// Drain a few partials, then tear down mid-stream.
	for i := 0; i < 3; i++ {
		select {
		case <-s.Partials():
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for partial")
		}
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	<-done

	for range s.Partials() {
		// Drain whatever was queued; the loop must terminate.
	}
}

func TestStreamStopBeforeStart(t *testing.T) {
	s := NewStream(StreamConfig{SampleRate: 16000})
	if err := s.Stop(); err != nil {
		t.Errorf("Stop() before Start error = %v", err)
	}
}

func TestNewStreamCarriesLanguage(t *testing.T) {
	s := NewStream(StreamConfig{Language: "en", SampleRate: 16000})
	if s.client.language != "en" {
		t.Errorf("client language = %q, want %q", s.client.language, "en")
	}
}
