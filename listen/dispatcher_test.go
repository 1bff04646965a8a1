package listen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/earshot-app/earshot/capture"
	"github.com/earshot-app/earshot/stt"
)

// stubProvider is a canned stt.Provider.
type stubProvider struct {
	result *stt.Result
	err    error
}

func (p *stubProvider) Name() string        { return "stub" }
func (p *stubProvider) DisplayName() string { return "Stub" }
func (p *stubProvider) IsLocal() bool       { return true }
func (p *stubProvider) IsReady() bool       { return true }
func (p *stubProvider) Close() error        { return nil }

func (p *stubProvider) Transcribe(ctx context.Context, samples []float32, sampleRate, channels int, language string) (*stt.Result, error) {
	return p.result, p.err
}

// steppingClock advances a fixed amount per Now call, so elapsed time is
// deterministic.
type steppingClock struct {
	t    time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

func TestDispatchSuccess(t *testing.T) {
	d := NewDispatcher(&stubProvider{result: &stt.Result{Text: "hello", Language: "en"}}, "")
	d.now = (&steppingClock{t: time.Unix(0, 0), step: 150 * time.Millisecond}).Now

	clip := capture.Clip{Samples: make([]float32, 32000), SampleRate: 16000, Channels: 1}
	res := d.Dispatch(context.Background(), clip)

	if res.Result == nil {
		t.Fatal("Result is nil on success")
	}
	if res.Result.Text != "hello" {
		t.Errorf("Text = %q", res.Result.Text)
	}
	if res.ElapsedMs != 150 {
		t.Errorf("ElapsedMs = %d, want 150", res.ElapsedMs)
	}
	if res.AudioSeconds != 2.0 {
		t.Errorf("AudioSeconds = %v, want 2.0", res.AudioSeconds)
	}
}

func TestDispatchFailure(t *testing.T) {
	tests := []struct {
		name string
		p    *stubProvider
	}{
		{"ProviderError", &stubProvider{err: errors.New("service down")}},
		{"NilResult", &stubProvider{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDispatcher(tt.p, "en")
			res := d.Dispatch(context.Background(), capture.Clip{Samples: []float32{0}, SampleRate: 16000, Channels: 1})
			if res.Result != nil {
				t.Errorf("Result = %+v, want nil on failure", res.Result)
			}
			if res.Skipped {
				t.Error("failure marked as skipped")
			}
		})
	}
}
