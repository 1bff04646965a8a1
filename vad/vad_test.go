package vad

import (
	"testing"
	"time"
)

func makeSilence(n int) []float32 {
	return make([]float32, n)
}

func makeSpeech(n int, amplitude float32) []float32 {
	result := make([]float32, n)
	for i := range result {
		result[i] = amplitude
	}
	return result
}

// fakeClock advances only when told to, making hangover behavior exact.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestDetector(clock *fakeClock) *Detector {
	d := New(Config{Threshold: 0.02, Hangover: 200 * time.Millisecond})
	d.now = clock.now
	return d
}

// TestDetector_Transitions tests the basic start/end transitions.
func TestDetector_Transitions(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	d := newTestDetector(clock)

	steps := []struct {
		name    string
		samples []float32
		advance time.Duration
		want    Transition
	}{
		{"initial silence", makeSilence(320), 0, None},
		{"speech starts", makeSpeech(320, 0.05), 20 * time.Millisecond, SpeechStart},
		{"speech continues", makeSpeech(320, 0.05), 20 * time.Millisecond, None},
		{"short dip absorbed by hangover", makeSilence(320), 100 * time.Millisecond, None},
		{"speech resumes", makeSpeech(320, 0.05), 20 * time.Millisecond, None},
		{"silence within hangover", makeSilence(320), 150 * time.Millisecond, None},
		{"silence past hangover ends speech", makeSilence(320), 100 * time.Millisecond, SpeechEnd},
		{"still silent", makeSilence(320), 20 * time.Millisecond, None},
	}

	for _, step := range steps {
		clock.advance(step.advance)
		got := d.Process(step.samples)
		if got != step.want {
			t.Errorf("%s: Process() = %v, want %v", step.name, got, step.want)
		}
	}
}

// TestDetector_InSpeech tests the state accessor across a speech cycle.
func TestDetector_InSpeech(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	d := newTestDetector(clock)

	if d.InSpeech() {
		t.Fatal("InSpeech() = true before any frame")
	}

	d.Process(makeSpeech(320, 0.05))
	if !d.InSpeech() {
		t.Fatal("InSpeech() = false after speech frame")
	}

	clock.advance(300 * time.Millisecond)
	d.Process(makeSilence(320))
	if d.InSpeech() {
		t.Error("InSpeech() = true after silence past hangover")
	}
}

// TestDetector_Reset tests that Reset clears state so a restarted stream
// produces a fresh SpeechStart.
func TestDetector_Reset(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	d := newTestDetector(clock)

	d.Process(makeSpeech(320, 0.05))
	d.Reset()

	if d.InSpeech() {
		t.Fatal("InSpeech() = true after Reset")
	}
	if got := d.Process(makeSpeech(320, 0.05)); got != SpeechStart {
		t.Errorf("Process() after Reset = %v, want SpeechStart", got)
	}
}

// TestRMS tests the energy calculation.
func TestRMS(t *testing.T) {
	tests := []struct {
		name    string
		samples []float32
		want    float32
	}{
		{"empty", nil, 0},
		{"zeros", []float32{0, 0, 0, 0}, 0},
		{"constant", []float32{0.1, 0.1, 0.1, 0.1}, 0.1},
		{"alternating sign", []float32{0.3, -0.3, 0.3, -0.3}, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rms(tt.samples)
			diff := got - tt.want
			if diff < 0 {
				diff = -diff
			}
			if diff > 0.0001 {
				t.Errorf("rms() = %v, want %v", got, tt.want)
			}
		})
	}
}
