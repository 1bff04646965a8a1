package capture

import (
	"testing"
	"time"
)

// fakeImpl is an in-memory backend that lets tests push frames.
type fakeImpl struct {
	callback func(samples []float32)
	started  bool
}

func (f *fakeImpl) start(sampleRate int, callback func(samples []float32)) error {
	f.callback = callback
	f.started = true
	return nil
}

func (f *fakeImpl) stop() error {
	f.started = false
	f.callback = nil
	return nil
}

func newTestMicrophone(preRollSamples int) (*Microphone, *fakeImpl) {
	impl := &fakeImpl{}
	return &Microphone{
		impl:       impl,
		sampleRate: 16000,
		channels:   1,
		ring:       NewRingBuffer(preRollSamples),
		preRoll:    preRollSamples,
	}, impl
}

func frame(value float32, n int) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = value
	}
	return s
}

// TestMicrophone_RecordCycle tests a monitor→record→stop pass.
func TestMicrophone_RecordCycle(t *testing.T) {
	mic, impl := newTestMicrophone(4)

	if err := mic.StartMonitor(); err != nil {
		t.Fatalf("StartMonitor() error = %v", err)
	}
	if !impl.started {
		t.Fatal("backend not started")
	}

	// Monitor-only frames land in the pre-roll ring, not a recording.
	impl.callback(frame(0.1, 4))
	if mic.Capturing() {
		t.Fatal("Capturing() = true before Start")
	}

	if err := mic.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := mic.Start(); err != ErrAlreadyCapturing {
		t.Errorf("second Start() error = %v, want ErrAlreadyCapturing", err)
	}

	impl.callback(frame(0.2, 8))

	clip, err := mic.Stop()
	if err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	// 4 pre-roll samples seeded from the ring plus 8 recorded.
	if len(clip.Samples) != 12 {
		t.Errorf("clip has %d samples, want 12", len(clip.Samples))
	}
	if clip.Samples[0] != 0.1 || clip.Samples[4] != 0.2 {
		t.Errorf("clip not seeded with pre-roll: head=%v body=%v", clip.Samples[0], clip.Samples[4])
	}
	if clip.SampleRate != 16000 || clip.Channels != 1 {
		t.Errorf("clip format = %d/%d, want 16000/1", clip.SampleRate, clip.Channels)
	}

	if _, err := mic.Stop(); err != ErrNotCapturing {
		t.Errorf("second Stop() error = %v, want ErrNotCapturing", err)
	}
}

// TestMicrophone_Handlers tests monitor fan-out to registered handlers.
func TestMicrophone_Handlers(t *testing.T) {
	mic, impl := newTestMicrophone(4)

	var got int
	mic.OnSamples(func(samples []float32) { got += len(samples) })

	if err := mic.StartMonitor(); err != nil {
		t.Fatalf("StartMonitor() error = %v", err)
	}
	impl.callback(frame(0.1, 16))
	impl.callback(frame(0.1, 16))

	if got != 32 {
		t.Errorf("handler received %d samples, want 32", got)
	}
}

// TestMicrophone_StopMonitorDiscards tests that closing the stream drops a
// partial recording.
func TestMicrophone_StopMonitorDiscards(t *testing.T) {
	mic, impl := newTestMicrophone(4)

	if err := mic.StartMonitor(); err != nil {
		t.Fatalf("StartMonitor() error = %v", err)
	}
	if err := mic.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	impl.callback(frame(0.2, 8))

	if err := mic.StopMonitor(); err != nil {
		t.Fatalf("StopMonitor() error = %v", err)
	}
	if mic.Capturing() {
		t.Error("Capturing() = true after StopMonitor")
	}
	if _, err := mic.Stop(); err != ErrNotCapturing {
		t.Errorf("Stop() after StopMonitor error = %v, want ErrNotCapturing", err)
	}
}

// TestClip_Duration tests clip length math.
func TestClip_Duration(t *testing.T) {
	tests := []struct {
		name string
		clip Clip
		want time.Duration
	}{
		{"empty", Clip{}, 0},
		{"one second mono", Clip{Samples: make([]float32, 16000), SampleRate: 16000, Channels: 1}, time.Second},
		{"half second stereo", Clip{Samples: make([]float32, 16000), SampleRate: 16000, Channels: 2}, 500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.clip.Duration(); got != tt.want {
				t.Errorf("Duration() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestRingBuffer tests wraparound and read ordering.
func TestRingBuffer(t *testing.T) {
	rb := NewRingBuffer(4)

	rb.Write([]float32{1, 2})
	if rb.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", rb.Len())
	}

	rb.Write([]float32{3, 4, 5, 6})
	if rb.Len() != 4 {
		t.Fatalf("Len() after wrap = %d, want 4", rb.Len())
	}

	got := rb.Read(4)
	want := []float32{3, 4, 5, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Read(4) = %v, want %v", got, want)
		}
	}

	// Asking for more than is buffered returns what exists.
	rb.Clear()
	rb.Write([]float32{7})
	if got := rb.Read(10); len(got) != 1 || got[0] != 7 {
		t.Errorf("Read(10) = %v, want [7]", got)
	}
}
