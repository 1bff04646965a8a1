package listen

import (
	"context"
	"log/slog"
	"time"

	"github.com/earshot-app/earshot/capture"
	"github.com/earshot-app/earshot/stt"
)

// Resolution is the outcome of one dispatch, fed back into the state
// machine. A nil Result means the call failed and the utterance is dropped;
// a non-nil Result with empty text means nothing was said. Skipped marks an
// empty capture for which the dispatcher was never invoked.
type Resolution struct {
	Result       *stt.Result
	ElapsedMs    int64
	AudioSeconds float64
	Skipped      bool
}

// Transcriber is the dispatcher contract the controller depends on.
type Transcriber interface {
	Dispatch(ctx context.Context, clip capture.Clip) Resolution
}

// Dispatcher issues the transcription call for a finished utterance and
// measures its wall-clock time. One call at a time; the controller's
// Processing state guarantees no overlap.
type Dispatcher struct {
	provider stt.Provider
	language string

	now func() time.Time
}

// NewDispatcher wraps an stt provider. language is passed through to the
// provider; empty means auto-detect.
func NewDispatcher(provider stt.Provider, language string) *Dispatcher {
	return &Dispatcher{
		provider: provider,
		language: language,
		now:      time.Now,
	}
}

// Dispatch transcribes the clip. There is no timeout: a call that never
// resolves stalls re-arming until the process exits.
func (d *Dispatcher) Dispatch(ctx context.Context, clip capture.Clip) Resolution {
	start := d.now()
	result, err := d.provider.Transcribe(ctx, clip.Samples, clip.SampleRate, clip.Channels, d.language)
	elapsed := d.now().Sub(start).Milliseconds()

	if err != nil {
		slog.Error("transcription failed", "provider", d.provider.Name(), "elapsedMs", elapsed, "error", err)
		return Resolution{ElapsedMs: elapsed}
	}
	if result == nil {
		slog.Warn("transcription returned no result", "provider", d.provider.Name(), "elapsedMs", elapsed)
		return Resolution{ElapsedMs: elapsed}
	}

	slog.Debug("transcription resolved",
		"provider", d.provider.Name(),
		"elapsedMs", elapsed,
		"audioSeconds", clip.Seconds(),
		"chars", len(result.Text))

	return Resolution{
		Result:       result,
		ElapsedMs:    elapsed,
		AudioSeconds: clip.Seconds(),
	}
}
