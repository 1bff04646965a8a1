// Package listen implements the voice-activity-triggered capture cycle: a
// state machine that opens a recording session when speech starts, closes
// it when speech ends, hands the audio to a transcription dispatcher, and
// re-arms once the result comes back. Lifecycle conditions (app suspended,
// window unfocused) gate every transition.
package listen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/earshot-app/earshot/capture"
	"github.com/earshot-app/earshot/internal/types"
)

// ErrClosed is returned when operating on a closed controller.
var ErrClosed = errors.New("controller closed")

// Device is the capture collaborator. The controller is the device's sole
// owner; only it may start or stop a recording window.
type Device interface {
	// Available reports whether a capture device exists.
	Available() error
	// Start begins accumulating a recording.
	Start() error
	// Stop ends accumulation and hands over the captured clip.
	Stop() (capture.Clip, error)
}

// Config tunes the capture cycle.
type Config struct {
	// MinRecordingDuration is the floor below which a speech-absent event
	// does not stop the recording. Guards against VAD flicker at utterance
	// boundaries producing unusably short clips.
	MinRecordingDuration time.Duration

	// DelayBeforeNextRecord is the pause between a resolved transcription
	// and re-arming, so the tail of the previous utterance cannot
	// immediately re-trigger.
	DelayBeforeNextRecord time.Duration
}

// Controller is the capture state machine. All transitions are serialized
// under one mutex; the transcription call and the re-arm delay are the only
// suspension points and happen on the dispatch goroutine.
type Controller struct {
	device     Device
	dispatcher Transcriber
	ledger     *Ledger
	cfg        Config

	// Injectable for tests.
	now   func() time.Time
	sleep func(time.Duration)

	mu      sync.Mutex
	state   State
	flags   LifecycleFlags
	session *Session
	errText string
	closed  bool

	onStatus     func(types.ControllerStatus)
	onTranscript func(types.Transcript)
}

// New creates a controller in Idle. A nil ledger gets a fresh one.
func New(device Device, dispatcher Transcriber, ledger *Ledger, cfg Config) *Controller {
	if ledger == nil {
		ledger = NewLedger()
	}
	return &Controller{
		device:     device,
		dispatcher: dispatcher,
		ledger:     ledger,
		cfg:        cfg,
		now:        time.Now,
		sleep:      time.Sleep,
		flags:      LifecycleFlags{Focused: true},
	}
}

// OnStatusChange registers the status observer. Register before Start.
func (c *Controller) OnStatusChange(fn func(types.ControllerStatus)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStatus = fn
}

// OnTranscript registers the finalized-transcript observer. It fires only
// for successful dispatches whose text is non-empty. Register before Start.
func (c *Controller) OnTranscript(fn func(types.Transcript)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTranscript = fn
}

// Start transitions Idle to Listening once the device reports availability.
// With no device the controller stays in Idle and surfaces a status error.
func (c *Controller) Start() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state != Idle {
		c.mu.Unlock()
		return nil
	}

	if err := c.device.Available(); err != nil {
		c.errText = msgNoDevice
		status, cb := c.statusLocked(), c.onStatus
		c.mu.Unlock()
		if cb != nil {
			cb(status)
		}
		return fmt.Errorf("capture device unavailable: %w", err)
	}

	c.errText = ""
	c.state = Listening
	status, cb := c.statusLocked(), c.onStatus
	c.mu.Unlock()

	slog.Info("listening started")
	if cb != nil {
		cb(status)
	}
	return nil
}

// HandleVoiceActivity feeds one speech-present/absent transition into the
// state machine. Events arriving while suspended or unfocused are dropped
// outright, as are events during Processing.
func (c *Controller) HandleVoiceActivity(speech bool) {
	c.mu.Lock()
	if c.closed || c.flags.Vetoed() || c.state == Processing {
		c.mu.Unlock()
		return
	}

	switch {
	case c.state == Listening && speech:
		if err := c.device.Start(); err != nil {
			c.mu.Unlock()
			slog.Error("start capture", "error", err)
			return
		}
		c.session = newSession(c.now())
		c.state = Recording
		slog.Debug("recording started")

	case c.state == Recording && !speech:
		elapsed := c.session.Elapsed(c.now())
		if elapsed < c.cfg.MinRecordingDuration {
			c.mu.Unlock()
			slog.Debug("ignoring premature stop", "elapsed", elapsed)
			return
		}

		clip, err := c.device.Stop()
		if err != nil {
			// Nothing usable captured; drop the session and keep listening.
			slog.Error("stop capture", "error", err)
			c.session = nil
			c.state = Listening
			break
		}

		clip, ok := c.session.finalize(clip)
		c.session = nil
		c.state = Processing
		slog.Debug("recording stopped", "elapsed", elapsed, "audioSeconds", clip.Seconds())
		if ok {
			go c.process(clip)
		}

	default:
		// Listening+absent, Recording+present: nothing to do.
		c.mu.Unlock()
		return
	}

	status, cb := c.statusLocked(), c.onStatus
	c.mu.Unlock()
	if cb != nil {
		cb(status)
	}
}

// process runs on its own goroutine. Empty captures bypass the dispatcher
// entirely; everything funnels into OnTranscriptionResolved.
func (c *Controller) process(clip capture.Clip) {
	if clip.Empty() {
		c.OnTranscriptionResolved(Resolution{Skipped: true})
		return
	}
	c.OnTranscriptionResolved(c.dispatcher.Dispatch(context.Background(), clip))
}

// OnTranscriptionResolved feeds a finished dispatch back into the state
// machine. It records the ledger entry for successful results, forwards a
// non-empty transcript to the observer, waits the re-arm delay, and
// transitions Processing back to Listening. Exported so tests can inject
// synthetic resolutions.
func (c *Controller) OnTranscriptionResolved(res Resolution) {
	c.mu.Lock()
	if c.closed || c.state != Processing {
		c.mu.Unlock()
		return
	}
	transcriptCb := c.onTranscript
	c.mu.Unlock()

	switch {
	case res.Skipped:
		slog.Debug("empty capture, dispatcher bypassed")
	case res.Result == nil:
		// Failed dispatch: the utterance is dropped, no retry, no ledger entry.
	default:
		c.ledger.Record(res.ElapsedMs, res.AudioSeconds)
		if text := strings.TrimSpace(res.Result.Text); text != "" && transcriptCb != nil {
			transcriptCb(types.Transcript{
				Text:         text,
				Language:     res.Result.Language,
				ElapsedMs:    res.ElapsedMs,
				AudioSeconds: res.AudioSeconds,
				Timestamp:    c.now().UnixMilli(),
			})
		}
	}

	c.sleep(c.cfg.DelayBeforeNextRecord)

	c.mu.Lock()
	if !c.closed && c.state == Processing {
		c.state = Listening
	}
	status, cb := c.statusLocked(), c.onStatus
	c.mu.Unlock()
	if cb != nil {
		cb(status)
	}
}

// OnSuspend records a host suspend or resume notification.
func (c *Controller) OnSuspend(suspended bool) {
	c.applyFlags(func(f *LifecycleFlags) { f.Suspended = suspended })
}

// OnFocusChange records a window focus or blur notification.
func (c *Controller) OnFocusChange(focused bool) {
	c.applyFlags(func(f *LifecycleFlags) { f.Focused = focused })
}

// applyFlags mutates the lifecycle flags and, when the new flags veto
// activity during a recording, force-stops it so no open recording spans
// the suspend or blur boundary. The partial clip is discarded.
func (c *Controller) applyFlags(apply func(*LifecycleFlags)) {
	c.mu.Lock()
	apply(&c.flags)

	if c.flags.Vetoed() && c.state == Recording {
		if _, err := c.device.Stop(); err != nil {
			slog.Error("stop capture on lifecycle veto", "error", err)
		}
		c.session = nil
		c.state = Listening
		slog.Info("recording force-stopped by lifecycle change", "flags", fmt.Sprintf("%+v", c.flags))
	}

	status, cb := c.statusLocked(), c.onStatus
	c.mu.Unlock()
	if cb != nil {
		cb(status)
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Flags returns the current lifecycle flags.
func (c *Controller) Flags() LifecycleFlags {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flags
}

// Status returns the UI-facing view of the current state.
func (c *Controller) Status() types.ControllerStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

// Stats returns a snapshot of the performance ledger.
func (c *Controller) Stats() types.LedgerStats {
	return c.ledger.Snapshot()
}

// Ledger exposes the underlying ledger, e.g. for persistence.
func (c *Controller) Ledger() *Ledger {
	return c.ledger
}

// Close stops any in-progress capture unconditionally and releases the
// session. The controller cannot be restarted.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.state == Recording {
		if _, err := c.device.Stop(); err != nil {
			slog.Error("stop capture on close", "error", err)
		}
	}
	c.session = nil
	c.state = Idle
	return nil
}

func (c *Controller) statusLocked() types.ControllerStatus {
	return statusFor(c.state, c.flags, c.errText)
}
