package listen

// State is the controller's position in the capture cycle. Exactly one
// value is current at any time; all transitions are serialized.
type State int

const (
	// Idle means capture has not started, either because Start has not been
	// called or because no capture device exists.
	Idle State = iota
	// Listening means the controller is armed and waiting for speech.
	Listening
	// Recording means an utterance is being captured.
	Recording
	// Processing means a finished utterance is out for transcription.
	// Voice-activity events are ignored until the dispatch resolves.
	Processing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Listening:
		return "listening"
	case Recording:
		return "recording"
	case Processing:
		return "processing"
	default:
		return "unknown"
	}
}

// LifecycleFlags tracks host-environment conditions that gate capture.
// Mutated only by host callbacks, read on every transition decision.
type LifecycleFlags struct {
	Suspended bool
	Focused   bool
}

// Vetoed reports whether voice-activity events should be ignored.
func (f LifecycleFlags) Vetoed() bool {
	return f.Suspended || !f.Focused
}
