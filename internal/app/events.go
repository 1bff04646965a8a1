// Package app provides the core application service for Wails bindings.
package app

// Event names for frontend communication.
const (
	EventCaptureStatus  = "capture-status"
	EventTranscript     = "transcript"
	EventCommandMatches = "command-matches"
	EventLivePartial    = "live-partial"
	EventLedgerStats    = "ledger-stats"
)

// LivePartial is the transcript-in-progress payload emitted while an
// utterance is still being recorded.
type LivePartial struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}
