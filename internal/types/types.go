// Package types provides shared type definitions for the application.
package types

// APICredential stores an API key for a transcription service.
type APICredential struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"` // "openai", "openai-compatible"
	BaseURL string `json:"base_url,omitempty"`
	APIKey  string `json:"api_key"`
}

// SpeechConfig selects the transcription provider and its model.
type SpeechConfig struct {
	Enabled      bool   `json:"enabled"`
	Provider     string `json:"provider"` // "whisper-api", "whisper-local"
	CredentialID string `json:"credential_id,omitempty"`
	Model        string `json:"model,omitempty"`

	// Language is an optional ISO 639-1 hint passed to the provider and the
	// streaming side-channel. Empty means auto-detect.
	Language string `json:"language,omitempty"`

	// LivePartials enables the streaming side-channel that emits
	// transcript-in-progress text while an utterance is being recorded.
	LivePartials bool `json:"live_partials,omitempty"`
}

// CaptureSettings tunes the voice-activity capture loop.
type CaptureSettings struct {
	// MinRecordingDuration is the floor, in seconds, below which a detected
	// utterance is considered VAD flicker and the recording keeps running.
	MinRecordingDuration float64 `json:"min_recording_duration"`

	// DelayBeforeNextRecord is the pause, in seconds, between a finished
	// transcription cycle and re-arming for the next utterance.
	DelayBeforeNextRecord float64 `json:"delay_before_next_record"`

	// VADThreshold is passed through unmodified to the voice-activity
	// detector (RMS scale, 0-1).
	VADThreshold float32 `json:"vad_threshold"`

	// VADHangoverMs is how long the detector keeps reporting speech after
	// the level drops below threshold, passed through unmodified.
	VADHangoverMs int `json:"vad_hangover_ms"`
}

// ControllerStatus is the UI-facing view of the capture state machine.
type ControllerStatus struct {
	State   string `json:"state"`   // "idle", "listening", "recording", "processing"
	Message string `json:"message"` // e.g. "Ready to listen…"
	Color   string `json:"color"`   // semantic color hex for the status badge
	Paused  bool   `json:"paused"`
}

// Transcript is a finalized utterance transcript delivered to the UI.
type Transcript struct {
	ID           string  `json:"id"`
	Text         string  `json:"text"`
	Language     string  `json:"language,omitempty"`
	LanguageName string  `json:"languageName,omitempty"`
	ElapsedMs    int64   `json:"elapsedMs"`
	AudioSeconds float64 `json:"audioSeconds"`
	Timestamp    int64   `json:"timestamp"` // Unix milliseconds
}

// STTProviderInfo describes a registered transcription provider to the UI.
type STTProviderInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	IsLocal     bool   `json:"isLocal"`
	IsReady     bool   `json:"isReady"`
}

// RGB is a color value attached to a Color command match.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// CommandEvent is a discrete trigger extracted from a transcript.
type CommandEvent struct {
	Category string `json:"category"` // "affirm", "greet", "new", "color"
	Color    *RGB   `json:"color,omitempty"`
}

// LedgerStats is a point-in-time view of the throughput counters.
type LedgerStats struct {
	Recordings        int64   `json:"recordings"`
	TotalProcessingMs int64   `json:"totalProcessingMs"`
	TotalAudioSeconds float64 `json:"totalAudioSeconds"`
	AvgProcessingMs   float64 `json:"avgProcessingMs"`
	AvgAudioSeconds   float64 `json:"avgAudioSeconds"`
	RealtimeFactor    float64 `json:"realtimeFactor"`
	SummaryText       string  `json:"summaryText"`
}
