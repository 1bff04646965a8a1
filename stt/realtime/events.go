package realtime

import "encoding/json"

// Event types received on the data channel that we act on. Everything else
// is passed through as an unknown event and ignored upstream.
const (
	TypeSpeechStarted          = "input_audio_buffer.speech_started"
	TypeSpeechStopped          = "input_audio_buffer.speech_stopped"
	TypeTranscriptionDelta     = "conversation.item.input_audio_transcription.delta"
	TypeTranscriptionCompleted = "conversation.item.input_audio_transcription.completed"
	TypeError                  = "error"
)

// ServerEvent represents a message received from the Realtime API.
type ServerEvent struct {
	EventID string    `json:"event_id,omitempty"`
	Type    string    `json:"type"`
	Error   *APIError `json:"error,omitempty"`
	// Store all other fields dynamically
	Extra map[string]interface{} `json:"-"`
}

// APIError represents an error payload from the Realtime API.
type APIError struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Param   string `json:"param,omitempty"`
}

// UnmarshalJSON implements custom unmarshaling to capture all fields.
func (e *ServerEvent) UnmarshalJSON(data []byte) error {
	var rawMap map[string]interface{}
	if err := json.Unmarshal(data, &rawMap); err != nil {
		return err
	}

	type Alias ServerEvent
	aux := &struct {
		*Alias
	}{
		Alias: (*Alias)(e),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	e.Extra = make(map[string]interface{})
	for k, v := range rawMap {
		if k != "event_id" && k != "type" && k != "error" {
			e.Extra[k] = v
		}
	}

	return nil
}

// Delta extracts the incremental transcription text from a delta event.
func (e *ServerEvent) Delta() (string, bool) {
	s, ok := e.Extra["delta"].(string)
	return s, ok
}

// Transcript extracts the final transcription text from a completed event.
func (e *ServerEvent) Transcript() (string, bool) {
	s, ok := e.Extra["transcript"].(string)
	return s, ok
}

// ItemID extracts the conversation item identifier, used to correlate
// deltas with their completed transcript.
func (e *ServerEvent) ItemID() (string, bool) {
	s, ok := e.Extra["item_id"].(string)
	return s, ok
}
