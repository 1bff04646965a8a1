// Package stt provides the speech-to-text provider interface and
// implementations.
package stt

import "context"

// Result represents the outcome of one transcription call. A nil *Result
// from a provider means the call failed; a non-nil Result with empty Text
// means the service heard nothing intelligible.
type Result struct {
	Text     string `json:"text"`
	Language string `json:"language"` // detected language code, may be empty
}

// Provider defines the interface for speech-to-text backends. Both the
// remote Whisper API and the local whisper.cpp CLI satisfy it.
type Provider interface {
	// Name returns the provider identifier.
	Name() string

	// DisplayName returns the human-readable provider name.
	DisplayName() string

	// IsLocal returns true if the provider runs without network calls.
	IsLocal() bool

	// IsReady returns true if the provider can accept audio now.
	IsReady() bool

	// Transcribe converts one utterance to text.
	// samples: PCM float32 in [-1, 1]; language: source hint, empty for
	// auto-detect. Only one call is in flight at a time by construction.
	Transcribe(ctx context.Context, samples []float32, sampleRate, channels int, language string) (*Result, error)

	// Close releases resources held by the provider.
	Close() error
}

// Registry holds registered STT providers.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider to the registry.
func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// Get returns a provider by name, or nil.
func (r *Registry) Get(name string) Provider {
	return r.providers[name]
}

// List returns all registered providers.
func (r *Registry) List() []Provider {
	result := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		result = append(result, p)
	}
	return result
}

// Close releases all providers.
func (r *Registry) Close() error {
	for _, p := range r.providers {
		if err := p.Close(); err != nil {
			return err
		}
	}
	return nil
}
