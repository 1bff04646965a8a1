package realtime

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/realtime"
)

const (
	// callsEndpoint is the endpoint for WebRTC SDP exchange.
	callsEndpoint = "https://api.openai.com/v1/realtime/calls"
)

// SessionManager creates ephemeral transcription sessions with OpenAI and
// performs the WebRTC SDP exchange against them.
type SessionManager struct {
	client     *openai.Client
	httpClient *http.Client
}

// NewSessionManager creates a session manager using the official OpenAI SDK.
func NewSessionManager(apiKey string) *SessionManager {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &SessionManager{
		client: &client,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SessionConfig holds configuration for creating a session.
type SessionConfig struct {
	Language string // ISO-639-1 language code, empty means auto-detect
}

// ClientSecret holds the ephemeral key from CreateSession.
type ClientSecret struct {
	Value     string
	ExpiresAt int64
}

// CreateSession mints an ephemeral transcription session token. Sessions
// are transcription-only: audio in, text out, no model responses.
func (sm *SessionManager) CreateSession(ctx context.Context, cfg SessionConfig) (*ClientSecret, error) {
	transcription := realtime.AudioTranscriptionParam{
		Model: realtime.AudioTranscriptionModelGPT4oTranscribe,
	}
	if cfg.Language != "" && cfg.Language != "auto" {
		transcription.Language = openai.String(cfg.Language)
	}

	params := realtime.ClientSecretNewParams{
		Session: realtime.ClientSecretNewParamsSessionUnion{
			OfTranscription: &realtime.RealtimeTranscriptionSessionCreateRequestParam{
				Audio: realtime.RealtimeTranscriptionSessionAudioParam{
					Input: realtime.RealtimeTranscriptionSessionAudioInputParam{
						// Server-side VAD segments turns for us; local VAD
						// still gates when audio is forwarded at all.
						TurnDetection: realtime.RealtimeTranscriptionSessionAudioInputTurnDetectionUnionParam{
							OfServerVad: &realtime.RealtimeTranscriptionSessionAudioInputTurnDetectionServerVadParam{
								Type:              "server_vad",
								Threshold:         openai.Float(0.5),
								PrefixPaddingMs:   openai.Int(300),
								SilenceDurationMs: openai.Int(500),
							},
						},
						Transcription: transcription,
					},
				},
			},
		},
	}

	resp, err := sm.client.Realtime.ClientSecrets.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create client secret: %w", err)
	}

	return &ClientSecret{
		Value:     resp.Value,
		ExpiresAt: resp.ExpiresAt,
	}, nil
}

// ExchangeSDP sends the local SDP offer to OpenAI and returns the SDP answer.
// The SDK does not support WebRTC SDP exchange, so this is done manually.
func (sm *SessionManager) ExchangeSDP(ctx context.Context, offer, ephemeralKey string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, callsEndpoint, bytes.NewBufferString(offer))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+ephemeralKey)
	req.Header.Set("Content-Type", "application/sdp")

	resp, err := sm.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		slog.Error("SDP exchange failed", "status", resp.StatusCode, "body", string(body))
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return string(body), nil
}
