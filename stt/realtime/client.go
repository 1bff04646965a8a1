package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	opuscodec "github.com/jj11hh/opus"
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
)

// Client handles the WebRTC connection to the OpenAI Realtime API. Audio
// goes out over an Opus track, transcription events come back on the
// "oai-events" data channel.
type Client struct {
	sessionMgr *SessionManager
	language   string

	peerConnection *webrtc.PeerConnection
	dataChannel    *webrtc.DataChannel
	audioTrack     *webrtc.TrackLocalStaticSample
	opusEncoder    *opuscodec.Encoder

	msgChan chan ServerEvent
	errChan chan error
	done    chan struct{}

	mu     sync.Mutex
	closed bool
}

// ClientConfig holds configuration for the client.
type ClientConfig struct {
	APIKey   string
	Language string
}

// NewClient creates a new WebRTC-based Realtime client.
func NewClient(cfg ClientConfig) *Client {
	return &Client{
		sessionMgr: NewSessionManager(cfg.APIKey),
		language:   cfg.Language,
		msgChan:    make(chan ServerEvent, 100),
		errChan:    make(chan error, 1),
		done:       make(chan struct{}),
	}
}

// Connect establishes the WebRTC connection to the Realtime API.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	secret, err := c.sessionMgr.CreateSession(ctx, SessionConfig{Language: c.language})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	slog.Info("realtime session created", "expires", time.Unix(secret.ExpiresAt, 0))

	mediaEngine := &webrtc.MediaEngine{}
	if err := mediaEngine.RegisterDefaultCodecs(); err != nil {
		return fmt.Errorf("register codecs: %w", err)
	}

	api := webrtc.NewAPI(webrtc.WithMediaEngine(mediaEngine))

	pc, err := api.NewPeerConnection(webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{URLs: []string{"stun:stun.l.google.com:19302"}},
		},
	})
	if err != nil {
		return fmt.Errorf("create peer connection: %w", err)
	}
	c.peerConnection = pc

	// The track must exist before the offer so it lands in the SDP.
	// WebRTC Opus runs at 48kHz stereo.
	audioTrack, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{
			MimeType:  webrtc.MimeTypeOpus,
			ClockRate: 48000,
			Channels:  2,
		},
		"audio",
		"earshot-audio",
	)
	if err != nil {
		return fmt.Errorf("create audio track: %w", err)
	}
	c.audioTrack = audioTrack

	if _, err := pc.AddTrack(audioTrack); err != nil {
		return fmt.Errorf("add audio track: %w", err)
	}

	opusEnc, err := opuscodec.NewEncoder(48000, 2, opuscodec.AppVoIP)
	if err != nil {
		return fmt.Errorf("create opus encoder: %w", err)
	}
	c.opusEncoder = opusEnc

	dc, err := pc.CreateDataChannel("oai-events", nil)
	if err != nil {
		return fmt.Errorf("create data channel: %w", err)
	}
	c.dataChannel = dc

	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		var event ServerEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			slog.Error("unmarshal realtime event", "error", err)
			return
		}

		select {
		case c.msgChan <- event:
		case <-time.After(100 * time.Millisecond):
			slog.Warn("event channel full, dropping", "type", event.Type)
		}
	})

	dc.OnClose(func() {
		slog.Debug("data channel closed")
	})

	// Remote audio is drained and discarded; we only want text.
	pc.OnTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		go func() {
			for {
				if _, _, err := track.ReadRTP(); err != nil {
					return
				}
			}
		}()
	})

	pc.OnICEConnectionStateChange(func(state webrtc.ICEConnectionState) {
		slog.Debug("ICE connection state changed", "state", state.String())
		if state == webrtc.ICEConnectionStateFailed || state == webrtc.ICEConnectionStateClosed {
			select {
			case c.errChan <- fmt.Errorf("ICE connection %s", state.String()):
			default:
			}
		}
	})

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		return fmt.Errorf("create offer: %w", err)
	}
	if err := pc.SetLocalDescription(offer); err != nil {
		return fmt.Errorf("set local description: %w", err)
	}

	// Wait for ICE gathering so candidates are included in the SDP.
	<-webrtc.GatheringCompletePromise(pc)

	answerSDP, err := c.sessionMgr.ExchangeSDP(ctx, pc.LocalDescription().SDP, secret.Value)
	if err != nil {
		return fmt.Errorf("exchange SDP: %w", err)
	}

	answer := webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer,
		SDP:  answerSDP,
	}
	if err := pc.SetRemoteDescription(answer); err != nil {
		return fmt.Errorf("set remote description: %w", err)
	}

	slog.Info("realtime connection established")
	return nil
}

// SendAudio encodes mono 48kHz float32 samples to Opus and writes them to
// the audio track.
func (c *Client) SendAudio(samples []float32) error {
	c.mu.Lock()
	track := c.audioTrack
	encoder := c.opusEncoder
	c.mu.Unlock()

	if track == nil || encoder == nil {
		return fmt.Errorf("audio track not ready")
	}

	// Mono to stereo by duplication.
	stereo := make([]float32, len(samples)*2)
	for i, s := range samples {
		stereo[i*2] = s
		stereo[i*2+1] = s
	}

	opusData := make([]byte, 1275)
	n, err := encoder.EncodeFloat32(stereo, opusData)
	if err != nil {
		return fmt.Errorf("opus encode: %w", err)
	}

	sample := media.Sample{
		Data:     opusData[:n],
		Duration: time.Duration(len(samples)) * time.Second / 48000,
	}
	if err := track.WriteSample(sample); err != nil {
		return fmt.Errorf("write sample: %w", err)
	}

	return nil
}

// Events returns the channel for receiving server events.
func (c *Client) Events() <-chan ServerEvent {
	return c.msgChan
}

// Errors returns the channel for receiving connection errors.
func (c *Client) Errors() <-chan error {
	return c.errChan
}

// Close closes the WebRTC connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)

	if c.dataChannel != nil {
		_ = c.dataChannel.Close()
	}
	if c.peerConnection != nil {
		return c.peerConnection.Close()
	}
	return nil
}
