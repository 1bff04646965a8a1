// Package app provides the core application service for Wails bindings.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/wailsapp/wails/v3/pkg/application"

	"github.com/earshot-app/earshot/capture"
	"github.com/earshot-app/earshot/command"
	"github.com/earshot-app/earshot/config"
	"github.com/earshot-app/earshot/history"
	"github.com/earshot-app/earshot/hotkey"
	"github.com/earshot-app/earshot/internal/types"
	"github.com/earshot-app/earshot/langdetect"
	"github.com/earshot-app/earshot/listen"
	"github.com/earshot-app/earshot/stt"
	"github.com/earshot-app/earshot/vad"
)

// Service provides application functionality bound to Wails.
// This struct focuses on orchestration; business logic lives in sub-packages.
type Service struct {
	cfg      *config.Config
	registry *stt.Registry
	store    *history.Store
	hotkey   *hotkey.Manager
	matcher  *command.Matcher

	// UI references - set via Init
	app    *application.App
	window application.Window

	// Capture pipeline, built by StartListening
	mu         sync.Mutex
	mic        *capture.Microphone
	detector   *vad.Detector
	controller *listen.Controller
	partials   partialAdapter
	paused     bool

	// Version info (set by caller)
	version string
}

// New creates a new Service. Call Init() after the Wails app is created.
func New(version string) *Service {
	return &Service{
		version: version,
		matcher: command.NewMatcher(),
	}
}

// GetVersion returns the application version.
func (s *Service) GetVersion() string {
	return s.version
}

// Init initializes the service with app and window references.
// Must be called after the Wails application is created.
func (s *Service) Init(app *application.App, window application.Window) {
	s.app = app
	s.window = window

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		cfg = &config.Config{Capture: config.DefaultCaptureSettings()}
	}
	s.cfg = cfg

	s.setupHistory()
	s.setupSTT()
	s.setupHotkey()
}

// Shutdown cleans up resources.
func (s *Service) Shutdown() {
	if s.hotkey != nil {
		s.hotkey.Stop()
	}
	if err := s.StopListening(); err != nil {
		slog.Error("stop listening", "error", err)
	}
	if s.registry != nil {
		if err := s.registry.Close(); err != nil {
			slog.Error("close stt registry", "error", err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			slog.Error("close history", "error", err)
		}
	}
}

func (s *Service) setupHistory() {
	configDir, err := os.UserConfigDir()
	if err != nil {
		slog.Error("get config dir for history", "error", err)
		return
	}

	historyPath := filepath.Join(configDir, "earshot", "history")
	store, err := history.Open(historyPath)
	if err != nil {
		slog.Error("init history", "error", err)
		return
	}
	s.store = store
	slog.Info("history initialized", "path", historyPath)
}

func (s *Service) setupSTT() {
	s.registry = stt.NewRegistry()

	// Register the API provider if a credential is configured.
	if speech := s.cfg.GetSpeechConfig(); speech != nil && speech.CredentialID != "" {
		if cred := s.cfg.GetCredential(speech.CredentialID); cred != nil {
			s.registry.Register(stt.NewWhisperAPI(stt.WhisperAPIConfig{
				APIKey:  cred.APIKey,
				BaseURL: cred.BaseURL,
				Model:   speech.Model,
			}))
			slog.Info("registered OpenAI Whisper API provider")
		}
	}

	// Register local whisper (may not be ready if whisper.cpp is missing).
	local, err := stt.NewWhisperLocal(stt.WhisperLocalConfig{})
	if err != nil {
		slog.Error("init whisper local", "error", err)
	} else {
		s.registry.Register(local)
		if !local.IsReady() {
			slog.Warn("Whisper Local registered but not ready, install with: brew install whisper-cpp")
		}
	}

	slog.Info("STT providers initialized", "count", len(s.registry.List()))
}

func (s *Service) setupHotkey() {
	s.hotkey = hotkey.NewManager(
		func() { s.TogglePause() },
		func() { s.showWindow() },
	)
	if err := s.hotkey.Start(); err != nil {
		slog.Error("start hotkey", "error", err)
	}
}

// emit is a safe wrapper around app.Event.Emit.
func (s *Service) emit(name string, data any) {
	if s.app != nil {
		s.app.Event.Emit(name, data)
	}
}

func (s *Service) showWindow() {
	if s.window != nil {
		s.window.Show()
		s.window.Focus()
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Listening
// ─────────────────────────────────────────────────────────────────────────────

// StartListening builds the capture pipeline and arms the controller.
// Idempotent while a pipeline is already running.
func (s *Service) StartListening() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.controller != nil {
		return nil
	}

	provider := s.activeProvider()
	if provider == nil {
		return fmt.Errorf("no transcription provider available")
	}

	language := ""
	if speech := s.cfg.GetSpeechConfig(); speech != nil {
		language = speech.Language
	}

	mic, err := capture.New(capture.Config{})
	if err != nil {
		s.emit(EventCaptureStatus, listen.DeviceUnavailableStatus())
		return fmt.Errorf("open microphone: %w", err)
	}

	detector := vad.New(vad.Config{
		Threshold: s.cfg.Capture.VADThreshold,
		Hangover:  time.Duration(s.cfg.Capture.VADHangoverMs) * time.Millisecond,
	})

	ledger := listen.NewLedger()
	if s.store != nil {
		if stats, err := s.store.LoadLedger(); err != nil {
			slog.Warn("load ledger snapshot", "error", err)
		} else {
			ledger.Restore(stats)
		}
	}

	controller := listen.New(
		micDevice{mic},
		listen.NewDispatcher(provider, language),
		ledger,
		listen.Config{
			MinRecordingDuration:  secondsToDuration(s.cfg.Capture.MinRecordingDuration),
			DelayBeforeNextRecord: secondsToDuration(s.cfg.Capture.DelayBeforeNextRecord),
		},
	)
	controller.OnStatusChange(func(status types.ControllerStatus) {
		s.emit(EventCaptureStatus, status)
	})
	controller.OnTranscript(s.handleTranscript)

	// Audio fan-out: every monitor frame drives the VAD, and while an
	// utterance is being recorded it also feeds the partial stream.
	mic.OnSamples(func(samples []float32) {
		switch detector.Process(samples) {
		case vad.SpeechStart:
			controller.HandleVoiceActivity(true)
		case vad.SpeechEnd:
			controller.HandleVoiceActivity(false)
		}
		if controller.State() == listen.Recording {
			s.partials.sendAudio(samples)
		}
	})

	if err := controller.Start(); err != nil {
		mic.Close()
		return fmt.Errorf("start controller: %w", err)
	}

	s.mic = mic
	s.detector = detector
	s.controller = controller
	s.startPartialsLocked(mic.SampleRate())

	slog.Info("listening pipeline started", "provider", provider.Name())
	return nil
}

// startPartialsLocked opens the streaming side-channel when enabled.
func (s *Service) startPartialsLocked(sampleRate int) {
	speech := s.cfg.GetSpeechConfig()
	if speech == nil || !speech.LivePartials {
		return
	}
	cred := s.cfg.GetCredential(speech.CredentialID)
	if cred == nil {
		slog.Warn("live partials enabled but no credential configured")
		return
	}
	if err := s.partials.start(cred.APIKey, speech.Language, sampleRate, s.emit); err != nil {
		slog.Error("start partials", "error", err)
	}
}

// StopListening tears the pipeline down. Safe to call when not listening.
func (s *Service) StopListening() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.controller == nil {
		return nil
	}

	s.partials.stop()
	if err := s.controller.Close(); err != nil {
		slog.Error("close controller", "error", err)
	}
	s.persistLedgerLocked()

	err := s.mic.Close()
	s.mic = nil
	s.detector = nil
	s.controller = nil
	return err
}

// PauseListening suspends or resumes capture without tearing the pipeline
// down. Shares the controller code path used for host suspend.
func (s *Service) PauseListening(paused bool) {
	s.mu.Lock()
	controller := s.controller
	s.paused = paused
	s.mu.Unlock()

	if controller != nil {
		controller.OnSuspend(paused)
	}
}

// TogglePause flips the manual pause state. Bound to the global hotkey.
func (s *Service) TogglePause() {
	s.mu.Lock()
	paused := !s.paused
	s.mu.Unlock()
	s.PauseListening(paused)
	slog.Info("pause toggled", "paused", paused)
}

// OnFocusChange forwards window focus transitions to the controller.
func (s *Service) OnFocusChange(focused bool) {
	s.mu.Lock()
	controller := s.controller
	s.mu.Unlock()

	if controller != nil {
		controller.OnFocusChange(focused)
	}
}

// handleTranscript runs for every finalized non-empty transcript: fill in
// the language, persist it, emit it, and scan it for command triggers.
func (s *Service) handleTranscript(tr types.Transcript) {
	if tr.Language == "" {
		tr.Language, tr.LanguageName = langdetect.Detect(tr.Text)
	} else {
		tr.LanguageName = langdetect.DisplayName(tr.Language)
	}

	if s.store != nil {
		stored, err := s.store.Append(tr)
		if err != nil {
			slog.Error("persist transcript", "error", err)
		} else {
			tr = stored
		}
	}

	s.emit(EventTranscript, tr)

	if matches := s.matcher.Scan(tr.Text); len(matches) > 0 {
		events := make([]types.CommandEvent, len(matches))
		for i, m := range matches {
			events[i] = types.CommandEvent{Category: m.Category.String()}
			if m.ColorValue != nil {
				events[i].Color = &types.RGB{R: m.ColorValue.R, G: m.ColorValue.G, B: m.ColorValue.B}
			}
		}
		s.emit(EventCommandMatches, events)
	}

	s.mu.Lock()
	s.persistLedgerLocked()
	controller := s.controller
	s.mu.Unlock()
	if controller != nil {
		s.emit(EventLedgerStats, controller.Stats())
	}
}

func (s *Service) persistLedgerLocked() {
	if s.store == nil || s.controller == nil {
		return
	}
	if err := s.store.SaveLedger(s.controller.Stats()); err != nil {
		slog.Warn("persist ledger", "error", err)
	}
}

// activeProvider resolves the configured provider, falling back to the
// first ready one.
func (s *Service) activeProvider() stt.Provider {
	if speech := s.cfg.GetSpeechConfig(); speech != nil && speech.Provider != "" {
		if p := s.registry.Get(speech.Provider); p != nil {
			return p
		}
	}
	for _, p := range s.registry.List() {
		if p.IsReady() {
			return p
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Bound Queries
// ─────────────────────────────────────────────────────────────────────────────

// GetStatus returns the current capture status.
func (s *Service) GetStatus() types.ControllerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.controller == nil {
		return types.ControllerStatus{State: listen.Idle.String(), Message: "Idle", Color: "#6b7280", Paused: s.paused}
	}
	return s.controller.Status()
}

// GetLedgerStats returns throughput statistics. Falls back to the persisted
// snapshot while the pipeline is down.
func (s *Service) GetLedgerStats() types.LedgerStats {
	s.mu.Lock()
	controller := s.controller
	s.mu.Unlock()

	if controller != nil {
		return controller.Stats()
	}
	if s.store != nil {
		if stats, err := s.store.LoadLedger(); err == nil {
			return stats
		}
	}
	return types.LedgerStats{SummaryText: "no recordings yet"}
}

// GetHistory returns up to n recent transcripts, newest first.
func (s *Service) GetHistory(n int) []types.Transcript {
	if s.store == nil {
		return nil
	}
	transcripts, err := s.store.Recent(n)
	if err != nil {
		slog.Error("read history", "error", err)
		return nil
	}
	return transcripts
}

// MatchCommands scans arbitrary text with the command matcher. Exposed for
// the frontend's manual text entry.
func (s *Service) MatchCommands(text string) []types.CommandEvent {
	matches := s.matcher.Scan(text)
	events := make([]types.CommandEvent, len(matches))
	for i, m := range matches {
		events[i] = types.CommandEvent{Category: m.Category.String()}
		if m.ColorValue != nil {
			events[i].Color = &types.RGB{R: m.ColorValue.R, G: m.ColorValue.G, B: m.ColorValue.B}
		}
	}
	return events
}

// ─────────────────────────────────────────────────────────────────────────────
// Configuration (Delegated to Config)
// ─────────────────────────────────────────────────────────────────────────────

func (s *Service) GetCredentials() []types.APICredential {
	return s.cfg.GetCredentials()
}

func (s *Service) AddCredential(cred types.APICredential) error {
	return s.cfg.AddCredential(cred)
}

func (s *Service) UpdateCredential(id string, cred types.APICredential) error {
	return s.cfg.UpdateCredential(id, cred)
}

func (s *Service) RemoveCredential(id string) error {
	return s.cfg.RemoveCredential(id)
}

func (s *Service) GetSpeechConfig() *types.SpeechConfig {
	return s.cfg.GetSpeechConfig()
}

func (s *Service) SetSpeechConfig(cfg types.SpeechConfig) error {
	if err := s.cfg.SetSpeechConfig(cfg); err != nil {
		return err
	}
	// Provider set may have changed; rebuild the registry.
	if s.registry != nil {
		_ = s.registry.Close()
	}
	s.setupSTT()
	return nil
}

func (s *Service) GetCaptureSettings() types.CaptureSettings {
	return s.cfg.Capture
}

// SetCaptureSettings stores new tuning. Takes effect on the next
// StartListening.
func (s *Service) SetCaptureSettings(settings types.CaptureSettings) error {
	return s.cfg.SetCaptureSettings(settings)
}

// GetSTTProviders lists the registered transcription providers.
func (s *Service) GetSTTProviders() []types.STTProviderInfo {
	if s.registry == nil {
		return nil
	}
	providers := s.registry.List()
	result := make([]types.STTProviderInfo, len(providers))
	for i, p := range providers {
		result[i] = types.STTProviderInfo{
			Name:        p.Name(),
			DisplayName: p.DisplayName(),
			IsLocal:     p.IsLocal(),
			IsReady:     p.IsReady(),
		}
	}
	return result
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

// micDevice adapts the microphone to the controller's device contract.
// Available opens the monitor stream, which doubles as the probe for a
// working capture device.
type micDevice struct {
	mic *capture.Microphone
}

func (d micDevice) Available() error {
	return d.mic.StartMonitor()
}

func (d micDevice) Start() error {
	return d.mic.Start()
}

func (d micDevice) Stop() (capture.Clip, error) {
	return d.mic.Stop()
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
