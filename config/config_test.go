package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/earshot-app/earshot/internal/types"
)

// Config mutators call Save, which writes to the user config dir. Point it
// at a temp dir for the duration of each test.
func isolateConfigDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("AppData", dir)
	t.Setenv("HOME", dir)
}

func TestCaptureDefaults(t *testing.T) {
	cfg := defaultConfig()
	if cfg.Capture.MinRecordingDuration != 1.0 {
		t.Errorf("MinRecordingDuration = %v, want 1.0", cfg.Capture.MinRecordingDuration)
	}
	if cfg.Capture.DelayBeforeNextRecord != 0.5 {
		t.Errorf("DelayBeforeNextRecord = %v, want 0.5", cfg.Capture.DelayBeforeNextRecord)
	}
	if cfg.Capture.VADThreshold != 0.015 {
		t.Errorf("VADThreshold = %v, want 0.015", cfg.Capture.VADThreshold)
	}
}

func writeConfigFile(t *testing.T, content string) {
	t.Helper()
	path, err := configPath()
	if err != nil {
		t.Fatalf("configPath() error = %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestLoadFillsMissingCaptureKeys(t *testing.T) {
	isolateConfigDir(t)
	writeConfigFile(t, `{"capture": {"min_recording_duration": 2.0}}`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Capture.MinRecordingDuration != 2.0 {
		t.Errorf("explicit value overwritten: %v", cfg.Capture.MinRecordingDuration)
	}
	if cfg.Capture.DelayBeforeNextRecord != 0.5 {
		t.Errorf("DelayBeforeNextRecord = %v, want default 0.5", cfg.Capture.DelayBeforeNextRecord)
	}
	if cfg.Capture.VADHangoverMs != 200 {
		t.Errorf("VADHangoverMs = %d, want default 200", cfg.Capture.VADHangoverMs)
	}
}

func TestLoadKeepsExplicitZeroCaptureKeys(t *testing.T) {
	isolateConfigDir(t)
	writeConfigFile(t, `{"capture": {"min_recording_duration": 0, "delay_before_next_record": 0, "vad_threshold": 0.02, "vad_hangover_ms": 100}}`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Capture.MinRecordingDuration != 0 {
		t.Errorf("MinRecordingDuration = %v, want explicit 0", cfg.Capture.MinRecordingDuration)
	}
	if cfg.Capture.DelayBeforeNextRecord != 0 {
		t.Errorf("DelayBeforeNextRecord = %v, want explicit 0", cfg.Capture.DelayBeforeNextRecord)
	}
}

func TestSetCaptureSettingsKeepsExplicitZero(t *testing.T) {
	isolateConfigDir(t)
	cfg := defaultConfig()

	zero := types.CaptureSettings{VADThreshold: 0.02, VADHangoverMs: 100}
	if err := cfg.SetCaptureSettings(zero); err != nil {
		t.Fatalf("SetCaptureSettings() error = %v", err)
	}
	if cfg.Capture.MinRecordingDuration != 0 {
		t.Errorf("MinRecordingDuration = %v, want explicit 0", cfg.Capture.MinRecordingDuration)
	}
	if cfg.Capture.DelayBeforeNextRecord != 0 {
		t.Errorf("DelayBeforeNextRecord = %v, want explicit 0", cfg.Capture.DelayBeforeNextRecord)
	}

	// Explicit zeros survive a save/load round trip.
	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Capture.MinRecordingDuration != 0 || loaded.Capture.DelayBeforeNextRecord != 0 {
		t.Errorf("reloaded capture = %+v, want zeros preserved", loaded.Capture)
	}
}

func TestSetCaptureSettingsValidation(t *testing.T) {
	isolateConfigDir(t)
	cfg := defaultConfig()

	tests := []struct {
		name    string
		s       types.CaptureSettings
		wantErr bool
	}{
		{"Valid", types.CaptureSettings{MinRecordingDuration: 1, DelayBeforeNextRecord: 0.5, VADThreshold: 0.02, VADHangoverMs: 100}, false},
		{"NegativeMinDuration", types.CaptureSettings{MinRecordingDuration: -1}, true},
		{"NegativeDelay", types.CaptureSettings{DelayBeforeNextRecord: -0.1}, true},
		{"ThresholdOutOfRange", types.CaptureSettings{VADThreshold: 1.5}, true},
		{"NegativeHangover", types.CaptureSettings{VADHangoverMs: -10}, true},
		{"ExplicitZeros", types.CaptureSettings{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cfg.SetCaptureSettings(tt.s)
			if (err != nil) != tt.wantErr {
				t.Errorf("SetCaptureSettings() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCredentialManagement(t *testing.T) {
	isolateConfigDir(t)
	cfg := defaultConfig()

	if err := cfg.AddCredential(types.APICredential{Name: "", APIKey: "k"}); err == nil {
		t.Error("AddCredential accepted empty name")
	}
	if err := cfg.AddCredential(types.APICredential{Name: "n", Type: "openai-compatible", APIKey: "k"}); err == nil {
		t.Error("AddCredential accepted openai-compatible without base url")
	}

	cred := types.APICredential{Name: "OpenAI", Type: "openai", APIKey: "sk-test"}
	if err := cfg.AddCredential(cred); err != nil {
		t.Fatalf("AddCredential() error = %v", err)
	}
	if len(cfg.Credentials) != 1 {
		t.Fatalf("got %d credentials, want 1", len(cfg.Credentials))
	}
	id := cfg.Credentials[0].ID
	if id == "" {
		t.Fatal("credential was not assigned an ID")
	}

	// Credential in use by speech config cannot be removed.
	if err := cfg.SetSpeechConfig(types.SpeechConfig{Enabled: true, Provider: "whisper-api", CredentialID: id}); err != nil {
		t.Fatalf("SetSpeechConfig() error = %v", err)
	}
	if err := cfg.RemoveCredential(id); err == nil {
		t.Error("RemoveCredential allowed removing in-use credential")
	}

	if err := cfg.SetSpeechConfig(types.SpeechConfig{Enabled: false, Provider: "whisper-local"}); err != nil {
		t.Fatalf("SetSpeechConfig() error = %v", err)
	}
	cfg.SpeechConfig.CredentialID = ""
	if err := cfg.RemoveCredential(id); err != nil {
		t.Errorf("RemoveCredential() error = %v", err)
	}
}

func TestSetSpeechConfigValidation(t *testing.T) {
	isolateConfigDir(t)
	cfg := defaultConfig()

	if err := cfg.SetSpeechConfig(types.SpeechConfig{Provider: "bogus"}); err == nil {
		t.Error("SetSpeechConfig accepted unknown provider")
	}
	if err := cfg.SetSpeechConfig(types.SpeechConfig{Enabled: true, Provider: "whisper-api"}); err == nil {
		t.Error("SetSpeechConfig accepted whisper-api without credential")
	}

	if err := cfg.SetSpeechConfig(types.SpeechConfig{Enabled: true, Provider: "whisper-local"}); err != nil {
		t.Fatalf("SetSpeechConfig() error = %v", err)
	}
	if cfg.SpeechConfig.Model != "whisper-1" {
		t.Errorf("Model = %q, want default whisper-1", cfg.SpeechConfig.Model)
	}
}
