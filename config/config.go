// Package config handles application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/uuid"

	"github.com/earshot-app/earshot/internal/types"
)

const (
	appName        = "earshot"
	configFileName = "config.json"
)

// Config represents the application configuration.
type Config struct {
	Credentials  []types.APICredential `json:"credentials,omitempty"`
	SpeechConfig *types.SpeechConfig   `json:"speech_config,omitempty"`
	Capture      types.CaptureSettings `json:"capture"`
}

// DefaultCaptureSettings returns the out-of-the-box capture tuning.
func DefaultCaptureSettings() types.CaptureSettings {
	return types.CaptureSettings{
		MinRecordingDuration:  1.0,
		DelayBeforeNextRecord: 0.5,
		VADThreshold:          0.015,
		VADHangoverMs:         200,
	}
}

// captureFile mirrors CaptureSettings with optional fields so a key that is
// absent from the file can be told apart from an explicit zero. Zero delay
// and zero duration floor are valid settings; only missing keys get defaults.
type captureFile struct {
	MinRecordingDuration  *float64 `json:"min_recording_duration"`
	DelayBeforeNextRecord *float64 `json:"delay_before_next_record"`
	VADThreshold          *float32 `json:"vad_threshold"`
	VADHangoverMs         *int     `json:"vad_hangover_ms"`
}

// fileConfig is the on-disk shape of Config.
type fileConfig struct {
	Credentials  []types.APICredential `json:"credentials,omitempty"`
	SpeechConfig *types.SpeechConfig   `json:"speech_config,omitempty"`
	Capture      captureFile           `json:"capture"`
}

// resolve converts the on-disk capture block to settings, filling defaults
// for keys the file does not carry.
func (f captureFile) resolve() types.CaptureSettings {
	s := DefaultCaptureSettings()
	if f.MinRecordingDuration != nil {
		s.MinRecordingDuration = *f.MinRecordingDuration
	}
	if f.DelayBeforeNextRecord != nil {
		s.DelayBeforeNextRecord = *f.DelayBeforeNextRecord
	}
	if f.VADThreshold != nil {
		s.VADThreshold = *f.VADThreshold
	}
	if f.VADHangoverMs != nil {
		s.VADHangoverMs = *f.VADHangoverMs
	}
	return s
}

// Load loads configuration from the config file.
// Returns default config if file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var file fileConfig
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &Config{
		Credentials:  file.Credentials,
		SpeechConfig: file.SpeechConfig,
		Capture:      file.Capture.resolve(),
	}, nil
}

// Save persists the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return fmt.Errorf("get config path: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// SetCaptureSettings validates and stores capture tuning. Values are stored
// verbatim: zero disables the duration floor or the re-arm delay rather than
// falling back to a default.
func (c *Config) SetCaptureSettings(s types.CaptureSettings) error {
	if s.MinRecordingDuration < 0 {
		return fmt.Errorf("min recording duration must not be negative")
	}
	if s.DelayBeforeNextRecord < 0 {
		return fmt.Errorf("delay before next record must not be negative")
	}
	if s.VADThreshold < 0 || s.VADThreshold > 1 {
		return fmt.Errorf("vad threshold must be in [0, 1]")
	}
	if s.VADHangoverMs < 0 {
		return fmt.Errorf("vad hangover must not be negative")
	}

	c.Capture = s
	return c.Save()
}

func configPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}

func defaultConfig() *Config {
	return &Config{
		Credentials: []types.APICredential{},
		Capture:     DefaultCaptureSettings(),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// API Credential Management
// ─────────────────────────────────────────────────────────────────────────────

// GetCredentials returns all API credentials.
func (c *Config) GetCredentials() []types.APICredential {
	return c.Credentials
}

// GetCredential returns a credential by ID.
func (c *Config) GetCredential(id string) *types.APICredential {
	for i := range c.Credentials {
		if c.Credentials[i].ID == id {
			return &c.Credentials[i]
		}
	}
	return nil
}

// AddCredential adds a new API credential.
func (c *Config) AddCredential(cred types.APICredential) error {
	if cred.Name == "" {
		return fmt.Errorf("credential name required")
	}
	if cred.APIKey == "" {
		return fmt.Errorf("api key required")
	}
	if cred.Type == "openai-compatible" && cred.BaseURL == "" {
		return fmt.Errorf("base url required for openai-compatible")
	}

	if cred.ID == "" {
		cred.ID = uuid.New().String()
	}

	c.Credentials = append(c.Credentials, cred)
	return c.Save()
}

// UpdateCredential updates an existing credential.
func (c *Config) UpdateCredential(id string, cred types.APICredential) error {
	idx := slices.IndexFunc(c.Credentials, func(x types.APICredential) bool {
		return x.ID == id
	})
	if idx == -1 {
		return fmt.Errorf("credential not found: %s", id)
	}

	cred.ID = id // Preserve ID
	c.Credentials[idx] = cred
	return c.Save()
}

// RemoveCredential removes a credential by ID.
// Returns error if the credential is in use by the speech config.
func (c *Config) RemoveCredential(id string) error {
	if c.SpeechConfig != nil && c.SpeechConfig.CredentialID == id {
		return fmt.Errorf("credential in use by speech config")
	}

	idx := slices.IndexFunc(c.Credentials, func(x types.APICredential) bool {
		return x.ID == id
	})
	if idx == -1 {
		return fmt.Errorf("credential not found: %s", id)
	}

	c.Credentials = slices.Delete(c.Credentials, idx, idx+1)
	return c.Save()
}

// ─────────────────────────────────────────────────────────────────────────────
// Speech Configuration
// ─────────────────────────────────────────────────────────────────────────────

// GetSpeechConfig returns the speech configuration.
func (c *Config) GetSpeechConfig() *types.SpeechConfig {
	return c.SpeechConfig
}

// SetSpeechConfig validates and stores the speech configuration.
func (c *Config) SetSpeechConfig(cfg types.SpeechConfig) error {
	switch cfg.Provider {
	case "", "whisper-api", "whisper-local":
	default:
		return fmt.Errorf("unknown speech provider: %s", cfg.Provider)
	}

	if cfg.Enabled && cfg.Provider == "whisper-api" {
		if cfg.CredentialID == "" {
			return fmt.Errorf("credential required for whisper-api")
		}
		cred := c.GetCredential(cfg.CredentialID)
		if cred == nil {
			return fmt.Errorf("credential not found: %s", cfg.CredentialID)
		}
		if cred.Type != "openai" && cred.Type != "openai-compatible" {
			return fmt.Errorf("speech config requires OpenAI-compatible credential")
		}
	}

	if cfg.Model == "" {
		cfg.Model = "whisper-1"
	}

	c.SpeechConfig = &cfg
	return c.Save()
}
