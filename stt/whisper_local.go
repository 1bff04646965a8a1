package stt

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// WhisperLocal implements Provider using the whisper.cpp CLI. It shells out
// to whisper-cli with a temporary WAV per utterance; no network involved.
type WhisperLocal struct {
	modelPath string
	modelSize string // "tiny", "base", "small", "medium", "large"
	binPath   string

	mu    sync.RWMutex
	ready bool
}

// WhisperLocalConfig holds configuration for WhisperLocal.
type WhisperLocalConfig struct {
	ModelSize string // defaults to "base"
	ModelDir  string // defaults to ~/.earshot/models
	BinPath   string // optional explicit binary path
}

var validModelSizes = map[string]bool{
	"tiny": true, "base": true, "small": true, "medium": true, "large": true,
}

// NewWhisperLocal creates a new WhisperLocal provider. The provider is only
// ready when both the whisper-cli binary and the model file are present;
// install with `brew install whisper-cpp` and download a ggml model.
func NewWhisperLocal(cfg WhisperLocalConfig) (*WhisperLocal, error) {
	if cfg.ModelSize == "" {
		cfg.ModelSize = "base"
	}
	if !validModelSizes[cfg.ModelSize] {
		return nil, fmt.Errorf("invalid model size: %s", cfg.ModelSize)
	}

	if cfg.ModelDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		cfg.ModelDir = filepath.Join(homeDir, ".earshot", "models")
	}

	w := &WhisperLocal{
		modelSize: cfg.ModelSize,
		modelPath: filepath.Join(cfg.ModelDir, fmt.Sprintf("ggml-%s.bin", cfg.ModelSize)),
		binPath:   cfg.BinPath,
	}

	if w.binPath == "" {
		w.binPath = findWhisperBinary()
	}
	if w.binPath != "" {
		if _, err := os.Stat(w.modelPath); err == nil {
			w.ready = true
		}
	}

	return w, nil
}

func (w *WhisperLocal) Name() string { return "whisper-local" }

func (w *WhisperLocal) DisplayName() string {
	return fmt.Sprintf("Whisper Local (%s)", w.modelSize)
}

func (w *WhisperLocal) IsLocal() bool { return true }

func (w *WhisperLocal) IsReady() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.ready
}

// Transcribe writes the utterance to a temp WAV and runs whisper-cli.
func (w *WhisperLocal) Transcribe(ctx context.Context, samples []float32, sampleRate, channels int, language string) (*Result, error) {
	if !w.IsReady() {
		return nil, fmt.Errorf("whisper local not ready: binary or model missing")
	}

	tmp, err := os.CreateTemp("", "earshot-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create temp wav: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(pcmToWAV(samples, sampleRate, channels)); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp wav: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp wav: %w", err)
	}

	args := []string{
		"--model", w.modelPath,
		"--file", tmp.Name(),
		"--no-timestamps",
		"--threads", fmt.Sprintf("%d", runtime.NumCPU()),
	}
	if language != "" && language != "auto" {
		args = append(args, "--language", language)
	}

	out, err := exec.CommandContext(ctx, w.binPath, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("run whisper-cli: %w", err)
	}

	return &Result{Text: strings.TrimSpace(string(out))}, nil
}

func (w *WhisperLocal) Close() error {
	return nil
}

// findWhisperBinary probes PATH and the common Homebrew locations.
func findWhisperBinary() string {
	for _, name := range []string{"whisper-cli", "whisper-cpp"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	for _, p := range []string{
		"/opt/homebrew/bin/whisper-cli",
		"/usr/local/bin/whisper-cli",
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
