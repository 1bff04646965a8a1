// Package hotkey registers global keyboard shortcuts via a low-level
// event hook so they work while the app window is unfocused.
package hotkey

import (
	"fmt"
	"log/slog"
	"sync"

	hook "github.com/robotn/gohook"
)

// Manager owns the global event hook. On macOS the hook only receives
// events when the app has the Accessibility permission.
type Manager struct {
	onTogglePause  func()
	onToggleWindow func()

	mu      sync.Mutex
	running bool
	events  chan hook.Event
}

// NewManager creates a manager with the given shortcut callbacks. Callbacks
// run on the hook goroutine; anything slow should be dispatched elsewhere.
func NewManager(onTogglePause, onToggleWindow func()) *Manager {
	return &Manager{
		onTogglePause:  onTogglePause,
		onToggleWindow: onToggleWindow,
	}
}

// Start registers the shortcuts and begins processing events.
//
//	ctrl+shift+space  toggle capture pause
//	ctrl+shift+e      toggle window visibility
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("hotkey manager already running")
	}

	hook.Register(hook.KeyDown, []string{"ctrl", "shift", "space"}, func(e hook.Event) {
		slog.Debug("pause hotkey pressed")
		if m.onTogglePause != nil {
			go m.onTogglePause()
		}
	})

	hook.Register(hook.KeyDown, []string{"ctrl", "shift", "e"}, func(e hook.Event) {
		slog.Debug("window hotkey pressed")
		if m.onToggleWindow != nil {
			go m.onToggleWindow()
		}
	})

	m.events = hook.Start()
	m.running = true

	go func() {
		<-hook.Process(m.events)
	}()

	slog.Info("global hotkeys registered")
	return nil
}

// Stop unregisters the hook.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	m.running = false
	hook.End()
}
