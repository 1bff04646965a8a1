package listen

import "github.com/earshot-app/earshot/internal/types"

// Semantic colors for the status badge.
const (
	colorIdle       = "#6b7280"
	colorListening  = "#16a34a"
	colorRecording  = "#dc2626"
	colorProcessing = "#d97706"
	colorPaused     = "#6b7280"
	colorError      = "#b91c1c"
)

// msgNoDevice is the message surfaced when no capture device exists.
const msgNoDevice = "No capture device found"

// DeviceUnavailableStatus is the status for a missing capture device. Shared
// by the controller and the pipeline bootstrap so the two paths cannot drift.
func DeviceUnavailableStatus() types.ControllerStatus {
	return statusFor(Idle, LifecycleFlags{Focused: true}, msgNoDevice)
}

// statusFor builds the UI-facing status for a state and lifecycle flags.
// A non-empty errText (device failure) overrides everything else.
func statusFor(state State, flags LifecycleFlags, errText string) types.ControllerStatus {
	if errText != "" {
		return types.ControllerStatus{
			State:   state.String(),
			Message: errText,
			Color:   colorError,
			Paused:  flags.Vetoed(),
		}
	}

	if flags.Suspended {
		return types.ControllerStatus{
			State:   state.String(),
			Message: "App paused, listening stopped",
			Color:   colorPaused,
			Paused:  true,
		}
	}
	if !flags.Focused {
		return types.ControllerStatus{
			State:   state.String(),
			Message: "Window unfocused, listening paused",
			Color:   colorPaused,
			Paused:  true,
		}
	}

	status := types.ControllerStatus{State: state.String()}
	switch state {
	case Listening:
		status.Message = "Ready to listen…"
		status.Color = colorListening
	case Recording:
		status.Message = "Recording…"
		status.Color = colorRecording
	case Processing:
		status.Message = "Processing…"
		status.Color = colorProcessing
	default:
		status.Message = "Idle"
		status.Color = colorIdle
	}
	return status
}
