//go:build darwin

package capture

/*
#cgo CFLAGS: -x objective-c -fobjc-arc -mmacosx-version-min=13.0
#cgo LDFLAGS: -framework AVFoundation -framework CoreAudio -framework Foundation

#include <stdlib.h>

extern int startMicCapture(int targetSampleRate, char** errOut);
extern void stopMicCapture(void);
*/
import "C"

import (
	"errors"
	"sync"
	"unsafe"
)

// Global handler for the CGO callback. Only one device stream at a time.
var (
	globalHandler   func(samples []float32)
	globalHandlerMu sync.RWMutex
)

//export goMicCallback
func goMicCallback(samples *C.float, count C.int) {
	n := int(count)
	if n <= 0 {
		return
	}

	globalHandlerMu.RLock()
	h := globalHandler
	globalHandlerMu.RUnlock()

	if h == nil {
		return
	}

	// Convert the C array to a Go slice without copying. Safe because the
	// handler finishes with the samples before this function returns.
	goSamples := unsafe.Slice((*float32)(unsafe.Pointer(samples)), n)
	h(goSamples)
}

// avDevice is the macOS implementation using AVAudioEngine.
type avDevice struct {
	mu      sync.Mutex
	running bool
}

func newDeviceImpl() (deviceImpl, error) {
	return &avDevice{}, nil
}

func (d *avDevice) start(sampleRate int, callback func(samples []float32)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return ErrAlreadyCapturing
	}

	globalHandlerMu.Lock()
	globalHandler = callback
	globalHandlerMu.Unlock()

	var errOut *C.char
	if C.startMicCapture(C.int(sampleRate), &errOut) != 0 {
		globalHandlerMu.Lock()
		globalHandler = nil
		globalHandlerMu.Unlock()

		if errOut != nil {
			msg := C.GoString(errOut)
			C.free(unsafe.Pointer(errOut))
			return errors.New(msg)
		}
		return ErrNoDevice
	}

	d.running = true
	return nil
}

func (d *avDevice) stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return nil
	}
	C.stopMicCapture()

	globalHandlerMu.Lock()
	globalHandler = nil
	globalHandlerMu.Unlock()

	d.running = false
	return nil
}
