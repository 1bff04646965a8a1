//go:build !darwin

package capture

// newDeviceImpl returns ErrNoDevice on platforms without a capture backend.
func newDeviceImpl() (deviceImpl, error) {
	return nil, ErrNoDevice
}
