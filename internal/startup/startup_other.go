//go:build !linux && !windows

package startup

// Enable is not supported on this platform.
func Enable(string) error { return ErrUnsupported }

// Disable is not supported on this platform.
func Disable() error { return ErrUnsupported }

// Status is not supported on this platform.
func Status() (State, error) { return State{}, ErrUnsupported }
