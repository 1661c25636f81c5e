//go:build !linux && !windows

package platform

// Open reports that no window system binding exists for this platform.
func Open() (Session, error) {
	return nil, ErrUnsupported
}
