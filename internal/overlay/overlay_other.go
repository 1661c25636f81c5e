//go:build !linux

package overlay

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/wincycle/internal/cycle"
	"github.com/1broseidon/wincycle/internal/platform"
)

// Picker is unavailable on this platform.
type Picker struct{}

// NewPicker reports that no native picker exists here.
func NewPicker(platform.Backend, *slog.Logger) (*Picker, error) {
	return nil, fmt.Errorf("overlay: %w", platform.ErrUnsupported)
}

func (p *Picker) ShowApps(cycle.Preview) {}

func (p *Picker) HideApps() {}

func (p *Picker) Close() {}
