package daemon

import (
	"log/slog"

	"github.com/1broseidon/wincycle/internal/cycle"
)

// Presenter renders the app picker. ShowApps is called on every app step,
// HideApps when the gesture finishes or is cancelled.
type Presenter interface {
	ShowApps(p cycle.Preview)
	HideApps()
}

// LogPresenter writes the picker state to a logger.
type LogPresenter struct {
	Logger *slog.Logger
}

func (p LogPresenter) ShowApps(preview cycle.Preview) {
	selected, _ := preview.Selected()
	p.logger().Info("app picker",
		"apps", len(preview.Entries),
		"index", preview.Index,
		"selected", selected.Key,
		"title", selected.Title)
}

func (p LogPresenter) HideApps() {
	p.logger().Debug("app picker hidden")
}

func (p LogPresenter) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}
