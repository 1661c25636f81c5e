package discovery

import "github.com/1broseidon/wincycle/internal/platform"

// Reason explains why a window is not switchable.
type Reason string

const (
	Switchable   Reason = ""
	Hidden       Reason = "hidden"
	Cloaked      Reason = "cloaked"
	OwnedPopup   Reason = "owned-popup"
	TooSmall     Reason = "too-small"
	Topmost      Reason = "topmost"
	ToolWindow   Reason = "tool-window"
	ShellWindow  Reason = "shell"
	Untitled     Reason = "untitled"
	Minimized    Reason = "minimized"
	OtherDesktop Reason = "other-desktop"
)

const programManagerTitle = "Program Manager"

// Classify applies the exclusion predicates in order and returns the first
// one that matches.
func Classify(w platform.Window, opts Options) Reason {
	switch {
	case !w.Visible:
		return Hidden
	case w.Cloaked:
		return Cloaked
	case isOwnedPopup(w):
		return OwnedPopup
	case tooSmall(w.Bounds, opts):
		return TooSmall
	case w.Topmost:
		return Topmost
	case w.ToolWindow:
		return ToolWindow
	case w.Shell || w.Title == programManagerTitle:
		return ShellWindow
	case w.Title == "":
		return Untitled
	case opts.IgnoreMinimized && w.Minimized:
		return Minimized
	case opts.OnlyCurrentDesktop && !w.OnCurrentDesktop:
		return OtherDesktop
	}
	return Switchable
}

// isOwnedPopup reports a transient window whose visible owner is its own
// last active popup; the owner is the real top of the chain.
func isOwnedPopup(w platform.Window) bool {
	return w.Owner != 0 && w.OwnerVisible && w.OwnerActivePopup == w.Owner
}

func tooSmall(r platform.Rect, opts Options) bool {
	return r.Area() == 0 || r.Width < opts.MinWidth || r.Height < opts.MinHeight
}
