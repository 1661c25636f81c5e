// Package command defines the messages posted to the switcher's control
// loop from the keyboard hook, the foreground watcher and the IPC server.
package command

import "github.com/1broseidon/wincycle/internal/discovery"

// BindingID identifies a configured hotkey gesture.
type BindingID int

const (
	SwitchWindows BindingID = 1
	SwitchApps    BindingID = 2
)

func (id BindingID) String() string {
	switch id {
	case SwitchWindows:
		return "switch-windows"
	case SwitchApps:
		return "switch-apps"
	default:
		return "binding-unknown"
	}
}

// Command is a closed set of control-loop messages. Only types in this
// package implement it.
type Command interface {
	command()
}

// GestureStep is one accelerator press while the binding's modifier is held.
type GestureStep struct {
	BindingID BindingID
	Reverse   bool
}

// GestureFinished is posted when the modifier of a binding that stepped is released.
type GestureFinished struct {
	BindingID BindingID
}

// GesturePress is a step immediately followed by its release, posted as
// one command so the pair cannot be split by a full queue.
type GesturePress struct {
	BindingID BindingID
	Reverse   bool
}

// GestureCancel abandons an in-progress picker without activating anything.
type GestureCancel struct {
	BindingID BindingID
}

// FocusChanged reports a new foreground executable name.
type FocusChanged struct {
	Executable string
}

// Reload asks the control loop to re-read its configuration. Reply, when
// set, receives the result and must be buffered.
type Reload struct {
	Reply chan<- error
}

// ListWindows asks the control loop for a fresh discovery snapshot. Reply
// must be buffered.
type ListWindows struct {
	GroupByApp bool
	Reply      chan<- WindowsReply
}

// WindowsReply answers ListWindows.
type WindowsReply struct {
	Snapshot *discovery.Snapshot
	Err      error
}

func (GestureStep) command()     {}
func (GestureFinished) command() {}
func (GesturePress) command()    {}
func (GestureCancel) command()   {}
func (FocusChanged) command()    {}
func (Reload) command()          {}
func (ListWindows) command()     {}
