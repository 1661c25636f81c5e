package hotkeys

import (
	"sync/atomic"

	"github.com/1broseidon/wincycle/internal/command"
)

// KeyEvent is one physical key transition.
type KeyEvent struct {
	Scancode uint32
	Down     bool
}

// Poster accepts commands without blocking.
type Poster interface {
	Post(cmd command.Command) bool
}

type bindingState struct {
	binding Binding
	held    bool
	stepped bool
	enabled atomic.Bool
}

// Interpreter turns raw key transitions into gesture commands.
//
// Single writer: HandleKey is only ever called from the keyboard hook
// goroutine, which owns held, stepped and reverseHeld. The enabled flags
// are the only state written from elsewhere (the control loop) and are
// atomics. HandleKey performs no I/O and never blocks.
type Interpreter struct {
	states      []*bindingState
	reverseHeld bool
	out         Poster
}

// NewInterpreter creates an interpreter for bindings, all enabled.
func NewInterpreter(out Poster, bindings ...Binding) *Interpreter {
	in := &Interpreter{out: out}
	for _, b := range bindings {
		st := &bindingState{binding: b}
		st.enabled.Store(true)
		in.states = append(in.states, st)
	}
	return in
}

// Bindings returns the configured bindings.
func (in *Interpreter) Bindings() []Binding {
	out := make([]Binding, len(in.states))
	for i, st := range in.states {
		out[i] = st.binding
	}
	return out
}

// SetEnabled toggles whether a binding's accelerator is honored. A disabled
// accelerator propagates to the focused application.
func (in *Interpreter) SetEnabled(id command.BindingID, enabled bool) bool {
	for _, st := range in.states {
		if st.binding.ID == id {
			st.enabled.Store(enabled)
			return true
		}
	}
	return false
}

// Enabled reports whether a binding is currently honored.
func (in *Interpreter) Enabled(id command.BindingID) bool {
	for _, st := range in.states {
		if st.binding.ID == id {
			return st.enabled.Load()
		}
	}
	return false
}

// Held reports whether a binding's modifier is currently down.
// Hook goroutine only.
func (in *Interpreter) Held(id command.BindingID) bool {
	for _, st := range in.states {
		if st.binding.ID == id {
			return st.held
		}
	}
	return false
}

// AnyHeld reports whether any binding's modifier is down. Hook goroutine only.
func (in *Interpreter) AnyHeld() bool {
	for _, st := range in.states {
		if st.held {
			return true
		}
	}
	return false
}

// HandleKey updates modifier state and reports whether the event must be
// swallowed instead of reaching the focused application.
func (in *Interpreter) HandleKey(ev KeyEvent) bool {
	if isReverseKey(ev.Scancode) {
		in.reverseHeld = ev.Down
		return false
	}

	modifier := false
	for _, st := range in.states {
		if !st.binding.IsModifier(ev.Scancode) {
			continue
		}
		modifier = true
		if ev.Down {
			st.held = true
			continue
		}
		st.held = false
		if st.stepped {
			st.stepped = false
			in.out.Post(command.GestureFinished{BindingID: st.binding.ID})
		}
	}
	if modifier || !ev.Down {
		return false
	}

	for _, st := range in.states {
		if !st.held {
			continue
		}
		if ev.Scancode == st.binding.Accelerator && st.enabled.Load() {
			st.stepped = true
			in.out.Post(command.GestureStep{BindingID: st.binding.ID, Reverse: in.reverseHeld})
			return true
		}
	}

	if ev.Scancode == ScanEscape {
		for _, st := range in.states {
			if st.binding.Picker && st.held && st.stepped {
				st.stepped = false
				in.out.Post(command.GestureCancel{BindingID: st.binding.ID})
				return true
			}
		}
	}
	return false
}

func isReverseKey(scancode uint32) bool {
	for _, sc := range ReverseScancodes {
		if sc == scancode {
			return true
		}
	}
	return false
}
