package foreground

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/1broseidon/wincycle/internal/command"
)

type fakeRegistrar struct {
	enables    int
	disables   int
	enableErr  error
	disableErr error
}

func (r *fakeRegistrar) Enable(command.BindingID) error {
	r.enables++
	return r.enableErr
}

func (r *fakeRegistrar) Disable(command.BindingID) error {
	r.disables++
	return r.disableErr
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGuard_TogglesExactlyOncePerTransition(t *testing.T) {
	reg := &fakeRegistrar{}
	g := NewGuard(reg, command.SwitchWindows, []string{"Code.exe"}, quietLogger())

	g.Observe("explorer.exe")
	g.Observe("code.exe")
	g.Observe("code.exe")
	g.Observe("CODE.EXE")
	if reg.disables != 1 || reg.enables != 0 {
		t.Fatalf("after entering blacklisted app: disables=%d enables=%d, want 1 and 0", reg.disables, reg.enables)
	}
	if g.Active() {
		t.Errorf("Active() = true inside blacklisted app")
	}

	g.Observe("notepad.exe")
	g.Observe("notepad.exe")
	g.Observe("calc.exe")
	if reg.disables != 1 || reg.enables != 1 {
		t.Errorf("after leaving: disables=%d enables=%d, want 1 and 1", reg.disables, reg.enables)
	}
	if !g.Active() {
		t.Errorf("Active() = false outside blacklisted app")
	}
}

func TestGuard_NoCallsWithoutBlacklistedFocus(t *testing.T) {
	reg := &fakeRegistrar{}
	g := NewGuard(reg, command.SwitchWindows, nil, quietLogger())

	for _, exe := range []string{"a.exe", "b.exe", "a.exe"} {
		g.Observe(exe)
	}
	if reg.disables != 0 || reg.enables != 0 {
		t.Errorf("disables=%d enables=%d, want no calls", reg.disables, reg.enables)
	}
}

func TestGuard_FailedDisableKeepsActive(t *testing.T) {
	reg := &fakeRegistrar{disableErr: errors.New("denied")}
	g := NewGuard(reg, command.SwitchWindows, []string{"game.exe"}, quietLogger())

	g.Observe("game.exe")
	if !g.Active() {
		t.Errorf("Active() = false after failed disable")
	}

	// A later focus change retries.
	reg.disableErr = nil
	g.Observe("other.exe")
	g.Observe("game.exe")
	if g.Active() || reg.disables != 2 {
		t.Errorf("Active()=%v disables=%d, want false and 2", g.Active(), reg.disables)
	}
}

func TestGuard_FailedToggleRetriesOnSameExecutable(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(r *fakeRegistrar, g *Guard)
		focus  string
		active bool
	}{
		{
			name:   "disable",
			setup:  func(r *fakeRegistrar, g *Guard) { r.disableErr = errors.New("denied") },
			focus:  "game.exe",
			active: false,
		},
		{
			name: "enable",
			setup: func(r *fakeRegistrar, g *Guard) {
				g.Observe("game.exe")
				r.enableErr = errors.New("denied")
			},
			focus:  "notepad.exe",
			active: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &fakeRegistrar{}
			g := NewGuard(reg, command.SwitchWindows, []string{"game.exe"}, quietLogger())
			tt.setup(reg, g)

			g.Observe(tt.focus)
			if !g.Pending() || g.Active() == tt.active {
				t.Fatalf("after failure: Pending()=%v Active()=%v", g.Pending(), g.Active())
			}

			reg.disableErr, reg.enableErr = nil, nil
			before := reg.enables + reg.disables
			g.Observe(tt.focus)
			if g.Pending() || g.Active() != tt.active {
				t.Errorf("after retry: Pending()=%v Active()=%v, want false and %v", g.Pending(), g.Active(), tt.active)
			}
			if calls := reg.enables + reg.disables - before; calls != 1 {
				t.Errorf("retry made %d calls, want 1", calls)
			}

			g.Observe(tt.focus)
			if calls := reg.enables + reg.disables - before; calls != 1 {
				t.Errorf("settled observation made %d calls in total, want 1", calls)
			}
		})
	}
}

func TestGuard_UpdateBlacklistReevaluates(t *testing.T) {
	reg := &fakeRegistrar{}
	g := NewGuard(reg, command.SwitchWindows, nil, quietLogger())

	g.Observe("vim.exe")
	g.UpdateBlacklist([]string{" VIM.exe "})
	if g.Active() || reg.disables != 1 {
		t.Fatalf("Active()=%v disables=%d after blacklisting focused app", g.Active(), reg.disables)
	}

	g.UpdateBlacklist(nil)
	if !g.Active() || reg.enables != 1 {
		t.Errorf("Active()=%v enables=%d after clearing blacklist", g.Active(), reg.enables)
	}
}
