package cycle

import (
	"reflect"
	"testing"

	"github.com/1broseidon/wincycle/internal/discovery"
	"github.com/1broseidon/wincycle/internal/platform"
	"github.com/1broseidon/wincycle/internal/platform/platformtest"
)

const (
	notepadPath  = `C:\Windows\System32\notepad.exe`
	calcPath     = `C:\Windows\System32\calc.exe`
	explorerPath = `C:\Windows\explorer.exe`
)

var (
	notepadKey = discovery.NormalizeKey(notepadPath)
	calcKey    = discovery.NormalizeKey(calcPath)
)

const (
	winA platform.WindowID = 0xA
	winB platform.WindowID = 0xB
	winC platform.WindowID = 0xC
	winD platform.WindowID = 0xD
	winE platform.WindowID = 0xE
	winX platform.WindowID = 0x100
)

// desktop wraps a fake backend with the usual notepad and calc processes.
type desktop struct {
	t       *testing.T
	backend *platformtest.Backend
}

func newDesktop(t *testing.T) *desktop {
	t.Helper()
	b := platformtest.New()
	b.AddProcess(1, notepadPath)
	b.AddProcess(2, calcPath)
	b.AddProcess(3, explorerPath)
	return &desktop{t: t, backend: b}
}

func (d *desktop) snapshot() *discovery.Snapshot {
	d.t.Helper()
	snap, err := discovery.New(d.backend).Discover(discovery.DefaultOptions())
	if err != nil {
		d.t.Fatalf("Discover() error = %v", err)
	}
	return snap
}

// press runs one step and activates its target like the dispatcher does.
func (d *desktop) press(c *WindowCycler, reverse bool) platform.WindowID {
	d.t.Helper()
	target, branch := c.Next(reverse, notepadKey, d.snapshot())
	if branch == BranchNone {
		d.t.Fatalf("Next() returned no target")
	}
	if err := d.backend.Activate(target); err != nil {
		d.t.Fatalf("Activate(%x) error = %v", target, err)
	}
	return target
}

func TestNext_SingleWindowNeverActivates(t *testing.T) {
	d := newDesktop(t)
	d.backend.AddWindow(winA, 1, "a.txt")
	d.backend.AddWindow(winX, 2, "Calculator")

	c := NewWindowCycler()
	for _, reverse := range []bool{false, true, false} {
		if target, branch := c.Next(reverse, notepadKey, d.snapshot()); branch != BranchNone || target != 0 {
			t.Fatalf("Next() = %x, %s; want no target", target, branch)
		}
	}
	if c.Cache() != nil {
		t.Errorf("Cache() = %+v, want nil", c.Cache())
	}
}

func TestNext_UnknownGroupLeavesCacheUntouched(t *testing.T) {
	d := newDesktop(t)
	d.backend.AddWindow(winA, 1, "a.txt")
	d.backend.AddWindow(winB, 1, "b.txt")
	d.backend.AddWindow(winC, 1, "c.txt")

	c := NewWindowCycler()
	d.press(c, false)
	before := c.Cache()

	if _, branch := c.Next(false, calcKey, d.snapshot()); branch != BranchNone {
		t.Fatalf("Next(calc) branch = %s, want none", branch)
	}
	if !reflect.DeepEqual(c.Cache(), before) {
		t.Errorf("cache changed: %+v, want %+v", c.Cache(), before)
	}
}

func TestNext_TwoWindowsAlwaysTargetsTheOther(t *testing.T) {
	d := newDesktop(t)
	d.backend.AddWindow(winA, 1, "a.txt")
	d.backend.AddWindow(winB, 1, "b.txt")

	c := NewWindowCycler()
	steps := []struct {
		reverse bool
		release bool
	}{
		{false, false},
		{false, false},
		{true, false},
		{false, true},
		{true, true},
		{false, false},
	}
	for i, step := range steps {
		front := d.backend.Order()[0]
		target := d.press(c, step.reverse)
		if target == front {
			t.Fatalf("step %d: target %x is the frontmost window", i, target)
		}
		if step.release {
			c.Release()
		}
	}
}

func TestNext_HeldGestureWalksFrozenOrder(t *testing.T) {
	d := newDesktop(t)
	d.backend.AddWindow(winA, 1, "a.txt")
	d.backend.AddWindow(winB, 1, "b.txt")
	d.backend.AddWindow(winC, 1, "c.txt")
	d.backend.AddWindow(winX, 2, "Calculator")

	c := NewWindowCycler()
	want := []platform.WindowID{winB, winC, winA}
	for i, w := range want {
		if got := d.press(c, false); got != w {
			t.Fatalf("press %d = %x, want %x", i+1, got, w)
		}
	}

	cache := c.Cache()
	if cache.Key != notepadKey {
		t.Errorf("cache key = %q, want %q", cache.Key, notepadKey)
	}
	if !reflect.DeepEqual(cache.Ordered, []platform.WindowID{winA, winB, winC}) {
		t.Errorf("cache order = %v, want the order at gesture start", cache.Ordered)
	}
}

func TestNext_CycleClosure(t *testing.T) {
	d := newDesktop(t)
	ids := []platform.WindowID{winA, winB, winC, winD, winE}
	for _, id := range ids {
		d.backend.AddWindow(id, 1, "doc")
	}

	c := NewWindowCycler()
	var last platform.WindowID
	for i := 0; i < len(ids); i++ {
		last = d.press(c, false)
	}
	if last != winA {
		t.Errorf("after %d presses target = %x, want starting window %x", len(ids), last, winA)
	}
}

func TestNext_ReverseUndoesForward(t *testing.T) {
	d := newDesktop(t)
	d.backend.AddWindow(winA, 1, "a.txt")
	d.backend.AddWindow(winB, 1, "b.txt")
	d.backend.AddWindow(winC, 1, "c.txt")
	d.backend.AddWindow(winD, 1, "d.txt")

	c := NewWindowCycler()
	first := d.press(c, false)
	d.press(c, false)
	if got := d.press(c, true); got != first {
		t.Errorf("reverse press = %x, want previous target %x", got, first)
	}
	if got := d.press(c, true); got != winA {
		t.Errorf("second reverse press = %x, want %x", got, winA)
	}
	if got := d.press(c, true); got != winD {
		t.Errorf("reverse past the start = %x, want wrap to %x", got, winD)
	}
}

func TestNext_ReleaseAndRefocusResumesAfterAnchor(t *testing.T) {
	d := newDesktop(t)
	d.backend.AddWindow(winA, 1, "a.txt")
	d.backend.AddWindow(winB, 1, "b.txt")
	d.backend.AddWindow(winC, 1, "c.txt")
	d.backend.AddWindow(winX, 2, "Calculator")

	c := NewWindowCycler()
	if got := d.press(c, false); got != winB {
		t.Fatalf("first press = %x, want %x", got, winB)
	}
	c.Release()

	d.backend.Focus(winX)
	d.backend.Focus(winB)

	target, branch := c.Next(false, notepadKey, d.snapshot())
	if target != winC || branch != BranchReconcile {
		t.Errorf("Next() = %x, %s; want %x, reconcile", target, branch, winC)
	}
}

func TestNext_ReconcileTargetsLastVisitedWindow(t *testing.T) {
	d := newDesktop(t)
	d.backend.AddWindow(winA, 1, "a.txt")
	d.backend.AddWindow(winB, 1, "b.txt")
	d.backend.AddWindow(winC, 1, "c.txt")
	d.backend.AddWindow(winD, 1, "d.txt")

	c := NewWindowCycler()
	d.press(c, false)
	if got := d.press(c, false); got != winC {
		t.Fatalf("second press = %x, want %x", got, winC)
	}
	c.Release()

	// The user clicks other windows of the same app; C drops to group[2].
	d.backend.Focus(winA)
	d.backend.Focus(winD)

	target, branch := c.Next(false, notepadKey, d.snapshot())
	if target != winC || branch != BranchReconcile {
		t.Errorf("Next() = %x, %s; want last visited %x", target, branch, winC)
	}
}

func TestNext_ReconcileFallsBackWhenAnchorClosed(t *testing.T) {
	d := newDesktop(t)
	d.backend.AddWindow(winA, 1, "a.txt")
	d.backend.AddWindow(winB, 1, "b.txt")
	d.backend.AddWindow(winC, 1, "c.txt")
	d.backend.AddWindow(winD, 1, "d.txt")

	c := NewWindowCycler()
	if got := d.press(c, false); got != winB {
		t.Fatalf("first press = %x, want %x", got, winB)
	}
	c.Release()
	d.backend.Remove(winB)

	snap := d.snapshot()
	group, _ := snap.Group(notepadKey)
	target, branch := c.Next(false, notepadKey, snap)
	if target != group.Windows[1].ID || branch != BranchDefault {
		t.Errorf("Next() = %x, %s; want group[1] %x", target, branch, group.Windows[1].ID)
	}
}

func TestNext_FailedActivationStillAdvances(t *testing.T) {
	d := newDesktop(t)
	d.backend.AddWindow(winA, 1, "a.txt")
	d.backend.AddWindow(winB, 1, "b.txt")
	d.backend.AddWindow(winC, 1, "c.txt")

	c := NewWindowCycler()
	// Nothing is activated between presses, as when focus is denied.
	snap := d.snapshot()
	first, _ := c.Next(false, notepadKey, snap)
	second, branch := c.Next(false, notepadKey, snap)
	if first != winB || second != winC {
		t.Errorf("targets = %x, %x; want %x, %x", first, second, winB, winC)
	}
	if branch != BranchContinue {
		t.Errorf("second branch = %s, want continue", branch)
	}
}

func TestNext_ContinuationSkipsClosedAndAppendsNew(t *testing.T) {
	d := newDesktop(t)
	d.backend.AddWindow(winA, 1, "a.txt")
	d.backend.AddWindow(winB, 1, "b.txt")
	d.backend.AddWindow(winC, 1, "c.txt")
	d.backend.AddWindow(winD, 1, "d.txt")

	c := NewWindowCycler()
	d.press(c, false)
	d.backend.Remove(winC)
	if got := d.press(c, false); got != winD {
		t.Fatalf("press after close = %x, want %x", got, winD)
	}

	d.backend.AddWindow(winE, 1, "e.txt")
	if got := d.press(c, false); got != winE {
		t.Errorf("press after open = %x, want appended %x", got, winE)
	}
	if got := d.press(c, false); got != winA {
		t.Errorf("wrap = %x, want %x", got, winA)
	}
}

func TestNext_ContinuationWhenLastTargetCloses(t *testing.T) {
	d := newDesktop(t)
	d.backend.AddWindow(winA, 1, "a.txt")
	d.backend.AddWindow(winB, 1, "b.txt")
	d.backend.AddWindow(winC, 1, "c.txt")
	d.backend.AddWindow(winD, 1, "d.txt")

	c := NewWindowCycler()
	d.press(c, false)
	d.backend.Remove(winB)
	if got := d.press(c, false); got != winC {
		t.Errorf("press after target closed = %x, want %x", got, winC)
	}
}

func TestNext_LastEntryClosesMidGesture(t *testing.T) {
	tests := []struct {
		name    string
		reverse bool
		want    platform.WindowID
	}{
		{"forward wraps to start", false, winA},
		{"reverse steps back", true, winC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDesktop(t)
			d.backend.AddWindow(winA, 1, "a.txt")
			d.backend.AddWindow(winB, 1, "b.txt")
			d.backend.AddWindow(winC, 1, "c.txt")
			d.backend.AddWindow(winD, 1, "d.txt")

			c := NewWindowCycler()
			for i := 0; i < 3; i++ {
				d.press(c, false)
			}
			if got := c.Cache().Anchor; got != winD {
				t.Fatalf("anchor = %x, want last entry %x", got, winD)
			}

			d.backend.Remove(winD)
			if got := d.press(c, tt.reverse); got != tt.want {
				t.Errorf("press after last entry closed = %x, want %x", got, tt.want)
			}
		})
	}
}

func TestNext_NewGestureFollowsCurrentOrder(t *testing.T) {
	d := newDesktop(t)
	d.backend.AddWindow(winA, 1, "a.txt")
	d.backend.AddWindow(winB, 1, "b.txt")
	d.backend.AddWindow(winC, 1, "c.txt")
	d.backend.AddWindow(winD, 1, "d.txt")

	c := NewWindowCycler()
	if got := d.press(c, false); got != winB {
		t.Fatalf("first press = %x, want %x", got, winB)
	}
	c.Release()

	// Z-order becomes [A C D B].
	d.backend.Focus(winD)
	d.backend.Focus(winC)
	d.backend.Focus(winA)

	if got := d.press(c, false); got != winB {
		t.Fatalf("resume press = %x, want %x", got, winB)
	}
	want := []platform.WindowID{winA, winC, winD, winB}
	if got := c.Cache().Ordered; !reflect.DeepEqual(got, want) {
		t.Errorf("cache order = %v, want the order at gesture start %v", got, want)
	}
	if got := d.press(c, false); got != winA {
		t.Errorf("held press = %x, want %x", got, winA)
	}
}

func TestNext_OtherAppStartsFresh(t *testing.T) {
	d := newDesktop(t)
	d.backend.AddWindow(winA, 1, "a.txt")
	d.backend.AddWindow(winB, 1, "b.txt")
	d.backend.AddWindow(winC, 1, "c.txt")
	d.backend.AddWindow(winX, 2, "calc 1")
	d.backend.AddWindow(winX+1, 2, "calc 2")
	d.backend.AddWindow(winX+2, 2, "calc 3")

	c := NewWindowCycler()
	d.press(c, false)
	c.Release()

	d.backend.Focus(winX)
	target, branch := c.Next(false, calcKey, d.snapshot())
	if target != winX+1 || branch != BranchDefault {
		t.Errorf("Next(calc) = %x, %s; want %x, default", target, branch, winX+1)
	}
}

func TestNext_FreshReverseTargetsSecond(t *testing.T) {
	d := newDesktop(t)
	d.backend.AddWindow(winA, 1, "a.txt")
	d.backend.AddWindow(winB, 1, "b.txt")
	d.backend.AddWindow(winC, 1, "c.txt")

	c := NewWindowCycler()
	if got := d.press(c, true); got != winB {
		t.Errorf("fresh reverse press = %x, want %x", got, winB)
	}
}

func TestReconcileOrder(t *testing.T) {
	tests := []struct {
		name    string
		frozen  []platform.WindowID
		current []platform.WindowID
		want    []platform.WindowID
	}{
		{"unchanged set", []platform.WindowID{1, 2, 3}, []platform.WindowID{3, 1, 2}, []platform.WindowID{1, 2, 3}},
		{"closed removed", []platform.WindowID{1, 2, 3}, []platform.WindowID{3, 1}, []platform.WindowID{1, 3}},
		{"new appended", []platform.WindowID{1, 2}, []platform.WindowID{4, 2, 1, 5}, []platform.WindowID{1, 2, 4, 5}},
		{"empty frozen", nil, []platform.WindowID{2, 1}, []platform.WindowID{2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reconcileOrder(tt.frozen, tt.current); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("reconcileOrder() = %v, want %v", got, tt.want)
			}
		})
	}
}
