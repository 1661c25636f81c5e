package cycle

import (
	"testing"

	"github.com/1broseidon/wincycle/internal/discovery"
)

func threeApps(t *testing.T) *desktop {
	t.Helper()
	d := newDesktop(t)
	d.backend.AddWindow(winA, 1, "a.txt - Notepad")
	d.backend.AddWindow(winX, 2, "Calculator")
	d.backend.AddWindow(winB, 1, "b.txt - Notepad")
	d.backend.AddWindow(winD, 3, "Documents")
	return d
}

func TestAppCycler_StepsThroughApps(t *testing.T) {
	d := threeApps(t)
	c := NewAppCycler()

	p, ok := c.Step(false, d.snapshot())
	if !ok {
		t.Fatalf("Step() reported nothing to pick")
	}
	if len(p.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(p.Entries))
	}
	if p.Entries[0].Window != winA || p.Entries[1].Window != winX || p.Entries[2].Window != winD {
		t.Errorf("entry windows = %x %x %x", p.Entries[0].Window, p.Entries[1].Window, p.Entries[2].Window)
	}
	if p.Index != 1 {
		t.Errorf("first step index = %d, want 1", p.Index)
	}

	p, _ = c.Step(false, d.snapshot())
	if p.Index != 2 {
		t.Errorf("second step index = %d, want 2", p.Index)
	}
	p, _ = c.Step(false, d.snapshot())
	if p.Index != 0 {
		t.Errorf("third step index = %d, want wrap to 0", p.Index)
	}
	p, _ = c.Step(true, d.snapshot())
	if p.Index != 2 {
		t.Errorf("reverse step index = %d, want wrap to 2", p.Index)
	}

	selected, ok := c.Finish()
	if !ok || selected.Key != discovery.NormalizeKey(explorerPath) {
		t.Errorf("Finish() = %+v, %v; want explorer", selected, ok)
	}
	if c.Active() {
		t.Errorf("Active() after Finish = true")
	}
}

func TestAppCycler_ListFixedDuringGesture(t *testing.T) {
	d := threeApps(t)
	c := NewAppCycler()

	c.Step(false, d.snapshot())
	d.backend.Remove(winX)
	p, _ := c.Step(false, d.snapshot())
	if len(p.Entries) != 3 || p.Index != 2 {
		t.Errorf("preview = %d entries at %d, want 3 entries at 2", len(p.Entries), p.Index)
	}
}

func TestAppCycler_CancelDiscardsSelection(t *testing.T) {
	d := threeApps(t)
	c := NewAppCycler()

	c.Step(false, d.snapshot())
	c.Step(false, d.snapshot())
	c.Cancel()

	if c.Active() {
		t.Fatalf("Active() after Cancel = true")
	}
	if p := c.Preview(); len(p.Entries) != 0 {
		t.Errorf("Preview() after Cancel has %d entries", len(p.Entries))
	}
	if _, ok := c.Finish(); ok {
		t.Errorf("Finish() after Cancel returned a selection")
	}
}

func TestAppCycler_SingleApp(t *testing.T) {
	d := newDesktop(t)
	d.backend.AddWindow(winA, 1, "a.txt")
	d.backend.AddWindow(winB, 1, "b.txt")

	c := NewAppCycler()
	p, ok := c.Step(false, d.snapshot())
	if !ok || p.Index != 0 {
		t.Fatalf("Step() = %+v, %v; want index 0", p, ok)
	}
	if p, _ = c.Step(false, d.snapshot()); p.Index != 0 {
		t.Errorf("second step index = %d, want 0", p.Index)
	}
}

func TestAppCycler_NoWindows(t *testing.T) {
	d := newDesktop(t)
	c := NewAppCycler()
	if _, ok := c.Step(false, d.snapshot()); ok {
		t.Errorf("Step() on empty desktop reported a pick")
	}
	if c.Active() {
		t.Errorf("Active() = true with nothing to pick")
	}
}
