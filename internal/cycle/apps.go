package cycle

import (
	"github.com/1broseidon/wincycle/internal/discovery"
	"github.com/1broseidon/wincycle/internal/platform"
)

// AppEntry is one executable in the app picker.
type AppEntry struct {
	Key    string
	Window platform.WindowID
	Title  string
}

// Preview is what the picker overlay renders.
type Preview struct {
	Entries []AppEntry
	Index   int
}

// Selected returns the highlighted entry.
func (p Preview) Selected() (AppEntry, bool) {
	if p.Index < 0 || p.Index >= len(p.Entries) {
		return AppEntry{}, false
	}
	return p.Entries[p.Index], true
}

// AppCycler implements "next app". The app list is captured on the first
// step of a gesture and stays fixed until Finish or Cancel.
type AppCycler struct {
	entries []AppEntry
	index   int
	active  bool
}

// NewAppCycler returns an idle cycler.
func NewAppCycler() *AppCycler {
	return &AppCycler{}
}

// Active reports whether a gesture is in progress.
func (c *AppCycler) Active() bool {
	return c.active
}

// Step advances the selection. The first step of a gesture snapshots the
// apps and selects the one after the frontmost. It reports false when there
// is nothing to pick.
func (c *AppCycler) Step(reverse bool, snap *discovery.Snapshot) (Preview, bool) {
	if !c.active {
		entries := appEntries(snap)
		if len(entries) == 0 {
			return Preview{}, false
		}
		c.entries = entries
		c.index = 0
		if len(entries) > 1 {
			c.index = 1
		}
		c.active = true
		return c.Preview(), true
	}

	c.index = wrap(c.index, reverse, len(c.entries))
	return c.Preview(), true
}

// Preview returns a copy of the current selection state.
func (c *AppCycler) Preview() Preview {
	if !c.active {
		return Preview{}
	}
	return Preview{
		Entries: append([]AppEntry(nil), c.entries...),
		Index:   c.index,
	}
}

// Finish ends the gesture and returns the entry to activate.
func (c *AppCycler) Finish() (AppEntry, bool) {
	if !c.active {
		return AppEntry{}, false
	}
	selected, ok := c.Preview().Selected()
	c.reset()
	return selected, ok
}

// Cancel ends the gesture without a selection.
func (c *AppCycler) Cancel() {
	c.reset()
}

func (c *AppCycler) reset() {
	c.entries = nil
	c.index = 0
	c.active = false
}

func appEntries(snap *discovery.Snapshot) []AppEntry {
	groups := snap.Groups()
	out := make([]AppEntry, 0, len(groups))
	for _, g := range groups {
		if len(g.Windows) == 0 {
			continue
		}
		out = append(out, AppEntry{Key: g.Key, Window: g.Windows[0].ID, Title: g.Windows[0].Title})
	}
	return out
}
