// Package cycle holds the switcher's gesture state: which window or app a
// press should activate, given the previous presses of the same gesture.
package cycle

import (
	"github.com/1broseidon/wincycle/internal/discovery"
	"github.com/1broseidon/wincycle/internal/platform"
)

// Branch names the rule that picked a target.
type Branch int

const (
	BranchNone Branch = iota
	BranchDefault
	BranchReconcile
	BranchContinue
)

// String returns the string representation of the branch
func (b Branch) String() string {
	switch b {
	case BranchNone:
		return "none"
	case BranchDefault:
		return "default"
	case BranchReconcile:
		return "reconcile"
	case BranchContinue:
		return "continue"
	default:
		return "unknown"
	}
}

// WindowsCache is the traversal state of the last "next window" gesture.
type WindowsCache struct {
	Key string
	// Anchor is the handle resumed from on reconciliation: the window the
	// last step activated.
	Anchor platform.WindowID
	Index  int
	// Ordered freezes the traversal order for one held-modifier gesture.
	Ordered []platform.WindowID
}

// WindowCycler implements "next window within the focused app". It is
// owned by the control loop and is not safe for concurrent use.
type WindowCycler struct {
	cache    *WindowsCache
	released bool
}

// NewWindowCycler returns a cycler with no cache.
func NewWindowCycler() *WindowCycler {
	return &WindowCycler{released: true}
}

// Release records that the gesture's modifier went up.
func (c *WindowCycler) Release() {
	c.released = true
}

// Released reports whether the next press starts a new gesture.
func (c *WindowCycler) Released() bool {
	return c.released
}

// Cache returns a copy of the current cache, or nil.
func (c *WindowCycler) Cache() *WindowsCache {
	if c.cache == nil {
		return nil
	}
	cp := *c.cache
	cp.Ordered = append([]platform.WindowID(nil), c.cache.Ordered...)
	return &cp
}

// Next picks the window to activate for one press. focusedKey is the
// ExecutableKey of the focused window. The cache is updated before the
// caller activates, so a failed activation still advances the traversal.
func (c *WindowCycler) Next(reverse bool, focusedKey string, snap *discovery.Snapshot) (platform.WindowID, Branch) {
	g, ok := snap.Group(focusedKey)
	if !ok || len(g.Windows) < 2 {
		return 0, BranchNone
	}
	group := g.IDs()

	ordered := group
	index := 1
	branch := BranchDefault

	// With two windows "next" is always the other one.
	if c.cache != nil && c.cache.Key == focusedKey && len(group) > 2 {
		if c.released {
			// A new gesture freezes the current order.
			index, branch = c.reconcile(reverse, group)
		} else {
			ordered = reconcileOrder(c.cache.Ordered, group)
			index, branch = c.continueGesture(reverse, ordered), BranchContinue
		}
	}

	target := ordered[index]
	c.cache = &WindowsCache{
		Key:     focusedKey,
		Anchor:  target,
		Index:   index,
		Ordered: append([]platform.WindowID(nil), ordered...),
	}
	c.released = false
	return target, branch
}

// reconcile resumes a released gesture from the anchor and returns an
// index into group. If the anchor is still frontmost the traversal moves
// to its neighbour in the previous gesture's order; if it is elsewhere in
// the group it is the target; if it is gone the default applies.
func (c *WindowCycler) reconcile(reverse bool, group []platform.WindowID) (int, Branch) {
	i := indexOf(group, c.cache.Anchor)
	switch {
	case i < 0:
		return 1, BranchDefault
	case i == 0:
		previous := reconcileOrder(c.cache.Ordered, group)
		next := previous[wrap(indexOf(previous, c.cache.Anchor), reverse, len(previous))]
		return indexOf(group, next), BranchReconcile
	default:
		return i, BranchReconcile
	}
}

// continueGesture advances one step through the frozen order.
func (c *WindowCycler) continueGesture(reverse bool, ordered []platform.WindowID) int {
	p := indexOf(ordered, c.cache.Anchor)
	if p < 0 {
		// The last target closed; its successor now sits at the old index,
		// or past the end when it was the last entry.
		p = min(max(c.cache.Index, 0), len(ordered))
		if !reverse {
			p--
		}
	}
	return wrap(p, reverse, len(ordered))
}

// reconcileOrder keeps the frozen handles that still exist, in frozen
// order, and appends handles that appeared since.
func reconcileOrder(frozen, current []platform.WindowID) []platform.WindowID {
	live := make(map[platform.WindowID]bool, len(current))
	for _, id := range current {
		live[id] = true
	}

	out := make([]platform.WindowID, 0, len(current))
	seen := make(map[platform.WindowID]bool, len(current))
	for _, id := range frozen {
		if live[id] && !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	for _, id := range current {
		if !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	return out
}

func indexOf(ids []platform.WindowID, id platform.WindowID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// wrap moves one step from current, wrapping at both ends.
func wrap(current int, reverse bool, count int) int {
	if count <= 0 {
		return 0
	}
	if reverse {
		return (current - 1 + count) % count
	}
	return (current + 1) % count
}
