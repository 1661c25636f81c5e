// Package discovery turns a raw window enumeration into the ordered,
// per-executable groups the switcher cycles through.
package discovery

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/1broseidon/wincycle/internal/platform"
)

// ErrEnumerate wraps a failure of the enumeration call itself. Callers treat
// it as "no switch this time" and may retry on the next gesture.
var ErrEnumerate = errors.New("discovery: window enumeration failed")

const (
	DefaultMinWidth  = 120
	DefaultMinHeight = 90
)

// DefaultHostWrappers names processes that host the UI of packaged apps
// running in a different process.
var DefaultHostWrappers = []string{"applicationframehost.exe"}

// Options selects which windows are switchable.
type Options struct {
	// GroupByApp merges windows sharing an executable into one group. When
	// false every window forms its own single-entry group.
	GroupByApp         bool
	IgnoreMinimized    bool
	OnlyCurrentDesktop bool
	MinWidth           int
	MinHeight          int
	HostWrappers       []string
}

// DefaultOptions groups by app and uses the default thresholds.
func DefaultOptions() Options {
	return Options{
		GroupByApp:         true,
		OnlyCurrentDesktop: true,
		MinWidth:           DefaultMinWidth,
		MinHeight:          DefaultMinHeight,
		HostWrappers:       DefaultHostWrappers,
	}
}

// Entry is one switchable window.
type Entry struct {
	ID    platform.WindowID
	Title string
}

// Group is the windows of one executable in enumeration order.
type Group struct {
	Key     string
	Windows []Entry
}

// IDs returns the group's window handles, frontmost first.
func (g Group) IDs() []platform.WindowID {
	ids := make([]platform.WindowID, len(g.Windows))
	for i, e := range g.Windows {
		ids[i] = e.ID
	}
	return ids
}

// Snapshot is an insertion-ordered map of ExecutableKey to Group.
type Snapshot struct {
	groups []Group
	index  map[string]int
	keys   map[platform.WindowID]string
}

func newSnapshot() *Snapshot {
	return &Snapshot{
		index: make(map[string]int),
		keys:  make(map[platform.WindowID]string),
	}
}

func (s *Snapshot) add(key string, e Entry, merge bool) {
	s.keys[e.ID] = key
	if i, ok := s.index[key]; ok && merge {
		s.groups[i].Windows = append(s.groups[i].Windows, e)
		return
	}
	if _, ok := s.index[key]; !ok {
		s.index[key] = len(s.groups)
	}
	s.groups = append(s.groups, Group{Key: key, Windows: []Entry{e}})
}

// Groups returns the groups in first-seen order.
func (s *Snapshot) Groups() []Group {
	if s == nil {
		return nil
	}
	return s.groups
}

// Group returns the group for key.
func (s *Snapshot) Group(key string) (Group, bool) {
	if s == nil {
		return Group{}, false
	}
	i, ok := s.index[key]
	if !ok {
		return Group{}, false
	}
	return s.groups[i], true
}

// KeyOf returns the ExecutableKey a window was grouped under.
func (s *Snapshot) KeyOf(id platform.WindowID) (string, bool) {
	if s == nil {
		return "", false
	}
	key, ok := s.keys[id]
	return key, ok
}

// Len returns the number of groups.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.groups)
}

// Discoverer resolves and groups windows reported by a backend. It keeps no
// state between calls.
type Discoverer struct {
	backend platform.Backend
}

// New creates a Discoverer over backend.
func New(backend platform.Backend) *Discoverer {
	return &Discoverer{backend: backend}
}

// Discover enumerates, filters and groups the switchable windows.
func (d *Discoverer) Discover(opts Options) (*Snapshot, error) {
	windows, err := d.backend.Windows()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnumerate, err)
	}

	r := d.newResolver(opts, windows)
	snap := newSnapshot()
	for _, w := range windows {
		if Classify(w, opts) != Switchable {
			continue
		}
		path, ok := r.resolve(w)
		if !ok {
			continue
		}
		snap.add(NormalizeKey(path), Entry{ID: w.ID, Title: w.Title}, opts.GroupByApp)
	}
	return snap, nil
}

// Resolve returns the ExecutableKey of any window, switchable or not. It is
// used for the focused window, which may itself be filtered out.
func (d *Discoverer) Resolve(id platform.WindowID, opts Options) (string, error) {
	pid, err := d.backend.WindowPID(id)
	if err != nil {
		return "", err
	}
	r := d.newResolver(opts, nil)
	path, ok := r.resolve(platform.Window{ID: id, PID: pid})
	if !ok {
		return "", fmt.Errorf("cannot resolve executable of window 0x%x", uint64(id))
	}
	return NormalizeKey(path), nil
}

type resolver struct {
	backend platform.Backend
	windows []platform.Window
	hosts   map[string]bool
	paths   map[int]string
}

func (d *Discoverer) newResolver(opts Options, windows []platform.Window) *resolver {
	hosts := opts.HostWrappers
	if hosts == nil {
		hosts = DefaultHostWrappers
	}
	r := &resolver{
		backend: d.backend,
		windows: windows,
		hosts:   make(map[string]bool, len(hosts)),
		paths:   make(map[int]string),
	}
	for _, h := range hosts {
		r.hosts[strings.ToLower(h)] = true
	}
	return r
}

func (r *resolver) processPath(pid int) (string, bool) {
	if path, ok := r.paths[pid]; ok {
		return path, path != ""
	}
	path, err := r.backend.ProcessPath(pid)
	if err != nil {
		path = ""
	}
	r.paths[pid] = path
	return path, path != ""
}

func (r *resolver) isHost(path string) bool {
	return r.hosts[strings.ToLower(ExecutableName(path))]
}

// resolve maps a window to its owning executable, looking through host
// wrappers. A wrapper that cannot be looked through is rejected.
func (r *resolver) resolve(w platform.Window) (string, bool) {
	path, ok := r.processPath(w.PID)
	if !ok {
		return "", false
	}
	if !r.isHost(path) {
		return path, true
	}

	for _, pid := range r.backend.HostedProcessIDs(w.ID) {
		if pid == w.PID {
			continue
		}
		if hosted, ok := r.processPath(pid); ok && !r.isHost(hosted) {
			return hosted, true
		}
	}

	for _, other := range r.windows {
		if other.Owner != w.ID || other.PID == w.PID {
			continue
		}
		if owned, ok := r.processPath(other.PID); ok && !r.isHost(owned) {
			return owned, true
		}
	}
	return "", false
}

// NormalizeKey canonicalizes an executable path for use as a group key.
func NormalizeKey(path string) string {
	return strings.ToLower(filepath.Clean(path))
}

// ExecutableName returns the file name of a path using either separator.
func ExecutableName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}
