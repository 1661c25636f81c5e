package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/1broseidon/wincycle/internal/command"
	"github.com/1broseidon/wincycle/internal/ipc"
)

// ErrQueueFull is returned when a control request cannot be queued.
var ErrQueueFull = errors.New("daemon: command queue is full")

// Control serves IPC requests by posting commands to the dispatcher's queue.
// It never touches cycle state directly.
type Control struct {
	d *Dispatcher
}

// NewControl creates an ipc.Handler for d.
func NewControl(d *Dispatcher) *Control {
	return &Control{d: d}
}

var _ ipc.Handler = (*Control)(nil)

// Status implements ipc.Handler.
func (c *Control) Status() ipc.StatusData {
	s := c.d.Status()
	return ipc.StatusData{
		PID:           os.Getpid(),
		UptimeSeconds: int64(time.Since(s.StartedAt).Seconds()),
		HookInstalled: s.HookInstalled,
		HotkeyActive:  s.HotkeyActive,
		WindowsHotkey: s.WindowsHotkey,
		AppsHotkey:    s.AppsHotkey,
		Foreground:    s.Foreground,
		Steps:         s.Steps,
		Activations:   s.Activations,
		Failures:      s.Failures,
		Reloads:       s.Reloads,
		Dropped:       s.Dropped,
	}
}

// Windows implements ipc.Handler.
func (c *Control) Windows(ctx context.Context, groupByApp bool) (ipc.WindowsData, error) {
	reply := make(chan command.WindowsReply, 1)
	if !c.d.queue.Post(command.ListWindows{GroupByApp: groupByApp, Reply: reply}) {
		return ipc.WindowsData{}, ErrQueueFull
	}

	select {
	case <-ctx.Done():
		return ipc.WindowsData{}, ctx.Err()
	case r := <-reply:
		if r.Err != nil {
			return ipc.WindowsData{}, r.Err
		}
		data := ipc.WindowsData{Groups: []ipc.GroupData{}}
		for _, g := range r.Snapshot.Groups() {
			group := ipc.GroupData{Key: g.Key, Windows: make([]ipc.WindowData, 0, len(g.Windows))}
			for _, w := range g.Windows {
				group.Windows = append(group.Windows, ipc.WindowData{ID: uint64(w.ID), Title: w.Title})
			}
			data.Groups = append(data.Groups, group)
		}
		return data, nil
	}
}

// Reload implements ipc.Handler.
func (c *Control) Reload(ctx context.Context) error {
	reply := make(chan error, 1)
	if !c.d.queue.Post(command.Reload{Reply: reply}) {
		return ErrQueueFull
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-reply:
		return err
	}
}

// Switch implements ipc.Handler. It queues one step and its release as a
// single command, the same sequence a single press of the hotkey produces.
func (c *Control) Switch(gesture string, reverse bool) error {
	var id command.BindingID
	switch gesture {
	case ipc.GestureWindows:
		id = command.SwitchWindows
	case ipc.GestureApps:
		id = command.SwitchApps
	default:
		return fmt.Errorf("unknown gesture %q", gesture)
	}

	if !c.d.queue.Post(command.GesturePress{BindingID: id, Reverse: reverse}) {
		return ErrQueueFull
	}
	return nil
}
