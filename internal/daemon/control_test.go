package daemon

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/1broseidon/wincycle/internal/command"
	"github.com/1broseidon/wincycle/internal/ipc"
	"github.com/1broseidon/wincycle/internal/platform"
)

func runDispatcher(t *testing.T, h *harness) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.d.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestControl_WindowsGroupsByApp(t *testing.T) {
	h := newHarness(t)
	runDispatcher(t, h)
	c := NewControl(h.d)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	data, err := c.Windows(ctx, true)
	if err != nil {
		t.Fatalf("Windows: %v", err)
	}
	if len(data.Groups) != 2 {
		t.Fatalf("groups = %+v, want notepad and calc", data.Groups)
	}
	var ids []uint64
	for _, w := range data.Groups[0].Windows {
		ids = append(ids, w.ID)
	}
	if want := []uint64{0xA, 0xB, 0xC}; !reflect.DeepEqual(ids, want) {
		t.Errorf("first group ids = %v, want %v", ids, want)
	}
}

func TestControl_ReloadReturnsLoaderError(t *testing.T) {
	h := newHarness(t)
	h.d.reload = nil
	runDispatcher(t, h)
	c := NewControl(h.d)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Reload(ctx); err == nil {
		t.Fatalf("expected reload error")
	}
}

func TestControl_SwitchIsOnePress(t *testing.T) {
	h := newHarness(t)
	c := NewControl(h.d)

	if err := c.Switch(ipc.GestureWindows, false); err != nil {
		t.Fatalf("Switch: %v", err)
	}
	if err := c.Switch(ipc.GestureWindows, false); err != nil {
		t.Fatalf("Switch: %v", err)
	}
	if err := c.Switch("desktops", false); err == nil {
		t.Errorf("expected error for unknown gesture")
	}

	// Drain the queue on this goroutine so the result is deterministic.
	for i := 0; i < 2; i++ {
		h.d.Handle(<-h.d.queue.C())
	}
	// The second press resumes after the window the first one reached.
	want := []platform.WindowID{0xB, 0xC}
	if !reflect.DeepEqual(h.backend.Activations, want) {
		t.Errorf("activations = %v, want %v", h.backend.Activations, want)
	}
}

func TestControl_QueueFull(t *testing.T) {
	h := newHarness(t)
	for h.d.queue.Post(command.FocusChanged{Executable: "notepad.exe"}) {
	}
	c := NewControl(h.d)

	if err := c.Switch(ipc.GestureApps, false); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Switch err = %v, want ErrQueueFull", err)
	}
	if err := c.Reload(context.Background()); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Reload err = %v, want ErrQueueFull", err)
	}
}

func TestControl_SwitchTakesOneSlot(t *testing.T) {
	h := newHarness(t)
	for h.d.queue.Post(command.FocusChanged{Executable: "notepad.exe"}) {
	}
	<-h.d.queue.C()

	c := NewControl(h.d)
	if err := c.Switch(ipc.GestureWindows, true); err != nil {
		t.Fatalf("Switch with one free slot: %v", err)
	}
	if err := c.Switch(ipc.GestureWindows, false); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Switch on full queue err = %v, want ErrQueueFull", err)
	}

	var last command.Command
drain:
	for {
		select {
		case cmd := <-h.d.queue.C():
			last = cmd
		default:
			break drain
		}
	}
	want := command.GesturePress{BindingID: command.SwitchWindows, Reverse: true}
	if last != want {
		t.Errorf("last queued = %#v, want %#v", last, want)
	}
}

func TestControl_Status(t *testing.T) {
	h := newHarness(t)
	h.step(command.SwitchWindows, false)

	s := NewControl(h.d).Status()
	if s.PID == 0 || !s.HookInstalled || s.Steps != 1 || s.Activations != 1 {
		t.Errorf("status = %+v", s)
	}
}
