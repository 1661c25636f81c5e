//go:build windows

package singleinstance

import (
	"errors"
	"strings"
	"testing"
)

func TestTryLock(t *testing.T) {
	name := `Local\wincycle-test-` + strings.ReplaceAll(t.Name(), "/", "-")

	lock1, err := TryLock(name)
	if err != nil {
		t.Fatalf("first TryLock failed: %v", err)
	}
	lock2, err := TryLock(name)
	if !errors.Is(err, ErrAlreadyRunning) || lock2 != nil {
		t.Fatalf("second TryLock: got lock=%v err=%v, want ErrAlreadyRunning", lock2, err)
	}
	if err := lock1.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	lock3, err := TryLock(name)
	if err != nil {
		t.Fatalf("TryLock after release failed: %v", err)
	}
	lock3.Release()
}

func TestDefaultName(t *testing.T) {
	name, err := DefaultName()
	if err != nil {
		t.Fatalf("DefaultName: %v", err)
	}
	if !strings.HasPrefix(name, `Local\wincycle-`) {
		t.Errorf("DefaultName = %q", name)
	}
}
