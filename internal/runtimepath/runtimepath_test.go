package runtimepath

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDir_UsesXDGRuntimeDirWhenSet(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if want := filepath.Join(td, "wincycle"); got != want {
		t.Fatalf("Dir() = %q, want %q", got, want)
	}
	info, err := os.Stat(got)
	if err != nil || !info.IsDir() {
		t.Fatalf("Dir() did not create %q: %v", got, err)
	}
}

func TestDir_FallbacksWhenXDGRuntimeDirMissing(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got == "" {
		t.Fatal("Dir() returned empty path")
	}
}

func TestSocketAndLockPath(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	socket, err := SocketPath()
	if err != nil {
		t.Fatalf("SocketPath() error: %v", err)
	}
	if !strings.HasSuffix(socket, "wincycle.sock") {
		t.Fatalf("SocketPath() = %q, missing suffix", socket)
	}

	lock, err := LockPath()
	if err != nil {
		t.Fatalf("LockPath() error: %v", err)
	}
	if filepath.Dir(lock) != filepath.Dir(socket) {
		t.Fatalf("LockPath() = %q, want it next to %q", lock, socket)
	}
}

func TestSanitizeUsername(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"alice", "alice"},
		{`CORP\bob smith`, "CORP_bob_smith"},
		{"  ", "unknown"},
		{"j.doe-1", "j.doe-1"},
	}
	for _, tt := range tests {
		if got := SanitizeUsername(tt.in); got != tt.want {
			t.Errorf("SanitizeUsername(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPipeAndMutexNames(t *testing.T) {
	if got := PipeName(`CORP\bob`); got != `\\.\pipe\wincycle-CORP_bob` {
		t.Errorf("PipeName() = %q", got)
	}
	if got := MutexName("bob"); got != `Local\wincycle-bob` {
		t.Errorf("MutexName() = %q", got)
	}
}
