package overlay

import (
	"strings"
	"testing"

	"github.com/1broseidon/wincycle/internal/cycle"
)

func entries(n int) []cycle.AppEntry {
	out := make([]cycle.AppEntry, n)
	for i := range out {
		out[i] = cycle.AppEntry{Key: "/usr/bin/app" + string(rune('a'+i)), Window: 0}
	}
	return out
}

func TestPickerLines(t *testing.T) {
	preview := cycle.Preview{
		Entries: []cycle.AppEntry{
			{Key: `c:\windows\system32\notepad.exe`, Title: "notes.txt - Notepad"},
			{Key: "/usr/bin/gnome-calculator"},
		},
		Index: 1,
	}
	lines, selected := pickerLines(preview)
	if len(lines) != 2 || selected != 1 {
		t.Fatalf("lines = %q, selected = %d", lines, selected)
	}
	if !strings.HasPrefix(lines[0], "notepad.exe ") || !strings.HasSuffix(lines[0], "notes.txt - Notepad") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "gnome-calculator" {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestPickerLinesScrollsWithSelection(t *testing.T) {
	tests := []struct {
		name         string
		index        int
		wantFirst    string
		wantSelected int
	}{
		{name: "top", index: 0, wantFirst: "appa", wantSelected: 0},
		{name: "middle", index: 12, wantFirst: "appe", wantSelected: 8},
		{name: "bottom", index: 19, wantFirst: "appe", wantSelected: 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, selected := pickerLines(cycle.Preview{Entries: entries(20), Index: tt.index})
			if len(lines) != maxLines {
				t.Fatalf("len(lines) = %d, want %d", len(lines), maxLines)
			}
			if lines[0] != tt.wantFirst || selected != tt.wantSelected {
				t.Errorf("first = %q selected = %d, want %q %d", lines[0], selected, tt.wantFirst, tt.wantSelected)
			}
		})
	}
}

func TestPickerLinesEmpty(t *testing.T) {
	if lines, selected := pickerLines(cycle.Preview{}); lines != nil || selected != -1 {
		t.Errorf("empty preview = %q, %d", lines, selected)
	}
}

func TestPanelSizeAndPlacement(t *testing.T) {
	w, h := panelSize([]string{"a", "b"})
	if w != minWidth || h != 2*lineHeight+2*paddingY {
		t.Errorf("panelSize = %dx%d", w, h)
	}
	if x, y := centered(1920, 1080, 400, 100); x != 760 || y != 490 {
		t.Errorf("centered = %d,%d", x, y)
	}
	if x, y := centered(200, 100, 400, 300); x != 0 || y != 0 {
		t.Errorf("oversized panel = %d,%d, want clamped to 0,0", x, y)
	}
}

func TestClip(t *testing.T) {
	long := strings.Repeat("x", 100)
	if got := clip(long, 10); got != "xxxxxxx..." {
		t.Errorf("clip = %q", got)
	}
	if got := clip("short", 10); got != "short" {
		t.Errorf("clip = %q", got)
	}
}
