// Package overlay renders the app picker shown while the app-switch
// modifier is held.
package overlay

import (
	"fmt"

	"github.com/1broseidon/wincycle/internal/cycle"
	"github.com/1broseidon/wincycle/internal/discovery"
)

// Panel colors
const (
	ColorText      = 0xf5f7fa
	ColorBg        = 0x1f2933
	ColorSelection = 0x3498db
)

const (
	paddingX   = 14
	paddingY   = 10
	lineHeight = 18
	charWidth  = 7
	minWidth   = 260
	maxChars   = 72
	// maxLines bounds the panel height; longer lists scroll with the selection.
	maxLines = 16
)

// pickerLines formats the visible slice of preview. It returns the lines and
// the index of the selected line within them.
func pickerLines(preview cycle.Preview) ([]string, int) {
	n := len(preview.Entries)
	if n == 0 {
		return nil, -1
	}
	first := 0
	if n > maxLines {
		first = preview.Index - maxLines/2
		if first < 0 {
			first = 0
		}
		if first > n-maxLines {
			first = n - maxLines
		}
	}
	last := first + maxLines
	if last > n {
		last = n
	}

	lines := make([]string, 0, last-first)
	for _, e := range preview.Entries[first:last] {
		line := discovery.ExecutableName(e.Key)
		if e.Title != "" {
			line = fmt.Sprintf("%-20s %s", line, e.Title)
		}
		lines = append(lines, clip(line, maxChars))
	}
	return lines, preview.Index - first
}

// clip shortens s to at most n bytes. X core fonts take Latin-1, so the
// byte count is the glyph count.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func panelSize(lines []string) (width, height int) {
	longest := 0
	for _, line := range lines {
		if len(line) > longest {
			longest = len(line)
		}
	}
	width = longest*charWidth + 2*paddingX
	if width < minWidth {
		width = minWidth
	}
	height = len(lines)*lineHeight + 2*paddingY
	return width, height
}

// centered returns the origin that centers a w x h panel on the screen,
// clamped to the screen.
func centered(screenW, screenH, w, h int) (int, int) {
	x := (screenW - w) / 2
	y := (screenH - h) / 2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y
}
