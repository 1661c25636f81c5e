package main

import (
	"os"

	"golang.org/x/term"
)

const defaultWidth = 100

// terminalWidth returns the stdout column count, or defaultWidth when stdout
// is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultWidth
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}
