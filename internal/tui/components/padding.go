package components

import (
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"
)

// Cache for padding strings to avoid strings.Repeat allocations on every
// rendered cell. Supports padding widths from 0 to 200 characters.
var (
	paddingCache [201]string
	paddingOnce  sync.Once
)

func initPaddingCache() {
	for i := 1; i <= 200; i++ {
		paddingCache[i] = strings.Repeat(" ", i)
	}
}

// Pad returns a string of n spaces, using a cache for efficiency.
func Pad(n int) string {
	if n <= 0 {
		return ""
	}
	if n <= 200 {
		paddingOnce.Do(initPaddingCache)
		return paddingCache[n]
	}
	return strings.Repeat(" ", n)
}

// Fit truncates s to width display cells, marking truncation with an
// ellipsis, and right-pads it with spaces so the result is exactly width cells.
func Fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return s + Pad(width-runewidth.StringWidth(s))
}

// FitRight is Fit with the text aligned to the right edge.
func FitRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return Pad(width-runewidth.StringWidth(s)) + s
}
