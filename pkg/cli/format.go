// Package cli formats twinctl terminal output: ANSI colors, dotted labels
// and aligned tables.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// colorEnabled is false when NO_COLOR is set (no-color.org) and after
// SetColor(false).
var colorEnabled = os.Getenv("NO_COLOR") == ""

const (
	sgrReset  = "\033[0m"
	sgrBold   = "\033[1m"
	sgrDim    = "\033[2m"
	sgrRed    = "\033[31m"
	sgrGreen  = "\033[32m"
	sgrYellow = "\033[33m"
)

// SetColor enables or disables ANSI colors, e.g. for --json or piped output.
func SetColor(enabled bool) {
	colorEnabled = enabled
}

func paint(sgr, s string) string {
	if !colorEnabled {
		return s
	}
	return sgr + s + sgrReset
}

func Green(s string) string  { return paint(sgrGreen, s) }
func Yellow(s string) string { return paint(sgrYellow, s) }
func Red(s string) string    { return paint(sgrRed, s) }
func Bold(s string) string   { return paint(sgrBold, s) }
func Dim(s string) string    { return paint(sgrDim, s) }

// DotPad pads label with a space and dots up to width, for summary lines
// such as "not loaded ........ 3". Labels too long to pad are returned as is.
func DotPad(label string, width int) string {
	if width <= 0 || len(label) >= width-1 {
		return label
	}
	return label + " " + strings.Repeat(".", width-len(label)-1)
}

// Percent formats a match percentage with two decimals: green when the RIBs
// are identical, yellow from 90% and red below.
func Percent(p float64) string {
	s := fmt.Sprintf("%.2f%%", p)
	switch {
	case p >= 100:
		return Green(s)
	case p >= 90:
		return Yellow(s)
	default:
		return Red(s)
	}
}

// Status renders a check severity or validation outcome in its color.
func Status(s string) string {
	switch s {
	case "ok", "valid", "info":
		return Green(s)
	case "warning":
		return Yellow(s)
	case "error", "invalid":
		return Red(s)
	}
	return s
}
