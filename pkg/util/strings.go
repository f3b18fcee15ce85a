package util

import "strings"

// SplitLines splits a text blob on newlines, dropping the carriage return of
// CRLF line endings. Empty input returns nil. Lines are not trimmed.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// CollapseSpaces trims s and replaces every inner whitespace run with one space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// JoinLines joins lines with newlines, ending with a trailing newline when
// there is at least one line.
func JoinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
