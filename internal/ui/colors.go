// Package ui styles the console output of tokscrape: help pages, the run
// summary and the login banner.
package ui

import "strings"

// ANSI escape sequences
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorWhite  = "\033[97m"
	ColorRed    = "\033[31m"
)

// ruleWidth matches the width of the summary and login banners.
const ruleWidth = 50

func Bold(s string) string {
	return ColorBold + s + ColorReset
}

func Success(s string) string {
	return ColorGreen + s + ColorReset
}

// Warn marks a recoverable problem the user should notice, such as a clamped
// --limit or videos that were skipped.
func Warn(s string) string {
	return ColorYellow + "⚠ " + s + ColorReset
}

func Error(s string) string {
	return ColorRed + s + ColorReset
}

// Label renders the key of a "Key: value" summary line.
func Label(s string) string {
	return ColorBold + s + ":" + ColorReset
}

// Value renders a user-supplied value in a banner.
func Value(s string) string {
	return ColorWhite + s + ColorReset
}

// Rule is the dim horizontal line under a banner title.
func Rule() string {
	return ColorDim + strings.Repeat("━", ruleWidth) + ColorReset
}
