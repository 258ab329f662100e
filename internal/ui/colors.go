package ui

import (
	"os"
	"strconv"
	"sync/atomic"
)

// ANSI styles for CLI output
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorRed    = "\033[31m"
)

var plain atomic.Bool

func init() {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		plain.Store(true)
	}
}

// SetPlain turns styling off (true) or back on.
func SetPlain(v bool) { plain.Store(v) }

func style(code, s string) string {
	if plain.Load() {
		return s
	}
	return code + s + ColorReset
}

func Bold(s string) string    { return style(ColorBold, s) }
func Success(s string) string { return style(ColorGreen, s) }
func Info(s string) string    { return style(ColorDim+ColorYellow, s) }
func Warn(s string) string    { return style(ColorYellow, s) }
func Error(s string) string   { return style(ColorRed, s) }

// Count styles n as a warning when it is non-zero and leaves zero unstyled.
func Count(n int) string {
	s := strconv.Itoa(n)
	if n == 0 {
		return s
	}
	return Warn(s)
}
