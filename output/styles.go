// Package output provides styling, tables and money formatting for terminal
// output.
package output

import (
	"io"

	"github.com/muesli/termenv"
)

// ANSI colors used by Styles.
const (
	red     = "1"
	green   = "2"
	yellow  = "3"
	magenta = "5"
	cyan    = "6"
)

// Styles provides styled output helpers for the CLI. Styling is dropped
// when the writer is not a terminal.
type Styles struct {
	output *termenv.Output
}

// NewStyles creates a new Styles instance for the given writer.
func NewStyles(w io.Writer) *Styles {
	return &Styles{
		output: termenv.NewOutput(w),
	}
}

func (s *Styles) color(text, color string, bold bool) string {
	style := s.output.String(text).Foreground(s.output.Color(color))
	if bold {
		style = style.Bold()
	}
	return style.String()
}

// Success returns a styled success string (green + bold).
func (s *Styles) Success(text string) string {
	return s.color(text, green, true)
}

// Error returns a styled error string (red + bold).
func (s *Styles) Error(text string) string {
	return s.color(text, red, true)
}

// Warning returns a styled warning (yellow + bold).
func (s *Styles) Warning(text string) string {
	return s.color(text, yellow, true)
}

// FilePath returns a styled file path (cyan).
func (s *Styles) FilePath(text string) string {
	return s.color(text, cyan, false)
}

// Account returns a styled account or asset name (yellow).
func (s *Styles) Account(text string) string {
	return s.color(text, yellow, false)
}

// Amount returns a styled amount (magenta).
func (s *Styles) Amount(text string) string {
	return s.color(text, magenta, false)
}

// Keyword returns a styled keyword (bold).
func (s *Styles) Keyword(text string) string {
	return s.output.String(text).Bold().String()
}

// Dim returns dimmed text (for secondary information).
func (s *Styles) Dim(text string) string {
	return s.output.String(text).Faint().String()
}
