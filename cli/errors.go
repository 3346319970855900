package cli

import (
	stdErrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/robinvdvleuten/financial/errors"
)

var (
	errMarkerStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	errContextStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})
)

// ErrorRenderer renders errors with terminal styling and source context.
type ErrorRenderer struct {
	source []byte
}

// NewErrorRenderer creates a renderer with source content for context.
func NewErrorRenderer(source []byte) *ErrorRenderer {
	return &ErrorRenderer{source: source}
}

// Render formats a single error. Errors tied to an input line are followed
// by the lines around it, with the offending one marked.
func (r *ErrorRenderer) Render(err error) string {
	var e errors.Positioned
	if !stdErrors.As(err, &e) || r.source == nil || e.GetPosition().Line <= 0 {
		return errorStyle.Render(err.Error())
	}

	var buf strings.Builder
	buf.WriteString(errorStyle.Render(err.Error()))
	buf.WriteString("\n\n")

	for _, line := range errors.SourceContext(r.source, e.GetPosition().Line) {
		if line.Current {
			buf.WriteString(errMarkerStyle.Render(fmt.Sprintf(" > %4d | ", line.Number)))
			buf.WriteString(line.Text)
		} else {
			buf.WriteString(errContextStyle.Render(fmt.Sprintf("   %4d | %s", line.Number, line.Text)))
		}
		buf.WriteByte('\n')
	}
	return buf.String()
}

// RenderAll formats multiple errors, separating them with blank lines.
func (r *ErrorRenderer) RenderAll(errs []error) string {
	parts := make([]string, len(errs))
	for i, err := range errs {
		parts[i] = r.Render(err)
	}
	return strings.Join(parts, "\n\n")
}

// fail reports err on stderr in the requested error format and returns the
// CommandError ending the run.
func (g *Globals) fail(stderr io.Writer, err error, source []byte) error {
	if g.ErrorFormat == "json" {
		_, _ = fmt.Fprintln(stderr, errors.NewJSONFormatter().Format(err))
		return NewCommandError(1)
	}

	_, _ = fmt.Fprintln(stderr, strings.TrimRight(NewErrorRenderer(source).Render(err), "\n"))
	_, _ = fmt.Fprintln(stderr)
	printError(stderr, "failed")
	return NewCommandError(1)
}
