// Package errors renders the errors of the financial tools for different
// consumers: plain text for the command line and JSON for scripts.
//
// Domain error types stay in their packages (lots, record, ofx). Errors that
// know where they happened implement Positioned, which lets the text
// formatter quote the offending input line.
package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/robinvdvleuten/financial/lots"
	"github.com/robinvdvleuten/financial/record"
)

// Positioned is implemented by errors tied to a line of input.
type Positioned interface {
	error
	GetPosition() record.Position
}

// Formatter formats errors for output in different formats.
type Formatter interface {
	// Format formats a single error.
	Format(err error) string

	// FormatAll formats multiple errors.
	FormatAll(errs []error) string
}

// New returns the formatter for a format name, "text" or "json".
func New(format string, source []byte) (Formatter, error) {
	switch format {
	case "", "text":
		return NewTextFormatter(WithSource(source)), nil
	case "json":
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown error format %q", format)
	}
}

// TextFormatter formats errors for command-line output.
type TextFormatter struct {
	sourceContent []byte
}

// TextFormatterOption is an option for configuring TextFormatter.
type TextFormatterOption func(*TextFormatter)

// WithSource sets the input content quoted around positioned errors.
func WithSource(source []byte) TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.sourceContent = source
	}
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter(opts ...TextFormatterOption) *TextFormatter {
	tf := &TextFormatter{}
	for _, opt := range opts {
		opt(tf)
	}
	return tf
}

// Format formats a single error. Positioned errors are followed by the input
// lines around their position when source content is available.
func (tf *TextFormatter) Format(err error) string {
	var e Positioned
	if stderrors.As(err, &e) && tf.sourceContent != nil && e.GetPosition().Line > 0 {
		return tf.formatWithSourceContext(e.GetPosition(), err.Error(), tf.sourceContent)
	}
	return err.Error()
}

// FormatAll formats multiple errors, separating them with blank lines.
func (tf *TextFormatter) FormatAll(errs []error) string {
	parts := make([]string, len(errs))
	for i, err := range errs {
		parts[i] = tf.Format(err)
	}
	return strings.Join(parts, "\n\n")
}

// formatWithSourceContext writes the message followed by two lines before
// and one line after the error line, marking the error line.
func (tf *TextFormatter) formatWithSourceContext(pos record.Position, message string, sourceContent []byte) string {
	var buf bytes.Buffer
	buf.WriteString(message)
	buf.WriteString("\n\n")

	for _, l := range SourceContext(sourceContent, pos.Line) {
		if l.Current {
			buf.WriteString(" > ")
		} else {
			buf.WriteString("   ")
		}
		buf.WriteString(l.Text)
		buf.WriteByte('\n')
	}
	return buf.String()
}

// ContextLine is one quoted input line.
type ContextLine struct {
	Number  int
	Text    string
	Current bool
}

// SourceContext returns the lines around line (1-based) of source.
func SourceContext(source []byte, line int) []ContextLine {
	lines := strings.Split(strings.TrimRight(string(source), "\n"), "\n")
	start := max(line-3, 0)
	end := min(line+1, len(lines)-1)

	var out []ContextLine
	for i := start; i <= end; i++ {
		out = append(out, ContextLine{
			Number:  i + 1,
			Text:    strings.TrimRight(lines[i], "\r"),
			Current: i == line-1,
		})
	}
	return out
}

// JSONFormatter formats errors as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// ErrorJSON represents an error in JSON format.
type ErrorJSON struct {
	Type     string         `json:"type"`
	Message  string         `json:"message"`
	Position *PositionJSON  `json:"position,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
}

// PositionJSON represents a file position in JSON format.
type PositionJSON struct {
	Filename string `json:"filename,omitempty"`
	Line     int    `json:"line"`
}

// Format formats a single error as JSON.
func (jf *JSONFormatter) Format(err error) string {
	data, _ := json.Marshal(jf.toJSON(err))
	return string(data)
}

// FormatAll formats multiple errors as a JSON array.
func (jf *JSONFormatter) FormatAll(errs []error) string {
	data, _ := json.MarshalIndent(jf.FormatAllToSlice(errs), "", "  ")
	return string(data)
}

// FormatAllToSlice returns errors as a slice of ErrorJSON structs.
func (jf *JSONFormatter) FormatAllToSlice(errs []error) []ErrorJSON {
	result := make([]ErrorJSON, 0, len(errs))
	for _, err := range errs {
		result = append(result, jf.toJSON(err))
	}
	return result
}

func (jf *JSONFormatter) toJSON(err error) ErrorJSON {
	errJSON := ErrorJSON{
		Type:    fmt.Sprintf("%T", err),
		Message: err.Error(),
		Details: map[string]any{},
	}

	var positioned Positioned
	if stderrors.As(err, &positioned) {
		pos := positioned.GetPosition()
		errJSON.Position = &PositionJSON{Filename: pos.Filename, Line: pos.Line}
	}

	var (
		numErr   *lots.NumberError
		cfgErr   *lots.ConfigError
		fieldErr *record.FieldError
	)
	switch {
	case stderrors.As(err, &numErr):
		errJSON.Type = "number"
		errJSON.Details["field"] = numErr.Field
		errJSON.Details["value"] = numErr.Value
	case stderrors.As(err, &cfgErr):
		errJSON.Type = "config"
		errJSON.Details["setting"] = cfgErr.Setting
		if cfgErr.Value != "" {
			errJSON.Details["value"] = cfgErr.Value
		}
	case stderrors.As(err, &fieldErr):
		errJSON.Type = "field"
		errJSON.Details["field"] = fieldErr.Field
	}
	if len(errJSON.Details) == 0 {
		errJSON.Details = nil
	}
	return errJSON
}
