package output

import (
	"bytes"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestStyles(t *testing.T) {
	styles := NewStyles(&bytes.Buffer{})

	for name, fn := range map[string]func(string) string{
		"success":  styles.Success,
		"error":    styles.Error,
		"warning":  styles.Warning,
		"filepath": styles.FilePath,
		"account":  styles.Account,
		"amount":   styles.Amount,
		"keyword":  styles.Keyword,
		"dim":      styles.Dim,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, fn("text"), "text")
		})
	}
}
