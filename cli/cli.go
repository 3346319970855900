// Package cli implements the financial command-line tools.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/robinvdvleuten/financial/loader"
	"github.com/robinvdvleuten/financial/logger"
	"github.com/robinvdvleuten/financial/output"
	"github.com/robinvdvleuten/financial/telemetry"
)

var (
	successSymbol = "✓"
	errorSymbol   = "✗"
	warningSymbol = "!"
	infoSymbol    = "→"

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D7AF00", Dark: "#FFD75F"})
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D7D7", Dark: "#00D7D7"})
)

func printSuccess(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n",
		successStyle.Render(successSymbol),
		message,
	)
}

func printError(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n",
		errorStyle.Render(errorSymbol),
		errorStyle.Render(message),
	)
}

func printWarning(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n",
		warningStyle.Render(warningSymbol),
		message,
	)
}

func printInfof(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, "%s %s\n",
		infoStyle.Render(infoSymbol),
		fmt.Sprintf(format, args...),
	)
}

func displayPath(path string) string {
	if path == "" || path == loader.Stdin {
		return "<stdin>"
	}
	return pathStyle.Render(path)
}

// begin prepares the context of a command run: the logger at the requested
// level and, with --telemetry, a collector timing name. The returned finish
// func reports the timings to stderr and must be called once the run ends.
func (g *Globals) begin(stderr io.Writer, name string) (context.Context, func()) {
	ctx := logger.WithContext(context.Background(), logger.New(logger.ParseLevel(g.LogLevel)))
	if !g.Telemetry {
		return ctx, func() {}
	}

	collector := telemetry.NewTimingCollector()
	ctx = telemetry.WithCollector(ctx, collector)
	ctx, timer := telemetry.WithTimer(ctx, name)
	return ctx, func() {
		timer.End()
		_, _ = fmt.Fprintln(stderr)
		collector.Report(stderr, output.NewStyles(stderr))
	}
}

// promptYesNo asks a yes/no question. Without a terminal on stdin it answers
// no.
func promptYesNo(question string) (bool, error) {
	if !isTerminal() {
		return false, nil
	}

	var confirm bool
	err := huh.NewConfirm().
		Title(question).
		WithButtonAlignment(lipgloss.Left).
		Value(&confirm).
		Run()
	if err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}
	return confirm, nil
}

// promptPassword reads a password without echoing it. It fails without a
// terminal on stdin.
func promptPassword(title string) (string, error) {
	if !isTerminal() {
		return "", fmt.Errorf("no password given and stdin is not a terminal")
	}

	var password string
	err := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&password).
		Run()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return password, nil
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// readSource returns the content of filename for quoting around errors.
// Standard input cannot be read twice, so it has no source.
func readSource(filename string) []byte {
	if filename == "" || filename == loader.Stdin {
		return nil
	}
	b, err := os.ReadFile(filepath.Clean(filename))
	if err != nil {
		return nil
	}
	return b
}
