package loader

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/financial/record"
	"github.com/robinvdvleuten/financial/telemetry"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadAll(t *testing.T) {
	path := writeInput(t, "skip me\nA,B\n1,2\n3,4\n")

	r, recs, err := ReadAll(context.Background(), path, record.WithPreamble(1))
	assert.NoError(t, err)
	assert.Equal(t, path, r.Filename())
	assert.Equal(t, 2, len(recs))
	assert.Equal(t, "3", recs[1].Get("A"))
	assert.Equal(t, 4, recs[1].Pos.Line)
}

func TestReadAllAnnotatesTimer(t *testing.T) {
	path := writeInput(t, "A\n1\n")
	collector := telemetry.NewTimingCollector()
	ctx := telemetry.WithCollector(context.Background(), collector)

	ctx, timer := telemetry.WithTimer(ctx, "lifo")
	_, _, err := ReadAll(ctx, path)
	assert.NoError(t, err)
	timer.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)
	assert.Contains(t, buf.String(), "lifo (records=1)")
	assert.Contains(t, buf.String(), "loader.open input.csv")
}

func TestOpenMissing(t *testing.T) {
	_, _, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	err := WriteFile(path, 0o600, func(w io.Writer) error {
		_, err := io.WriteString(w, "hello")
		return err
	})
	assert.NoError(t, err)

	b, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "hello", string(b))
	info, err := os.Stat(path)
	assert.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestWriteFileFailureKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	assert.NoError(t, os.WriteFile(path, []byte("original"), 0o644))

	err := WriteFile(path, 0o644, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return errors.New("boom")
	})
	assert.Error(t, err)

	b, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "original", string(b))

	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(entries))
}

func TestWatch(t *testing.T) {
	old := DebounceDelay
	DebounceDelay = 10 * time.Millisecond
	defer func() { DebounceDelay = old }()

	path := writeInput(t, "A\n1\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(context.Context) error {
			runs.Add(1)
			return nil
		})
	}()

	waitFor(t, func() bool { return runs.Load() == 1 })
	assert.NoError(t, os.WriteFile(path, []byte("A\n2\n"), 0o644))
	waitFor(t, func() bool { return runs.Load() >= 2 })

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
