// Package loader opens record inputs, replaces output files atomically and
// re-runs work when an input changes on disk.
//
// Example usage:
//
//	// Read a CSV export, skipping three preamble rows
//	r, closer, err := loader.Open(ctx, "report.csv", record.WithPreamble(3))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer closer.Close()
//
//	// Re-run the conversion whenever the export changes
//	err = loader.Watch(ctx, "report.csv", convert)
package loader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/robinvdvleuten/financial/record"
	"github.com/robinvdvleuten/financial/telemetry"
)

// Stdin is the filename that reads standard input.
const Stdin = "-"

// Open returns a record reader for filename. The filename "-" or "" reads
// standard input. The caller closes the returned closer when done.
func Open(ctx context.Context, filename string, opts ...record.Option) (*record.Reader, io.Closer, error) {
	timer := telemetry.StartTimer(ctx, "loader.open "+display(filename))
	defer timer.End()

	if filename == "" || filename == Stdin {
		opts = append([]record.Option{record.WithFilename("<stdin>")}, opts...)
		return record.NewReader(os.Stdin, opts...), io.NopCloser(os.Stdin), nil
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	opts = append([]record.Option{record.WithFilename(filename)}, opts...)
	return record.NewReader(f, opts...), f, nil
}

// ReadAll reads every record of filename, returning the reader for its
// header and preamble.
func ReadAll(ctx context.Context, filename string, opts ...record.Option) (*record.Reader, []record.Record, error) {
	r, closer, err := Open(ctx, filename, opts...)
	if err != nil {
		return nil, nil, err
	}
	defer closer.Close()

	recs, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	telemetry.Annotate(ctx, "records", len(recs))
	return r, recs, nil
}

// WriteFile replaces path with what write produces. The content goes to a
// temporary file in the same directory which is renamed over path once
// write succeeds, so path is never left half written.
func WriteFile(path string, perm os.FileMode, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Chmod(perm); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func display(filename string) string {
	if filename == "" || filename == Stdin {
		return "<stdin>"
	}
	return filepath.Base(filename)
}
