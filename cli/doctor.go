package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"

	"github.com/robinvdvleuten/financial/loader"
	"github.com/robinvdvleuten/financial/record"
)

// DoctorCmd provides doctor utilities for debugging record inputs.
type DoctorCmd struct {
	Records RecordsCmd `cmd:"" help:"Show the records read from a CSV input."`
}

// RecordsCmd dumps the preamble, header and records of an input the way the
// allocator sees them.
type RecordsCmd struct {
	Input string `arg:"" optional:"" default:"-" help:"CSV input to read (use '-' for stdin)."`
	Skip  int    `default:"3" help:"Rows ahead of the header."`
}

type recordDump struct {
	Pos    string
	Fields []fieldDump
}

type fieldDump struct {
	Name  string
	Value string
}

func (cmd *RecordsCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, finish := globals.begin(ctx.Stderr, "doctor records")
	defer finish()

	if err := cmd.run(runCtx, ctx.Stdout); err != nil {
		return globals.fail(ctx.Stderr, err, readSource(cmd.Input))
	}
	return nil
}

func (cmd *RecordsCmd) run(ctx context.Context, w io.Writer) error {
	r, closer, err := loader.Open(ctx, cmd.Input, record.WithPreamble(cmd.Skip))
	if err != nil {
		return err
	}
	defer closer.Close()

	preamble, err := r.Preamble()
	if err != nil {
		return err
	}
	header, err := r.Header()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "preamble %s\n", repr.String(preamble))
	_, _ = fmt.Fprintf(w, "header %s\n", repr.String(header))

	for rec, err := range r.All() {
		if err != nil {
			return err
		}
		dump := recordDump{Pos: rec.Pos.String()}
		for _, k := range rec.Keys() {
			dump.Fields = append(dump.Fields, fieldDump{Name: k, Value: rec.Get(k)})
		}
		_, _ = fmt.Fprintln(w, repr.String(dump, repr.Indent("  ")))
	}
	return nil
}
