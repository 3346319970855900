package cli

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/financial/loader"
	"github.com/robinvdvleuten/financial/logger"
	"github.com/robinvdvleuten/financial/lots"
	"github.com/robinvdvleuten/financial/output"
	"github.com/robinvdvleuten/financial/record"
	"github.com/robinvdvleuten/financial/spreadsheet"
	"github.com/robinvdvleuten/financial/telemetry"
)

// LifoCmd resolves the disposals of an exchange export against the lots
// acquired before them.
type LifoCmd struct {
	Input  string `arg:"" optional:"" default:"-" help:"CSV export to read (use '-' for stdin)."`
	Output string `short:"o" default:"-" help:"Where to write the result (use '-' for stdout)."`
	Skip   int    `default:"3" help:"Rows ahead of the header, copied to the output unchanged."`

	DateField     string `default:"Timestamp" help:"Field holding the transaction date."`
	TypeField     string `default:"Transaction Type" help:"Field holding the transaction type."`
	QuantityField string `default:"Quantity Transacted" help:"Field holding the quantity."`
	AssetField    string `default:"Asset" help:"Field holding the asset."`
	AmountField   string `default:"USD Amount Transacted (Inclusive of Coinbase Fees)" help:"Field holding the total amount."`
	BuyPattern    string `default:"(Buy|Receive)" help:"Regular expression matching acquisition types at the start of the type field."`
	LotSuffix     string `default:" Lot" help:"Appended to the type of synthesized lot records."`

	Summary bool   `help:"Print the lots left open after the run."`
	XLSX    string `name:"xlsx" help:"Also write the result to this spreadsheet." type:"path"`
	Watch   bool   `help:"Run again whenever the input changes."`
}

func (cmd *LifoCmd) config() lots.Config {
	return lots.Config{
		DateField:     cmd.DateField,
		TypeField:     cmd.TypeField,
		QuantityField: cmd.QuantityField,
		AssetField:    cmd.AssetField,
		AmountField:   cmd.AmountField,
		BuyPattern:    cmd.BuyPattern,
		LotSuffix:     cmd.LotSuffix,
	}
}

func (cmd *LifoCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, finish := globals.begin(ctx.Stderr, "lifo "+loaderName(cmd.Input))
	defer finish()
	runCtx = cmd.config().WithContext(runCtx)

	if !cmd.Watch {
		if err := cmd.run(runCtx, ctx.Stdout, ctx.Stderr); err != nil {
			return globals.fail(ctx.Stderr, err, readSource(cmd.Input))
		}
		return nil
	}

	if cmd.Input == loader.Stdin || cmd.Output == loader.Stdin {
		return globals.fail(ctx.Stderr, fmt.Errorf("--watch needs an input and an --output file"), nil)
	}

	runCtx, stop := signal.NotifyContext(runCtx, os.Interrupt)
	defer stop()

	printInfof(ctx.Stderr, "Watching %s, press Ctrl+C to stop", displayPath(cmd.Input))
	stderr := ctx.Stderr
	return loader.Watch(runCtx, cmd.Input, func(runCtx context.Context) error {
		return cmd.run(runCtx, io.Discard, stderr)
	})
}

// run converts the input once, using the allocator configuration carried by
// ctx.
func (cmd *LifoCmd) run(ctx context.Context, stdout, stderr io.Writer) error {
	cfg := lots.ConfigFromContext(ctx)
	log := logger.FromContext(ctx)

	r, recs, err := loader.ReadAll(ctx, cmd.Input, record.WithPreamble(cmd.Skip))
	if err != nil {
		return err
	}
	header, err := r.Header()
	if err != nil {
		return err
	}
	preamble, err := r.Preamble()
	if err != nil {
		return err
	}
	if err := cfg.Validate(header); err != nil {
		return err
	}
	if err := lots.CheckPattern(cfg, recs); err != nil {
		return err
	}

	alloc := lots.New(cfg, lots.WithShortfallHandler(func(s lots.Shortfall) {
		log.Debug().Stringer("pos", s.Pos).Str("asset", s.Asset).Str("unmatched", s.Unmatched.String()).Msg("lots exhausted")
		printWarning(stderr, s.String())
	}))

	timer := telemetry.StartTimer(ctx, "lots.allocate")
	var out []record.Record
	for rec, err := range alloc.All(records(recs)) {
		if err != nil {
			timer.End()
			return err
		}
		out = append(out, rec)
	}
	timer.Annotate("records", len(out))
	timer.End()

	write := func(w io.Writer) error {
		cw := record.NewWriter(w, header)
		if err := cw.WritePreamble(preamble); err != nil {
			return err
		}
		for _, rec := range out {
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return cw.Flush()
	}
	if cmd.Output == "" || cmd.Output == loader.Stdin {
		err = write(stdout)
	} else {
		err = loader.WriteFile(cmd.Output, 0o644, write)
	}
	if err != nil {
		return err
	}

	if cmd.XLSX != "" {
		if err := writeRecordsXLSX(cmd.XLSX, header, out); err != nil {
			return err
		}
	}

	if cmd.Output != "" && cmd.Output != loader.Stdin {
		printSuccess(stderr, fmt.Sprintf("Wrote %d records to %s", len(out), displayPath(cmd.Output)))
	}
	if short := len(alloc.Shortfalls()); short > 0 {
		log.Warn().Int("shortfalls", short).Msg("disposals exceeded the open lots")
	}
	if cmd.Summary {
		return renderOpenLots(stderr, alloc.Inventory())
	}
	return nil
}

func records(recs []record.Record) iter.Seq2[record.Record, error] {
	return func(yield func(record.Record, error) bool) {
		for _, rec := range recs {
			if !yield(rec, nil) {
				return
			}
		}
	}
}

func writeRecordsXLSX(path string, header []string, recs []record.Record) error {
	wb := spreadsheet.New()
	defer wb.Close()

	sheet, err := wb.Sheet("LIFO")
	if err != nil {
		return err
	}
	if err := sheet.Header(header...); err != nil {
		return err
	}
	for _, rec := range recs {
		values := rec.Values(header)
		cells := make([]any, len(values))
		for i, v := range values {
			cells[i] = v
		}
		if err := sheet.Row(cells...); err != nil {
			return err
		}
	}
	return loader.WriteFile(path, 0o644, func(w io.Writer) error {
		_, err := wb.WriteTo(w)
		return err
	})
}

func renderOpenLots(w io.Writer, inv *lots.Inventory) error {
	table := output.NewTable("Asset", "Acquired", "Quantity", "Unit cost", "Open cost").AlignRight(2, 3, 4)
	for _, asset := range inv.Assets() {
		for _, lot := range inv.Lots(asset) {
			unit := lot.UnitCost()
			table.Append(
				lot.Asset,
				lot.Acquired,
				lot.Quantity.String(),
				output.FormatMoney(unit, output.DefaultCurrency),
				output.FormatMoney(unit.Mul(lot.Quantity), output.DefaultCurrency),
			)
		}
	}
	_, _ = fmt.Fprintln(w)
	if table.Len() == 0 {
		printInfof(w, "No open lots")
		return nil
	}
	return table.Render(w, output.NewStyles(w))
}

func loaderName(filename string) string {
	if filename == "" || filename == loader.Stdin {
		return "<stdin>"
	}
	return filename
}
