package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/financial/loader"
	"github.com/robinvdvleuten/financial/logger"
	"github.com/robinvdvleuten/financial/output"
	"github.com/robinvdvleuten/financial/residual"
	"github.com/robinvdvleuten/financial/telemetry"
)

// ResidualsCmd books a residual report into the agents' accounts.
type ResidualsCmd struct {
	Report string `arg:"" type:"existingfile" help:"Residual report (HTML) to book."`
	State  string `default:"residuals.json" type:"path" help:"File holding the booked accounts."`
	Export string `type:"path" help:"Also write the accounts to this spreadsheet."`
	Share  string `default:"0.5" help:"Part of every residual shared with the house."`
	Yes    bool   `short:"y" help:"Overwrite an existing export without asking."`
}

func (cmd *ResidualsCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, finish := globals.begin(ctx.Stderr, "residuals "+cmd.Report)
	defer finish()

	if err := cmd.run(runCtx, ctx.Stdout, ctx.Stderr, promptYesNo); err != nil {
		return globals.fail(ctx.Stderr, err, nil)
	}
	return nil
}

func (cmd *ResidualsCmd) run(ctx context.Context, stdout, stderr io.Writer, confirm func(string) (bool, error)) error {
	log := logger.FromContext(ctx)

	share, err := decimal.NewFromString(cmd.Share)
	if err != nil {
		return fmt.Errorf("invalid share %q: %w", cmd.Share, err)
	}

	timer := telemetry.StartTimer(ctx, "residual.parse")
	f, err := os.Open(cmd.Report)
	if err != nil {
		timer.End()
		return err
	}
	report, err := residual.ParseReport(f)
	_ = f.Close()
	timer.End()
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.Report, err)
	}

	book, err := residual.LoadBook(cmd.State)
	if err != nil {
		return err
	}
	sum, err := book.Apply(report, share)
	if err != nil {
		return err
	}
	log.Debug().Int("booked", sum.Booked).Int("skipped", sum.Skipped).Msg("applied report")

	if err := book.Save(cmd.State); err != nil {
		return err
	}
	printSuccess(stderr, fmt.Sprintf("Booked %d residuals (%d already booked) into %s",
		sum.Booked, sum.Skipped, displayPath(cmd.State)))

	table := output.NewTable("Agent", "Name", "Transactions", "Balance").AlignRight(2, 3)
	for id, acct := range book.Accounts() {
		table.Append(id, acct.Name, fmt.Sprint(acct.Len()), output.FormatMoney(acct.Balance(), output.DefaultCurrency))
	}
	if err := table.Render(stdout, output.NewStyles(stdout)); err != nil {
		return err
	}

	if cmd.Export == "" {
		return nil
	}
	if _, err := os.Stat(cmd.Export); err == nil && !cmd.Yes {
		ok, err := confirm(fmt.Sprintf("Overwrite %s?", cmd.Export))
		if err != nil {
			return err
		}
		if !ok {
			printInfof(stderr, "Skipped export to %s", displayPath(cmd.Export))
			return nil
		}
	}
	if err := loader.WriteFile(cmd.Export, 0o644, book.ExportXLSX); err != nil {
		return err
	}
	printSuccess(stderr, fmt.Sprintf("Exported %d accounts to %s", book.Len(), displayPath(cmd.Export)))
	return nil
}
