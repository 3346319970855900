package cli

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/financial/qif"
)

// FixQIFDatesCmd rewrites M/D/Y dates of QIF files in place.
type FixQIFDatesCmd struct {
	Files []string `arg:"" type:"existingfile" help:"QIF files to fix."`
}

func (cmd *FixQIFDatesCmd) Run(ctx *kong.Context, globals *Globals) error {
	_, finish := globals.begin(ctx.Stderr, "fix-qif-dates")
	defer finish()

	for _, file := range cmd.Files {
		n, err := qif.FixFile(file)
		if err != nil {
			return globals.fail(ctx.Stderr, fmt.Errorf("%s: %w", file, err), nil)
		}
		if n == 0 {
			printInfof(ctx.Stderr, "No dates to fix in %s", displayPath(file))
			continue
		}
		printSuccess(ctx.Stderr, fmt.Sprintf("Fixed %d dates in %s", n, displayPath(file)))
	}
	return nil
}
