package main

import (
	"errors"
	"os"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/financial/cli"
)

var app struct {
	Version kong.VersionFlag `help:"Show version information"`
	cli.Commands
}

func main() {
	ctx := kong.Parse(&app,
		kong.Vars(cli.Vars()),
		kong.Name("financial"),
		kong.Description("Tools for lot accounting, residual commissions and bank statements."),
		kong.UsageOnError(),
		kong.Bind(&app.Globals),
	)

	err := ctx.Run()

	// Commands report their own failures and only ask for an exit code.
	var cmdErr *cli.CommandError
	if errors.As(err, &cmdErr) {
		os.Exit(cmdErr.ExitCode())
	}
	ctx.FatalIfErrorf(err)
}
