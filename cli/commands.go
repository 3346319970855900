package cli

import (
	"fmt"

	"github.com/robinvdvleuten/financial/logger"
)

var (
	// Version contains the application version number. It's set via ldflags
	// when building.
	Version = ""

	// CommitSHA contains the SHA of the commit that this application was
	// built against. It's set via ldflags when building.
	CommitSHA = ""
)

// BuildVersion returns the version shown by --version.
func BuildVersion() string {
	version := Version
	if version == "" {
		version = "dev"
	}
	if CommitSHA == "" {
		return version
	}
	return fmt.Sprintf("%s (%s)", version, CommitSHA)
}

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry   bool   `help:"Show timing telemetry for operations."`
	LogLevel    string `help:"Log level of diagnostics." enum:"${log_levels}" default:"info" env:"FINANCIAL_LOG_LEVEL"`
	ErrorFormat string `help:"Format of reported errors." enum:"text,json" default:"text"`
}

// Vars are the interpolation variables of the command tags.
func Vars() map[string]string {
	return map[string]string{
		"version":    BuildVersion(),
		"log_levels": logger.Levels,
	}
}

type Commands struct {
	Globals

	Lifo        LifoCmd        `cmd:"" help:"Match disposals to acquired lots last-in first-out and add their cost basis."`
	Residuals   ResidualsCmd   `cmd:"" help:"Book a residual report into the agents' accounts."`
	FixQIFDates FixQIFDatesCmd `cmd:"" name:"fix-qif-dates" help:"Rewrite the dates of QIF files to DD-MM-YYYY."`
	OFX         OFXCmd         `cmd:"" name:"ofx" help:"Download and import OFX statements."`
	Doctor      DoctorCmd      `cmd:"" help:"Doctor utilities for debugging record inputs."`
}
