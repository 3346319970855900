package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/financial/loader"
	"github.com/robinvdvleuten/financial/ofx"
	"github.com/robinvdvleuten/financial/output"
	"github.com/robinvdvleuten/financial/telemetry"
)

// OFXCmd groups the OFX commands.
type OFXCmd struct {
	Sites    OFXSitesCmd    `cmd:"" help:"List the known institutions."`
	Download OFXDownloadCmd `cmd:"" help:"Download account information or a statement."`
	Import   OFXImportCmd   `cmd:"" help:"Show the transactions of a downloaded statement."`
}

// OFXSitesCmd lists the site directory.
type OFXSitesCmd struct{}

func (cmd *OFXSitesCmd) Run(ctx *kong.Context) error {
	table := output.NewTable("Site", "Org", "FID", "Services", "URL")
	for _, s := range ofx.Sites {
		caps := make([]string, len(s.Caps))
		for i, c := range s.Caps {
			caps[i] = string(c)
		}
		table.Append(s.Name, s.Org, s.FID, strings.Join(caps, ","), s.URL)
	}
	return table.Render(ctx.Stdout, output.NewStyles(ctx.Stdout))
}

var apps = map[string]ofx.AppInfo{
	"pyofx":       ofx.AppPyOFX,
	"quicken":     ofx.AppQuicken2009,
	"quicken-old": ofx.AppQuickenOld,
}

// OFXDownloadCmd downloads from a site. Without --account it downloads the
// account information listing the user's accounts.
type OFXDownloadCmd struct {
	Site        string        `arg:"" help:"Institution to download from, see 'ofx sites'."`
	Account     string        `help:"Account to download a statement for."`
	AccountType string        `default:"CHECKING" help:"Type of a bank account: CHECKING, SAVINGS, MONEYMRKT or CREDITLINE."`
	User        string        `required:"" env:"FINANCIAL_OFX_USER" help:"User name at the institution."`
	Password    string        `env:"FINANCIAL_OFX_PASSWORD" help:"Password at the institution, prompted for when omitted."`
	Since       time.Duration `default:"744h" help:"How far back the statement goes."`
	App         string        `enum:"pyofx,quicken,quicken-old" default:"quicken" help:"Application to identify as."`
	Output      string        `short:"o" type:"path" help:"File to write, named after the site and date by default."`

	URL    string `help:"Override the server URL of the site."`
	FID    string `name:"fid" help:"Override the FID of the site."`
	Org    string `help:"Override the organization of the site."`
	BankID string `help:"Override the bank ID of the site."`
}

func (cmd *OFXDownloadCmd) site() (ofx.Site, error) {
	site, err := ofx.LookupSite(cmd.Site)
	if err != nil {
		return site, err
	}
	if cmd.URL != "" {
		site.URL = cmd.URL
	}
	if cmd.FID != "" {
		site.FID = cmd.FID
	}
	if cmd.Org != "" {
		site.Org = cmd.Org
	}
	if cmd.BankID != "" {
		site.BankID = cmd.BankID
	}
	return site, nil
}

func (cmd *OFXDownloadCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, finish := globals.begin(ctx.Stderr, "ofx download "+cmd.Site)
	defer finish()

	if cmd.Password == "" {
		password, err := promptPassword(fmt.Sprintf("Password for %s at %s", cmd.User, cmd.Site))
		if err != nil {
			return globals.fail(ctx.Stderr, err, nil)
		}
		cmd.Password = password
	}

	if err := cmd.run(runCtx, ctx.Stderr); err != nil {
		return globals.fail(ctx.Stderr, err, nil)
	}
	return nil
}

func (cmd *OFXDownloadCmd) run(ctx context.Context, stderr io.Writer) error {
	site, err := cmd.site()
	if err != nil {
		return err
	}
	client := ofx.NewClient(site, cmd.User, cmd.Password, ofx.WithApp(apps[cmd.App]))

	req, err := client.Query(cmd.Account, cmd.AccountType, time.Now().Add(-cmd.Since))
	if err != nil {
		return err
	}

	path := cmd.Output
	if path == "" {
		path = client.Filename(cmd.Account)
	}

	timer := telemetry.StartTimer(ctx, "ofx.download "+site.Name)
	defer timer.End()
	if err := loader.WriteFile(path, 0o644, func(w io.Writer) error {
		return client.Download(ctx, req, w)
	}); err != nil {
		return err
	}
	printSuccess(stderr, fmt.Sprintf("Downloaded %s", displayPath(path)))
	return nil
}

// OFXImportCmd reads a downloaded statement into an account and shows it.
type OFXImportCmd struct {
	File    string `arg:"" type:"existingfile" help:"Downloaded OFX statement."`
	Account string `help:"Name of the account, the file name by default."`
}

func (cmd *OFXImportCmd) Run(ctx *kong.Context, globals *Globals) error {
	_, finish := globals.begin(ctx.Stderr, "ofx import")
	defer finish()

	if err := cmd.run(ctx.Stdout); err != nil {
		return globals.fail(ctx.Stderr, err, nil)
	}
	return nil
}

func (cmd *OFXImportCmd) run(w io.Writer) error {
	name := cmd.Account
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(cmd.File), filepath.Ext(cmd.File))
	}

	f, err := os.Open(cmd.File)
	if err != nil {
		return err
	}
	defer f.Close()

	stmt, err := ofx.Import(f, name)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.File, err)
	}

	styles := output.NewStyles(w)
	table := output.NewTable("Date", "Payee", "Category", "Amount").AlignRight(3)
	for tx := range stmt.Account.All() {
		for d := range tx.Designations() {
			table.Append(tx.Date.Format("2006-01-02"), tx.Payee, d.Descriptor, output.FormatMoney(d.Amount, stmt.Currency))
		}
	}
	_, _ = fmt.Fprintln(w, styles.Account(stmt.Account.String()))
	if err := table.Render(w, styles); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Statement balance %s as of %s\n",
		styles.Amount(output.FormatMoney(stmt.Balance, stmt.Currency)), stmt.AsOf.Format("2006-01-02"))
	return err
}
