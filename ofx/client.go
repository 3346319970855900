// Package ofx downloads statements from financial institutions speaking
// OFX 1.02 and imports them into ledger accounts.
package ofx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/robinvdvleuten/financial/logger"
)

// ContentType is the media type of OFX requests and responses.
const ContentType = "application/x-ofx"

// AppInfo identifies the client application to the server.
type AppInfo struct {
	ID      string
	Version string
}

var (
	AppPyOFX       = AppInfo{ID: "PyOFX", Version: "0100"}
	AppQuicken2009 = AppInfo{ID: "QWIN", Version: "1800"}
	AppQuickenOld  = AppInfo{ID: "QWIN", Version: "1200"}
)

// epoch is the DTACCTUP of an account information request asking for
// every account.
var epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// Client builds and sends OFX requests for one user at one site.
type Client struct {
	Site     Site
	User     string
	Password string
	App      AppInfo
	HTTP     *http.Client

	cookie int
	now    func() time.Time
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithApp sets the application the client identifies as.
func WithApp(app AppInfo) ClientOption {
	return func(c *Client) {
		c.App = app
	}
}

// WithHTTPClient sets the HTTP client used by Download.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.HTTP = h
	}
}

// NewClient creates a client. Servers commonly refuse unknown applications,
// so the client identifies as Quicken 2009 unless WithApp says otherwise.
func NewClient(site Site, user, password string, opts ...ClientOption) *Client {
	c := &Client{
		Site:     site,
		User:     user,
		Password: password,
		App:      AppQuicken2009,
		HTTP:     http.DefaultClient,
		cookie:   3,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) nextCookie() ofxgo.String {
	c.cookie++
	return ofxgo.String(strconv.Itoa(c.cookie))
}

func (c *Client) newRequest() *ofxgo.Request {
	req := &ofxgo.Request{
		URL: c.Site.URL,
		Signon: ofxgo.SignonRequest{
			DtClient: ofxgo.Date{Time: c.now()},
			UserID:   ofxgo.String(c.User),
			UserPass: ofxgo.String(c.Password),
			Language: "ENG",
			Org:      ofxgo.String(c.Site.Org),
			Fid:      ofxgo.String(c.Site.FID),
		},
	}
	req.SetClientFields(&ofxgo.BasicClient{
		AppID:       c.App.ID,
		AppVer:      c.App.Version,
		SpecVersion: ofxgo.OfxVersion102,
	})
	return req
}

// AccountInfoRequest asks for the accounts the user holds at the site.
func (c *Client) AccountInfoRequest() (*ofxgo.Request, error) {
	uid, err := ofxgo.RandomUID()
	if err != nil {
		return nil, err
	}
	req := c.newRequest()
	req.Signup = append(req.Signup, &ofxgo.AcctInfoRequest{
		TrnUID:    *uid,
		CltCookie: c.nextCookie(),
		DtAcctUp:  ofxgo.Date{Time: epoch},
	})
	return req, nil
}

// BankStatementRequest asks for the transactions of a bank account since
// start. accountType is CHECKING, SAVINGS, MONEYMRKT or CREDITLINE.
func (c *Client) BankStatementRequest(account, accountType string, start time.Time) (*ofxgo.Request, error) {
	if accountType == "" {
		return nil, errors.New("bank statements need an account type such as CHECKING or SAVINGS")
	}
	acctType, err := ofxgo.NewAcctType(accountType)
	if err != nil {
		return nil, fmt.Errorf("invalid account type %q: %w", accountType, err)
	}
	uid, err := ofxgo.RandomUID()
	if err != nil {
		return nil, err
	}
	req := c.newRequest()
	req.Bank = append(req.Bank, &ofxgo.StatementRequest{
		TrnUID:    *uid,
		CltCookie: c.nextCookie(),
		BankAcctFrom: ofxgo.BankAcct{
			BankID:   ofxgo.String(c.Site.BankID),
			AcctID:   ofxgo.String(account),
			AcctType: acctType,
		},
		DtStart: &ofxgo.Date{Time: start},
		Include: true,
	})
	return req, nil
}

// CreditCardStatementRequest asks for the transactions of a credit card
// since start.
func (c *Client) CreditCardStatementRequest(account string, start time.Time) (*ofxgo.Request, error) {
	uid, err := ofxgo.RandomUID()
	if err != nil {
		return nil, err
	}
	req := c.newRequest()
	req.CreditCard = append(req.CreditCard, &ofxgo.CCStatementRequest{
		TrnUID:     *uid,
		CltCookie:  c.nextCookie(),
		CCAcctFrom: ofxgo.CCAcct{AcctID: ofxgo.String(account)},
		DtStart:    &ofxgo.Date{Time: start},
		Include:    true,
	})
	return req, nil
}

// InvestmentStatementRequest asks for the transactions, open orders,
// positions and balances of a brokerage account. The site's organization
// is the broker ID.
func (c *Client) InvestmentStatementRequest(account string, start time.Time) (*ofxgo.Request, error) {
	uid, err := ofxgo.RandomUID()
	if err != nil {
		return nil, err
	}
	req := c.newRequest()
	req.InvStmt = append(req.InvStmt, &ofxgo.InvStatementRequest{
		TrnUID:    *uid,
		CltCookie: c.nextCookie(),
		InvAcctFrom: ofxgo.InvAcct{
			BrokerID: ofxgo.String(c.Site.Org),
			AcctID:   ofxgo.String(account),
		},
		DtStart:        &ofxgo.Date{Time: start},
		Include:        true,
		IncludeOO:      true,
		PosDtAsOf:      &ofxgo.Date{Time: c.now()},
		IncludePos:     true,
		IncludeBalance: true,
	})
	return req, nil
}

// Query builds the request for account according to the site's
// capabilities. Without an account it asks for account information.
func (c *Client) Query(account, accountType string, start time.Time) (*ofxgo.Request, error) {
	switch {
	case account == "":
		return c.AccountInfoRequest()
	case c.Site.Has(CapCreditCard):
		return c.CreditCardStatementRequest(account, start)
	case c.Site.Has(CapInvestment):
		return c.InvestmentStatementRequest(account, start)
	case c.Site.Has(CapBankStatement):
		return c.BankStatementRequest(account, accountType, start)
	default:
		return nil, fmt.Errorf("site %s serves no statements", c.Site.Name)
	}
}

// Filename returns where a download is saved: "<site> account info.ofx"
// without an account, otherwise "<site> <YYYY-MM-DD>.ofx".
func (c *Client) Filename(account string) string {
	if account == "" {
		return c.Site.Name + " account info.ofx"
	}
	return c.Site.Name + " " + c.now().Format("2006-01-02") + ".ofx"
}

// Download posts req to the site and copies the response payload to w. A
// response that is not labeled as OFX is logged and still written.
func (c *Client) Download(ctx context.Context, req *ofxgo.Request, w io.Writer) error {
	log := logger.FromContext(ctx)

	body, err := req.Marshal()
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Site.URL, body)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", ContentType)
	httpReq.Header.Set("Accept", "*/*, "+ContentType)

	log.Debug().Str("url", c.Site.URL).Msg("sending OFX request")
	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: unexpected status %s", c.Site.Name, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err != nil || mediaType != ContentType {
		log.Warn().Str("site", c.Site.Name).Str("content_type", contentType).Msg("unexpected content type")
	}

	_, err = io.Copy(w, resp.Body)
	return err
}
