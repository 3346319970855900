// Package residual books merchant-processing residuals reported by the
// Translink portal into per-agent ledgers, splitting each residual with the
// house.
package residual

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/robinvdvleuten/financial/record"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Column names of the residual report.
const (
	AgentIDColumn      = "Sales Rep Number"
	AgentNameColumn    = "Sales Rep Name"
	MerchantIDColumn   = "Merchant ID"
	MerchantNameColumn = "DBA Name"
)

// zeroResidual is how the report prints a month without residuals.
const zeroResidual = "$0.00"

var periodColumn = regexp.MustCompile(`^(\d+)/(\d+)`)

// Merchant is a merchant account serviced by an agent.
type Merchant struct {
	ID   string
	Name string
}

func (m *Merchant) String() string {
	return fmt.Sprintf("%s (%s)", m.Name, m.ID)
}

// Residual is the amount earned from a merchant in one month.
type Residual struct {
	// Period is the report column, M/YYYY.
	Period string
	// Amount is the raw reported amount.
	Amount string
}

// Date returns the first day of the residual's month.
func (r Residual) Date() (time.Time, error) {
	m := periodColumn.FindStringSubmatch(r.Period)
	if m == nil {
		return time.Time{}, fmt.Errorf("invalid residual period %q", r.Period)
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("invalid residual period %q: month out of range", r.Period)
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

func (r Residual) String() string {
	return fmt.Sprintf("Residual(%s, %s)", r.Period, r.Amount)
}

// Agent is a sales representative and the residuals of their merchants.
type Agent struct {
	ID        string
	Name      string
	merchants []*Merchant
	residuals map[*Merchant][]Residual
}

func newAgent(id, name string) *Agent {
	return &Agent{ID: id, Name: name, residuals: make(map[*Merchant][]Residual)}
}

// Merchants returns the agent's merchants in report order.
func (a *Agent) Merchants() []*Merchant {
	return a.merchants
}

// Residuals returns the residuals of merchant.
func (a *Agent) Residuals(m *Merchant) []Residual {
	return a.residuals[m]
}

// setResiduals replaces the residuals of m, the last row for a merchant
// winning.
func (a *Agent) setResiduals(m *Merchant, rs []Residual) {
	if _, ok := a.residuals[m]; !ok {
		a.merchants = append(a.merchants, m)
	}
	a.residuals[m] = rs
}

func (a *Agent) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s)", a.Name, a.ID)
	for _, m := range a.merchants {
		fmt.Fprintf(&sb, "\n  %s", m)
		for _, r := range a.residuals[m] {
			fmt.Fprintf(&sb, "\n    %s", r)
		}
	}
	return sb.String()
}

// Report is a parsed residual report.
type Report struct {
	Agents    *Registry[string, *Agent]
	Merchants *Registry[string, *Merchant]
}

// ParseReport reads a residual report. The portal exports an HTML fragment
// holding exactly one table whose first row is the header.
func ParseReport(r io.Reader) (*Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(io.MultiReader(
		strings.NewReader("<html>"),
		bytes.NewReader(data),
		strings.NewReader("</html>"),
	))
	if err != nil {
		return nil, fmt.Errorf("parsing report: %w", err)
	}

	tables := findAll(doc, atom.Table)
	if len(tables) != 1 {
		return nil, fmt.Errorf("report has %d tables, expected exactly 1", len(tables))
	}
	rows, err := parseTable(tables[0])
	if err != nil {
		return nil, err
	}

	report := &Report{
		Agents:    NewRegistry[string, *Agent](),
		Merchants: NewRegistry[string, *Merchant](),
	}
	for _, row := range rows {
		if err := report.add(row); err != nil {
			return nil, err
		}
	}
	return report, nil
}

func (rep *Report) add(row record.Record) error {
	for _, col := range []string{AgentIDColumn, AgentNameColumn, MerchantIDColumn, MerchantNameColumn} {
		if _, ok := row.Lookup(col); !ok {
			return fmt.Errorf("%s: missing column %q", row.Pos, col)
		}
	}

	id := strings.TrimSpace(row.Get(AgentIDColumn))
	name := strings.TrimSpace(row.Get(AgentNameColumn))
	agent := rep.Agents.GetOrCreate(id, func() *Agent {
		return newAgent(id, name)
	})

	merchantID := row.Get(MerchantIDColumn)
	merchantName := strings.TrimSpace(row.Get(MerchantNameColumn))
	merchant := rep.Merchants.GetOrCreate(merchantID, func() *Merchant {
		return &Merchant{ID: merchantID, Name: merchantName}
	})

	var residuals []Residual
	for _, key := range row.Keys() {
		if !periodColumn.MatchString(key) {
			continue
		}
		amount := strings.TrimSpace(row.Get(key))
		if amount == zeroResidual {
			continue
		}
		residuals = append(residuals, Residual{Period: key, Amount: amount})
	}
	agent.setResiduals(merchant, residuals)
	return nil
}

// parseTable returns the rows after the header as records keyed by the
// header cells. Positions count table rows, the header being row 1.
func parseTable(table *html.Node) ([]record.Record, error) {
	trs := findAll(table, atom.Tr)
	if len(trs) == 0 {
		return nil, errors.New("report table has no rows")
	}
	header := cells(trs[0])
	var rows []record.Record
	for i, tr := range trs[1:] {
		rec := record.New(header, cells(tr))
		rec.Pos = record.Position{Line: i + 2}
		rows = append(rows, rec)
	}
	return rows, nil
}

func cells(tr *html.Node) []string {
	var out []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
			out = append(out, text(c))
		}
	}
	return out
}

func text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func findAll(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == a {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}
