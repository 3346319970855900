package ofx

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/robinvdvleuten/financial/ledger"
	"github.com/shopspring/decimal"
)

// Statement is a downloaded statement imported into a ledger account.
type Statement struct {
	Account  *ledger.Account
	Currency string
	Balance  decimal.Decimal
	AsOf     time.Time
}

// Import reads an OFX response holding bank or credit card statements. Every
// transaction becomes a bank download transaction designated by its
// transaction type, with the institution's name as payee and its memo.
// Transactions repeating an earlier FITID are skipped.
func Import(r io.Reader, accountName string) (*Statement, error) {
	resp, err := ofxgo.ParseResponse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing OFX response: %w", err)
	}
	if len(resp.Bank) == 0 && len(resp.CreditCard) == 0 {
		return nil, errors.New("response holds no bank or credit card statement")
	}

	stmt := &Statement{Account: ledger.NewAccount(accountName), Balance: decimal.Zero}
	seen := map[ofxgo.String]bool{}

	for _, msg := range append(resp.Bank, resp.CreditCard...) {
		var (
			list     *ofxgo.TransactionList
			balance  ofxgo.Amount
			asOf     ofxgo.Date
			currency string
		)
		switch m := msg.(type) {
		case *ofxgo.StatementResponse:
			list, balance, asOf, currency = m.BankTranList, m.BalAmt, m.DtAsOf, m.CurDef.String()
		case *ofxgo.CCStatementResponse:
			list, balance, asOf, currency = m.BankTranList, m.BalAmt, m.DtAsOf, m.CurDef.String()
		default:
			return nil, fmt.Errorf("unexpected response message %T", msg)
		}

		if bal, err := ledger.ParseAmount(balance.String()); err == nil {
			stmt.Balance = stmt.Balance.Add(bal)
		}
		if asOf.Time.After(stmt.AsOf) {
			stmt.AsOf = asOf.Time
		}
		if stmt.Currency == "" {
			stmt.Currency = currency
		}
		if list == nil {
			continue
		}

		for _, t := range list.Transactions {
			if t.FiTID != "" {
				if seen[t.FiTID] {
					continue
				}
				seen[t.FiTID] = true
			}
			amount, err := ledger.ParseAmount(t.TrnAmt.String())
			if err != nil {
				return nil, fmt.Errorf("transaction %s: %w", t.FiTID, err)
			}
			d := ledger.Designate(t.TrnType.String(), amount).WithMemo(string(t.Memo))
			stmt.Account.Add(ledger.NewTransaction(d,
				ledger.WithDate(t.DtPosted.Time),
				ledger.WithPayee(string(t.Name)),
				ledger.WithSource(ledger.SourceBankDownload),
			))
		}
	}
	return stmt, nil
}
