package ledger

import "fmt"

// Account is a named ledger, such as an agent's commission account or a
// downloaded bank account.
type Account struct {
	Name string
	*Ledger
}

// NewAccount creates an empty account.
func NewAccount(name string) *Account {
	return &Account{Name: name, Ledger: New()}
}

func (a *Account) String() string {
	return fmt.Sprintf("%s (%d transactions, balance %s)", a.Name, a.Len(), a.Balance().StringFixed(2))
}
