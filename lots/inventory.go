package lots

import (
	"slices"
	"sort"

	"github.com/shopspring/decimal"
)

// Inventory keeps a stack of open lots per asset. The most recently
// acquired lot is at the top.
type Inventory struct {
	lots map[string][]*Lot
}

// NewInventory creates an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{lots: make(map[string][]*Lot)}
}

func (inv *Inventory) push(l *Lot) {
	inv.lots[l.Asset] = append(inv.lots[l.Asset], l)
}

// pop removes the most recent lot of asset, or returns nil.
func (inv *Inventory) pop(asset string) *Lot {
	stack := inv.lots[asset]
	if len(stack) == 0 {
		return nil
	}
	l := stack[len(stack)-1]
	inv.lots[asset] = stack[:len(stack)-1]
	return l
}

// Lots returns the open lots of asset, oldest first.
func (inv *Inventory) Lots(asset string) []*Lot {
	return slices.Clone(inv.lots[asset])
}

// Quantity returns the total open quantity of asset.
func (inv *Inventory) Quantity(asset string) decimal.Decimal {
	total := decimal.Zero
	for _, l := range inv.lots[asset] {
		total = total.Add(l.Quantity)
	}
	return total
}

// Assets returns the assets with open lots, sorted.
func (inv *Inventory) Assets() []string {
	var assets []string
	for asset, stack := range inv.lots {
		if len(stack) > 0 {
			assets = append(assets, asset)
		}
	}
	sort.Strings(assets)
	return assets
}
