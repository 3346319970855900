// Package lots resolves disposals of assets against previously acquired lots
// using LIFO: a sale consumes the most recently acquired lots first.
//
// The allocator reads a chronological feed of records. Every record is passed
// through unchanged. A disposal is additionally followed by one synthesized
// record per lot it consumed, carrying the allocated quantity, the lot's
// acquisition date and the proportional cost basis:
//
//	alloc := lots.New(lots.DefaultConfig())
//	for rec, err := range alloc.All(reader.All()) {
//	    if err != nil {
//	        return err
//	    }
//	    writer.Write(rec)
//	}
package lots

import (
	"fmt"
	"io"
	"iter"
	"os"
	"regexp"

	"github.com/robinvdvleuten/financial/ledger"
	"github.com/robinvdvleuten/financial/record"
	"github.com/shopspring/decimal"
)

// Shortfall is reported when a disposal exceeds the open lots of its asset.
// The unmatched quantity gets no synthesized record.
type Shortfall struct {
	Pos       record.Position
	Asset     string
	Unmatched decimal.Decimal
}

func (s Shortfall) String() string {
	return fmt.Sprintf("Warning! No lots for %s", s.Asset)
}

// Allocator matches disposals to lots. It is not safe for concurrent use.
type Allocator struct {
	cfg       Config
	buy       *regexp.Regexp
	inventory *Inventory
	onShort   func(Shortfall)
	shorts    []Shortfall
	err       error
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithShortfallHandler sets the function called for each shortfall. The
// default prints a warning to stderr.
func WithShortfallHandler(fn func(Shortfall)) Option {
	return func(a *Allocator) {
		a.onShort = fn
	}
}

// WithWarnings prints shortfall warnings to w.
func WithWarnings(w io.Writer) Option {
	return WithShortfallHandler(func(s Shortfall) {
		fmt.Fprintln(w, s)
	})
}

// New creates an allocator. An invalid buy pattern makes every call to
// Handle fail with a ConfigError; use Config.Validate to catch it early.
func New(cfg Config, opts ...Option) *Allocator {
	a := &Allocator{
		cfg:       cfg,
		inventory: NewInventory(),
	}
	a.buy, a.err = cfg.compile()
	WithWarnings(os.Stderr)(a)
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Inventory returns the open lots.
func (a *Allocator) Inventory() *Inventory {
	return a.inventory
}

// Shortfalls returns the shortfalls reported so far.
func (a *Allocator) Shortfalls() []Shortfall {
	return a.shorts
}

// Handle processes one record and returns it followed by the synthesized
// lot records. On error no record is returned and the run should stop. The
// amount of an acquisition is only required once one of its lots is
// consumed, so an unparsable amount on a lot that is never sold is ignored.
func (a *Allocator) Handle(rec record.Record) ([]record.Record, error) {
	if a.err != nil {
		return nil, a.err
	}

	out := []record.Record{rec.Clone()}
	asset := rec.Get(a.cfg.AssetField)

	qty, err := a.number(rec, a.cfg.QuantityField)
	if err != nil {
		return nil, err
	}

	if a.buy.MatchString(rec.Get(a.cfg.TypeField)) {
		if qty.IsPositive() {
			lot := newLot(asset, rec.Get(a.cfg.DateField), qty, decimal.Zero)
			lot.Cost, lot.costErr = a.number(rec, a.cfg.AmountField)
			a.inventory.push(lot)
		}
		return out, nil
	}

	saleType := rec.Get(a.cfg.TypeField) + a.cfg.LotSuffix
	outstanding := qty
	for outstanding.IsPositive() {
		lot := a.inventory.pop(asset)
		if lot == nil {
			a.shortfall(Shortfall{Pos: rec.Pos, Asset: asset, Unmatched: outstanding})
			break
		}
		if lot.costErr != nil {
			a.inventory.push(lot)
			return nil, lot.costErr
		}

		alloc, basis := lot.consume(outstanding)
		outstanding = outstanding.Sub(alloc)

		var synth record.Record
		synth.Pos = rec.Pos
		synth.Set(a.cfg.QuantityField, alloc.String())
		synth.Set(a.cfg.DateField, lot.Acquired)
		synth.Set(a.cfg.TypeField, saleType)
		synth.Set(a.cfg.AmountField, basis.String())
		out = append(out, synth)

		if lot.Quantity.IsPositive() {
			a.inventory.push(lot)
		}
	}
	return out, nil
}

func (a *Allocator) shortfall(s Shortfall) {
	a.shorts = append(a.shorts, s)
	if a.onShort != nil {
		a.onShort(s)
	}
}

func (a *Allocator) number(rec record.Record, field string) (decimal.Decimal, error) {
	value := rec.Get(field)
	d, err := ledger.ParseAmount(value)
	if err != nil {
		return decimal.Zero, &NumberError{Pos: rec.Pos, Field: field, Value: value, Err: err}
	}
	return d, nil
}

// All lazily allocates every record of seq. The first error, from seq or
// from allocation, is yielded and ends the sequence.
func (a *Allocator) All(seq iter.Seq2[record.Record, error]) iter.Seq2[record.Record, error] {
	return func(yield func(record.Record, error) bool) {
		for rec, err := range seq {
			if err != nil {
				yield(record.Record{}, err)
				return
			}
			out, err := a.Handle(rec)
			if err != nil {
				yield(record.Record{}, err)
				return
			}
			for _, r := range out {
				if !yield(r, nil) {
					return
				}
			}
		}
	}
}

// Resolve allocates a slice of records.
func Resolve(cfg Config, recs []record.Record, opts ...Option) ([]record.Record, error) {
	a := New(cfg, opts...)
	var out []record.Record
	for _, rec := range recs {
		rs, err := a.Handle(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, rs...)
	}
	return out, nil
}
