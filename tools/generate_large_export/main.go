// Large Export Generator
//
// This tool generates a large exchange transaction export for performance
// testing and profiling of the lot allocator. Buys and sells alternate over
// a few assets so disposals consume lots of varying depth.
//
// Usage:
//
//	go run main.go > large.csv
//	go run main.go 20000000 > large.csv  # Specify target size in bytes
package main

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/financial/lots"
	"github.com/robinvdvleuten/financial/record"
)

const (
	defaultTargetSize = 10 * 1024 * 1024 // 10MB
)

var (
	assets = []string{"BTC", "ETH", "LTC", "SOL", "ADA"}
	buys   = []string{"Buy", "Receive"}
	sells  = []string{"Sell", "Send", "Convert"}

	// Unit prices the random walk starts at.
	prices = map[string]float64{
		"BTC": 30000,
		"ETH": 2000,
		"LTC": 90,
		"SOL": 25,
		"ADA": 0.3,
	}
)

// countingWriter tracks how many bytes were written.
type countingWriter struct {
	w *bufio.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

func main() {
	targetSize := defaultTargetSize
	if len(os.Args) > 1 {
		size, err := strconv.Atoi(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid size %q: %v\n", os.Args[1], err)
			os.Exit(1)
		}
		targetSize = size
	}

	rng := rand.New(rand.NewSource(42))
	cfg := lots.DefaultConfig()
	header := []string{cfg.DateField, cfg.TypeField, cfg.AssetField, cfg.QuantityField, "Spot Price at Transaction", cfg.AmountField}

	out := &countingWriter{w: bufio.NewWriter(os.Stdout)}
	w := record.NewWriter(out, header)
	if err := w.WritePreamble([][]string{
		{"Transactions"},
		{"User", "Generated", "0000"},
		{"Account", "Profiling"},
	}); err != nil {
		fatal(err)
	}

	held := map[string]float64{}
	date := time.Date(2015, 1, 1, 9, 0, 0, 0, time.UTC)
	for out.n < targetSize {
		asset := assets[rng.Intn(len(assets))]
		prices[asset] *= 1 + (rng.Float64()-0.5)/10
		price := prices[asset]

		var kind string
		var qty float64
		if held[asset] > 0 && rng.Intn(3) == 0 {
			kind = sells[rng.Intn(len(sells))]
			// Occasionally oversell to exercise shortfalls.
			qty = held[asset] * (rng.Float64() * 1.05)
			held[asset] = max(held[asset]-qty, 0)
		} else {
			kind = buys[rng.Intn(len(buys))]
			qty = 1000 / price * (0.1 + rng.Float64())
			held[asset] += qty
		}

		q := decimal.NewFromFloat(qty).Round(8)
		p := decimal.NewFromFloat(price).Round(2)
		rec := record.New(header, []string{
			date.Format(time.RFC3339),
			kind,
			asset,
			q.String(),
			p.String(),
			q.Mul(p).Round(2).String(),
		})
		if err := w.Write(rec); err != nil {
			fatal(err)
		}
		date = date.Add(time.Duration(rng.Intn(720)+1) * time.Minute)
	}

	if err := w.Flush(); err != nil {
		fatal(err)
	}
	if err := out.w.Flush(); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
