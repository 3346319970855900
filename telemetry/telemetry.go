// Package telemetry provides hierarchical timing collection for the steps of
// a run: reading input, allocating lots, writing output.
//
// Collectors and the current timer travel through the context, so
// instrumentation does not change function signatures:
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	ctx, timer := telemetry.WithTimer(ctx, "lifo")
//	defer timer.End()
//
//	read := telemetry.StartTimer(ctx, "read report.csv")
//	// ... work ...
//	telemetry.Annotate(ctx, "records", 120)
//	read.End()
//
//	collector.Report(os.Stderr, nil)
package telemetry

import (
	"context"
	"io"

	"github.com/robinvdvleuten/financial/output"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey int

const (
	collectorKey contextKey = iota
	timerKey
)

// Collector collects telemetry for one run.
type Collector interface {
	// Start begins timing a top-level operation.
	Start(name string) Timer

	// Report outputs the collected telemetry. styles may be nil for plain
	// output.
	Report(w io.Writer, styles *output.Styles)
}

// Timer tracks a single operation's timing.
type Timer interface {
	// End stops the timer and records the duration.
	End()

	// Child creates a nested timer under this timer.
	Child(name string) Timer

	// Annotate attaches a value shown next to the timer in reports.
	Annotate(key string, value any)
}

// WithCollector adds a collector to a context.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext extracts the collector from context.
// If no collector is present, returns a collector that does nothing.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}

// StartTimer starts a timer nested under the context's current timer, or a
// top-level timer of the context's collector.
func StartTimer(ctx context.Context, name string) Timer {
	if parent, ok := ctx.Value(timerKey).(Timer); ok {
		return parent.Child(name)
	}
	return FromContext(ctx).Start(name)
}

// WithTimer starts a timer like StartTimer and makes it the current timer of
// the returned context.
func WithTimer(ctx context.Context, name string) (context.Context, Timer) {
	timer := StartTimer(ctx, name)
	return context.WithValue(ctx, timerKey, timer), timer
}

// Annotate attaches a value to the context's current timer.
func Annotate(ctx context.Context, key string, value any) {
	if timer, ok := ctx.Value(timerKey).(Timer); ok {
		timer.Annotate(key, value)
	}
}
