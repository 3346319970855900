package telemetry

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/robinvdvleuten/financial/output"
)

// TimingCollector collects hierarchical timing data.
// Top-level timers become siblings under an implicit root.
type TimingCollector struct {
	roots []*timerNode
	mu    sync.Mutex
	now   func() time.Time
}

// timerNode represents a single timed operation in the tree.
type timerNode struct {
	name        string
	start       time.Time
	end         time.Time
	annotations []annotation
	children    []*timerNode
}

type annotation struct {
	key   string
	value any
}

func (n *timerNode) label() string {
	if len(n.annotations) == 0 {
		return n.name
	}
	label := n.name + " ("
	for i, a := range n.annotations {
		if i > 0 {
			label += ", "
		}
		label += fmt.Sprintf("%s=%v", a.key, a.value)
	}
	return label + ")"
}

// NewTimingCollector creates a new timing collector.
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{now: time.Now}
}

// Start begins timing a top-level operation.
func (c *TimingCollector) Start(name string) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := &timerNode{name: name, start: c.now()}
	c.roots = append(c.roots, node)
	return &timingTimer{collector: c, node: node}
}

// Report outputs the timing trees to a writer.
func (c *TimingCollector) Report(w io.Writer, styles *output.Styles) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, root := range c.roots {
		formatTimingTree(w, root, styles)
	}
}

// timingTimer is a Timer implementation that records to a TimingCollector.
type timingTimer struct {
	collector *TimingCollector
	node      *timerNode
}

// End stops the timer. Ending twice keeps the first end time.
func (t *timingTimer) End() {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	if t.node.end.IsZero() {
		t.node.end = t.collector.now()
	}
}

// Child creates a nested timer.
func (t *timingTimer) Child(name string) Timer {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	node := &timerNode{name: name, start: t.collector.now()}
	t.node.children = append(t.node.children, node)
	return &timingTimer{collector: t.collector, node: node}
}

// Annotate attaches a value to the timer.
func (t *timingTimer) Annotate(key string, value any) {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	t.node.annotations = append(t.node.annotations, annotation{key: key, value: value})
}
