package telemetry

import (
	"fmt"
	"io"
	"time"

	"github.com/robinvdvleuten/financial/output"
)

// slowOperation marks durations highlighted in styled reports.
const slowOperation = 100 * time.Millisecond

// formatTimingTree outputs the timing tree in a hierarchical format.
// Example output:
//
//	lifo: 125ms
//	├─ read report.csv (records=120): 85ms
//	└─ write output.csv: 40ms
func formatTimingTree(w io.Writer, root *timerNode, styles *output.Styles) {
	duration := formatDuration(root.end.Sub(root.start))
	if styles != nil {
		_, _ = fmt.Fprintf(w, "%s: %s\n", styles.Keyword(root.label()), duration)
	} else {
		_, _ = fmt.Fprintf(w, "%s: %s\n", root.label(), duration)
	}

	for i, child := range root.children {
		formatNode(w, child, "", i == len(root.children)-1, styles)
	}
}

// formatNode recursively formats a node and its children.
func formatNode(w io.Writer, node *timerNode, prefix string, isLast bool, styles *output.Styles) {
	d := node.end.Sub(node.start)

	branch, extension := "├─ ", "│  "
	if isLast {
		branch, extension = "└─ ", "   "
	}

	if styles != nil {
		timing := formatDuration(d)
		if d >= slowOperation {
			timing = styles.Warning(timing)
		} else {
			timing = styles.Dim(timing)
		}
		_, _ = fmt.Fprintf(w, "%s%s: %s\n", styles.Dim(prefix+branch), node.label(), timing)
	} else {
		_, _ = fmt.Fprintf(w, "%s%s%s: %s\n", prefix, branch, node.label(), formatDuration(d))
	}

	for i, child := range node.children {
		formatNode(w, child, prefix+extension, i == len(node.children)-1, styles)
	}
}

// formatDuration shows milliseconds below a second and seconds above. A
// timer that never ended shows as running.
func formatDuration(d time.Duration) string {
	switch {
	case d < 0:
		return "running"
	case d < time.Second:
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	default:
		return fmt.Sprintf("%.2fs", float64(d)/float64(time.Second))
	}
}
