// Package summariser is the separate, standalone analysis binary's core:
// it never shares process state with the Scenario Runner, the Report
// Collector Bus, or the Operation Store (see spec.md §2). It reads a
// RunSummary and queries a metrics backend for the operations and custom
// metrics that run recorded, then dispatches to a scenario-specific
// aggregator that knows how to turn those into a meaningful report.
//
// Frame replaces the original's Polars DataFrame with a small columnar
// struct: one []time.Time plus named numeric/tag columns, sufficient for
// the statistics this package computes. No general-purpose dataframe
// library exists in the available Go ecosystem; this is a narrow,
// purpose-built type rather than a dataframe engine (see DESIGN.md).
//
// Grounded in summariser/src/frame.rs (the DataFrame this replaces) and
// summariser/src/analyze.rs (the statistics computed over it).
package summariser

import "time"

// Frame is a columnar table: Time is the shared time axis, Numeric holds
// float64 columns keyed by name, Tags holds string columns keyed by name.
// All columns (when present) have the same length as Time.
type Frame struct {
	Time    []time.Time
	Numeric map[string][]float64
	Tags    map[string][]string
}

// Len reports the number of rows.
func (f Frame) Len() int {
	return len(f.Time)
}

// Column returns the named numeric column, or an error if it isn't present.
func (f Frame) Column(name string) ([]float64, error) {
	var col, ok = f.Numeric[name]
	if !ok {
		return nil, errUnknownColumn(name)
	}
	return col, nil
}

// TagColumn returns the named tag column, or an error if it isn't present.
func (f Frame) TagColumn(name string) ([]string, error) {
	var col, ok = f.Tags[name]
	if !ok {
		return nil, errUnknownColumn(name)
	}
	return col, nil
}

type errUnknownColumn string

func (e errUnknownColumn) Error() string {
	return "summariser: no such column: " + string(e)
}
