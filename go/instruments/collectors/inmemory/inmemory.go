// Package inmemory implements a Collector that buffers every operation
// record in a process and prints a summary table at Finalize. It is meant
// for scenario development, not production load-test runs: nothing here
// survives the process, and buffering is unbounded.
//
// Grounded in framework/instruments/src/report/in_memory_reporter.rs, which
// does the same buffer-then-print-a-table shape using the Rust tabled
// crate; here we use github.com/olekukonko/tablewriter, already an indirect
// dependency of the teacher's go.mod.
package inmemory

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/olekukonko/tablewriter"

	"github.com/swarmbench/swarmbench/go/instruments"
)

// Collector buffers operation records in memory and renders a per-operation
// summary table when Finalize is called. Custom metrics are ignored, matching
// in_memory_reporter.rs's add_custom no-op.
type Collector struct {
	out io.Writer

	mu      sync.Mutex
	records []*instruments.OperationRecord
}

// New constructs an in-memory collector writing its summary table to out.
// Pass os.Stdout for the CLI default.
func New(out io.Writer) *Collector {
	if out == nil {
		out = os.Stdout
	}
	return &Collector{out: out}
}

func (c *Collector) AddOperation(record *instruments.OperationRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, record.Clone())
}

func (c *Collector) AddCustom(instruments.ReportMetric) {}

// Finalize prints the summary table. Safe to call once; a second call
// re-renders the same (by-then-static) buffer.
func (c *Collector) Finalize() {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintln(c.out, "\nSummary of operations")

	var rows = groupByOperation(c.records)
	var table = tablewriter.NewWriter(c.out)
	table.SetHeader([]string{"operation", "count", "total ms", "avg ms", "min ms", "max ms"})

	for _, row := range rows {
		table.Append([]string{
			row.operationID,
			fmt.Sprintf("%d", row.count),
			fmt.Sprintf("%.3f", row.totalMillis),
			fmt.Sprintf("%.3f", row.totalMillis/float64(row.count)),
			fmt.Sprintf("%.3f", row.minMillis),
			fmt.Sprintf("%.3f", row.maxMillis),
		})
	}
	table.Render()
}

type operationRow struct {
	operationID          string
	count                int
	totalMillis          float64
	minMillis, maxMillis float64
}

func groupByOperation(records []*instruments.OperationRecord) []operationRow {
	var byID = make(map[string][]*instruments.OperationRecord)
	var order []string
	for _, r := range records {
		if _, seen := byID[r.OperationID]; !seen {
			order = append(order, r.OperationID)
		}
		byID[r.OperationID] = append(byID[r.OperationID], r)
	}
	sort.Strings(order)

	var rows = make([]operationRow, 0, len(order))
	for _, id := range order {
		var ops = byID[id]
		var row = operationRow{operationID: id, count: len(ops)}
		var first = true
		for _, op := range ops {
			var ms = float64(op.Duration().Microseconds()) / 1000.0
			row.totalMillis += ms
			if op.IsError {
				continue
			}
			if first || ms < row.minMillis {
				row.minMillis = ms
			}
			if first || ms > row.maxMillis {
				row.maxMillis = ms
			}
			first = false
		}
		rows = append(rows, row)
	}
	return rows
}
