// Package instruments implements the Report Collector Bus: a process-wide
// fan-out of operation timings and custom metrics to pluggable sinks.
//
// It is the Go translation of framework/instruments/src/lib.rs: OperationRecord
// and ReportMetric are immutable-after-finalize value types produced by
// agent hooks (via the instrumentation wrapper) and handed to a Reporter,
// which fans them out to every enabled Collector.
package instruments

import (
	"time"
)

// OperationRecord tracks one timed call to an external collaborator from
// construction to finish. It is mutable only until Finish is called; after
// that it is treated as a read-only value passed to collectors.
type OperationRecord struct {
	OperationID string
	started     time.Time
	attr        map[string]string
	elapsed     time.Duration
	finished    bool
	IsError     bool
}

// NewOperationRecord starts timing an operation identified by operationID.
func NewOperationRecord(operationID string) *OperationRecord {
	return &OperationRecord{
		OperationID: operationID,
		started:     time.Now(),
		attr:        make(map[string]string),
	}
}

// AddAttr attaches a string attribute that will be egressed as a tag.
func (r *OperationRecord) AddAttr(key, value string) {
	r.attr[key] = value
}

// Attrs returns a copy of the attribute map, safe for collectors to range
// over after Finish.
func (r *OperationRecord) Attrs() map[string]string {
	var out = make(map[string]string, len(r.attr))
	for k, v := range r.attr {
		out[k] = v
	}
	return out
}

// Duration returns the elapsed time, valid only after Finish has been
// called.
func (r *OperationRecord) Duration() time.Duration {
	return r.elapsed
}

// Finish stamps the elapsed duration and error flag exactly once. Calling
// it more than once is a programmer error and panics, mirroring the
// "finalised exactly once" invariant in spec.md §3.2.
func (r *OperationRecord) Finish(isError bool) {
	if r.finished {
		panic("instruments: OperationRecord finished twice")
	}
	r.elapsed = time.Since(r.started)
	r.IsError = isError
	r.finished = true
}

// Clone returns a value copy suitable for collectors that keep their own
// buffer of records (in-memory summary, summary table).
func (r *OperationRecord) Clone() *OperationRecord {
	var c = *r
	c.attr = r.Attrs()
	return &c
}

// Instrument runs fn, timing it as an operation and submitting the
// resulting record to reporter regardless of outcome. This is the Go
// equivalent of report_operation() wrapping a collaborator call.
func Instrument[T any](reporter *Reporter, operationID string, fn func() (T, error)) (T, error) {
	var rec = NewOperationRecord(operationID)
	var val, err = fn()
	rec.Finish(err != nil)
	if reporter != nil {
		reporter.AddOperation(rec)
	}
	return val, err
}
