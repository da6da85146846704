package instruments

import "sync"

// Reporter is the process-wide Report Collector Bus. It is constructed
// once and shared (by pointer) across every agent thread and every sink's
// background task, exactly as spec.md §4.C and §5 describe: "logically
// immutable once built; only sink internal state is mutable, behind
// per-sink synchronisation."
type Reporter struct {
	collectors []Collector
	mu         sync.RWMutex // guards nothing about collectors themselves (they self-synchronize); reserved for future dynamic registration
}

// NewReporter builds a Reporter fanning out to the given collectors, in the
// order given. The order is preserved for deterministic finalize/drain
// ordering in tests.
func NewReporter(collectors ...Collector) *Reporter {
	return &Reporter{collectors: collectors}
}

// AddOperation fans a finalised operation record out to every collector.
// Thread-safe: may be called from any agent thread concurrently.
func (r *Reporter) AddOperation(record *OperationRecord) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.collectors {
		c.AddOperation(record)
	}
}

// AddCustom fans a custom metric out to every collector. Thread-safe.
func (r *Reporter) AddCustom(metric ReportMetric) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.collectors {
		c.AddCustom(metric)
	}
}

// Finalize blocks until every collector has drained its buffered data.
// Called once at process end.
func (r *Reporter) Finalize() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.collectors {
		c.Finalize()
	}
}
