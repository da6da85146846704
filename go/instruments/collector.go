package instruments

// Collector is a sink that accepts operation records and custom metrics
// and can be asked to drain and flush at shutdown. Implementations hold
// their own buffers and background tasks as needed (spec.md §3.2).
type Collector interface {
	AddOperation(record *OperationRecord)
	AddCustom(metric ReportMetric)
	Finalize()
}
