package instruments

import (
	"fmt"

	"github.com/swarmbench/swarmbench/go/executor"
	"github.com/swarmbench/swarmbench/go/instruments/collectors/gcsarchive"
	"github.com/swarmbench/swarmbench/go/instruments/collectors/httppush"
	"github.com/swarmbench/swarmbench/go/instruments/collectors/inmemory"
	"github.com/swarmbench/swarmbench/go/instruments/collectors/lineprotocol"
	"github.com/swarmbench/swarmbench/go/shutdown"
)

// Sink names accepted by the --reporter CLI flag (spec.md §6).
const (
	SinkInMemory = "in-memory"
	SinkFile     = "file"
	SinkHTTP     = "http"
)

// ReportConfig selects and configures the collector set a Reporter fans out
// to. It is built from CLI flags and passed once to NewReporterFromConfig.
type ReportConfig struct {
	// Sinks lists the enabled collectors, any of SinkInMemory, SinkFile,
	// SinkHTTP. Matches the set-valued --reporter flag.
	Sinks []string

	// MetricsDir is where the "file" sink writes its .influx file. Required
	// when SinkFile is enabled.
	MetricsDir string

	// ScenarioName names the running scenario; used in the "file" sink's
	// filename.
	ScenarioName string

	// GCSBucket, if non-empty, wraps the "file" sink with an upload-on-finalize
	// step targeting this bucket. Requires SinkFile to also be enabled.
	GCSBucket       string
	GCSObjectPrefix string
}

// NewReporterFromConfig builds the concrete collector set cfg selects and
// returns a Reporter fanning out to them, in a fixed order (in-memory,
// file, http) regardless of the order cfg.Sinks lists them in, so output
// ordering is deterministic across runs.
func NewReporterFromConfig(cfg ReportConfig, bridge *executor.Bridge, shutdownCoord *shutdown.Coordinator) (*Reporter, error) {
	var enabled = make(map[string]bool, len(cfg.Sinks))
	for _, s := range cfg.Sinks {
		enabled[s] = true
	}

	var collectors []Collector

	if enabled[SinkInMemory] {
		collectors = append(collectors, inmemory.New(nil))
	}

	if enabled[SinkFile] {
		if cfg.MetricsDir == "" {
			return nil, fmt.Errorf("instruments: --reporter file requires a metrics directory")
		}
		var fileCollector, err = lineprotocol.New(bridge, shutdownCoord, cfg.MetricsDir, cfg.ScenarioName)
		if err != nil {
			return nil, fmt.Errorf("instruments: configuring file reporter: %w", err)
		}
		if cfg.GCSBucket != "" {
			collectors = append(collectors, gcsarchive.New(fileCollector, cfg.GCSBucket, cfg.GCSObjectPrefix))
		} else {
			collectors = append(collectors, fileCollector)
		}
	} else if cfg.GCSBucket != "" {
		return nil, fmt.Errorf("instruments: a GCS archive bucket was configured but --reporter file is not enabled")
	}

	if enabled[SinkHTTP] {
		var httpCfg, err = httppush.NewFromEnv()
		if err != nil {
			return nil, fmt.Errorf("instruments: configuring http reporter: %w", err)
		}
		collectors = append(collectors, httppush.New(bridge, shutdownCoord, httpCfg))
	}

	return NewReporter(collectors...), nil
}
