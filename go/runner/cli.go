package runner

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jessevdk/go-flags"
)

// CLIConfig mirrors spec.md §6's runner CLI surface: every flag a scenario
// binary accepts, parsed with go-flags the way the teacher's flowctl
// commands declare their option structs.
type CLIConfig struct {
	ConnectionString string   `long:"connection-string" required:"true" description:"Opaque endpoint string, passed through to hooks"`
	Agents           *int     `long:"agents" description:"Override the scenario's default agent count"`
	Duration         *uint64  `long:"duration" description:"Run for this many seconds then signal shutdown"`
	Soak             bool     `long:"soak" description:"Ignore all duration values; run until externally stopped"`
	Behaviour        []string `long:"behaviour" description:"Assign a named behaviour to N agents, as name:count (repeatable)"`
	NoProgress       bool     `long:"no-progress" description:"Suppress the progress display"`
	Reporter         []string `long:"reporter" description:"Metric sinks to enable: in-memory, file, http (repeatable)" default:"in-memory"`
	RunID            string   `long:"run-id" description:"Override the run id; default is a random string"`
}

// ParseCLIConfig parses args (normally os.Args[1:]) into a CLIConfig,
// returning a go-flags error (including the generated --help text) on
// failure.
func ParseCLIConfig(args []string) (CLIConfig, error) {
	var cfg CLIConfig
	var parser = flags.NewParser(&cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return CLIConfig{}, err
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	return cfg, nil
}

// behaviourAssignment is one parsed --behaviour name:count pair.
type behaviourAssignment struct {
	name  string
	count int
}

func parseBehaviourFlags(raw []string) ([]behaviourAssignment, error) {
	var out = make([]behaviourAssignment, 0, len(raw))
	for _, entry := range raw {
		var idx = strings.LastIndex(entry, ":")
		if idx < 0 {
			return nil, fmt.Errorf("runner: malformed --behaviour %q, expected name:count", entry)
		}
		var name = entry[:idx]
		var countStr = entry[idx+1:]
		var count, err = strconv.Atoi(countStr)
		if err != nil || count < 0 {
			return nil, fmt.Errorf("runner: malformed --behaviour %q, count must be a non-negative integer", entry)
		}
		out = append(out, behaviourAssignment{name: name, count: count})
	}
	return out, nil
}

func resolvedDuration(cfg CLIConfig, defaultDuration *time.Duration) *time.Duration {
	if cfg.Soak {
		return nil
	}
	if cfg.Duration != nil {
		var d = time.Duration(*cfg.Duration) * time.Second
		return &d
	}
	return defaultDuration
}
