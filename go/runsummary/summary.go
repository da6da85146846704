// Package runsummary carries the per-run metadata a Scenario Runner
// produces once an execution finishes: what scenario ran, for how long,
// with what agent-to-behaviour assignment, and against what environment.
// The Summariser reads this alongside the metrics stream to decide which
// aggregator to run and what to scope its queries to.
//
// Grounded in framework/summary_model/src/lib.rs.
package runsummary

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"golang.org/x/crypto/sha3"
)

// RunSummary is the immutable record of one scenario execution.
type RunSummary struct {
	RunID              string            `json:"run_id"`
	ScenarioName       string            `json:"scenario_name"`
	StartedAt          int64             `json:"started_at"`             // unix seconds
	RunDuration        *uint64           `json:"run_duration,omitempty"` // seconds; nil for soak
	PeerCount          int               `json:"peer_count"`
	PeerEndCount       int               `json:"peer_end_count"`
	AssignedBehaviours map[string]int    `json:"assigned_behaviours"`
	Env                map[string]string `json:"env"`
	Version            string            `json:"wind_tunnel_version"`
}

// New constructs a RunSummary with PeerEndCount defaulted to 0 and Env
// initialized empty, mirroring RunSummary::new.
func New(runID, scenarioName string, startedAt int64, runDuration *uint64, peerCount int, assignedBehaviours map[string]int, version string) RunSummary {
	if assignedBehaviours == nil {
		assignedBehaviours = map[string]int{}
	}
	return RunSummary{
		RunID:              runID,
		ScenarioName:       scenarioName,
		StartedAt:          startedAt,
		RunDuration:        runDuration,
		PeerCount:          peerCount,
		PeerEndCount:       0,
		AssignedBehaviours: assignedBehaviours,
		Env:                map[string]string{},
		Version:            version,
	}
}

// SetPeerEndCount records how many peers were still running when the run
// ended.
func (s *RunSummary) SetPeerEndCount(n int) {
	s.PeerEndCount = n
}

// AddEnv records an environment variable the runner wants remembered
// alongside the run.
func (s *RunSummary) AddEnv(key, value string) {
	if s.Env == nil {
		s.Env = map[string]string{}
	}
	s.Env[key] = value
}

// Fingerprint uniquely identifies the configuration this run used: scenario
// name, run duration, assigned behaviours, environment, and version,
// independent of run_id or timing. Two runs with the same fingerprint are
// directly comparable.
func (s *RunSummary) Fingerprint() string {
	var hasher = sha3.New256()
	hasher.Write([]byte(s.ScenarioName))
	if s.RunDuration != nil {
		var buf [8]byte
		putUint64LE(buf[:], *s.RunDuration)
		hasher.Write(buf[:])
	}

	for _, k := range sortedKeys(s.AssignedBehaviours) {
		hasher.Write([]byte(k))
		var buf [8]byte
		putUint64LE(buf[:], uint64(s.AssignedBehaviours[k]))
		hasher.Write(buf[:])
	}

	for _, k := range sortedStringKeys(s.Env) {
		hasher.Write([]byte(k))
		hasher.Write([]byte(s.Env[k]))
	}

	hasher.Write([]byte(s.Version))

	return fmt.Sprintf("%x", hasher.Sum(nil))
}

func putUint64LE(buf []byte, v uint64) {
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
}

func sortedKeys(m map[string]int) []string {
	var keys = make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedStringKeys(m map[string]string) []string {
	var keys = make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AppendRunSummary serializes summary as one JSON line appended to path,
// creating it if it doesn't exist. The recommended extension is .jsonl.
func AppendRunSummary(summary RunSummary, path string) error {
	var file, err = os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("runsummary: opening %s: %w", path, err)
	}
	defer file.Close()

	if err := StoreRunSummary(summary, file); err != nil {
		return err
	}
	if _, err := file.Write([]byte("\n")); err != nil {
		return fmt.Errorf("runsummary: writing newline: %w", err)
	}
	return nil
}

// StoreRunSummary writes summary as JSON to w, with no trailing newline.
func StoreRunSummary(summary RunSummary, w io.Writer) error {
	var encoded, err = json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("runsummary: encoding: %w", err)
	}
	if _, err := w.Write(encoded); err != nil {
		return fmt.Errorf("runsummary: writing: %w", err)
	}
	return nil
}

// LoadRunSummary reads a single JSON-encoded RunSummary from r.
func LoadRunSummary(r io.Reader) (RunSummary, error) {
	var summary RunSummary
	if err := json.NewDecoder(r).Decode(&summary); err != nil {
		return RunSummary{}, fmt.Errorf("runsummary: decoding: %w", err)
	}
	return summary, nil
}

// LoadSummaryRuns reads a JSONL file of RunSummary records, one per line,
// the format AppendRunSummary produces.
func LoadSummaryRuns(path string) ([]RunSummary, error) {
	var file, err = os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("runsummary: opening %s: %w", path, err)
	}
	defer file.Close()

	var runs []RunSummary
	var scanner = bufio.NewScanner(file)
	// Run summaries carry arbitrary env maps; default token size may not be
	// enough for a line with many entries.
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		var line = scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var run RunSummary
		if err := json.Unmarshal(line, &run); err != nil {
			return nil, fmt.Errorf("runsummary: parsing line: %w", err)
		}
		runs = append(runs, run)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("runsummary: scanning %s: %w", path, err)
	}
	return runs, nil
}

// GroupByFingerprint buckets summaries by Fingerprint(), for finding repeat
// runs of the same configuration. Not present in the original verbatim;
// a direct consequence of Fingerprint() already being specified, used by
// cmd/summarise's compare subcommand.
func GroupByFingerprint(summaries []RunSummary) map[string][]RunSummary {
	var groups = make(map[string][]RunSummary)
	for _, s := range summaries {
		var fp = s.Fingerprint()
		groups[fp] = append(groups[fp], s)
	}
	return groups
}
