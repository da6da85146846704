// Command summarise is the Summariser: a separate binary from the agent
// runner, reading a Run Summary plus the metrics it produced and printing
// the scenario's registered report as JSON.
//
// Grounded in flowctl/main.go's flags.NewParser/AddCommand subcommand
// style; this binary isn't a gazette consumer so it forgoes
// mainboilerplate and reports command errors directly to logrus.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"

	"github.com/swarmbench/swarmbench/go/runsummary"
	"github.com/swarmbench/swarmbench/go/summariser"
	"github.com/swarmbench/swarmbench/go/summariser/sqlitebackend"
)

type cmdRun struct {
	RunSummary string `long:"run-summary" required:"true" description:"Path to a JSONL file of run summaries"`
	Metrics    string `long:"metrics" required:"true" description:"Path to an Influx-line-protocol metrics file"`
	RunID      string `long:"run-id" description:"Which run in --run-summary to report on; default is the last line"`
}

func (c *cmdRun) Execute(_ []string) error {
	var runs, err = runsummary.LoadSummaryRuns(c.RunSummary)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return fmt.Errorf("summarise: %s contains no run summaries", c.RunSummary)
	}

	var run = runs[len(runs)-1]
	if c.RunID != "" {
		var found = false
		for _, candidate := range runs {
			if candidate.RunID == c.RunID {
				run = candidate
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("summarise: run id %q not found in %s", c.RunID, c.RunSummary)
		}
	}

	var dbPath = c.Metrics + ".sqlite"
	var db, dbErr = sqlitebackend.Open(dbPath)
	if dbErr != nil {
		return dbErr
	}
	defer db.Close()

	if _, ingestErr := sqlitebackend.IngestFile(db, c.Metrics); ingestErr != nil {
		return ingestErr
	}

	var client = sqlitebackend.NewClient(db)
	var report, reportErr = summariser.Summarise(context.Background(), client, run)
	if reportErr != nil {
		return reportErr
	}

	var out = json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")
	return out.Encode(report)
}

type cmdCompare struct {
	RunSummary []string `long:"run-summary" required:"true" description:"Path to a JSONL file of run summaries (repeatable)"`
}

func (c *cmdCompare) Execute(_ []string) error {
	var all []runsummary.RunSummary
	for _, path := range c.RunSummary {
		var runs, err = runsummary.LoadSummaryRuns(path)
		if err != nil {
			return err
		}
		all = append(all, runs...)
	}

	var groups = runsummary.GroupByFingerprint(all)
	var out = json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")
	return out.Encode(groups)
}

type cmdList struct{}

func (cmdList) Execute(_ []string) error {
	for _, name := range summariser.Registered() {
		fmt.Println(name)
	}
	return nil
}

func addCmd(to interface {
	AddCommand(string, string, string, interface{}) (*flags.Command, error)
}, name, short, long string, iface interface{}) {
	if _, err := to.AddCommand(name, short, long, iface); err != nil {
		logrus.WithError(err).Fatal("summarise: failed to register subcommand")
	}
}

func main() {
	var parser = flags.NewParser(nil, flags.HelpFlag|flags.PassDoubleDash)

	addCmd(parser, "run", "Summarise a single run", `
Dispatch one run's metrics to its scenario's registered aggregator and
print the resulting report as JSON.
`, &cmdRun{})

	addCmd(parser, "compare", "Group run summaries by configuration fingerprint", `
Load one or more run summary files and group their entries by
Fingerprint, for spotting repeat runs of the same configuration.
`, &cmdCompare{})

	addCmd(parser, "list", "List registered scenario aggregators", `
Print the scenario names with a registered aggregator, one per line.
`, &cmdList{})

	if _, err := parser.Parse(); err != nil {
		os.Exit(1)
	}
}
