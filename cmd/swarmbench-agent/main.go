// Command swarmbench-agent is the thin runner binary: it defines no
// capability dialing or custom metrics of its own, only a single timed
// no-op behaviour, and exists as the minimal skeleton a scenario author
// copies and links their own hooks into.
package main

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/swarmbench/swarmbench/go/instruments"
	"github.com/swarmbench/swarmbench/go/runner"
)

func agentBehaviour(ctx *runner.AgentContext) error {
	var _, err = instruments.Instrument(ctx.Runner.Reporter, "noop", func() (any, error) {
		time.Sleep(time.Millisecond)
		return nil, nil
	})
	return err
}

func main() {
	var cli, err = runner.ParseCLIConfig(os.Args[1:])
	if err != nil {
		os.Exit(1)
	}

	var def, buildErr = runner.NewBuilder("swarmbench-agent").
		WithDefaultAgentCount(1).
		WithDefaultDuration(30 * time.Second).
		UseAgentBehaviour(agentBehaviour).
		Build(cli)
	if buildErr != nil {
		logrus.WithError(buildErr).Fatal("swarmbench-agent: invalid configuration")
	}

	if err := runner.Run(def); err != nil {
		logrus.WithError(err).Fatal("swarmbench-agent: run failed")
	}
}
