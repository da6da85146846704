// Command scenario-example is a reference scenario: it exercises every
// runner hook (global setup, per-agent setup, a named behaviour, per-agent
// teardown) against an opaque peer capability, and records both a built-in
// timed operation and a custom gauge metric.
//
// Grounded in scenarios/first_call/src/main.rs's shape: dial a connection in
// setup, do one timed call per behaviour iteration, clean up in teardown.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/swarmbench/swarmbench/go/instruments"
	"github.com/swarmbench/swarmbench/go/peer"
	"github.com/swarmbench/swarmbench/go/runner"
	"github.com/swarmbench/swarmbench/go/runsummary"
)

// scenarioValues is the shared, read-only-after-setup state every agent
// sees via RunnerContext.Values.
type scenarioValues struct {
	signingKey []byte
}

// agentValues is the per-agent state every agent thread owns via
// AgentContext.Values.
type agentValues struct {
	capability *peer.GRPCCapability
	callCount  int
}

func setup(ctx *runner.RunnerContext) error {
	ctx.Values = &scenarioValues{signingKey: []byte("scenario-example-dev-signing-key")}
	logrus.WithField("connection_string", ctx.ConnectionString).Info("scenario-example: global setup complete")
	return nil
}

func agentSetup(ctx *runner.AgentContext) error {
	var values = ctx.Runner.Values.(*scenarioValues)
	var identity = peer.Identity([]byte(ctx.AgentID))

	var dialCtx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var capability, err = peer.DialGRPCCapability(dialCtx, identity, peer.GRPCConfig{
		Target:     ctx.Runner.ConnectionString,
		SigningKey: values.signingKey,
	})
	if err != nil {
		return fmt.Errorf("scenario-example: agent %s dialing capability: %w", ctx.AgentID, err)
	}
	if err := capability.JoinSpace(dialCtx, "scenario-example"); err != nil {
		return fmt.Errorf("scenario-example: agent %s joining space: %w", ctx.AgentID, err)
	}

	ctx.Values = &agentValues{capability: capability}
	return nil
}

func agentBehaviour(ctx *runner.AgentContext) error {
	var values = ctx.Values.(*agentValues)

	var _, err = instruments.Instrument(ctx.Runner.Reporter, "put_call", func() (any, error) {
		var _, callErr = ctx.Runner.Bridge.BlockOnCancellable(context.Background(), func(innerCtx context.Context) (any, error) {
			// The opaque peer capability stands in for whatever
			// application-layer RPC the scenario actually issues; this
			// reference scenario just sleeps to simulate call latency.
			select {
			case <-time.After(time.Duration(5+rand.Intn(10)) * time.Millisecond):
				return nil, nil
			case <-innerCtx.Done():
				return nil, innerCtx.Err()
			}
		})
		return nil, callErr
	})
	values.callCount++

	var queueDepth = instruments.NewReportMetric("queue_depth").
		WithField("value", instruments.IntValue(int64(values.callCount))).
		WithTag("agent_id", instruments.StringValue(ctx.AgentID))
	ctx.Runner.Reporter.AddCustom(queueDepth)

	if err != nil && ctx.ShutdownListener().Poll() {
		return err
	}
	return nil
}

func agentTeardown(ctx *runner.AgentContext) error {
	var values = ctx.Values.(*agentValues)
	if values.capability != nil {
		if err := values.capability.Close(); err != nil {
			logrus.WithField("agent", ctx.AgentID).WithError(err).Warn("scenario-example: closing capability")
		}
	}
	return nil
}

func main() {
	var cli, err = runner.ParseCLIConfig(os.Args[1:])
	if err != nil {
		os.Exit(1)
	}

	var def, buildErr = runner.NewBuilder("scenario-example").
		WithDefaultAgentCount(4).
		WithDefaultDuration(60 * time.Second).
		UseSetup(setup).
		UseAgentSetup(agentSetup).
		UseAgentBehaviour(agentBehaviour).
		UseAgentTeardown(agentTeardown).
		Build(cli)
	if buildErr != nil {
		logrus.WithError(buildErr).Fatal("scenario-example: invalid configuration")
	}

	var startedAt = time.Now().Unix()
	var runErr = runner.Run(def)

	var runDuration *uint64
	if def.Duration != nil {
		var seconds = uint64(def.Duration.Seconds())
		runDuration = &seconds
	}
	var summary = runsummary.New(def.RunID, def.Name, startedAt, runDuration, def.AgentCount,
		map[string]int{"default": def.AgentCount}, "0.1.0")
	summary.SetPeerEndCount(def.AgentCount)
	if err := runsummary.AppendRunSummary(summary, "run_summaries.jsonl"); err != nil {
		logrus.WithError(err).Error("scenario-example: failed to persist run summary")
	}

	if runErr != nil {
		logrus.WithError(runErr).Fatal("scenario-example: run failed")
	}
}
