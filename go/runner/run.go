package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/swarmbench/swarmbench/go/executor"
	"github.com/swarmbench/swarmbench/go/instruments"
	"github.com/swarmbench/swarmbench/go/shutdown"
)

// Run executes def's scenario lifecycle end-to-end: build the shared
// runtime (shutdown coordinator, executor bridge, reporter), run global
// setup, spawn one goroutine per agent (the Go stand-in for the original's
// one-OS-thread-per-agent model), join them all, run
// global teardown, and finalize the reporter.
//
// Grounded in framework/runner/src/run.rs's run() function; the per-agent
// thread-join loop is changed from that source's fail-fast behaviour to
// "log and continue" per this runner's join-failure contract (agent
// goroutines are spawned independently and one failing to finish cleanly
// must not prevent observing or tearing down the others).
func Run(def *Definition) error {
	logrus.WithField("scenario", def.Name).Info("running scenario")

	var shutdownCoord = shutdown.New()
	var bridge = executor.New(shutdownCoord)

	var reporter, err = instruments.NewReporterFromConfig(instruments.ReportConfig{
		Sinks:        def.ReporterSinks,
		MetricsDir:   "metrics",
		ScenarioName: def.Name,
	}, bridge, shutdownCoord)
	if err != nil {
		return fmt.Errorf("runner: configuring reporter: %w", err)
	}

	var runnerCtx = &RunnerContext{
		Bridge:           bridge,
		Reporter:         reporter,
		Shutdown:         shutdownCoord,
		ConnectionString: def.ConnectionString,
		RunID:            def.RunID,
		ScenarioName:     def.Name,
	}

	if def.setupFn != nil {
		if err := def.setupFn(runnerCtx); err != nil {
			return fmt.Errorf("runner: global setup failed: %w", err)
		}
	}

	if def.Duration != nil {
		if !def.NoProgress {
			go startProgress(*def.Duration, shutdownCoord.Subscribe())
		}
		var duration = *def.Duration
		bridge.SpawnDetached(func(_ context.Context) {
			time.Sleep(duration)
			shutdownCoord.Broadcast()
		})
	}

	go startMonitor(def.AgentCount, shutdownCoord.Subscribe())

	var setupBarrier *sync.WaitGroup
	if def.agentSetupBarrier {
		setupBarrier = &sync.WaitGroup{}
		setupBarrier.Add(def.AgentCount)
	}

	var wg sync.WaitGroup
	var joinErrs = make([]error, def.AgentCount)
	for i := 0; i < def.AgentCount; i++ {
		var agentIndex = i
		var agentID = fmt.Sprintf("agent-%d", agentIndex)
		var behaviourName = def.assignedBehaviours[agentIndex]

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					joinErrs[agentIndex] = fmt.Errorf("agent %s panicked: %v", agentID, r)
					logrus.WithField("agent", agentID).WithField("panic", r).Error("runner: agent goroutine panicked")
				}
			}()
			runAgent(runnerCtx, agentID, behaviourName, def, setupBarrier)
		}()
	}
	wg.Wait()

	for _, joinErr := range joinErrs {
		if joinErr != nil {
			logrus.WithError(joinErr).Error("runner: agent goroutine failed")
		}
	}

	if def.teardownFn != nil {
		if err := def.teardownFn(runnerCtx); err != nil {
			logrus.WithError(err).Error("runner: global teardown failed")
		}
	}

	reporter.Finalize()
	return nil
}

// runAgent implements the per-agent lifecycle: setup, behaviour loop,
// teardown. setupBarrier is non-nil only when the scenario opted into
// WithAgentSetupBarrier(true); every agent's setup attempt counts against it
// exactly once, whether or not it errored, so a failing agent never leaves
// its peers blocked forever.
func runAgent(runnerCtx *RunnerContext, agentID, behaviourName string, def *Definition, setupBarrier *sync.WaitGroup) {
	var cycleListener = runnerCtx.Shutdown.Subscribe()
	var delegatedListener = runnerCtx.Shutdown.Subscribe()
	var agentCtx = newAgentContext(agentID, runnerCtx, cycleListener, delegatedListener)

	var setupErr error
	if def.setupAgentFn != nil {
		setupErr = def.setupAgentFn(agentCtx)
	}
	if setupBarrier != nil {
		setupBarrier.Done()
	}
	if setupErr != nil {
		logrus.WithField("agent", agentID).WithError(setupErr).Error("runner: agent setup failed")
		return
	}
	if setupBarrier != nil {
		setupBarrier.Wait()
	}

	if behaviourName != "" {
		if behaviour, ok := def.agentBehaviour[behaviourName]; ok {
			for {
				if agentCtx.ShouldShutdown() {
					logrus.WithField("agent", agentID).Debug("runner: stopping agent")
					break
				}

				var err = behaviour(agentCtx)
				if err == nil {
					continue
				}
				if isShutdownSignalError(err) {
					continue
				}
				logrus.WithField("agent", agentID).WithError(err).Error("runner: agent behaviour failed")
			}
		}
	}

	if def.teardownAgentFn != nil {
		if err := def.teardownAgentFn(agentCtx); err != nil {
			logrus.WithField("agent", agentID).WithError(err).Error("runner: agent teardown failed")
		}
	}
}

func isShutdownSignalError(err error) bool {
	var target executor.ShutdownSignalError
	return errors.As(err, &target)
}
