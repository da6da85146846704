package runner

import (
	"github.com/swarmbench/swarmbench/go/executor"
	"github.com/swarmbench/swarmbench/go/instruments"
	"github.com/swarmbench/swarmbench/go/shutdown"
)

// RunnerContext is shared, read-only after global setup completes, across
// every agent thread. Scenario authors attach their own state via Values;
// the runner never inspects it.
type RunnerContext struct {
	Bridge   *executor.Bridge
	Reporter *instruments.Reporter
	Shutdown *shutdown.Coordinator

	ConnectionString string
	RunID            string
	ScenarioName     string

	// Values holds scenario-defined shared state, populated by the
	// global-setup hook and read (never mutated) by every agent thread
	// thereafter.
	Values any
}

// AgentContext is owned by exactly one agent thread; per-agent state lives
// in Values.
type AgentContext struct {
	AgentID string
	Runner  *RunnerContext

	cycleListener     *shutdown.Listener
	delegatedListener *shutdown.Listener

	Values any
}

func newAgentContext(agentID string, runnerCtx *RunnerContext, cycleListener, delegatedListener *shutdown.Listener) *AgentContext {
	return &AgentContext{
		AgentID:           agentID,
		Runner:            runnerCtx,
		cycleListener:     cycleListener,
		delegatedListener: delegatedListener,
	}
}

// ShouldShutdown polls this agent's cycle-shutdown listener, the listener
// consulted between behaviour iterations.
func (a *AgentContext) ShouldShutdown() bool {
	return a.cycleListener.Poll()
}

// ShutdownListener exposes the agent's delegated listener, for behaviour
// hooks that need to race their own async work against shutdown via
// Runner.Bridge.BlockOnCancellable.
func (a *AgentContext) ShutdownListener() *shutdown.Listener {
	return a.delegatedListener
}
