package runner

import (
	"fmt"
	"time"
)

// Definition is the immutable, resolved combination of a Builder and a
// CLIConfig: what Run actually executes.
type Definition struct {
	Name             string
	AgentCount       int
	Duration         *time.Duration // nil means unbounded (soak)
	ConnectionString string
	RunID            string
	NoProgress       bool
	ReporterSinks    []string

	setupFn         GlobalSetupHook
	setupAgentFn    AgentHook
	agentBehaviour  map[string]AgentHook
	teardownAgentFn AgentHook
	teardownFn      GlobalTeardownHook

	// assignedBehaviours is agentCount long; assignedBehaviours[i] names the
	// behaviour bound to agent i, or "" if none is bound.
	assignedBehaviours []string

	// agentSetupBarrier gates every agent's behaviour loop until all
	// agent-setup hooks that didn't error have returned. Off by default.
	agentSetupBarrier bool
}

// Builder accumulates a scenario's hooks and defaults before being resolved
// against a CLIConfig into a Definition.
type Builder struct {
	name                string
	defaultAgentCount   int
	defaultDuration     *time.Duration
	setupFn             GlobalSetupHook
	setupAgentFn        AgentHook
	agentBehaviour      map[string]AgentHook
	defaultBehaviourSet bool
	teardownAgentFn     AgentHook
	teardownFn          GlobalTeardownHook
	agentSetupBarrier   bool
}

// defaultBehaviourName is the key used by UseAgentBehaviour, matching the
// "default" behaviour name the original uses when a scenario assigns one
// behaviour to every agent rather than naming several.
const defaultBehaviourName = "default"

// NewBuilder starts a scenario definition named name. The name should be
// unique within the binary; scenario binaries conventionally use their own
// package name.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:              name,
		defaultAgentCount: 1,
		agentBehaviour:    make(map[string]AgentHook),
	}
}

func (b *Builder) WithDefaultAgentCount(n int) *Builder {
	b.defaultAgentCount = n
	return b
}

func (b *Builder) WithDefaultDuration(d time.Duration) *Builder {
	b.defaultDuration = &d
	return b
}

// UseSetup sets the global setup hook, run once before any agents start.
func (b *Builder) UseSetup(fn GlobalSetupHook) *Builder {
	b.setupFn = fn
	return b
}

// UseAgentSetup sets the per-agent setup hook, run once for each agent as
// it starts.
func (b *Builder) UseAgentSetup(fn AgentHook) *Builder {
	b.setupAgentFn = fn
	return b
}

// UseAgentBehaviour binds fn as the single, unnamed behaviour every agent
// without another explicit assignment runs.
func (b *Builder) UseAgentBehaviour(fn AgentHook) *Builder {
	return b.UseNamedAgentBehaviour(defaultBehaviourName, fn)
}

// UseNamedAgentBehaviour binds fn under name. Names must be unique;
// panics if name is already bound, matching the teacher's fail-fast
// scenario-registration style (flowctl-go's addCmd panics via mbp.Must on
// a registration error rather than propagating one at startup).
func (b *Builder) UseNamedAgentBehaviour(name string, fn AgentHook) *Builder {
	if _, exists := b.agentBehaviour[name]; exists {
		panic(fmt.Sprintf("runner: behaviour %q is already defined", name))
	}
	b.agentBehaviour[name] = fn
	return b
}

// UseAgentTeardown sets the per-agent teardown hook.
func (b *Builder) UseAgentTeardown(fn AgentHook) *Builder {
	b.teardownAgentFn = fn
	return b
}

// UseTeardown sets the global teardown hook, run once after every agent
// thread has joined.
func (b *Builder) UseTeardown(fn GlobalTeardownHook) *Builder {
	b.teardownFn = fn
	return b
}

// WithAgentSetupBarrier gates every agent's behaviour loop behind a
// rendezvous: no agent starts its first behaviour iteration until every
// agent whose setup hook didn't error has returned from it. Off by default,
// matching the original's behaviour of agents proceeding independently.
func (b *Builder) WithAgentSetupBarrier(enabled bool) *Builder {
	b.agentSetupBarrier = enabled
	return b
}

// Build resolves the builder against cli into an immutable Definition.
// Resolution order for agent count and duration: CLI override → builder
// default → hard default. The soak flag overrides any duration to "none".
// Behaviour-count assignments are validated: their sum must not exceed the
// agent count; residual slots receive the behaviour named "default" if one
// is bound, otherwise the sole registered behaviour if there is exactly
// one, otherwise they're left unassigned.
func (b *Builder) Build(cli CLIConfig) (*Definition, error) {
	var agentCount = b.defaultAgentCount
	if cli.Agents != nil {
		agentCount = *cli.Agents
	}
	if agentCount < 0 {
		return nil, fmt.Errorf("runner: agent count must be non-negative, got %d", agentCount)
	}

	var duration = resolvedDuration(cli, b.defaultDuration)

	var assignments, err = parseBehaviourFlags(cli.Behaviour)
	if err != nil {
		return nil, err
	}

	var assigned = make([]string, agentCount)
	var nextSlot int
	var sumAssigned int
	for _, a := range assignments {
		sumAssigned += a.count
		if sumAssigned > agentCount {
			return nil, fmt.Errorf("runner: --behaviour assignments total %d exceed agent count %d", sumAssigned, agentCount)
		}
		for i := 0; i < a.count; i++ {
			assigned[nextSlot] = a.name
			nextSlot++
		}
	}
	if nextSlot < agentCount {
		var fallbackName string
		var hasFallback bool
		if _, ok := b.agentBehaviour[defaultBehaviourName]; ok {
			fallbackName, hasFallback = defaultBehaviourName, true
		} else if len(b.agentBehaviour) == 1 {
			for name := range b.agentBehaviour {
				fallbackName, hasFallback = name, true
			}
		}
		if hasFallback {
			for ; nextSlot < agentCount; nextSlot++ {
				assigned[nextSlot] = fallbackName
			}
		}
	}

	return &Definition{
		Name:               b.name,
		AgentCount:         agentCount,
		Duration:           duration,
		ConnectionString:   cli.ConnectionString,
		RunID:              cli.RunID,
		NoProgress:         cli.NoProgress,
		ReporterSinks:      cli.Reporter,
		setupFn:            b.setupFn,
		setupAgentFn:       b.setupAgentFn,
		agentBehaviour:     b.agentBehaviour,
		teardownAgentFn:    b.teardownAgentFn,
		teardownFn:         b.teardownFn,
		assignedBehaviours: assigned,
		agentSetupBarrier:  b.agentSetupBarrier,
	}, nil
}
