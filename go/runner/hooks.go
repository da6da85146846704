package runner

// GlobalSetupHook runs once before any agent starts; GlobalTeardownHook
// runs once after every agent goroutine has joined. Both receive the
// shared RunnerContext; agents are no longer running by the time teardown
// is invoked.
type GlobalSetupHook func(*RunnerContext) error
type GlobalTeardownHook func(*RunnerContext) error

// AgentHook runs once per agent: at setup, at each behaviour iteration, or
// at teardown.
type AgentHook func(*AgentContext) error
