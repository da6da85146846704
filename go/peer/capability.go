package peer

import (
	"context"

	"google.golang.org/grpc"
)

// Capability is the opaque peer-to-peer framework surface a scenario's
// hooks are built against: an agent's identity, its membership in a gossip
// space, and a transport for application-layer RPC. swarmbench never
// implements "a" peer-to-peer network; it only ever holds one of these.
type Capability interface {
	// Identity returns this agent's opaque identity.
	Identity() Identity

	// JoinSpace joins (or re-joins) the named gossip space. Scenario setup
	// hooks call this once per agent; spec.md leaves space membership
	// semantics entirely to the concrete implementation.
	JoinSpace(ctx context.Context, spaceID string) error

	// Conn returns the gRPC channel application-layer RPCs are issued over.
	// The channel is already instrumented (grpc-prometheus interceptors)
	// and authenticated (a per-RPC bearer token derived from Identity); callers
	// just generate a client stub against it.
	Conn() *grpc.ClientConn

	// Close tears down the capability's transport. Idempotent.
	Close() error
}
