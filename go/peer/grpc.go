package peer

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	// maxMessageSize matches bindings/task_service.go's call option; the
	// RPCs this capability issues are small control-plane calls, but there's
	// no reason to impose a tighter cap than the teacher does elsewhere.
	maxMessageSize = 1 << 28

	defaultTokenTTL = 5 * time.Minute
)

// GRPCConfig configures a GRPCCapability.
type GRPCConfig struct {
	// Target is any address grpc.DialContext accepts (dns:///host:port,
	// unix://path, etc).
	Target string

	// SigningKey signs the bearer token attached to every RPC. Required.
	SigningKey []byte

	// TokenTTL overrides defaultTokenTTL.
	TokenTTL time.Duration

	// ContextDialer overrides how the gRPC channel opens its network
	// connection, matching sqlite_driver_test.go's grpc.WithContextDialer
	// use for an in-process bufconn listener. Nil uses gRPC's normal
	// resolver-based dialing.
	ContextDialer func(context.Context, string) (net.Conn, error)
}

// GRPCCapability is the default Capability: a gRPC channel instrumented
// with grpc-prometheus client interceptors (operator-facing RPC metrics,
// independent of the Report Collector Bus) and authenticated with a bearer
// token derived from the agent's identity, signed afresh for every RPC
// with the space most recently recorded by JoinSpace, so the token's space
// claim always matches current membership.
//
// Grounded in bindings/task_service.go's grpc.DialContext call.
type GRPCCapability struct {
	identity Identity
	cfg      GRPCConfig

	mu      sync.Mutex
	spaceID string

	conn *grpc.ClientConn
}

// DialGRPCCapability dials cfg.Target and returns a ready Capability for
// identity. The dial blocks until the channel is ready or ctx is done.
func DialGRPCCapability(ctx context.Context, identity Identity, cfg GRPCConfig) (*GRPCCapability, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, fmt.Errorf("peer: GRPCConfig.SigningKey is required")
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	var capability = &GRPCCapability{identity: identity, cfg: cfg}

	var perRPC = bearerCredentials{tokenFn: capability.currentToken}

	var dialOpts = []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithPerRPCCredentials(perRPC),
		grpc.WithUnaryInterceptor(grpc_prometheus.UnaryClientInterceptor),
		grpc.WithStreamInterceptor(grpc_prometheus.StreamClientInterceptor),
		grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(maxMessageSize), grpc.MaxCallSendMsgSize(maxMessageSize)),
		grpc.WithBlock(),
	}
	if cfg.ContextDialer != nil {
		dialOpts = append(dialOpts, grpc.WithContextDialer(cfg.ContextDialer))
	}

	var conn, err = grpc.DialContext(ctx, cfg.Target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("peer: dialing %s: %w", cfg.Target, err)
	}
	capability.conn = conn
	return capability, nil
}

func (c *GRPCCapability) currentToken() (string, error) {
	c.mu.Lock()
	var spaceID = c.spaceID
	c.mu.Unlock()
	return signBearerToken(c.identity, spaceID, c.cfg.SigningKey, c.cfg.TokenTTL)
}

func (c *GRPCCapability) Identity() Identity {
	return c.identity
}

// JoinSpace records spaceID so subsequent RPCs present a token scoped to
// it. The opaque framework this stands in for would also perform whatever
// gossip-layer join handshake real space membership requires; that
// handshake is out of scope here (spec.md §1), so this only updates the
// claim the bearer token presents.
func (c *GRPCCapability) JoinSpace(_ context.Context, spaceID string) error {
	c.mu.Lock()
	c.spaceID = spaceID
	c.mu.Unlock()
	return nil
}

func (c *GRPCCapability) Conn() *grpc.ClientConn {
	return c.conn
}

func (c *GRPCCapability) Close() error {
	c.mu.Lock()
	var conn = c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

var _ Capability = (*GRPCCapability)(nil)
