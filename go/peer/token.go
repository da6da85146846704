package peer

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc/credentials"
)

// identityClaims is the bearer token payload a GRPCCapability attaches to
// every outbound RPC: just enough for a real peer node to authenticate the
// call as coming from this agent, in this space. Nothing else is asserted;
// the token is not a substitute for the peer node's own authorization.
type identityClaims struct {
	jwt.RegisteredClaims
	AgentIdentity string `json:"agent_identity"`
	SpaceID       string `json:"space_id"`
}

// signBearerToken derives a short-lived HS256 JWT for identity, scoped to
// spaceID, signed with signingKey. GRPCCapability derives a fresh token for
// every RPC rather than reusing one for the whole run, so a long soak test
// never presents an expired token.
func signBearerToken(identity Identity, spaceID string, signingKey []byte, ttl time.Duration) (string, error) {
	var now = time.Now()
	var claims = identityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   identity.String(),
		},
		AgentIdentity: identity.String(),
		SpaceID:       spaceID,
	}
	var token = jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	var signed, err = token.SignedString(signingKey)
	if err != nil {
		return "", fmt.Errorf("peer: signing bearer token: %w", err)
	}
	return signed, nil
}

// bearerCredentials implements credentials.PerRPCCredentials, attaching the
// agent's signed token as Authorization metadata on every RPC issued over
// the capability's gRPC channel. The token is re-signed lazily via tokenFn
// so JoinSpace can rotate the space claim without tearing down the channel.
type bearerCredentials struct {
	tokenFn           func() (string, error)
	transportRequired bool
}

func (c bearerCredentials) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	var token, err = c.tokenFn()
	if err != nil {
		return nil, err
	}
	return map[string]string{"authorization": "Bearer " + token}, nil
}

func (c bearerCredentials) RequireTransportSecurity() bool {
	return c.transportRequired
}

var _ credentials.PerRPCCredentials = bearerCredentials{}
