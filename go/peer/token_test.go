package peer

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignBearerTokenRoundTrip(t *testing.T) {
	var identity = Identity{1, 2, 3}
	var key = []byte("test-signing-key")

	var signed, err = signBearerToken(identity, "space-a", key, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	var claims identityClaims
	var _, parseErr = jwt.ParseWithClaims(signed, &claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	})
	require.NoError(t, parseErr)
	assert.Equal(t, identity.String(), claims.AgentIdentity)
	assert.Equal(t, "space-a", claims.SpaceID)
}

func TestSignBearerTokenRejectsWrongKey(t *testing.T) {
	var identity = Identity{1}
	var signed, err = signBearerToken(identity, "space-a", []byte("key-one"), time.Minute)
	require.NoError(t, err)

	var claims identityClaims
	var _, parseErr = jwt.ParseWithClaims(signed, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte("key-two"), nil
	})
	assert.Error(t, parseErr)
}

func TestBearerCredentialsAttachesAuthorizationHeader(t *testing.T) {
	var creds = bearerCredentials{tokenFn: func() (string, error) { return "tok123", nil }}
	var md, err = creds.GetRequestMetadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok123", md["authorization"])
	assert.False(t, creds.RequireTransportSecurity())
}
