package opstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpMarshalBinaryRoundTrip(t *testing.T) {
	var original = Op{
		CreatedAt: time.Unix(1700000000, 123456789).UTC(),
		Payload:   []byte("hello gossip"),
	}

	var encoded, err = original.MarshalBinary()
	require.NoError(t, err)

	var decoded Op
	require.NoError(t, decoded.UnmarshalBinary(encoded))

	assert.True(t, original.CreatedAt.Equal(decoded.CreatedAt))
	assert.Equal(t, original.Payload, decoded.Payload)
}

func TestOpMarshalBinaryRoundTripEmptyPayload(t *testing.T) {
	var original = Op{CreatedAt: time.Unix(0, 0).UTC()}

	var encoded, err = original.MarshalBinary()
	require.NoError(t, err)

	var decoded Op
	require.NoError(t, decoded.UnmarshalBinary(encoded))
	assert.Empty(t, decoded.Payload)
}

func TestOpUnmarshalBinaryRejectsShortInput(t *testing.T) {
	var decoded Op
	assert.Error(t, decoded.UnmarshalBinary([]byte{1, 2, 3}))
}

func TestOpUnmarshalBinaryRejectsLengthMismatch(t *testing.T) {
	var original = Op{CreatedAt: time.Unix(1700000000, 0).UTC(), Payload: []byte("abc")}
	var encoded, err = original.MarshalBinary()
	require.NoError(t, err)

	var decoded Op
	assert.Error(t, decoded.UnmarshalBinary(encoded[:len(encoded)-1]))
}
