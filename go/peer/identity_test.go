package peer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityEqual(t *testing.T) {
	var a = Identity{1, 2, 3}
	var b = Identity{1, 2, 3}
	var c = Identity{1, 2, 4}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(Identity{1, 2}))
}

func TestIdentityString(t *testing.T) {
	var id = Identity{0xde, 0xad, 0xbe, 0xef}
	assert.Equal(t, "deadbeef", id.String())
}
