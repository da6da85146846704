// Package peer treats the underlying peer-to-peer application framework as
// an opaque capability: agent identity, space membership, gossip transport,
// and application-layer RPC. Nothing in this repository interprets what a
// real peer node does with a join request or an RPC call; scenario binaries
// supply a concrete Capability, and everything upstream of it (the runner,
// the instrumentation pipeline, the operation store) only ever sees the
// interface below.
//
// Grounded in spec.md §9's "Pattern: opaque agent identity": an agent key is
// an opaque byte blob with equality and display, never interpreted beyond
// that. bindings/task_service.go's grpc.DialContext call (transport
// credentials, grpc-prometheus interceptors, max message size options) is
// the concrete shape the default Capability implementation reuses for its
// transport.
package peer

import "encoding/hex"

// Identity is an opaque agent identity. The store and runner only ever
// compare identities for equality or print them; no component interprets
// their byte structure.
type Identity []byte

// String renders the identity as lowercase hex, matching the teacher's
// convention for opaque byte identifiers (see go/labels, which hex-encodes
// range keys for the same "opaque but printable" reason).
func (id Identity) String() string {
	return hex.EncodeToString(id)
}

// Equal reports whether id and other identify the same agent.
func (id Identity) Equal(other Identity) bool {
	if len(id) != len(other) {
		return false
	}
	for i := range id {
		if id[i] != other[i] {
			return false
		}
	}
	return true
}
