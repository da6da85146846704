// Package opstore implements an in-memory, arc- and time-indexed store of
// content-addressed operations with gossip-facing queries.
//
// It is grounded in bindings/kitsune_client/src/op_store.rs (WtOpStore) and
// its nested time_slice_hash_store.rs (TimeSliceHashStore): a single
// RWMutex-guarded map of op records keyed by content hash, plus a sparse
// per-arc mapping from time-slice index to combined hash.
package opstore

import (
	"encoding/binary"
	"fmt"
	"time"

	"golang.org/x/crypto/sha3"
)

// OpID is a 32-byte content address.
type OpID [32]byte

// IDMode selects how OpID is derived from a payload.
type IDMode int

const (
	// Hash derives the op id as SHA3-256 of the payload, the production mode.
	Hash IDMode = iota
	// TestPrefix derives the op id as the first 32 bytes of the payload,
	// right-padded with zeros, so tests can construct predictable ids.
	TestPrefix
)

func (m IDMode) computeID(payload []byte) OpID {
	switch m {
	case TestPrefix:
		var id OpID
		copy(id[:], payload)
		return id
	default:
		return OpID(sha3.Sum256(payload))
	}
}

// Op is an application payload: a creation timestamp plus an opaque byte
// payload.
type Op struct {
	CreatedAt time.Time
	Payload   []byte
}

// MarshalBinary encodes o as a compact, length-prefixed layout: an 8-byte
// big-endian CreatedAt (unix nanoseconds), a 4-byte big-endian payload
// length, then the payload bytes. Grounded in op_store.rs's WtOp wire form
// (created_at + op_data), encoded with encoding/binary instead of the
// original's serde_json/protobuf since nothing here needs a schema-evolving
// codec (see DESIGN.md).
func (o Op) MarshalBinary() ([]byte, error) {
	var buf = make([]byte, 12+len(o.Payload))
	binary.BigEndian.PutUint64(buf[0:8], uint64(o.CreatedAt.UnixNano()))
	binary.BigEndian.PutUint32(buf[8:12], uint32(len(o.Payload)))
	copy(buf[12:], o.Payload)
	return buf, nil
}

// UnmarshalBinary decodes o from the layout MarshalBinary produces.
func (o *Op) UnmarshalBinary(data []byte) error {
	if len(data) < 12 {
		return fmt.Errorf("opstore: op encoding too short: %d bytes", len(data))
	}
	var payloadLen = binary.BigEndian.Uint32(data[8:12])
	if uint64(len(data)-12) != uint64(payloadLen) {
		return fmt.Errorf("opstore: op encoding length mismatch: header says %d, have %d", payloadLen, len(data)-12)
	}
	o.CreatedAt = time.Unix(0, int64(binary.BigEndian.Uint64(data[0:8]))).UTC()
	o.Payload = make([]byte, payloadLen)
	copy(o.Payload, data[12:])
	return nil
}

// record is the derived storage form kept internally: the op id, the
// creation timestamp, the local stored-at timestamp stamped at insertion,
// and the payload.
type record struct {
	id        OpID
	createdAt time.Time
	storedAt  time.Time
	payload   []byte
}
