package opstore

import (
	"fmt"
	"sort"

	"github.com/swarmbench/swarmbench/go/ring"
)

// timeSliceHashStore is an in-memory store for per-arc time-slice hashes,
// sparse and indexed by slice id. Grounded in
// bindings/kitsune_client/src/op_store/time_slice_hash_store.rs.
//
// ring.Arc is a struct whose fields are all comparable, so it is used
// directly as the outer map key.
type timeSliceHashStore struct {
	byArc map[ring.Arc]map[uint64][]byte
}

func newTimeSliceHashStore() *timeSliceHashStore {
	return &timeSliceHashStore{byArc: make(map[ring.Arc]map[uint64][]byte)}
}

// insert stores hash at sliceIndex for arc. Rejects empty hashes: an empty
// combined hash never needs to be stored, and receiving one after a
// non-empty value was already stored for that slice indicates caller error.
func (s *timeSliceHashStore) insert(arc ring.Arc, sliceIndex uint64, hash []byte) error {
	if len(hash) == 0 {
		return fmt.Errorf("opstore: cannot insert empty combined hash")
	}
	var byIndex, ok = s.byArc[arc]
	if !ok {
		byIndex = make(map[uint64][]byte)
		s.byArc[arc] = byIndex
	}
	byIndex[sliceIndex] = hash
	return nil
}

func (s *timeSliceHashStore) get(arc ring.Arc, sliceIndex uint64) ([]byte, bool) {
	var byIndex, ok = s.byArc[arc]
	if !ok {
		return nil, false
	}
	var hash, found = byIndex[sliceIndex]
	return hash, found
}

// SliceHashEntry is one (index, hash) pair returned by getAll, in ascending
// index order.
type SliceHashEntry struct {
	Index uint64
	Hash  []byte
}

func (s *timeSliceHashStore) getAll(arc ring.Arc) []SliceHashEntry {
	var byIndex, ok = s.byArc[arc]
	if !ok {
		return nil
	}
	var indices = make([]uint64, 0, len(byIndex))
	for idx := range byIndex {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	var entries = make([]SliceHashEntry, len(indices))
	for i, idx := range indices {
		entries[i] = SliceHashEntry{Index: idx, Hash: byIndex[idx]}
	}
	return entries
}

// highestStoredID returns the greatest slice index stored for arc, or false
// if nothing has been stored for it.
func (s *timeSliceHashStore) highestStoredID(arc ring.Arc) (uint64, bool) {
	var byIndex, ok = s.byArc[arc]
	if !ok || len(byIndex) == 0 {
		return 0, false
	}
	var highest uint64
	var first = true
	for idx := range byIndex {
		if first || idx > highest {
			highest = idx
		}
		first = false
	}
	return highest, true
}
