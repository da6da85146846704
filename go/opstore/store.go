package opstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/swarmbench/swarmbench/go/instruments"
	"github.com/swarmbench/swarmbench/go/ring"
)

// materializedOpsCacheSize bounds the LRU cache in front of RetrieveOps: op
// retrieval is on the gossip hot path and repeatedly requests the same
// recent ids, while the op data itself never changes after insertion.
const materializedOpsCacheSize = 4096

// Store is an in-memory, arc- and time-indexed store of content-addressed
// operations. All operations take a handle that internally holds a single
// single-writer/many-reader lock; no invariant crosses operations, so there
// is no multi-operation transaction.
type Store struct {
	idMode IDMode

	mu          sync.RWMutex
	ops         map[OpID]record
	sliceHashes *timeSliceHashStore

	materialized *lru.Cache[OpID, Op]
}

// New constructs an empty Store deriving op ids according to idMode.
func New(idMode IDMode) *Store {
	var cache, err = lru.New[OpID, Op](materializedOpsCacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which
		// materializedOpsCacheSize never is.
		panic(err)
	}
	return &Store{
		idMode:       idMode,
		ops:          make(map[OpID]record),
		sliceHashes:  newTimeSliceHashStore(),
		materialized: cache,
	}
}

// Ingest accepts a batch of raw payloads from the gossip layer, skipping
// payloads whose op id is already known. Reports a custom metric counting
// newly-inserted ops for this call, unless the batch produced none (the
// gossip layer calls this with empty batches and those aren't worth a
// metric point).
func (s *Store) Ingest(_ context.Context, payloads [][]byte, reporter *instruments.Reporter) ([]OpID, error) {
	var now = time.Now()

	s.mu.Lock()
	var inserted = make([]OpID, 0, len(payloads))
	for _, payload := range payloads {
		var id = s.idMode.computeID(payload)
		if _, exists := s.ops[id]; exists {
			continue
		}
		s.ops[id] = record{id: id, createdAt: now, storedAt: now, payload: payload}
		inserted = append(inserted, id)
	}
	s.mu.Unlock()

	if len(inserted) > 0 && reporter != nil {
		reporter.AddCustom(
			instruments.NewReportMetric("heard_messages").
				WithField("num_messages", instruments.UintValue(uint64(len(inserted)))),
		)
	}

	return inserted, nil
}

// StoreLocal inserts ops produced locally, deriving each one's id from its
// payload alone (CreatedAt is stored but not hashed). Used by the producing side; unlike
// Ingest, no metric is emitted.
func (s *Store) StoreLocal(ops []Op) ([]OpID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var inserted = make([]OpID, 0, len(ops))
	for _, op := range ops {
		var id = s.idMode.computeID(op.Payload)
		if _, exists := s.ops[id]; exists {
			continue
		}
		s.ops[id] = record{id: id, createdAt: op.CreatedAt, storedAt: time.Now(), payload: op.Payload}
		inserted = append(inserted, id)
	}
	return inserted, nil
}

// RetrieveOps materializes the ops named by ids. Missing ids are silently
// omitted. Materialized values are cached, since the same recent ids are
// repeatedly requested by the gossip layer and op payloads are immutable
// once stored.
func (s *Store) RetrieveOps(ids []OpID) []Op {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out = make([]Op, 0, len(ids))
	for _, id := range ids {
		if op, ok := s.materialized.Get(id); ok {
			out = append(out, op)
			continue
		}
		if rec, ok := s.ops[id]; ok {
			var op = Op{CreatedAt: rec.createdAt, Payload: rec.payload}
			s.materialized.Add(id, op)
			out = append(out, op)
		}
	}
	return out
}

// OpHashesInTimeSlice returns the op ids whose location falls within arc
// and whose creation timestamp is in [start, end), sorted by creation
// timestamp ascending (ties are not further broken), along with the total
// payload byte count of those ops.
func (s *Store) OpHashesInTimeSlice(arc ring.Arc, start, end time.Time) ([]OpID, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type candidate struct {
		rec record
	}
	var candidates = make([]candidate, 0)
	for _, rec := range s.ops {
		var loc = ring.Locate(rec.id)
		if !rec.createdAt.Before(start) && rec.createdAt.Before(end) && arc.Contains(loc) {
			candidates = append(candidates, candidate{rec})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].rec.createdAt.Before(candidates[j].rec.createdAt)
	})

	var ids = make([]OpID, len(candidates))
	var usedBytes int
	for i, c := range candidates {
		ids[i] = c.rec.id
		usedBytes += len(c.rec.payload)
	}
	return ids, usedBytes, nil
}

// OpIDsBounded returns op ids within arc stored at or after start, greedily
// taken in stored-at order up to limitBytes. If the limit is exhausted
// before exhausting candidates, the returned cursor is the stored-at time
// of the first excluded op; otherwise it is the time OpIDsBounded was
// called.
func (s *Store) OpIDsBounded(arc ring.Arc, start time.Time, limitBytes int) ([]OpID, int, time.Time, error) {
	var newStart = time.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var candidates = make([]record, 0)
	for _, rec := range s.ops {
		if arc.Contains(ring.Locate(rec.id)) && !rec.storedAt.Before(start) {
			candidates = append(candidates, rec)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].storedAt.Before(candidates[j].storedAt)
	})

	var ids = make([]OpID, 0, len(candidates))
	var totalBytes int
	var cursor = newStart
	for _, rec := range candidates {
		var dataLen = len(rec.payload)
		if totalBytes+dataLen > limitBytes {
			cursor = rec.storedAt
			break
		}
		totalBytes += dataLen
		ids = append(ids, rec.id)
	}

	return ids, totalBytes, cursor, nil
}

// StoreSliceHash stores the combined hash of time slice sliceIndex for arc.
// hash must be non-empty.
func (s *Store) StoreSliceHash(arc ring.Arc, sliceIndex uint64, hash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.sliceHashes.insert(arc, sliceIndex, hash); err != nil {
		return fmt.Errorf("opstore: %w", err)
	}
	return nil
}

// SliceHashCount returns highestStoredID(arc)+1, or 0 if arc has no stored
// slice hashes. This is easier to compare between peers than a literal
// count: it distinguishes "synced the first 4 slices" from "synced 3 and
// created one recent one" the way a bare count cannot.
func (s *Store) SliceHashCount(arc ring.Arc) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var highest, ok = s.sliceHashes.highestStoredID(arc)
	if !ok {
		return 0
	}
	return highest + 1
}

// RetrieveSliceHash returns the most recently stored hash for (arc,
// sliceIndex), or false if nothing has been stored for it.
func (s *Store) RetrieveSliceHash(arc ring.Arc, sliceIndex uint64) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sliceHashes.get(arc, sliceIndex)
}

// RetrieveSliceHashes returns every stored (index, hash) pair for arc,
// ordered by index ascending.
func (s *Store) RetrieveSliceHashes(arc ring.Arc) []SliceHashEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sliceHashes.getAll(arc)
}
