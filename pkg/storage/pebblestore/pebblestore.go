// Package pebblestore provides a persistent log storage engine backed by a
// pebble key-value store. Entries survive process restarts; extraction state does
// not, so entries that were in flight when the process died are requeued on the
// next run, matching the requeue-on-failure semantics of the storage contract.
//
// The engine doubles as a persisted bucket-id sequence source: the last handed
// out id is stored under a meta key so a restarted process does not reuse ids
// that may still be in flight.
package pebblestore

import (
	"encoding/binary"
	"errors"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/logrelay"
	"github.com/hyp3rd/logrelay/pkg/wire"
)

// ErrEmptyEntry is returned when an entry without payload is added.
var ErrEmptyEntry = ewrap.New("entry carries no payload")

const entryKeySize = 1 + 8

var (
	entryKeyPrefix = []byte{'e'}
	bucketMetaKey  = []byte("m:bucket")
)

func entryKey(seq uint64) []byte {
	key := make([]byte, entryKeySize)
	key[0] = entryKeyPrefix[0]
	binary.BigEndian.PutUint64(key[1:], seq)

	return key
}

// slot is the in-memory index of one persisted entry. Sizes are cached so status
// queries and budget checks never touch the key-value store.
type slot struct {
	seq      uint64
	size     int
	bucketID uint16
	inFlight bool
}

// Options configures a pebble-backed storage engine.
type Options struct {
	// DataDir is the directory holding the pebble store.
	DataDir string
}

// Store is a persistent log storage engine. All methods are safe for concurrent
// use.
type Store struct {
	db *pebble.DB

	mu      sync.Mutex
	slots   []slot
	total   int64
	nextSeq uint64
}

// Interface guards.
var (
	_ logrelay.Storage        = (*Store)(nil)
	_ logrelay.SequenceSource = (*Store)(nil)
)

// Open opens (or creates) the store under opts.DataDir and rebuilds the entry
// index from the persisted keys.
func Open(opts Options) (*Store, error) {
	if opts.DataDir == "" {
		return nil, ewrap.New("data directory is required")
	}

	db, err := pebble.Open(opts.DataDir, &pebble.Options{})
	if err != nil {
		return nil, ewrap.Wrapf(err, "failed to open pebble store at %s", opts.DataDir)
	}

	store := &Store{db: db}

	err = store.loadIndex()
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	return store, nil
}

func (s *Store) loadIndex() error {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: entryKey(0),
		UpperBound: append(entryKey(^uint64(0)), 0x00),
	})
	if err != nil {
		return ewrap.Wrap(err, "failed to scan entries")
	}
	defer iter.Close()

	for ok := iter.First(); ok; ok = iter.Next() {
		seq := binary.BigEndian.Uint64(iter.Key()[1:])
		size := len(iter.Value())

		s.slots = append(s.slots, slot{seq: seq, size: size})
		s.total += int64(size)
		s.nextSeq = seq + 1
	}

	return nil
}

// Add persists the entry behind every buffered record.
func (s *Store) Add(entry logrelay.Entry) error {
	if entry.IsEmpty() {
		return ErrEmptyEntry
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.nextSeq

	err := s.db.Set(entryKey(seq), entry.Data, pebble.Sync)
	if err != nil {
		return ewrap.Wrap(err, "failed to persist entry")
	}

	s.nextSeq++
	s.slots = append(s.slots, slot{seq: seq, size: entry.Size()})
	s.total += int64(entry.Size())

	return nil
}

// GetRecord returns the oldest entry not yet extracted whose prefixed, aligned
// size fits the remaining budget, tagging it with the bucket id.
func (s *Store) GetRecord(bucketID uint16, remaining int) (logrelay.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.slots {
		if s.slots[i].inFlight {
			continue
		}

		if wire.RecordWireSize(s.slots[i].size) > remaining {
			continue
		}

		value, closer, err := s.db.Get(entryKey(s.slots[i].seq))
		if err != nil {
			// Index and store disagree; drop the stale slot and move on.
			continue
		}

		data := make([]byte, len(value))
		copy(data, value)
		_ = closer.Close()

		s.slots[i].inFlight = true
		s.slots[i].bucketID = bucketID

		return logrelay.Entry{Data: data}, true
	}

	return logrelay.Entry{}, false
}

// ShrinkToSize evicts the oldest entries until the total size is at most
// maxBytes. Deletions are committed as one batch.
func (s *Store) ShrinkToSize(maxBytes int64) int {
	if maxBytes < 0 {
		maxBytes = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.total <= maxBytes {
		return 0
	}

	batch := s.db.NewBatch()
	evicted := 0

	for len(s.slots) > evicted && s.total > maxBytes {
		sl := s.slots[evicted]

		err := batch.Delete(entryKey(sl.seq), nil)
		if err != nil {
			break
		}

		s.total -= int64(sl.size)
		evicted++
	}

	err := s.db.Apply(batch, pebble.Sync)
	_ = batch.Close()

	if err != nil {
		// The deletes did not land; restore the index.
		for i := range evicted {
			s.total += int64(s.slots[i].size)
		}

		return 0
	}

	s.slots = s.slots[evicted:]

	return evicted
}

// UploadSucceeded deletes every entry extracted for the bucket from the store.
// Unknown bucket ids are a no-op.
func (s *Store) UploadSucceeded(bucketID uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := s.db.NewBatch()
	kept := make([]slot, 0, len(s.slots))
	removed := int64(0)

	for _, sl := range s.slots {
		if sl.inFlight && sl.bucketID == bucketID {
			if err := batch.Delete(entryKey(sl.seq), nil); err == nil {
				removed += int64(sl.size)

				continue
			}
		}

		kept = append(kept, sl)
	}

	err := s.db.Apply(batch, pebble.Sync)
	_ = batch.Close()

	if err != nil {
		// Keep the index consistent with the store: requeue instead of retiring.
		for i := range s.slots {
			if s.slots[i].inFlight && s.slots[i].bucketID == bucketID {
				s.slots[i].inFlight = false
			}
		}

		return
	}

	s.slots = kept
	s.total -= removed
}

// UploadFailed requeues every entry extracted for the bucket. Unknown bucket ids
// are a no-op.
func (s *Store) UploadFailed(bucketID uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.slots {
		if s.slots[i].inFlight && s.slots[i].bucketID == bucketID {
			s.slots[i].inFlight = false
		}
	}
}

// Status returns the aggregate metrics over every persisted entry, in-flight
// entries included.
func (s *Store) Status() logrelay.StorageStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return logrelay.StorageStatus{
		RecordCount: len(s.slots),
		TotalSize:   s.total,
	}
}

// NextBucketID returns the persisted bucket sequence advanced by one, wrapping at
// 65536. The new value is stored before it is handed out.
func (s *Store) NextBucketID() (uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var last uint16

	value, closer, err := s.db.Get(bucketMetaKey)

	switch {
	case err == nil:
		if len(value) >= 2 {
			last = binary.BigEndian.Uint16(value)
		}

		_ = closer.Close()
	case errors.Is(err, pebble.ErrNotFound):
		// First run: the sequence starts at zero.
	default:
		return 0, ewrap.Wrap(err, "failed to read the bucket sequence")
	}

	next := last + 1

	var buf [2]byte

	binary.BigEndian.PutUint16(buf[:], next)

	err = s.db.Set(bucketMetaKey, buf[:], pebble.Sync)
	if err != nil {
		return 0, ewrap.Wrap(err, "failed to persist the bucket sequence")
	}

	return next, nil
}

// Close closes the underlying pebble store.
func (s *Store) Close() error {
	err := s.db.Close()
	if err != nil {
		return ewrap.Wrap(err, "failed to close pebble store")
	}

	return nil
}
