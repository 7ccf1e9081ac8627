// Package memory provides a volatile, mutex-guarded log storage engine. Entries
// live in insertion order; extraction tags entries with the requesting bucket id,
// a failed upload requeues them, and a successful one retires them. Suitable for
// endpoints that can afford to lose buffered logs across restarts.
package memory

import (
	"sync"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/logrelay"
	"github.com/hyp3rd/logrelay/pkg/wire"
)

// ErrEmptyEntry is returned when an entry without payload is added.
var ErrEmptyEntry = ewrap.New("entry carries no payload")

type slot struct {
	data     []byte
	bucketID uint16
	inFlight bool
}

// Storage is an in-memory log storage engine. The zero value is not usable; use
// New. All methods are safe for concurrent use.
type Storage struct {
	mu    sync.Mutex
	slots []slot
	total int64
}

// Interface guard.
var _ logrelay.Storage = (*Storage)(nil)

// New returns an empty in-memory storage engine.
func New() *Storage {
	return &Storage{}
}

// Add takes ownership of the entry and appends it behind every buffered record.
func (s *Storage) Add(entry logrelay.Entry) error {
	if entry.IsEmpty() {
		return ErrEmptyEntry
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots = append(s.slots, slot{data: entry.Data})
	s.total += int64(entry.Size())

	return nil
}

// GetRecord returns the oldest entry not yet extracted whose prefixed, aligned
// size fits the remaining budget. The entry is tagged with the bucket id and kept
// in storage until the bucket is acknowledged.
func (s *Storage) GetRecord(bucketID uint16, remaining int) (logrelay.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.slots {
		if s.slots[i].inFlight {
			continue
		}

		if wire.RecordWireSize(len(s.slots[i].data)) > remaining {
			continue
		}

		s.slots[i].inFlight = true
		s.slots[i].bucketID = bucketID

		return logrelay.Entry{Data: s.slots[i].data}, true
	}

	return logrelay.Entry{}, false
}

// ShrinkToSize evicts the oldest entries until the total size is at most
// maxBytes. In-flight entries are evicted like any other: age is the only
// priority.
func (s *Storage) ShrinkToSize(maxBytes int64) int {
	if maxBytes < 0 {
		maxBytes = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0

	for len(s.slots) > 0 && s.total > maxBytes {
		s.total -= int64(len(s.slots[0].data))
		s.slots = s.slots[1:]
		evicted++
	}

	return evicted
}

// UploadSucceeded retires every entry extracted for the bucket. Unknown bucket
// ids are a no-op.
func (s *Storage) UploadSucceeded(bucketID uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.slots[:0]

	for _, sl := range s.slots {
		if sl.inFlight && sl.bucketID == bucketID {
			s.total -= int64(len(sl.data))

			continue
		}

		kept = append(kept, sl)
	}

	s.slots = kept
}

// UploadFailed requeues every entry extracted for the bucket so a later emission
// can pick them up again. Unknown bucket ids are a no-op.
func (s *Storage) UploadFailed(bucketID uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.slots {
		if s.slots[i].inFlight && s.slots[i].bucketID == bucketID {
			s.slots[i].inFlight = false
		}
	}
}

// Status returns the aggregate metrics over every buffered entry, in-flight
// entries included.
func (s *Storage) Status() logrelay.StorageStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return logrelay.StorageStatus{
		RecordCount: len(s.slots),
		TotalSize:   s.total,
	}
}

// Close drops every buffered entry.
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots = nil
	s.total = 0

	return nil
}
