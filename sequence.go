package logrelay

import (
	"sync"
)

// SequenceSource hands out the starting bucket id for this process. The collector
// consults it exactly once, on the first batch emission, and increments the id in
// memory afterwards. Implementations backed by persisted state should advance the
// stored value so a restarted process does not reuse ids still in flight.
type SequenceSource interface {
	// NextBucketID returns the bucket id the next emitted batch should carry.
	NextBucketID() (uint16, error)
}

// CounterSource is a volatile, in-memory SequenceSource. Suitable for endpoints
// that do not persist identity state across restarts, and for tests.
type CounterSource struct {
	mu   sync.Mutex
	next uint16
}

// NewCounterSource returns a CounterSource whose first handed-out id is start+1.
func NewCounterSource(start uint16) *CounterSource {
	return &CounterSource{next: start}
}

// NextBucketID returns the next id in the sequence, wrapping at 65536.
func (c *CounterSource) NextBucketID() (uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.next++

	return c.next, nil
}
