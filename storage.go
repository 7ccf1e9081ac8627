package logrelay

// StorageStatus is a snapshot of aggregate storage metrics. It has no lifecycle of
// its own: engines recompute it on demand. Extracted-but-unacknowledged entries
// still count until they are retired by an acknowledgement.
type StorageStatus struct {
	// RecordCount is the number of buffered entries.
	RecordCount int
	// TotalSize is the sum of the unpadded entry sizes, in bytes.
	TotalSize int64
}

// StatusProvider is the read-only view of storage consumed by the decision policy.
type StatusProvider interface {
	// Status returns the current aggregate storage metrics.
	Status() StorageStatus
}

// Storage is the contract between the collector and a log storage engine.
//
// The collector performs no locking of its own: engines that are shared between an
// application thread calling Add and a communication thread driving extraction and
// acknowledgements must synchronize internally.
type Storage interface {
	StatusProvider

	// Add takes ownership of a serialized entry.
	Add(entry Entry) error

	// GetRecord hands out the next entry for the given bucket, or ok=false when
	// no remaining entry fits the budget. It must never return an entry whose
	// aligned size plus the 4-byte length prefix exceeds remaining, and it must
	// not return an entry already extracted for the same bucket id. The caller
	// treats ok=false as a loop terminator, not an error.
	GetRecord(bucketID uint16, remaining int) (entry Entry, ok bool)

	// ShrinkToSize evicts lowest-priority (oldest) entries until the total size
	// is at most maxBytes. A no-op if the storage is already within the bound.
	// Returns the number of evicted entries.
	ShrinkToSize(maxBytes int64) int

	// UploadSucceeded retires every entry extracted for the given bucket.
	// Engines that do not track buckets, or that no longer know the id, accept
	// the call as a no-op.
	UploadSucceeded(bucketID uint16)

	// UploadFailed requeues every entry extracted for the given bucket so a
	// later emission can pick them up again. Unknown bucket ids are a no-op.
	UploadFailed(bucketID uint16)

	// Close releases the engine's resources. Called when a new engine replaces
	// this one or when the owner shuts down.
	Close() error
}
