package logrelay

// Record is one application-generated log record. The record schema and codec are
// owned by the application layer: the collector only asks for the serialized size
// and then renders the record into an exactly-sized buffer it allocates itself.
type Record interface {
	// Size returns the number of bytes Serialize will produce. A record
	// reporting zero is rejected by the collector.
	Size() int

	// Serialize renders the record into buf. The collector guarantees
	// len(buf) == Size(). Nothing is stored when Serialize returns an error.
	Serialize(buf []byte) error
}

// Entry is one record already rendered into storage-native bytes. The storage
// engine owns the entry for its lifetime; during extraction the collector borrows
// the byte slice only for the duration of one serialize call.
type Entry struct {
	// Data is the serialized record payload.
	Data []byte
}

// Size returns the unpadded payload length in bytes.
func (e Entry) Size() int {
	return len(e.Data)
}

// IsEmpty reports whether the entry carries no payload.
func (e Entry) IsEmpty() bool {
	return len(e.Data) == 0
}
