package logrelay

import (
	"github.com/hyp3rd/ewrap"
)

// Common errors for the logrelay package.
var (
	// ErrNilRecord is returned when a nil record is added to the collector.
	ErrNilRecord = ewrap.New("record is nil")

	// ErrEmptyRecord is returned when a record reports a zero serialized size.
	ErrEmptyRecord = ewrap.New("record serializes to zero bytes")

	// ErrRecordTooLarge is returned when a record can never fit in a single
	// upload block of the configured size.
	ErrRecordTooLarge = ewrap.New("record exceeds the configured block size")

	// ErrNotInitialized is returned when an operation requires a collaborator
	// that has not been installed on the collector.
	ErrNotInitialized = ewrap.New("collector is missing a required collaborator")

	// ErrWriteFailed is returned when the serialization buffer is exhausted
	// mid-batch.
	ErrWriteFailed = ewrap.New("batch serialization buffer exhausted")

	// ErrShortResponse is returned when a sync response is too short to carry
	// the fixed acknowledgement fields.
	ErrShortResponse = ewrap.New("sync response truncated")

	// ErrInvalidProperties is returned when upload properties fail validation.
	ErrInvalidProperties = ewrap.New("invalid upload properties")
)
