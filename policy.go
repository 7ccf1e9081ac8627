package logrelay

// Decision is the outcome of one upload decision policy evaluation.
type Decision uint8

const (
	// DecisionNone means neither upload nor cleanup is warranted.
	DecisionNone Decision = iota
	// DecisionUpload means accumulated records should be uploaded.
	DecisionUpload
	// DecisionCleanup means storage exceeded its volume bound and must shrink.
	DecisionCleanup
)

// String returns the string representation of a decision.
func (d Decision) String() string {
	switch d {
	case DecisionNone:
		return "NONE"
	case DecisionUpload:
		return "UPLOAD"
	case DecisionCleanup:
		return "CLEANUP"
	default:
		return "UNKNOWN"
	}
}

// IsValid reports whether the decision value is recognised.
func (d Decision) IsValid() bool {
	return d <= DecisionCleanup
}

// DecisionFunc maps storage pressure to a Decision. It must be a pure function of
// its inputs: the collector re-evaluates it after every record add and after every
// acknowledgement, never on a timer.
type DecisionFunc func(status StorageStatus, props UploadProperties) Decision

// DefaultDecision is the stock upload decision policy: cleanup when the total size
// exceeds MaxStorageVolume, upload when it reaches UploadThreshold, none otherwise.
// Cleanup takes priority over upload so storage cannot grow unbounded while an
// upload is pending.
func DefaultDecision(status StorageStatus, props UploadProperties) Decision {
	switch {
	case status.TotalSize > props.MaxStorageVolume:
		return DecisionCleanup
	case status.TotalSize >= props.UploadThreshold:
		return DecisionUpload
	default:
		return DecisionNone
	}
}
