package logrelay

import (
	"github.com/hyp3rd/ewrap"
	"github.com/hyp3rd/hyperlogger"

	"github.com/hyp3rd/logrelay/pkg/wire"
)

// Config assembles the collaborators of a Collector.
type Config struct {
	// Storage is the log storage engine. May be nil at construction and
	// installed later through InstallStorage; operations return
	// ErrNotInitialized until then.
	Storage Storage
	// Properties bound batching and eviction. The zero value leaves the
	// collector uninitialized.
	Properties UploadProperties
	// Decision is the upload decision policy. Defaults to DefaultDecision.
	Decision DecisionFunc
	// Sequence seeds the bucket-id counter on the first emission. Emission
	// fails with ErrNotInitialized while unset.
	Sequence SequenceSource
	// Trigger is notified when the policy decides an upload is warranted.
	// Optional: without it upload decisions are logged and dropped.
	Trigger UploadTrigger
	// Logger receives the collector's diagnostics. Defaults to a no-op logger.
	Logger hyperlogger.Logger
}

// Collector orchestrates record ingestion, batch emission and acknowledgement
// handling across the storage engine, the decision policy and the transport
// trigger.
//
// All methods are plain synchronous calls with no internal locking; a single
// logical execution context is expected to drive emission and acknowledgement
// handling. Concurrent AddRecord calls are safe exactly when the installed
// storage engine synchronizes its own Add path.
type Collector struct {
	storage Storage
	props   UploadProperties
	decide  DecisionFunc
	seq     SequenceSource
	trigger UploadTrigger
	logger  hyperlogger.Logger

	// Current bucket id, seeded lazily from the sequence source on the first
	// emission and incremented in memory afterwards, wrapping at 65536.
	bucketID     uint16
	bucketSeeded bool
}

// NewCollector builds a Collector from the given configuration. Non-zero upload
// properties are validated here; a zero Properties value is accepted but leaves
// the collector uninitialized, so every operation fails with ErrNotInitialized.
func NewCollector(cfg Config) (*Collector, error) {
	if cfg.Properties != (UploadProperties{}) {
		err := cfg.Properties.Validate()
		if err != nil {
			return nil, err
		}
	}

	if cfg.Decision == nil {
		cfg.Decision = DefaultDecision
	}

	if cfg.Logger == nil {
		cfg.Logger = hyperlogger.NewNoop()
	}

	collector := &Collector{
		storage: cfg.Storage,
		props:   cfg.Properties,
		decide:  cfg.Decision,
		seq:     cfg.Sequence,
		trigger: cfg.Trigger,
		logger:  cfg.Logger,
	}

	collector.logger.WithFields(
		hyperlogger.Field{Key: "maxBlockSize", Value: cfg.Properties.MaxBlockSize},
		hyperlogger.Field{Key: "maxStorageVolume", Value: cfg.Properties.MaxStorageVolume},
	).Debug("log collector created")

	return collector, nil
}

// InstallStorage replaces the collector's storage engine. The previous engine, if
// any, is closed: only one engine is installed at a time.
func (c *Collector) InstallStorage(storage Storage) error {
	if storage == nil {
		return ewrap.Wrap(ErrNotInitialized, "storage engine is nil")
	}

	if c.storage != nil {
		err := c.storage.Close()
		if err != nil {
			c.logger.WithError(err).Warn("failed to close the previous storage engine")
		}
	}

	c.storage = storage

	return nil
}

// initialized reports whether ingestion-side collaborators are all installed.
func (c *Collector) initialized() bool {
	return c.storage != nil && c.decide != nil && c.props != (UploadProperties{})
}

// AddRecord serializes the record through its own codec into a buffer sized
// exactly to its reported length, hands it to storage, and re-evaluates the
// upload decision policy. The policy evaluation may shrink storage or signal the
// transport trigger as a side effect.
func (c *Collector) AddRecord(record Record) error {
	if record == nil {
		return ErrNilRecord
	}

	if !c.initialized() {
		return ErrNotInitialized
	}

	size := record.Size()
	if size <= 0 {
		return ErrEmptyRecord
	}

	if wire.RecordWireSize(size) > c.props.MaxBlockSize {
		return ewrap.Wrapf(ErrRecordTooLarge,
			"record of %d bytes cannot fit a %d byte block", size, c.props.MaxBlockSize)
	}

	c.logger.WithField("size", size).Trace("adding log record")

	buf := make([]byte, size)

	err := record.Serialize(buf)
	if err != nil {
		return ewrap.Wrap(err, "failed to serialize record")
	}

	err = c.storage.Add(Entry{Data: buf})
	if err != nil {
		return ewrap.Wrap(err, "failed to store record")
	}

	c.updateStorage()

	return nil
}

// EstimateSize returns a conservative upper bound on the next batch's wire size:
// the extension header, the bucket and count fields, and the stored payload with
// worst-case per-record overhead, clamped to MaxBlockSize. A pure read of storage
// status: no extraction is performed.
func (c *Collector) EstimateSize() (int, error) {
	if c.storage == nil || c.props == (UploadProperties{}) {
		return 0, ErrNotInitialized
	}

	status := c.storage.Status()

	payload := status.RecordCount*(wire.LengthPrefixSize+wire.MaxPaddingLength) +
		int(status.TotalSize)
	if payload > c.props.MaxBlockSize {
		payload = c.props.MaxBlockSize
	}

	return wire.ExtensionHeaderSize + 2 + 2 + payload, nil
}

// SerializeInto emits one logging extension into the builder: the extension
// header, the bucket id, the record count, and as many stored records as fit the
// MaxBlockSize budget. Records are written with a 4-byte length prefix and padded
// to a 4-byte boundary; header length and count fields are patched in after
// extraction. An empty batch is legal and still carries the bucket id.
//
// On a mid-batch write failure the storage engine is notified through
// UploadFailed so it can requeue the bucket's entries, and ErrWriteFailed is
// returned.
func (c *Collector) SerializeInto(builder *wire.Builder) error {
	if builder == nil {
		return ewrap.Wrap(ErrWriteFailed, "wire builder is nil")
	}

	if !c.initialized() {
		return ErrNotInitialized
	}

	lengthFixup, err := builder.WriteExtensionHeader(wire.ExtensionTypeLogging, wire.FlagReceiveUpdates)
	if err != nil {
		return ErrWriteFailed
	}

	err = c.nextBucket()
	if err != nil {
		return err
	}

	err = builder.WriteUint16(c.bucketID)
	if err != nil {
		return ErrWriteFailed
	}

	countFixup, err := builder.Reserve(2)
	if err != nil {
		return ErrWriteFailed
	}

	remaining := c.props.MaxBlockSize
	count := 0

	c.logger.WithFields(
		hyperlogger.Field{Key: "bucket", Value: c.bucketID},
		hyperlogger.Field{Key: "budget", Value: remaining},
	).Trace("extracting log records")

	for {
		entry, ok := c.storage.GetRecord(c.bucketID, remaining)
		if !ok {
			break
		}

		count++
		remaining -= wire.RecordWireSize(entry.Size())

		err = builder.WriteUint32(uint32(entry.Size())) //nolint:gosec
		if err != nil {
			c.storage.UploadFailed(c.bucketID)

			return ErrWriteFailed
		}

		err = builder.WriteAligned(entry.Data)
		if err != nil {
			c.storage.UploadFailed(c.bucketID)

			return ErrWriteFailed
		}
	}

	// Bucket id and record count precede the records in the extension payload.
	total := uint32(2 + 2 + (c.props.MaxBlockSize - remaining)) //nolint:gosec

	err = builder.PatchUint32(lengthFixup, total)
	if err != nil {
		return ErrWriteFailed
	}

	err = builder.PatchUint16(countFixup, uint16(count)) //nolint:gosec
	if err != nil {
		return ErrWriteFailed
	}

	c.logger.WithFields(
		hyperlogger.Field{Key: "bucket", Value: c.bucketID},
		hyperlogger.Field{Key: "records", Value: count},
		hyperlogger.Field{Key: "extensionSize", Value: total},
	).Debug("log batch serialized")

	return nil
}

// Serialize is a convenience wrapper around SerializeInto that sizes a buffer
// with EstimateSize and returns the emitted extension bytes.
func (c *Collector) Serialize() ([]byte, error) {
	size, err := c.EstimateSize()
	if err != nil {
		return nil, err
	}

	builder := wire.NewBuilderSize(size)

	err = c.SerializeInto(builder)
	if err != nil {
		return nil, err
	}

	return builder.Bytes(), nil
}

// LastBucketID returns the bucket id of the most recently emitted batch. ok is
// false before the first emission.
func (c *Collector) LastBucketID() (id uint16, ok bool) {
	return c.bucketID, c.bucketSeeded
}

// nextBucket resolves the bucket id for the batch being emitted: seeded from the
// sequence source exactly once, then incremented in memory, wrapping at 65536.
func (c *Collector) nextBucket() error {
	if c.bucketSeeded {
		c.bucketID++

		return nil
	}

	if c.seq == nil {
		return ewrap.Wrap(ErrNotInitialized, "no sequence source installed")
	}

	id, err := c.seq.NextBucketID()
	if err != nil {
		return ewrap.Wrap(err, "failed to obtain a bucket id")
	}

	c.bucketID = id
	c.bucketSeeded = true

	return nil
}

// HandleServerSync parses a logging acknowledgement, routes the result to the
// storage engine, and re-evaluates the upload decision policy. A failed or
// succeeded upload can free space or warrant another upload immediately.
func (c *Collector) HandleServerSync(reader *wire.Reader) error {
	if reader == nil {
		return ewrap.Wrap(ErrShortResponse, "wire reader is nil")
	}

	if c.storage == nil {
		return ErrNotInitialized
	}

	if reader.Remaining() < wire.AckSize {
		return ewrap.Wrapf(ErrShortResponse,
			"need %d bytes, have %d", wire.AckSize, reader.Remaining())
	}

	id, err := reader.ReadUint16()
	if err != nil {
		return ewrap.Wrap(ErrShortResponse, "failed to read bucket id")
	}

	code, err := reader.ReadUint16()
	if err != nil {
		return ewrap.Wrap(ErrShortResponse, "failed to read result code")
	}

	// Only the low byte of the result field is meaningful.
	if uint8(code) == wire.ResultSuccess { //nolint:gosec
		c.logger.WithField("bucket", id).Debug("log bucket uploaded successfully")
		c.storage.UploadSucceeded(id)
	} else {
		c.logger.WithField("bucket", id).Warn("log bucket upload failed")
		c.storage.UploadFailed(id)
	}

	c.updateStorage()

	return nil
}

// updateStorage re-evaluates the decision policy against the current storage
// status and acts on the outcome.
func (c *Collector) updateStorage() {
	status := c.storage.Status()

	switch c.decide(status, c.props) {
	case DecisionCleanup:
		c.logger.WithFields(
			hyperlogger.Field{Key: "size", Value: status.TotalSize},
			hyperlogger.Field{Key: "maxVolume", Value: c.props.MaxStorageVolume},
		).Warn("log storage over volume, shrinking")

		evicted := c.storage.ShrinkToSize(c.props.MaxStorageVolume)

		c.logger.WithField("evicted", evicted).Info("log storage shrunk")
	case DecisionUpload:
		c.logger.Info("initiating log upload")

		if c.trigger != nil {
			c.trigger.TriggerUpload()
		}
	case DecisionNone:
		c.logger.Trace("upload shall not be triggered now")
	}
}
