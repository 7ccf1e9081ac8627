package logrelay

import (
	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/logrelay/pkg/wire"
)

const (
	// DefaultMaxBlockSize is the default upper bound on one outgoing batch's
	// record payload, in bytes.
	DefaultMaxBlockSize = 2048
	// DefaultUploadThreshold is the default accumulated size at which an upload
	// is triggered.
	DefaultUploadThreshold = 8 * 1024
	// DefaultMaxStorageVolume is the default storage size bound beyond which
	// forced eviction kicks in.
	DefaultMaxStorageVolume = 10 * 1024
)

// UploadProperties is the configuration pair driving batching and eviction. It is
// immutable for the collector's lifetime once installed.
type UploadProperties struct {
	// MaxBlockSize is the upper bound on the record payload of one outgoing
	// batch, in bytes. Each record consumes its 4-byte length prefix plus its
	// payload padded to a 4-byte boundary out of this budget.
	MaxBlockSize int
	// UploadThreshold is the accumulated byte size at which the default policy
	// decides to upload.
	UploadThreshold int64
	// MaxStorageVolume is the storage byte size beyond which the default policy
	// decides to clean up. Eviction shrinks storage back to this bound.
	MaxStorageVolume int64
}

// DefaultProperties returns the default upload properties.
func DefaultProperties() UploadProperties {
	return UploadProperties{
		MaxBlockSize:     DefaultMaxBlockSize,
		UploadThreshold:  DefaultUploadThreshold,
		MaxStorageVolume: DefaultMaxStorageVolume,
	}
}

// Validate checks the properties for internal consistency.
func (p UploadProperties) Validate() error {
	if p.MaxBlockSize < wire.LengthPrefixSize+wire.Alignment {
		return ewrap.Wrapf(ErrInvalidProperties,
			"max block size %d cannot hold a single record", p.MaxBlockSize)
	}

	if p.UploadThreshold <= 0 {
		return ewrap.Wrapf(ErrInvalidProperties,
			"upload threshold %d must be positive", p.UploadThreshold)
	}

	if p.MaxStorageVolume < p.UploadThreshold {
		return ewrap.Wrapf(ErrInvalidProperties,
			"max storage volume %d is below the upload threshold %d",
			p.MaxStorageVolume, p.UploadThreshold)
	}

	return nil
}
