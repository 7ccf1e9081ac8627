package wire

import (
	"github.com/hyp3rd/ewrap"
)

// Common errors for the wire package.
var (
	// ErrShortBuffer is returned when a write does not fit the builder's buffer.
	ErrShortBuffer = ewrap.New("wire buffer exhausted")

	// ErrShortRead is returned when a read runs past the reader's remaining bytes.
	ErrShortRead = ewrap.New("wire buffer underrun")

	// ErrBadFixup is returned when a patch targets a region that was never reserved.
	ErrBadFixup = ewrap.New("fixup offset out of range")
)
