// Package wire implements the big-endian sync-extension encoding used between an
// endpoint and the log collection server.
//
// A logging extension is framed by an 8-byte extension header (1-byte type tag,
// 3 bytes of option flags, 32-bit payload length) and carries a 16-bit bucket id,
// a 16-bit record count, and a sequence of records each prefixed by a 32-bit
// unpadded length and zero-padded to the next 4-byte boundary.
//
// Builder writes into a fixed buffer with an explicit cursor and supports
// reserving header fields that are patched after the body is known. Reader is its
// bounds-checked counterpart for parsing server responses.
package wire

const (
	// ExtensionTypeLogging is the type tag of the logging sync extension.
	ExtensionTypeLogging uint8 = 0x04

	// FlagReceiveUpdates requests server acknowledgements for emitted batches.
	FlagReceiveUpdates uint32 = 0x01

	// ExtensionHeaderSize is the size of the extension header in bytes: a 1-byte
	// type tag, 3 bytes of flags and a 32-bit payload length.
	ExtensionHeaderSize = 8

	// Alignment is the boundary record payloads are padded to.
	Alignment = 4

	// MaxPaddingLength is the worst-case padding appended to one record.
	MaxPaddingLength = Alignment - 1

	// LengthPrefixSize is the size of the per-record length prefix.
	LengthPrefixSize = 4

	// AckSize is the fixed size of a logging acknowledgement: a 16-bit bucket id
	// followed by a 16-bit result code.
	AckSize = 4

	// ResultSuccess is the acknowledgement result code for a successful upload.
	// Any other value in the low byte of the result field means failure.
	ResultSuccess uint8 = 0x00
)

// AlignedSize returns n rounded up to the next Alignment boundary.
func AlignedSize(n int) int {
	return (n + Alignment - 1) &^ (Alignment - 1)
}

// RecordWireSize returns the number of budget bytes one record of the given
// payload size consumes: its length prefix plus the aligned payload.
func RecordWireSize(payloadSize int) int {
	return LengthPrefixSize + AlignedSize(payloadSize)
}
