package wire

import (
	"encoding/binary"
)

// Fixup is a handle to a reserved buffer region, patched after the surrounding
// body has been written.
type Fixup struct {
	offset int
	size   int
}

// Builder writes big-endian wire data into a fixed-size buffer, tracking a cursor
// and handing out fixups for two-pass header fields. A Builder never grows its
// buffer: a write that does not fit fails with ErrShortBuffer and leaves the
// cursor unchanged.
type Builder struct {
	buf []byte
	cur int
}

// NewBuilder returns a Builder writing into buf.
func NewBuilder(buf []byte) *Builder {
	return &Builder{buf: buf}
}

// NewBuilderSize returns a Builder over a freshly allocated buffer of n bytes.
func NewBuilderSize(n int) *Builder {
	return &Builder{buf: make([]byte, n)}
}

// Len returns the number of bytes written so far.
func (b *Builder) Len() int {
	return b.cur
}

// Remaining returns the free space left in the buffer.
func (b *Builder) Remaining() int {
	return len(b.buf) - b.cur
}

// Bytes returns the written portion of the buffer. The slice aliases the
// builder's storage and is only valid until the next write.
func (b *Builder) Bytes() []byte {
	return b.buf[:b.cur]
}

// Reserve skips n bytes at the cursor, zeroing them, and returns a Fixup for
// patching the region later.
func (b *Builder) Reserve(n int) (Fixup, error) {
	if b.Remaining() < n {
		return Fixup{}, ErrShortBuffer
	}

	fixup := Fixup{offset: b.cur, size: n}

	for i := range n {
		b.buf[b.cur+i] = 0
	}

	b.cur += n

	return fixup, nil
}

// WriteUint8 appends a single byte.
func (b *Builder) WriteUint8(v uint8) error {
	if b.Remaining() < 1 {
		return ErrShortBuffer
	}

	b.buf[b.cur] = v
	b.cur++

	return nil
}

// WriteUint16 appends v in network byte order.
func (b *Builder) WriteUint16(v uint16) error {
	if b.Remaining() < 2 {
		return ErrShortBuffer
	}

	binary.BigEndian.PutUint16(b.buf[b.cur:], v)
	b.cur += 2

	return nil
}

// WriteUint32 appends v in network byte order.
func (b *Builder) WriteUint32(v uint32) error {
	if b.Remaining() < 4 {
		return ErrShortBuffer
	}

	binary.BigEndian.PutUint32(b.buf[b.cur:], v)
	b.cur += 4

	return nil
}

// Write appends p verbatim.
func (b *Builder) Write(p []byte) error {
	if b.Remaining() < len(p) {
		return ErrShortBuffer
	}

	copy(b.buf[b.cur:], p)
	b.cur += len(p)

	return nil
}

// WriteAligned appends p followed by zero bytes up to the next Alignment
// boundary. The whole aligned write either fits or fails.
func (b *Builder) WriteAligned(p []byte) error {
	aligned := AlignedSize(len(p))
	if b.Remaining() < aligned {
		return ErrShortBuffer
	}

	copy(b.buf[b.cur:], p)

	for i := len(p); i < aligned; i++ {
		b.buf[b.cur+i] = 0
	}

	b.cur += aligned

	return nil
}

// PatchUint16 writes v in network byte order into a reserved region.
func (b *Builder) PatchUint16(fixup Fixup, v uint16) error {
	if fixup.size != 2 || fixup.offset+2 > b.cur {
		return ErrBadFixup
	}

	binary.BigEndian.PutUint16(b.buf[fixup.offset:], v)

	return nil
}

// PatchUint32 writes v in network byte order into a reserved region.
func (b *Builder) PatchUint32(fixup Fixup, v uint32) error {
	if fixup.size != 4 || fixup.offset+4 > b.cur {
		return ErrBadFixup
	}

	binary.BigEndian.PutUint32(b.buf[fixup.offset:], v)

	return nil
}

// WriteExtensionHeader appends an extension header with the given type tag and
// option flags, reserving the 32-bit payload length field. The returned fixup
// patches the length once the payload has been written.
func (b *Builder) WriteExtensionHeader(extensionType uint8, flags uint32) (Fixup, error) {
	if b.Remaining() < ExtensionHeaderSize {
		return Fixup{}, ErrShortBuffer
	}

	err := b.WriteUint8(extensionType)
	if err != nil {
		return Fixup{}, err
	}

	// Option flags occupy the remaining 3 bytes of the first header word.
	b.buf[b.cur] = uint8(flags >> 16) //nolint:gosec
	b.buf[b.cur+1] = uint8(flags >> 8)
	b.buf[b.cur+2] = uint8(flags)
	b.cur += 3

	return b.Reserve(4)
}
