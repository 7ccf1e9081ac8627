package wire

import (
	"encoding/binary"
)

// Reader parses big-endian wire data from a byte slice with explicit bounds
// checking. Every read either succeeds whole or fails with ErrShortRead and
// leaves the cursor unchanged.
type Reader struct {
	buf []byte
	cur int
}

// NewReader returns a Reader over buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.cur
}

// ReadUint8 consumes a single byte.
func (r *Reader) ReadUint8() (uint8, error) {
	if r.Remaining() < 1 {
		return 0, ErrShortRead
	}

	v := r.buf[r.cur]
	r.cur++

	return v, nil
}

// ReadUint16 consumes a 16-bit value in network byte order.
func (r *Reader) ReadUint16() (uint16, error) {
	if r.Remaining() < 2 {
		return 0, ErrShortRead
	}

	v := binary.BigEndian.Uint16(r.buf[r.cur:])
	r.cur += 2

	return v, nil
}

// ReadUint32 consumes a 32-bit value in network byte order.
func (r *Reader) ReadUint32() (uint32, error) {
	if r.Remaining() < 4 {
		return 0, ErrShortRead
	}

	v := binary.BigEndian.Uint32(r.buf[r.cur:])
	r.cur += 4

	return v, nil
}

// ReadBytes consumes n bytes and returns them as a sub-slice of the underlying
// buffer.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, ErrShortRead
	}

	p := r.buf[r.cur : r.cur+n]
	r.cur += n

	return p, nil
}

// Skip discards n bytes.
func (r *Reader) Skip(n int) error {
	if n < 0 || r.Remaining() < n {
		return ErrShortRead
	}

	r.cur += n

	return nil
}
