package io

import "bytes"

// DefaultBufferSize is the capacity of a Buffer created without a size hint.
const DefaultBufferSize = 1024

// Buffer is a growable byte accumulator. It is used as the scratch space for
// reply parsing, line wrapping and address-list joining.
//
// The zero value is an empty buffer ready to use.
type Buffer struct {
	// len(data) is the logical length, cap(data) the allocated size.
	data []byte
}

// NewBuffer returns an empty Buffer with room for hint bytes. A hint of zero
// or less selects DefaultBufferSize.
func NewBuffer(hint int) *Buffer {
	if hint <= 0 {
		hint = DefaultBufferSize
	}
	return &Buffer{data: make([]byte, 0, hint)}
}

// grow makes room for n more bytes, doubling the capacity until it fits.
func (b *Buffer) grow(n int) {
	need := len(b.data) + n
	if need <= cap(b.data) {
		return
	}
	size := cap(b.data)
	if size == 0 {
		size = DefaultBufferSize
	}
	for size < need {
		size <<= 1
	}
	data := make([]byte, len(b.data), size)
	copy(data, b.data)
	b.data = data
}

// Append copies p to the end of the buffer and returns the new length.
func (b *Buffer) Append(p []byte) int {
	b.grow(len(p))
	b.data = append(b.data, p...)
	return len(b.data)
}

// AppendString is Append for strings.
func (b *Buffer) AppendString(s string) int {
	b.grow(len(s))
	b.data = append(b.data, s...)
	return len(b.data)
}

// Write implements io.Writer. It never fails.
func (b *Buffer) Write(p []byte) (int, error) {
	b.Append(p)
	return len(p), nil
}

// ConsumePrefix drops the first n bytes and moves the rest to offset 0.
// When n is at least the current length the buffer becomes empty.
// It returns the new length.
func (b *Buffer) ConsumePrefix(n int) int {
	if n <= 0 {
		return len(b.data)
	}
	if n >= len(b.data) {
		b.data = b.data[:0]
		return 0
	}
	rest := copy(b.data, b.data[n:])
	b.data = b.data[:rest]
	return rest
}

// Bytes returns the buffered bytes. The slice aliases the buffer and is only
// valid until the next mutation.
func (b *Buffer) Bytes() []byte { return b.data }

// String returns a copy of the buffered bytes as text.
func (b *Buffer) String() string { return string(b.data) }

// Len returns the logical length.
func (b *Buffer) Len() int { return len(b.data) }

// Cap returns the allocated size.
func (b *Buffer) Cap() int { return cap(b.data) }

// Index returns the offset of the first sep in the buffer, or -1.
func (b *Buffer) Index(sep []byte) int { return bytes.Index(b.data, sep) }

// Reset empties the buffer but keeps its capacity.
func (b *Buffer) Reset() { b.data = b.data[:0] }
