// Package memio provides a fixed-size in-memory byte buffer implementing
// io.Reader, io.Writer and io.Seeker over a caller-owned slice. The save
// container uses it to drive the stream codec over regions of an in-memory
// save image; tests use it wherever a seekable medium is needed without a
// file.
package memio

import (
	"errors"
	"io"
)

// A Buffer is a seekable read/writer over a fixed-size byte slice. Unlike
// bytes.Buffer it never grows: reads past the end return io.EOF and writes
// past the end fail with io.ErrShortWrite.
type Buffer struct {
	data []byte
	pos  int64
}

// NewBuffer returns a Buffer over data. The slice is used directly, not
// copied, so writes are visible to the caller.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Bytes returns the underlying slice.
func (b *Buffer) Bytes() []byte {
	return b.data
}

func (b *Buffer) Read(p []byte) (int, error) {
	if b.pos >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.pos:])
	b.pos += int64(n)
	return n, nil
}

func (b *Buffer) Write(p []byte) (int, error) {
	if b.pos >= int64(len(b.data)) {
		return 0, io.ErrShortWrite
	}
	n := copy(b.data[b.pos:], p)
	b.pos += int64(n)
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = b.pos + offset
	case io.SeekEnd:
		pos = int64(len(b.data)) + offset
	default:
		return 0, errors.New("memio.Buffer.Seek: invalid whence")
	}
	if pos < 0 {
		return 0, errors.New("memio.Buffer.Seek: negative position")
	}
	b.pos = pos
	return pos, nil
}
