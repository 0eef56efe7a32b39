package asset

import (
	"io"
)

// Stream is a single-read byte stream. It counts the bytes handed out so a
// second consumer can be detected before it silently reads a truncated or
// empty remainder.
type Stream struct {
	source    io.Reader
	bytesRead int64
	eof       bool
}

// NewStream wraps r. If r is already a *Stream it is returned unchanged.
func NewStream(r io.Reader) *Stream {
	if stream, ok := r.(*Stream); ok {
		return stream
	}
	return &Stream{source: r}
}

func (s *Stream) Read(p []byte) (int, error) {
	n, err := s.source.Read(p)
	s.bytesRead += int64(n)
	if err == io.EOF {
		s.eof = true
	}
	return n, err
}

// BytesRead returns the number of bytes consumed so far.
func (s *Stream) BytesRead() int64 {
	return s.bytesRead
}

// Consumed reports whether anything has been read from the stream.
func (s *Stream) Consumed() bool {
	return s.bytesRead > 0 || s.eof
}

// Close closes the underlying reader when it is closable.
func (s *Stream) Close() error {
	if closer, ok := s.source.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// fallbackReader defers opening its source until the first Read, so a
// cache read (and any regeneration behind it) only happens when someone
// actually consumes the content.
type fallbackReader struct {
	open   func() (io.Reader, error)
	source io.Reader
	err    error
	closed bool
}

func (f *fallbackReader) Read(p []byte) (int, error) {
	if f.closed {
		return 0, io.EOF
	}
	if f.source == nil && f.err == nil {
		f.source, f.err = f.open()
	}
	if f.err != nil {
		return 0, f.err
	}
	n, err := f.source.Read(p)
	if err == io.EOF {
		_ = f.Close()
	}
	return n, err
}

// Close releases the cache handle. Reading stops at the first EOF, so the
// handle is released even when the consumer never calls Close.
func (f *fallbackReader) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	if closer, ok := f.source.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

type byteCounter struct {
	n int64
}

func (c *byteCounter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}
