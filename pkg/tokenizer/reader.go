package tokenizer

import (
	"fmt"
	"io"
)

// Max number of bytes pulled from the underlying reader in a single request.
// Larger requests loop.
const maxStreamReadSize = 1 << 20

// StreamReader wraps a one-shot io.Reader and adds peeking: bytes observed
// with Peek are put back and observed again by subsequent reads, in the exact
// order the underlying reader emitted them.
//
// Callers must not overlap concurrent reads on the same StreamReader.
type StreamReader struct {
	r io.Reader

	// Putback queue, used as a stack: the most recently pushed fragment
	// holds the earliest bytes and is popped first.
	peeked [][]byte

	eof bool
}

// NewStreamReader returns a StreamReader over r.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{r: r}
}

// Read fills p as far as possible, draining the putback queue before pulling
// from the underlying reader. The result is shorter than p only at end of
// stream. When no bytes are available at all, it returns ErrEndOfStream.
func (s *StreamReader) Read(p []byte) (int, error) {
	n := s.readFromQueue(p)

	for n < len(p) && !s.eof {
		chunk := p[n:]
		if len(chunk) > maxStreamReadSize {
			chunk = chunk[:maxStreamReadSize]
		}
		nr, err := io.ReadFull(s.r, chunk)
		n += nr
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			s.eof = true
			break
		}
		if err != nil {
			return n, fmt.Errorf("error while reading from the stream: %w", err)
		}
	}

	if n == 0 && len(p) > 0 {
		return 0, ErrEndOfStream
	}
	return n, nil
}

// Peek is like Read, but the same bytes remain observable on subsequent
// reads and peeks.
func (s *StreamReader) Peek(p []byte) (int, error) {
	n, err := s.Read(p)
	if n > 0 {
		put := make([]byte, n)
		copy(put, p[:n])
		s.peeked = append(s.peeked, put)
	}
	return n, err
}

// readFromQueue pops fragments off the putback queue into p. When the
// caller's request is smaller than the head fragment, the remainder is
// pushed back so the emission order is preserved.
func (s *StreamReader) readFromQueue(p []byte) int {
	n := 0
	for n < len(p) && len(s.peeked) > 0 {
		head := s.peeked[len(s.peeked)-1]
		s.peeked = s.peeked[:len(s.peeked)-1]
		c := copy(p[n:], head)
		if c < len(head) {
			s.peeked = append(s.peeked, head[c:])
		}
		n += c
	}
	return n
}
