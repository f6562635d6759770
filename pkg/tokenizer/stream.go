package tokenizer

import (
	"io"
)

// Size of the scratch buffer used to discard bytes when skipping over a
// stream with no random access.
const ignoreScratchSize = 256 * 1024

// StreamTokenizer is a tokenizer over a one-shot stream. Forward peeks are
// synthesized through the StreamReader's putback queue.
type StreamTokenizer struct {
	base
	reader *StreamReader
	closer io.Closer
}

// FromStream returns a tokenizer over r. The size is unknown unless a
// FileInfo carrying one is passed.
func FromStream(r io.Reader, fi ...FileInfo) (*StreamTokenizer, error) {
	if r == nil {
		return nil, ErrBadSource
	}
	t := &StreamTokenizer{reader: NewStreamReader(r)}
	if len(fi) > 0 {
		t.fi = fi[0]
	}
	if c, ok := r.(io.Closer); ok {
		t.closer = c
	}
	t.src = t
	return t, nil
}

// ReadBuffer reads into dst and advances the position past the bytes read.
// When the requested position is past the current one, the gap is skipped
// first.
func (t *StreamTokenizer) ReadBuffer(dst []byte, opts *ReadOptions) (int, error) {
	o, err := normalizeOptions(opts, dst, t.pos)
	if err != nil {
		return 0, err
	}

	if delta := o.Position - t.pos; delta > 0 {
		skipped, err := t.Ignore(delta)
		if err != nil {
			return 0, err
		}
		if skipped < delta {
			if o.MayBeLess {
				return 0, nil
			}
			return 0, ErrEndOfStream
		}
	}

	n, err := t.reader.Read(dst[o.Offset : o.Offset+o.Length])
	t.pos += int64(n)
	if err == ErrEndOfStream && o.MayBeLess {
		return n, nil
	}
	if err != nil {
		return n, err
	}
	if n < o.Length && !o.MayBeLess {
		return n, ErrEndOfStream
	}
	return n, nil
}

// PeekBuffer reads into dst without advancing the position. A peek at a
// position past the current one is synthesized by peeking into a larger
// scratch buffer and copying the tail.
func (t *StreamTokenizer) PeekBuffer(dst []byte, opts *ReadOptions) (int, error) {
	o, err := normalizeOptions(opts, dst, t.pos)
	if err != nil {
		return 0, err
	}

	delta := int(o.Position - t.pos)
	if delta > 0 {
		scratch := make([]byte, delta+o.Length)
		nr, err := t.reader.Peek(scratch)
		if err != nil && err != ErrEndOfStream {
			return 0, err
		}
		n := nr - delta
		if n < 0 {
			n = 0
		}
		copy(dst[o.Offset:o.Offset+n], scratch[delta:delta+n])
		if n < o.Length && !o.MayBeLess {
			return n, ErrEndOfStream
		}
		return n, nil
	}

	n, err := t.reader.Peek(dst[o.Offset : o.Offset+o.Length])
	if err == ErrEndOfStream && o.MayBeLess {
		return n, nil
	}
	if err != nil {
		return n, err
	}
	if n < o.Length && !o.MayBeLess {
		return n, ErrEndOfStream
	}
	return n, nil
}

// Ignore advances the position by up to n bytes by reading into a scratch
// buffer and discarding. When the source size is known, the request is
// clamped to the remaining bytes.
func (t *StreamTokenizer) Ignore(n int64) (int64, error) {
	if t.fi.Size > 0 {
		if remaining := t.fi.Size - t.pos; n > remaining {
			n = remaining
		}
	}

	scratch := make([]byte, ignoreScratchSize)
	var skipped int64
	for skipped < n {
		chunk := n - skipped
		if chunk > ignoreScratchSize {
			chunk = ignoreScratchSize
		}
		nr, err := t.reader.Read(scratch[:chunk])
		skipped += int64(nr)
		t.pos += int64(nr)
		if err == ErrEndOfStream {
			break
		}
		if err != nil {
			return skipped, err
		}
		if int64(nr) < chunk {
			break
		}
	}
	return skipped, nil
}

// Close releases the source, closing the underlying reader when it supports
// closing.
func (t *StreamTokenizer) Close() error {
	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}
