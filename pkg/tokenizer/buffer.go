package tokenizer

// BufferTokenizer is a tokenizer over an in-memory byte slice. It has random
// access, so peeks at any forward position are cheap and reads never block.
type BufferTokenizer struct {
	base
	data []byte
}

// FromBuffer returns a tokenizer over data. The size is always known; a
// FileInfo may be passed to attach a MIME type hint.
func FromBuffer(data []byte, fi ...FileInfo) *BufferTokenizer {
	t := &BufferTokenizer{data: data}
	if len(fi) > 0 {
		t.fi = fi[0]
	}
	t.fi.Size = int64(len(data))
	t.src = t
	return t
}

// ReadBuffer reads into dst and advances the position past the bytes read.
func (t *BufferTokenizer) ReadBuffer(dst []byte, opts *ReadOptions) (int, error) {
	o, err := normalizeOptions(opts, dst, t.pos)
	if err != nil {
		return 0, err
	}
	n, err := t.copyAt(dst, o)
	if err != nil {
		return n, err
	}
	t.pos = o.Position + int64(n)
	return n, nil
}

// PeekBuffer reads into dst without advancing the position.
func (t *BufferTokenizer) PeekBuffer(dst []byte, opts *ReadOptions) (int, error) {
	o, err := normalizeOptions(opts, dst, t.pos)
	if err != nil {
		return 0, err
	}
	return t.copyAt(dst, o)
}

// copyAt is the common path for reads and peeks: it copies
// min(length, size-position) bytes into dst.
func (t *BufferTokenizer) copyAt(dst []byte, o ReadOptions) (int, error) {
	avail := int64(len(t.data)) - o.Position
	if avail <= 0 {
		if o.MayBeLess {
			return 0, nil
		}
		return 0, ErrEndOfStream
	}

	n := o.Length
	if int64(n) > avail {
		if !o.MayBeLess {
			return 0, ErrEndOfStream
		}
		n = int(avail)
	}

	copy(dst[o.Offset:o.Offset+n], t.data[o.Position:o.Position+int64(n)])
	return n, nil
}

// Ignore advances the position by up to n bytes, clamping to the end of the
// buffer, and returns the number of bytes skipped.
func (t *BufferTokenizer) Ignore(n int64) (int64, error) {
	if remaining := t.fi.Size - t.pos; n > remaining {
		n = remaining
	}
	t.pos += n
	return n, nil
}

// Close releases the buffer.
func (t *BufferTokenizer) Close() error {
	t.data = nil
	return nil
}
