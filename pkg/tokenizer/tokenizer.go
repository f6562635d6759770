// Package tokenizer provides a forward-only, position-tracked cursor over an
// arbitrary byte source. Two sources are supported: a memory-backed buffer
// with random access, and a one-shot stream where peeking is implemented
// with a putback queue.
package tokenizer

import (
	"github.com/prakattuladhar/file-type/pkg/token"
)

// FileInfo carries optional metadata about the byte source. A Size of 0
// means the size is unknown.
type FileInfo struct {
	Size     int64
	MIMEType string
}

// ReadOptions controls a single read or peek.
type ReadOptions struct {
	// Write into dst starting at this offset.
	Offset int
	// Number of bytes to read; defaults to len(dst)-Offset.
	Length int
	// Absolute position in the source to read from; defaults to the current
	// position. Must not be before the current position.
	Position int64
	// When true, a short read at end of stream returns the actual count
	// instead of ErrEndOfStream.
	MayBeLess bool
}

// normalizeOptions fills in defaults against dst and validates the
// requested position against the tokenizer's current position.
func normalizeOptions(opts *ReadOptions, dst []byte, position int64) (ReadOptions, error) {
	o := ReadOptions{Position: position}
	if opts != nil {
		o = *opts
		if o.Position == 0 {
			o.Position = position
		}
	}
	if o.Length == 0 {
		o.Length = len(dst) - o.Offset
	}
	if o.Offset < 0 || o.Length < 0 || o.Position < position {
		return o, ErrInvalidPosition
	}
	return o, nil
}

// Tokenizer is the uniform cursor over a byte source.
type Tokenizer interface {
	// ReadBuffer reads into dst and advances the position by the number of
	// bytes read. When the requested position is past the current one, the
	// gap is skipped first.
	ReadBuffer(dst []byte, opts *ReadOptions) (int, error)

	// PeekBuffer reads into dst without advancing the position.
	PeekBuffer(dst []byte, opts *ReadOptions) (int, error)

	// ReadNumber reads and decodes a numeric token, advancing the position.
	ReadNumber(t token.Number) (uint64, error)

	// PeekNumber decodes a numeric token without advancing the position.
	PeekNumber(t token.Number) (uint64, error)

	// ReadString reads a fixed-length string token, advancing the position.
	ReadString(t token.StringType) (string, error)

	// PeekString reads a fixed-length string token without advancing.
	PeekString(t token.StringType) (string, error)

	// Ignore advances the position by up to n bytes and returns the number
	// actually skipped. When the source size is known, the request is
	// clamped to the remaining bytes.
	Ignore(n int64) (int64, error)

	// Position returns the current absolute position.
	Position() int64

	// FileInfo returns the source metadata.
	FileInfo() FileInfo

	// SetFileInfo replaces the source metadata.
	SetFileInfo(fi FileInfo)

	// Close releases the source.
	Close() error
}

// bufferedIO is the read surface the embedded base delegates to.
type bufferedIO interface {
	ReadBuffer(dst []byte, opts *ReadOptions) (int, error)
	PeekBuffer(dst []byte, opts *ReadOptions) (int, error)
}

// base holds the state shared by both tokenizer implementations: the logical
// position, the source metadata and the embedded numeric work buffer.
type base struct {
	pos    int64
	fi     FileInfo
	numBuf [8]byte
	src    bufferedIO
}

func (b *base) Position() int64 {
	return b.pos
}

func (b *base) FileInfo() FileInfo {
	return b.fi
}

func (b *base) SetFileInfo(fi FileInfo) {
	b.fi = fi
}

func (b *base) ReadNumber(t token.Number) (uint64, error) {
	buf := b.numBuf[:t.Len()]
	_, err := b.src.ReadBuffer(buf, nil)
	if err != nil {
		return 0, err
	}
	return t.Uint64(buf, 0), nil
}

func (b *base) PeekNumber(t token.Number) (uint64, error) {
	buf := b.numBuf[:t.Len()]
	_, err := b.src.PeekBuffer(buf, nil)
	if err != nil {
		return 0, err
	}
	return t.Uint64(buf, 0), nil
}

func (b *base) ReadString(t token.StringType) (string, error) {
	buf := make([]byte, t.Len())
	_, err := b.src.ReadBuffer(buf, nil)
	if err != nil {
		return "", err
	}
	return t.Get(buf, 0), nil
}

func (b *base) PeekString(t token.StringType) (string, error) {
	buf := make([]byte, t.Len())
	_, err := b.src.PeekBuffer(buf, nil)
	if err != nil {
		return "", err
	}
	return t.Get(buf, 0), nil
}
