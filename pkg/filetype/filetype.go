// Package filetype detects the format of a byte stream by inspecting a
// bounded prefix of its content. It never looks at file names and does not
// validate files beyond their signatures: a result only means the content
// starts like the reported format.
package filetype

import (
	"errors"
	"io"

	"github.com/prakattuladhar/file-type/pkg/tokenizer"
)

// FileType is a detected file format: the canonical extension (without dot)
// and the MIME type.
type FileType struct {
	Ext  string
	MIME string
}

// FromBuffer detects the file type of the bytes in b.
// It returns nil when the format is not recognized, including when b holds
// fewer than 2 bytes.
func FromBuffer(b []byte) (*FileType, error) {
	if len(b) <= 1 {
		return nil, nil
	}
	return FromTokenizer(tokenizer.FromBuffer(b))
}

// FromStream detects the file type of the stream r by reading a prefix of
// it. The tokenizer built over r is always closed, whether or not a format
// was recognized.
func FromStream(r io.Reader) (*FileType, error) {
	tok, err := tokenizer.FromStream(r)
	if err != nil {
		return nil, err
	}
	defer tok.Close()
	return FromTokenizer(tok)
}

// FromTokenizer detects the file type by reading from tok. The tokenizer's
// position is advanced by the probes; callers that need the consumed bytes
// afterward should use NewDetectionReader instead.
//
// Running past the end of the stream during a probe means the format was not
// recognized and returns a nil result, not an error. All other errors
// propagate.
func FromTokenizer(tok tokenizer.Tokenizer) (*FileType, error) {
	p := newParser(tok)
	ft, err := p.parse()
	if errors.Is(err, tokenizer.ErrEndOfStream) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ft, nil
}
