package tokenizer

import (
	"errors"
)

var (
	// ErrEndOfStream is returned when a read or peek extends past the end of
	// the underlying source and the caller did not allow a short result.
	ErrEndOfStream = errors.New("end of stream reached")

	// ErrInvalidPosition is returned when a read or peek requests an
	// absolute position before the tokenizer's current position.
	ErrInvalidPosition = errors.New("invalid position: cannot move the cursor backward")

	// ErrBadSource is returned when a tokenizer is constructed over a source
	// that lacks the required read surface.
	ErrBadSource = errors.New("bad source: reader is nil")
)
