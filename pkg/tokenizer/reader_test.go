package tokenizer

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkReader emits at most chunkSize bytes per Read call, to exercise the
// short-read paths the way a network stream would.
type chunkReader struct {
	data      []byte
	chunkSize int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.data) == 0 {
		return 0, io.EOF
	}
	n := c.chunkSize
	if n > len(p) {
		n = len(p)
	}
	if n > len(c.data) {
		n = len(c.data)
	}
	copy(p, c.data[:n])
	c.data = c.data[n:]
	return n, nil
}

func TestStreamReaderRead(t *testing.T) {
	r := NewStreamReader(bytes.NewReader([]byte("hello world")))

	buf := make([]byte, 5)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(buf))

	buf = make([]byte, 20)
	n, err = r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, " world", string(buf[:n]))

	_, err = r.Read(buf)
	assert.ErrorIs(t, err, ErrEndOfStream)
}

func TestStreamReaderPeekThenRead(t *testing.T) {
	r := NewStreamReader(bytes.NewReader([]byte("hello world")))

	peeked := make([]byte, 5)
	n, err := r.Peek(peeked)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	assert.Equal(t, "hello", string(peeked))

	// The peeked bytes must be observed again by the next read
	read := make([]byte, 11)
	n, err = r.Read(read)
	require.NoError(t, err)
	require.Equal(t, 11, n)
	assert.Equal(t, "hello world", string(read))
}

func TestStreamReaderInterleavedPeeks(t *testing.T) {
	data := []byte("abcdefghijklmnopqrstuvwxyz")
	r := NewStreamReader(&chunkReader{data: append([]byte(nil), data...), chunkSize: 3})

	// Peeks of different lengths must not disturb the read sequence
	var out []byte
	tmp := make([]byte, 4)
	for {
		peek := make([]byte, 7)
		_, _ = r.Peek(peek)

		n, err := r.Read(tmp)
		out = append(out, tmp[:n]...)
		if err != nil {
			assert.ErrorIs(t, err, ErrEndOfStream)
			break
		}
		if n < len(tmp) {
			break
		}
	}
	assert.Equal(t, data, out)
}

func TestStreamReaderShortRequestLeavesRemainder(t *testing.T) {
	r := NewStreamReader(bytes.NewReader([]byte("abcdef")))

	peek := make([]byte, 6)
	_, err := r.Peek(peek)
	require.NoError(t, err)

	// Reading less than the queued fragment must push the remainder back
	small := make([]byte, 2)
	n, err := r.Read(small)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	assert.Equal(t, "ab", string(small))

	rest := make([]byte, 4)
	n, err = r.Read(rest)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	assert.Equal(t, "cdef", string(rest))
}

func TestStreamReaderEmptySource(t *testing.T) {
	r := NewStreamReader(bytes.NewReader(nil))
	buf := make([]byte, 4)
	n, err := r.Read(buf)
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, ErrEndOfStream)
}
