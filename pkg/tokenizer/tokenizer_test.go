package tokenizer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prakattuladhar/file-type/pkg/token"
)

var testData = []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A}

// Both implementations must behave the same on the operations below, so the
// tests run against each.
func tokenizers() map[string]func(t *testing.T) Tokenizer {
	return map[string]func(t *testing.T) Tokenizer{
		"buffer": func(t *testing.T) Tokenizer {
			return FromBuffer(append([]byte(nil), testData...))
		},
		"stream": func(t *testing.T) Tokenizer {
			tok, err := FromStream(bytes.NewReader(testData))
			require.NoError(t, err)
			return tok
		},
		"chunked stream": func(t *testing.T) Tokenizer {
			tok, err := FromStream(&chunkReader{data: append([]byte(nil), testData...), chunkSize: 3})
			require.NoError(t, err)
			return tok
		},
	}
}

func TestReadBuffer(t *testing.T) {
	for name, mk := range tokenizers() {
		t.Run(name, func(t *testing.T) {
			tok := mk(t)
			buf := make([]byte, 4)
			n, err := tok.ReadBuffer(buf, nil)
			require.NoError(t, err)
			assert.Equal(t, 4, n)
			assert.Equal(t, testData[:4], buf)
			assert.Equal(t, int64(4), tok.Position())

			n, err = tok.ReadBuffer(buf, nil)
			require.NoError(t, err)
			assert.Equal(t, 4, n)
			assert.Equal(t, testData[4:8], buf)
			assert.Equal(t, int64(8), tok.Position())
		})
	}
}

func TestPeekDoesNotAdvance(t *testing.T) {
	for name, mk := range tokenizers() {
		t.Run(name, func(t *testing.T) {
			tok := mk(t)
			peek1 := make([]byte, 4)
			_, err := tok.PeekBuffer(peek1, nil)
			require.NoError(t, err)
			assert.Equal(t, int64(0), tok.Position())

			// Same bytes on a second peek and on the next read
			peek2 := make([]byte, 4)
			_, err = tok.PeekBuffer(peek2, nil)
			require.NoError(t, err)
			assert.Equal(t, peek1, peek2)

			read := make([]byte, 4)
			_, err = tok.ReadBuffer(read, nil)
			require.NoError(t, err)
			assert.Equal(t, peek1, read)
		})
	}
}

func TestReadAtForwardPosition(t *testing.T) {
	for name, mk := range tokenizers() {
		t.Run(name, func(t *testing.T) {
			tok := mk(t)
			buf := make([]byte, 2)
			n, err := tok.ReadBuffer(buf, &ReadOptions{Position: 6})
			require.NoError(t, err)
			assert.Equal(t, 2, n)
			assert.Equal(t, testData[6:8], buf)
			assert.Equal(t, int64(8), tok.Position())
		})
	}
}

func TestPeekAtForwardPosition(t *testing.T) {
	for name, mk := range tokenizers() {
		t.Run(name, func(t *testing.T) {
			tok := mk(t)
			buf := make([]byte, 3)
			n, err := tok.PeekBuffer(buf, &ReadOptions{Position: 5})
			require.NoError(t, err)
			assert.Equal(t, 3, n)
			assert.Equal(t, testData[5:8], buf)
			assert.Equal(t, int64(0), tok.Position())

			// The forward peek must not have consumed anything
			all := make([]byte, len(testData))
			_, err = tok.ReadBuffer(all, nil)
			require.NoError(t, err)
			assert.Equal(t, testData, all)
		})
	}
}

func TestBackwardPositionRejected(t *testing.T) {
	for name, mk := range tokenizers() {
		t.Run(name, func(t *testing.T) {
			tok := mk(t)
			buf := make([]byte, 4)
			_, err := tok.ReadBuffer(buf, nil)
			require.NoError(t, err)

			_, err = tok.ReadBuffer(buf, &ReadOptions{Position: 2})
			assert.ErrorIs(t, err, ErrInvalidPosition)
			_, err = tok.PeekBuffer(buf, &ReadOptions{Position: 2})
			assert.ErrorIs(t, err, ErrInvalidPosition)
		})
	}
}

func TestShortReadSemantics(t *testing.T) {
	for name, mk := range tokenizers() {
		t.Run(name, func(t *testing.T) {
			tok := mk(t)
			big := make([]byte, len(testData)+10)

			// MayBeLess tolerates a short result
			n, err := tok.PeekBuffer(big, &ReadOptions{MayBeLess: true})
			require.NoError(t, err)
			assert.Equal(t, len(testData), n)

			// A strict read past the end fails
			_, err = tok.ReadBuffer(big, nil)
			assert.ErrorIs(t, err, ErrEndOfStream)
		})
	}
}

func TestIgnore(t *testing.T) {
	for name, mk := range tokenizers() {
		t.Run(name, func(t *testing.T) {
			tok := mk(t)
			n, err := tok.Ignore(6)
			require.NoError(t, err)
			assert.Equal(t, int64(6), n)
			assert.Equal(t, int64(6), tok.Position())

			buf := make([]byte, 2)
			_, err = tok.ReadBuffer(buf, nil)
			require.NoError(t, err)
			assert.Equal(t, testData[6:8], buf)
		})
	}
}

func TestIgnoreClampsToSize(t *testing.T) {
	tok := FromBuffer(testData)
	n, err := tok.Ignore(1000)
	require.NoError(t, err)
	assert.Equal(t, int64(len(testData)), n)
	assert.Equal(t, int64(len(testData)), tok.Position())
}

func TestReadNumber(t *testing.T) {
	for name, mk := range tokenizers() {
		t.Run(name, func(t *testing.T) {
			tok := mk(t)
			v, err := tok.ReadNumber(token.UINT16BE)
			require.NoError(t, err)
			assert.Equal(t, uint64(0x0102), v)

			v, err = tok.ReadNumber(token.UINT32LE)
			require.NoError(t, err)
			assert.Equal(t, uint64(0x06050403), v)
			assert.Equal(t, int64(6), tok.Position())
		})
	}
}

func TestPeekNumber(t *testing.T) {
	for name, mk := range tokenizers() {
		t.Run(name, func(t *testing.T) {
			tok := mk(t)
			v, err := tok.PeekNumber(token.UINT8)
			require.NoError(t, err)
			assert.Equal(t, uint64(0x01), v)
			assert.Equal(t, int64(0), tok.Position())

			v, err = tok.PeekNumber(token.UINT8)
			require.NoError(t, err)
			assert.Equal(t, uint64(0x01), v)
		})
	}
}

func TestReadString(t *testing.T) {
	tok := FromBuffer([]byte("ftypavif"))
	s, err := tok.ReadString(token.StringType{N: 4})
	require.NoError(t, err)
	assert.Equal(t, "ftyp", s)
	s, err = tok.ReadString(token.StringType{N: 4})
	require.NoError(t, err)
	assert.Equal(t, "avif", s)

	_, err = tok.ReadString(token.StringType{N: 1})
	assert.ErrorIs(t, err, ErrEndOfStream)
}

func TestReadNumberPastEnd(t *testing.T) {
	tok := FromBuffer([]byte{0x01, 0x02})
	_, err := tok.ReadNumber(token.UINT32BE)
	assert.ErrorIs(t, err, ErrEndOfStream)
}

func TestOffsetAndLength(t *testing.T) {
	tok := FromBuffer(testData)
	buf := make([]byte, 6)
	n, err := tok.ReadBuffer(buf, &ReadOptions{Offset: 2, Length: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, testData[:3], buf[2:5])
	assert.Equal(t, int64(3), tok.Position())
}

func TestFromStreamNilSource(t *testing.T) {
	_, err := FromStream(nil)
	assert.ErrorIs(t, err, ErrBadSource)
}

func TestFileInfo(t *testing.T) {
	tok := FromBuffer(testData, FileInfo{MIMEType: "application/octet-stream"})
	fi := tok.FileInfo()
	assert.Equal(t, int64(len(testData)), fi.Size)
	assert.Equal(t, "application/octet-stream", fi.MIMEType)

	stok, err := FromStream(bytes.NewReader(testData), FileInfo{Size: int64(len(testData))})
	require.NoError(t, err)
	assert.Equal(t, int64(len(testData)), stok.FileInfo().Size)
}

func TestStreamReadEqualsEmission(t *testing.T) {
	// The concatenation of all reads must equal the source bytes no matter
	// how peeks are interleaved
	data := make([]byte, 1000)
	for i := range data {
		data[i] = byte(i % 251)
	}
	tok, err := FromStream(&chunkReader{data: append([]byte(nil), data...), chunkSize: 7})
	require.NoError(t, err)

	var out []byte
	buf := make([]byte, 13)
	for {
		peek := make([]byte, 31)
		_, _ = tok.PeekBuffer(peek, &ReadOptions{MayBeLess: true})

		n, err := tok.ReadBuffer(buf, &ReadOptions{MayBeLess: true})
		out = append(out, buf[:n]...)
		if n == 0 {
			break
		}
		if err != nil {
			break
		}
	}
	assert.Equal(t, data, out)
}

func TestPositionMonotonic(t *testing.T) {
	tok, err := FromStream(bytes.NewReader(testData))
	require.NoError(t, err)

	last := tok.Position()
	step := make([]byte, 3)
	for {
		n, err := tok.ReadBuffer(step, &ReadOptions{MayBeLess: true})
		require.GreaterOrEqual(t, tok.Position(), last)
		last = tok.Position()
		if n == 0 || err != nil {
			break
		}
	}
}
