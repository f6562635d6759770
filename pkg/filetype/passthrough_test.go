package filetype

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectionReader(t *testing.T) {
	payload := append(pngFile(pngChunk("IHDR", 13), pngChunk("IDAT", 16)), bytes.Repeat([]byte{0x5A}, 8000)...)

	dr, err := NewDetectionReader(&chunkReader{data: append([]byte(nil), payload...), chunkSize: 11})
	require.NoError(t, err)

	ft := dr.FileType()
	require.NotNil(t, ft)
	assert.Equal(t, "png", ft.Ext)
	assert.Equal(t, "image/png", ft.MIME)

	// The full original byte sequence must still come out of the reader
	out, err := io.ReadAll(dr)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestDetectionReaderUnknown(t *testing.T) {
	payload := []byte("just some text, no signature at all")
	dr, err := NewDetectionReader(bytes.NewReader(payload))
	require.NoError(t, err)

	assert.Nil(t, dr.FileType())

	out, err := io.ReadAll(dr)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestDetectionReaderShortStream(t *testing.T) {
	// Streams shorter than the sample size still pass through whole
	payload := []byte("BM")
	dr, err := NewDetectionReader(bytes.NewReader(payload))
	require.NoError(t, err)

	require.NotNil(t, dr.FileType())
	assert.Equal(t, "bmp", dr.FileType().Ext)

	out, err := io.ReadAll(dr)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestDetectionReaderEmptyStream(t *testing.T) {
	dr, err := NewDetectionReader(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Nil(t, dr.FileType())

	out, err := io.ReadAll(dr)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDetectionReaderSampleSize(t *testing.T) {
	// The tar checksum sits at offset 148 of a 512-byte header, so a
	// 100-byte sample cannot see it
	payload := tarFile(1024)

	dr, err := NewDetectionReader(bytes.NewReader(payload), WithSampleSize(100))
	require.NoError(t, err)
	assert.Nil(t, dr.FileType())

	dr, err = NewDetectionReader(bytes.NewReader(payload), WithSampleSize(512))
	require.NoError(t, err)
	require.NotNil(t, dr.FileType())
	assert.Equal(t, "tar", dr.FileType().Ext)

	out, err := io.ReadAll(dr)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}
