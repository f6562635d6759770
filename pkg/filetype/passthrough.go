package filetype

import (
	"bytes"
	"io"
)

// Default number of bytes read ahead to run detection on; enough for every
// non-container probe.
const defaultSampleSize = sampleBufferSize

// DetectionReader wraps a stream with its detected file type. It reads a
// bounded prefix, runs detection on that prefix alone, and then replays the
// prefix followed by the rest of the stream, so the full original byte
// sequence is still available to the caller.
type DetectionReader struct {
	io.Reader
	fileType *FileType
}

// DetectionReaderOption customizes a DetectionReader.
type DetectionReaderOption func(*detectionReaderConfig)

type detectionReaderConfig struct {
	sampleSize int
}

// WithSampleSize sets how many bytes are read ahead for detection. Smaller
// samples cut buffering at the cost of missing formats whose signatures sit
// deeper in the file.
func WithSampleSize(n int) DetectionReaderOption {
	return func(c *detectionReaderConfig) {
		c.sampleSize = n
	}
}

// NewDetectionReader reads up to the sample size from r, detects the file
// type of the sample, and returns a reader that yields the sample followed
// by the remainder of r. FileType reports the detection result.
func NewDetectionReader(r io.Reader, opts ...DetectionReaderOption) (*DetectionReader, error) {
	cfg := detectionReaderConfig{sampleSize: defaultSampleSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	sample := make([]byte, cfg.sampleSize)
	n, err := io.ReadFull(r, sample)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	sample = sample[:n]

	ft, err := FromBuffer(sample)
	if err != nil {
		return nil, err
	}

	return &DetectionReader{
		Reader:   io.MultiReader(bytes.NewReader(sample), r),
		fileType: ft,
	}, nil
}

// FileType returns the detection result for the stream prefix, or nil when
// the format was not recognized.
func (d *DetectionReader) FileType() *FileType {
	return d.fileType
}
