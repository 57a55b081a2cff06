// Package fileio opens plain or gzip-compressed input files.
package fileio

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// ReadCloser is a buffered reader over a possibly compressed input.
type ReadCloser struct {
	*bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
}

// Open opens path for reading. Gzip input is detected from its magic bytes
// rather than the file extension. A path of "-" reads from stdin.
func Open(path string) (*ReadCloser, error) {
	if path == "-" {
		return NewReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	rc, err := NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	rc.file = file
	return rc, nil
}

// NewReader wraps r, transparently decompressing gzip content.
func NewReader(r io.Reader) (*ReadCloser, error) {
	br := bufio.NewReader(r)

	// Check for gzip magic number (0x1f, 0x8b)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("read header: %w", err)
	}

	rc := &ReadCloser{Reader: br}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		rc.gzipReader, err = gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		rc.Reader = bufio.NewReader(rc.gzipReader)
	}
	return rc, nil
}

// Close releases the decompressor and underlying file.
func (rc *ReadCloser) Close() error {
	if rc.gzipReader != nil {
		rc.gzipReader.Close()
	}
	if rc.file != nil {
		return rc.file.Close()
	}
	return nil
}
