package loader

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression names a supported source compression.
type Compression string

const (
	CompressionNone  Compression = ""
	CompressionGzip  Compression = "gzip"
	CompressionBzip2 Compression = "bzip2"
	CompressionZstd  Compression = "zstd"
	CompressionXZ    Compression = "xz"
)

// CompressionFor picks the decompressor for a path from its extension.
func CompressionFor(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return CompressionGzip
	case ".bz2":
		return CompressionBzip2
	case ".zst", ".zstd":
		return CompressionZstd
	case ".xz":
		return CompressionXZ
	default:
		return CompressionNone
	}
}

type source struct {
	io.Reader
	closers []func() error
}

func (s *source) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OpenSource opens path and returns a reader over its decompressed content.
func OpenSource(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	src := &source{Reader: f, closers: []func() error{f.Close}}

	switch CompressionFor(path) {
	case CompressionGzip:
		gz, err := gzip.NewReader(f)
		if err != nil {
			_ = src.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		src.Reader = gz
		src.closers = append(src.closers, gz.Close)
	case CompressionBzip2:
		src.Reader = bzip2.NewReader(f)
	case CompressionZstd:
		dec, err := zstd.NewReader(f)
		if err != nil {
			_ = src.Close()
			return nil, fmt.Errorf("create zstd reader: %w", err)
		}
		src.Reader = dec
		src.closers = append(src.closers, func() error { dec.Close(); return nil })
	case CompressionXZ:
		xr, err := xz.NewReader(f)
		if err != nil {
			_ = src.Close()
			return nil, fmt.Errorf("create xz reader: %w", err)
		}
		src.Reader = xr
	}

	return src, nil
}

// CountLines counts newline-terminated lines plus a trailing unterminated
// line, if any.
func CountLines(r io.Reader) (int, error) {
	buf := make([]byte, 64*1024)
	count := 0
	last := byte('\n')

	for {
		n, err := r.Read(buf)
		if n > 0 {
			count += bytes.Count(buf[:n], []byte{'\n'})
			last = buf[n-1]
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, err
		}
	}

	if last != '\n' {
		count++
	}
	return count, nil
}

// CountFileLines opens path, decompressing as needed, and counts its lines.
func CountFileLines(path string) (int, error) {
	r, err := OpenSource(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = r.Close() }()

	return CountLines(r)
}
