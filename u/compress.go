package u

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression is a compression format picked based on file extension
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
	CompressionBrotli
)

// CompressionFromPath returns compression implied by extension of path:
// .gz, .zst (or .zstd), .br. Anything else is not compressed.
func CompressionFromPath(path string) Compression {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gz":
		return CompressionGzip
	case ".zst", ".zstd":
		return CompressionZstd
	case ".br":
		return CompressionBrotli
	}
	return CompressionNone
}

func getErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// implement io.ReadCloser over os.File wrapped with io.Reader.
// io.Closer goes to os.File, io.Reader goes to wrapping reader
type readerWrappedFile struct {
	f       *os.File
	r       io.Reader
	onClose func()
}

func (rc *readerWrappedFile) Close() error {
	if rc.onClose != nil {
		rc.onClose()
	}
	return rc.f.Close()
}

func (rc *readerWrappedFile) Read(p []byte) (int, error) {
	return rc.r.Read(p)
}

// OpenFileMaybeCompressed opens a file that might be compressed with gzip,
// zstd or brotli. Compression is based on file extension.
func OpenFileMaybeCompressed(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	switch CompressionFromPath(path) {
	case CompressionGzip:
		r, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &readerWrappedFile{f: f, r: r}, nil
	case CompressionZstd:
		r, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &readerWrappedFile{f: f, r: r, onClose: r.Close}, nil
	case CompressionBrotli:
		return &readerWrappedFile{f: f, r: brotli.NewReader(f)}, nil
	}
	return f, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}

// NewCompressingWriter wraps w in a compressor picked by extension of path.
// Close() flushes the compressor but doesn't close w.
// For uncompressed paths Close() is a no-op.
func NewCompressingWriter(w io.Writer, path string) (io.WriteCloser, error) {
	switch CompressionFromPath(path) {
	case CompressionGzip:
		return gzip.NewWriterLevel(w, gzip.BestCompression)
	case CompressionZstd:
		// zstd.SpeedBestCompression is much slower and not much better
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	case CompressionBrotli:
		return brotli.NewWriterLevel(w, brotli.DefaultCompression), nil
	}
	return nopWriteCloser{w}, nil
}

// ReadFileMaybeCompressed reads the whole file, decompressing if needed
func ReadFileMaybeCompressed(path string) ([]byte, error) {
	r, err := OpenFileMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	d, err := io.ReadAll(r)
	err2 := r.Close()
	if err = getErr(err, err2); err != nil {
		return nil, err
	}
	return d, nil
}
