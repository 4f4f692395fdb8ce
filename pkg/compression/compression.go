package compression

import (
	"bytes"
	stderrors "errors"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	pkgerrors "github.com/pkg/errors"

	"github.com/WhileEndless/go-reqresp/pkg/errors"
	"github.com/WhileEndless/go-reqresp/pkg/logging"
)

var log = logging.GetLogger("compression")

// ErrSizeLimit is the cause of a decode error when output passes maxSize
var ErrSizeLimit = stderrors.New("decoded body exceeds size limit")

// CompressionType represents supported compression algorithms
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionGzip
	CompressionDeflate
	CompressionBrotli
	CompressionZstd
)

func (ct CompressionType) String() string {
	if s := CompressionTypeToString(ct); s != "" {
		return s
	}
	return "none"
}

// DetectCompression detects compression type from Content-Encoding header
// Supports: gzip, x-gzip, deflate, x-deflate, br, brotli, zstd, identity
func DetectCompression(contentEncoding string) CompressionType {
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "gzip", "x-gzip":
		return CompressionGzip
	case "deflate", "x-deflate":
		return CompressionDeflate
	case "br", "brotli":
		return CompressionBrotli
	case "zstd", "zstandard":
		return CompressionZstd
	default:
		return CompressionNone
	}
}

// CompressionTypeToString converts a CompressionType to its Content-Encoding string
func CompressionTypeToString(ct CompressionType) string {
	switch ct {
	case CompressionGzip:
		return "gzip"
	case CompressionDeflate:
		return "deflate"
	case CompressionBrotli:
		return "br"
	case CompressionZstd:
		return "zstd"
	default:
		return ""
	}
}

// Decode reverses the content coding named by contentEncoding.
// maxSize caps the decoded length (0 means no cap).
//
// gzip, br and zstd failures are returned as ErrorTypeContentDecode.
// deflate is tried zlib-wrapped, then raw; when both fail the result is
// empty and no error is returned. Exceeding maxSize is always an error.
// An empty body decodes to an empty body for every coding.
func Decode(data []byte, contentEncoding string, maxSize int64) ([]byte, error) {
	ct := DetectCompression(contentEncoding)
	if len(data) == 0 {
		return []byte{}, nil
	}
	if ct == CompressionDeflate {
		out, err := decompressDeflate(data, maxSize)
		if err != nil {
			if stderrors.Is(err, ErrSizeLimit) {
				return nil, err
			}
			log.WithError(err).Warn("deflate body could not be inflated, content dropped")
			return []byte{}, nil
		}
		return out, nil
	}
	return Decompress(data, ct, maxSize)
}

// Decompress decompresses data based on the compression type
func Decompress(data []byte, ct CompressionType, maxSize int64) ([]byte, error) {
	switch ct {
	case CompressionGzip:
		return decompressGzip(data, maxSize)
	case CompressionDeflate:
		return decompressDeflate(data, maxSize)
	case CompressionBrotli:
		return decompressBrotli(data, maxSize)
	case CompressionZstd:
		return decompressZstd(data, maxSize)
	case CompressionNone:
		return data, nil
	default:
		return nil, errors.NewError(errors.ErrorTypeContentDecode,
			"unsupported compression type", "decompress", data)
	}
}

// readAll drains r, failing once more than maxSize bytes come out
func readAll(r io.Reader, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		return io.ReadAll(r)
	}
	out, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > maxSize {
		return nil, pkgerrors.Wrapf(ErrSizeLimit, "limit %d bytes", maxSize)
	}
	return out, nil
}

// decompressGzip decompresses gzip data
func decompressGzip(data []byte, maxSize int64) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeContentDecode,
			"failed to create gzip reader", "decompressGzip", data)
	}
	defer reader.Close()

	decompressed, err := readAll(reader, maxSize)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeContentDecode,
			"failed to decompress gzip data", "decompressGzip", data)
	}
	return decompressed, nil
}

// decompressDeflate inflates zlib-wrapped data, retrying as raw deflate
func decompressDeflate(data []byte, maxSize int64) ([]byte, error) {
	out, zerr := inflateZlib(data, maxSize)
	if zerr == nil {
		return out, nil
	}
	if stderrors.Is(zerr, ErrSizeLimit) {
		return nil, errors.Wrap(zerr, errors.ErrorTypeContentDecode,
			"failed to decompress deflate data", "decompressDeflate", data)
	}
	log.WithError(zerr).Debug("zlib inflate failed, retrying as raw deflate")

	reader := flate.NewReader(bytes.NewReader(data))
	defer reader.Close()

	out, err := readAll(reader, maxSize)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeContentDecode,
			"failed to decompress deflate data", "decompressDeflate", data)
	}
	return out, nil
}

func inflateZlib(data []byte, maxSize int64) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return readAll(reader, maxSize)
}

// decompressBrotli decompresses brotli data
func decompressBrotli(data []byte, maxSize int64) ([]byte, error) {
	decompressed, err := readAll(brotli.NewReader(bytes.NewReader(data)), maxSize)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeContentDecode,
			"failed to decompress brotli data", "decompressBrotli", data)
	}
	return decompressed, nil
}

// decompressZstd decompresses zstd data
func decompressZstd(data []byte, maxSize int64) ([]byte, error) {
	decoder, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeContentDecode,
			"failed to create zstd reader", "decompressZstd", data)
	}
	defer decoder.Close()

	decompressed, err := readAll(decoder, maxSize)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeContentDecode,
			"failed to decompress zstd data", "decompressZstd", data)
	}
	return decompressed, nil
}

// Compress compresses data using the specified algorithm.
// Deflate output is zlib-wrapped, as servers send it.
func Compress(data []byte, ct CompressionType) ([]byte, error) {
	var buf bytes.Buffer
	var w io.WriteCloser
	var err error

	switch ct {
	case CompressionGzip:
		w = gzip.NewWriter(&buf)
	case CompressionDeflate:
		w = zlib.NewWriter(&buf)
	case CompressionBrotli:
		w = brotli.NewWriter(&buf)
	case CompressionZstd:
		w, err = zstd.NewWriter(&buf)
	case CompressionNone:
		return data, nil
	default:
		return nil, errors.NewError(errors.ErrorTypeContentDecode,
			"unsupported compression type", "compress", data)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeContentDecode,
			"failed to create "+ct.String()+" writer", "compress", data)
	}

	if _, err := w.Write(data); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeContentDecode,
			"failed to write "+ct.String()+" data", "compress", data)
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeContentDecode,
			"failed to close "+ct.String()+" writer", "compress", data)
	}
	return buf.Bytes(), nil
}

// CompressRawDeflate compresses data as a headerless deflate stream
func CompressRawDeflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeContentDecode,
			"failed to create deflate writer", "compressRawDeflate", data)
	}
	if _, err := w.Write(data); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeContentDecode,
			"failed to write deflate data", "compressRawDeflate", data)
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeContentDecode,
			"failed to close deflate writer", "compressRawDeflate", data)
	}
	return buf.Bytes(), nil
}
