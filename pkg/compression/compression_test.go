package compression

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/WhileEndless/go-reqresp/pkg/errors"
)

// TestDetectCompression verifies compression type detection
func TestDetectCompression(t *testing.T) {
	tests := []struct {
		name     string
		encoding string
		expected CompressionType
	}{
		{"gzip lowercase", "gzip", CompressionGzip},
		{"gzip uppercase", "GZIP", CompressionGzip},
		{"gzip with spaces", "  gzip  ", CompressionGzip},
		{"x-gzip", "x-gzip", CompressionGzip},
		{"deflate lowercase", "deflate", CompressionDeflate},
		{"deflate uppercase", "DEFLATE", CompressionDeflate},
		{"br lowercase", "br", CompressionBrotli},
		{"brotli full name", "brotli", CompressionBrotli},
		{"zstd", "zstd", CompressionZstd},
		{"identity", "identity", CompressionNone},
		{"unknown encoding", "compress", CompressionNone},
		{"empty string", "", CompressionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DetectCompression(tt.encoding)
			if result != tt.expected {
				t.Errorf("DetectCompression(%q) = %v, expected %v",
					tt.encoding, result, tt.expected)
			}
		})
	}
}

// TestDecode_RoundTrip compresses with every algorithm and decodes back
func TestDecode_RoundTrip(t *testing.T) {
	original := []byte(strings.Repeat("Hello, this is a test message for compression! ", 20))

	for _, ct := range []CompressionType{CompressionGzip, CompressionDeflate, CompressionBrotli, CompressionZstd} {
		t.Run(ct.String(), func(t *testing.T) {
			compressed, err := Compress(original, ct)
			if err != nil {
				t.Fatalf("Compress failed: %v", err)
			}
			if bytes.Equal(compressed, original) {
				t.Fatal("Compressed data equals original")
			}

			decompressed, err := Decode(compressed, CompressionTypeToString(ct), 0)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if !bytes.Equal(decompressed, original) {
				t.Errorf("Decompressed data doesn't match original.\nExpected: %s\nGot: %s",
					string(original), string(decompressed))
			}
		})
	}
}

// TestDecode_RawDeflate verifies the headerless retry
func TestDecode_RawDeflate(t *testing.T) {
	original := []byte("raw deflate without zlib wrapper")

	compressed, err := CompressRawDeflate(original)
	if err != nil {
		t.Fatalf("CompressRawDeflate failed: %v", err)
	}

	decompressed, err := Decode(compressed, "deflate", 0)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(decompressed, original) {
		t.Errorf("Expected %q, got %q", original, decompressed)
	}
}

// TestDecode_DeflateGarbageFallsBackToEmpty verifies the lossy fallback
func TestDecode_DeflateGarbageFallsBackToEmpty(t *testing.T) {
	out, err := Decode([]byte("definitely not deflate \xff\xfe\xfd"), "deflate", 0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(out) != 0 {
		t.Errorf("Expected empty output, got %q", out)
	}
}

// TestDecode_Failures verifies fatal errors for the strict codings
func TestDecode_Failures(t *testing.T) {
	garbage := []byte("this is not compressed")

	for _, enc := range []string{"gzip", "x-gzip", "zstd"} {
		t.Run(enc, func(t *testing.T) {
			_, err := Decode(garbage, enc, 0)
			if err == nil {
				t.Fatal("Expected an error")
			}
			if !errors.IsContentDecodeError(err) {
				t.Errorf("Expected ContentDecodeError, got %v", err)
			}
		})
	}
}

// TestDecode_Truncated verifies a cut stream is not silently accepted
func TestDecode_Truncated(t *testing.T) {
	for _, ct := range []CompressionType{CompressionGzip, CompressionBrotli} {
		compressed, err := Compress([]byte(strings.Repeat("abcdef", 100)), ct)
		if err != nil {
			t.Fatalf("Compress %s failed: %v", ct, err)
		}

		_, err = Decode(compressed[:len(compressed)/2], ct.String(), 0)
		if !errors.IsContentDecodeError(err) {
			t.Errorf("%s: expected ContentDecodeError, got %v", ct, err)
		}
	}
}

// TestDecode_MaxSize verifies the output cap
func TestDecode_MaxSize(t *testing.T) {
	original := bytes.Repeat([]byte("A"), 4096)
	compressed, err := Compress(original, CompressionGzip)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}

	if _, err := Decode(compressed, "gzip", 1024); !errors.IsContentDecodeError(err) {
		t.Errorf("Expected ContentDecodeError over the cap, got %v", err)
	}

	out, err := Decode(compressed, "gzip", 4096)
	if err != nil {
		t.Fatalf("Decode at the cap failed: %v", err)
	}
	if len(out) != 4096 {
		t.Errorf("Expected 4096 bytes, got %d", len(out))
	}
}

func TestDecode_MaxSizeDeflate(t *testing.T) {
	original := bytes.Repeat([]byte("x"), 10000)
	zlibbed, err := Compress(original, CompressionDeflate)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	raw, err := CompressRawDeflate(original)
	if err != nil {
		t.Fatalf("CompressRawDeflate failed: %v", err)
	}

	for name, data := range map[string][]byte{"zlib": zlibbed, "raw": raw} {
		_, err := Decode(data, "deflate", 100)
		if !errors.IsContentDecodeError(err) {
			t.Errorf("%s: expected ContentDecodeError over the cap, got %v", name, err)
		}
		if !stderrors.Is(err, ErrSizeLimit) {
			t.Errorf("%s: expected ErrSizeLimit cause, got %v", name, err)
		}
	}
}

func TestDecode_EmptyBody(t *testing.T) {
	for _, ce := range []string{"gzip", "x-gzip", "deflate", "br", "zstd", "identity"} {
		out, err := Decode([]byte{}, ce, 0)
		if err != nil {
			t.Errorf("%s: Decode(empty) error = %v", ce, err)
		}
		if out == nil || len(out) != 0 {
			t.Errorf("%s: Decode(empty) = %q, want empty non-nil", ce, out)
		}
	}
}

// TestDecode_None passes data through
func TestDecode_None(t *testing.T) {
	in := []byte("plain")
	out, err := Decode(in, "identity", 0)
	if err != nil || !bytes.Equal(out, in) {
		t.Errorf("Decode identity = (%q, %v)", out, err)
	}
}
