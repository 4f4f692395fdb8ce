package chunked

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/WhileEndless/go-reqresp/pkg/errors"
	"github.com/valyala/bytebufferpool"
)

// Decode removes chunked transfer encoding from body.
// Each chunk is a hex size line (extensions after ';' ignored), the chunk
// data and a line terminator; a zero-size chunk ends the body and anything
// after it (trailers) is dropped. CRLF and bare LF terminators are accepted.
// A size line that is not hexadecimal, chunk data shorter than announced, or
// input ending before the zero chunk yields ErrorTypeMalformedChunkedBody.
func Decode(body []byte) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	pos := 0
	for {
		line, next := readLine(body, pos)
		if pos >= len(body) {
			return nil, errors.NewError(errors.ErrorTypeMalformedChunkedBody,
				"body ended before the last chunk", "chunked.Decode", body)
		}

		sizeField := string(line)
		if idx := strings.IndexByte(sizeField, ';'); idx != -1 {
			sizeField = sizeField[:idx]
		}
		sizeField = strings.TrimSpace(sizeField)

		size, err := strconv.ParseUint(sizeField, 16, 63)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeMalformedChunkedBody,
				fmt.Sprintf("invalid chunk size %q", sizeField), "chunked.Decode", body)
		}
		pos = next

		if size == 0 {
			break
		}

		if size > uint64(len(body)-pos) {
			return nil, errors.NewError(errors.ErrorTypeMalformedChunkedBody,
				fmt.Sprintf("chunk of %d bytes truncated at %d", size, len(body)-pos),
				"chunked.Decode", body)
		}
		end := pos + int(size)
		buf.Write(body[pos:end])

		// The remainder of the line after the data is the chunk terminator.
		_, pos = readLine(body, end)
	}

	out := make([]byte, buf.Len())
	copy(out, buf.B)
	return out, nil
}

// readLine returns the line starting at pos without its terminator, and
// the offset just past the terminator.
func readLine(data []byte, pos int) ([]byte, int) {
	if pos >= len(data) {
		return nil, len(data)
	}
	idx := bytes.IndexByte(data[pos:], '\n')
	if idx == -1 {
		return bytes.TrimSuffix(data[pos:], []byte("\r")), len(data)
	}
	return bytes.TrimSuffix(data[pos:pos+idx], []byte("\r")), pos + idx + 1
}

// Encode encodes data with chunked transfer encoding
// chunkSize specifies the size of each chunk (must be > 0)
// If chunkSize <= 0, uses default of 8192 bytes
func Encode(data []byte, chunkSize int) []byte {
	return EncodeWithTrailers(data, chunkSize, nil)
}

// EncodeWithTrailers encodes data with chunked transfer encoding and trailers
func EncodeWithTrailers(data []byte, chunkSize int, trailers map[string]string) []byte {
	if chunkSize <= 0 {
		chunkSize = 8192
	}

	var result bytes.Buffer
	for pos := 0; pos < len(data); pos += chunkSize {
		end := pos + chunkSize
		if end > len(data) {
			end = len(data)
		}
		fmt.Fprintf(&result, "%x\r\n", end-pos)
		result.Write(data[pos:end])
		result.WriteString("\r\n")
	}

	result.WriteString("0\r\n")
	for name, value := range trailers {
		fmt.Fprintf(&result, "%s: %s\r\n", name, value)
	}
	result.WriteString("\r\n")

	return result.Bytes()
}
