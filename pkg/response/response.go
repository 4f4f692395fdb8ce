package response

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"strings"

	"github.com/WhileEndless/go-reqresp/pkg/cookies"
	"github.com/WhileEndless/go-reqresp/pkg/headers"
)

// Response is a parsed HTTP response with its body decoded to text
type Response struct {
	Protocol string           // HTTP version, "unknown" when no status line was found
	Code     int              // Status code, 0 when absent
	Message  string           // Reason phrase, may be empty
	Headers  *headers.Headers // Headers of the final response only

	Content     string // Decoded body text
	ContentHash string // MD5 of Content, filled by Hash
	CharLength  int    // Rune count of Content

	Charset string // Encoding used to decode the body, empty if no body bytes were given
	RawBody []byte // Body bytes after transfer and content decoding
}

// NewResponse creates an empty Response. A zero Response is usable too;
// its nil Headers read as empty.
func NewResponse() *Response {
	return &Response{
		Headers: headers.NewHeaders(),
	}
}

// Clone creates a deep copy of the response
func (r *Response) Clone() *Response {
	clone := *r
	clone.Headers = r.Headers.Clone()
	if r.RawBody != nil {
		clone.RawBody = make([]byte, len(r.RawBody))
		copy(clone.RawBody, r.RawBody)
	}
	return &clone
}

// AddHeader appends a header, keeping any existing ones with the same name
func (r *Response) AddHeader(name, value string) {
	if r.Headers == nil {
		r.Headers = headers.NewHeaders()
	}
	r.Headers.Add(name, value)
}

// DelHeader removes every header named name (case-insensitive)
func (r *Response) DelHeader(name string) {
	r.Headers.Del(name)
}

// GetHeader returns the first value of name and whether it was present
func (r *Response) GetHeader(name string) (string, bool) {
	return r.Headers.Lookup(name)
}

// HasHeader checks if a header exists (case-insensitive)
func (r *Response) HasHeader(name string) bool {
	return r.Headers.Has(name)
}

// HeaderEquals reports whether a header named exactly name has value,
// ignoring the value's case.
func (r *Response) HeaderEquals(name, value string) bool {
	return r.Headers.Equal(name, value)
}

// Location returns the Location header and whether it was present
func (r *Response) Location() (string, bool) {
	return r.Headers.Location()
}

// Cookie returns the cookies set by this response as a Cookie header value
func (r *Response) Cookie() string {
	return r.Headers.Cookie()
}

// SetCookies parses every Set-Cookie header
func (r *Response) SetCookies() []cookies.ResponseCookie {
	values := r.Headers.Values("Set-Cookie")
	out := make([]cookies.ResponseCookie, 0, len(values))
	for _, v := range values {
		out = append(out, cookies.ParseSetCookie(v))
	}
	return out
}

// ContentType returns the Content-Type header value (trimmed)
func (r *Response) ContentType() string {
	return strings.TrimSpace(r.Headers.Get("Content-Type"))
}

// Hash computes the MD5 of Content, stores it in ContentHash and returns it
func (r *Response) Hash() string {
	sum := md5.Sum([]byte(r.Content))
	r.ContentHash = hex.EncodeToString(sum[:])
	return r.ContentHash
}

// IsSuccessful returns true if the response has a 2xx status code
func (r *Response) IsSuccessful() bool {
	return r.Code >= 200 && r.Code < 300
}

// IsRedirect returns true if the response has a 3xx status code
func (r *Response) IsRedirect() bool {
	return r.Code >= 300 && r.Code < 400
}

// IsClientError returns true if the response has a 4xx status code
func (r *Response) IsClientError() bool {
	return r.Code >= 400 && r.Code < 500
}

// IsServerError returns true if the response has a 5xx status code
func (r *Response) IsServerError() bool {
	return r.Code >= 500 && r.Code < 600
}

// WriteTo implements io.WriterTo, writing the output of All
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, r.All())
	return int64(n), err
}
