package response

import (
	"strconv"
	"strings"

	"github.com/valyala/bytebufferpool"
)

// TextHeaders renders the status line and headers, each ending in CRLF.
// The blank line that ends the header block is not included.
func (r *Response) TextHeaders() string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.WriteString(r.Protocol)
	buf.WriteString(" ")
	buf.WriteString(strconv.Itoa(r.Code))
	buf.WriteString(" ")
	buf.WriteString(r.Message)
	buf.WriteString("\r\n")
	buf.WriteString(r.Headers.Build("\r\n"))

	return buf.String()
}

// All renders the headers, a blank line and the decoded content
func (r *Response) All() string {
	return r.TextHeaders() + "\r\n" + r.Content
}

// Substitute replaces every occurrence of src with dst in the rendered
// response and parses the result back into r, replacing all state.
// The content is already decoded, so no body bytes are passed to the parse.
func (r *Response) Substitute(src, dst string) error {
	text := strings.ReplaceAll(r.All(), src, dst)
	return r.Parse(text, nil, ParseOptions{SourceType: SourceCurl})
}
