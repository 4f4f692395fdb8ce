package response

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/WhileEndless/go-reqresp/pkg/charset"
	"github.com/WhileEndless/go-reqresp/pkg/chunked"
	"github.com/WhileEndless/go-reqresp/pkg/compression"
	"github.com/WhileEndless/go-reqresp/pkg/headers"
	"github.com/WhileEndless/go-reqresp/pkg/logging"
	"github.com/WhileEndless/go-reqresp/pkg/textparser"
)

var log = logging.GetLogger("response")

// statusLine matches "HTTP/<version> <code>[ <message>]"
var statusLine = regexp.MustCompile(`^\s*(HTTP/[0-9.]+)\s+([0-9]+)(.*)$`)

// SourceType tells the parser what the fetch layer already did to the body
type SourceType int

const (
	// SourceCurl bodies were already de-chunked by the fetcher
	SourceCurl SourceType = iota
	// SourceOther bodies arrive exactly as sent on the wire
	SourceOther
)

func (s SourceType) String() string {
	if s == SourceCurl {
		return "curl"
	}
	return "other"
}

// ParseSourceType maps "curl" to SourceCurl and anything else to SourceOther
func ParseSourceType(s string) SourceType {
	if strings.EqualFold(strings.TrimSpace(s), "curl") {
		return SourceCurl
	}
	return SourceOther
}

// ParseOptions contains options for parsing HTTP responses
type ParseOptions struct {
	// SourceType of the body bytes. With SourceCurl the Transfer-Encoding
	// header is dropped without decoding.
	SourceType SourceType

	// SniffCharset lets a charset declared inside the document decide the
	// encoding when Content-Type carries no charset parameter.
	SniffCharset bool

	// MaxDecodedSize caps decompressed output; 0 means no cap
	MaxDecodedSize int64
}

// Parse builds a Response from raw header text and raw body bytes.
// See (*Response).Parse.
func Parse(rawHeader string, rawBody []byte, opts ParseOptions) (*Response, error) {
	r := NewResponse()
	if err := r.Parse(rawHeader, rawBody, opts); err != nil {
		return nil, err
	}
	return r, nil
}

// Parse replaces r's state with the response described by rawHeader and
// rawBody. rawHeader may hold several stacked status/header blocks; only
// the last final one is kept. When rawBody is nil the text following the
// headers in rawHeader becomes the content; otherwise rawBody is
// de-chunked, decompressed and decoded to text.
//
// Transfer and content decoding failures are returned and leave r unchanged.
func (r *Response) Parse(rawHeader string, rawBody []byte, opts ParseOptions) error {
	tp := textparser.New(rawHeader)

	next := NewResponse()
	readStatusAndHeaders(tp, next)
	bodyText := readBody(tp)

	if opts.SourceType == SourceCurl {
		next.Headers.Del("Transfer-Encoding")
	}

	if rawBody == nil {
		next.Content = bodyText
	} else if err := next.decodeBody(rawBody, opts); err != nil {
		return err
	}

	next.CharLength = utf8.RuneCountInString(next.Content)
	*r = *next
	return nil
}

type parseState int

const (
	stateAwaitStatus parseState = iota
	stateCollectHeaders
	stateConfirmFinal
	stateDone
)

// readStatusAndHeaders runs the status/header state machine. A status
// line seen right after a header block means that block belonged to an
// interim or chained response, so its headers are thrown away. A 100
// status always waits for the next status line.
func readStatusAndHeaders(tp *textparser.Parser, r *Response) {
	r.Protocol = "unknown"
	r.Code = 0

	state := stateAwaitStatus
	for state != stateDone {
		switch state {
		case stateAwaitStatus:
			if !tp.ReadUntil(statusLine) {
				if r.Code == 0 {
					log.Debug("no status line found")
				} else {
					log.WithField("code", r.Code).Debug("interim response without a final status")
				}
				state = stateDone
				continue
			}
			setStatus(tp, r)
			if r.Code != 100 {
				state = stateCollectHeaders
			}

		case stateCollectHeaders:
			r.Headers.Reset()
			for tp.ReadLine() {
				h, ok := headers.ParseLine(tp.LastLine())
				if !ok {
					break
				}
				r.Headers.Add(h.Name, h.Value)
			}
			state = stateConfirmFinal

		case stateConfirmFinal:
			tp.ReadLine()
			if !tp.Search(statusLine) {
				state = stateDone
				continue
			}
			log.WithField("code", r.Code).Debug("discarding headers of chained response")
			r.Headers.Reset()
			setStatus(tp, r)
			if r.Code == 100 {
				state = stateAwaitStatus
			} else {
				state = stateCollectHeaders
			}
		}
	}
}

func setStatus(tp *textparser.Parser, r *Response) {
	r.Protocol = tp.Group(0)
	code, err := strconv.Atoi(tp.Group(1))
	if err != nil {
		code = 0
	}
	r.Code = code
	r.Message = strings.TrimSpace(tp.Group(2))
}

// readBody skips blank lines after the headers and returns every
// remaining line verbatim, terminators included.
func readBody(tp *textparser.Parser) string {
	for tp.LastLine() == "" && tp.ReadLine() {
	}

	var body strings.Builder
	body.WriteString(tp.LastFullLine())
	for tp.Skip(1) {
		body.WriteString(tp.LastFullLine())
	}
	return body.String()
}

// decodeBody reverses transfer and content codings of data, then decodes
// it to text with the charset named by the headers.
func (r *Response) decodeBody(data []byte, opts ParseOptions) error {
	if isChunked(r.Headers.Get("Transfer-Encoding")) {
		decoded, err := chunked.Decode(data)
		if err != nil {
			return err
		}
		data = decoded
		r.Headers.Del("Transfer-Encoding")
	}

	if ce := r.Headers.Get("Content-Encoding"); compression.DetectCompression(ce) != compression.CompressionNone {
		decoded, err := compression.Decode(data, ce, opts.MaxDecodedSize)
		if err != nil {
			return err
		}
		data = decoded
		r.Headers.Del("Content-Encoding")
	}

	contentType := r.Headers.Get("Content-Type")
	label := charset.FromContentType(contentType)
	if opts.SniffCharset {
		if _, params := charset.ParseContentType(contentType); params["charset"] == "" {
			if declared, ok := charset.SniffFirst(string(data)); ok {
				label = declared
			}
		}
	}

	r.RawBody = data
	r.Charset = label
	r.Content = charset.Decode(data, label)
	return nil
}

// isChunked reports whether chunked is among the listed transfer codings
func isChunked(transferEncoding string) bool {
	for _, part := range strings.Split(transferEncoding, ",") {
		if strings.EqualFold(strings.TrimSpace(part), "chunked") {
			return true
		}
	}
	return false
}

// SplitRaw splits a captured response stream into the header text (every
// stacked status/header block, including interim ones) and the body bytes.
// If no blank line ends the headers, everything is header text and the
// body is nil.
func SplitRaw(raw []byte) (string, []byte) {
	pos := 0
	for {
		end := headerEnd(raw[pos:])
		if end == -1 {
			return string(raw), nil
		}
		bodyStart := pos + end
		if !startsWithStatus(raw[bodyStart:]) {
			return string(raw[:bodyStart]), raw[bodyStart:]
		}
		pos = bodyStart
	}
}

// headerEnd returns the offset just past the first blank line in data
func headerEnd(data []byte) int {
	crlf := bytes.Index(data, []byte("\r\n\r\n"))
	lf := bytes.Index(data, []byte("\n\n"))
	switch {
	case crlf == -1 && lf == -1:
		return -1
	case lf == -1 || (crlf != -1 && crlf < lf):
		return crlf + 4
	default:
		return lf + 2
	}
}

func startsWithStatus(data []byte) bool {
	line := data
	if idx := bytes.IndexByte(data, '\n'); idx != -1 {
		line = data[:idx]
	}
	return statusLine.Match(bytes.TrimRight(line, "\r"))
}
