// Package charset picks the text encoding of a response body and decodes it.
package charset

import (
	"regexp"
	"strings"
	"unicode/utf8"

	htmlcharset "golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"

	"github.com/WhileEndless/go-reqresp/pkg/logging"
)

// Default is used when nothing in the headers names an encoding
const Default = "utf-8"

var log = logging.GetLogger("charset")

// FromContentType resolves the body encoding from a Content-Type value.
// First match wins: the charset parameter (quotes stripped), ISO-8859-1
// for text types, utf-8 for image and application/json types, then Default.
func FromContentType(contentType string) string {
	if strings.TrimSpace(contentType) == "" {
		return Default
	}

	mediaType, params := ParseContentType(contentType)
	if cs, ok := params["charset"]; ok {
		return strings.Trim(cs, `'"`)
	}

	switch {
	case strings.Contains(mediaType, "text"):
		return "ISO-8859-1"
	case strings.Contains(mediaType, "image"):
		return "utf-8"
	case strings.Contains(mediaType, "application/json"):
		return "utf-8"
	}
	return Default
}

// ParseContentType splits a Content-Type value into its lowercased media
// type and parameters. Parameter names are lowercased; values are trimmed
// of whitespace and quotes. It never fails.
func ParseContentType(value string) (string, map[string]string) {
	parts := strings.Split(value, ";")
	mediaType := strings.ToLower(strings.TrimSpace(parts[0]))

	params := make(map[string]string)
	for _, p := range parts[1:] {
		key, val, ok := strings.Cut(p, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		params[key] = strings.Trim(strings.TrimSpace(val), `'"`)
	}
	return mediaType, params
}

// Lookup finds an encoding by label. IANA names are tried first so that
// ISO-8859-1 means Latin-1 rather than its WHATWG windows-1252 alias;
// HTML labels are the fallback.
func Lookup(label string) (encoding.Encoding, bool) {
	label = strings.ToLower(strings.Trim(strings.TrimSpace(label), `'"`))
	if label == "" {
		return nil, false
	}
	if label == "utf-8" || label == "utf8" {
		return unicode.UTF8, true
	}

	if enc, err := ianaindex.IANA.Encoding(label); err == nil && enc != nil {
		return enc, true
	}
	if enc, _ := htmlcharset.Lookup(label); enc != nil {
		return enc, true
	}
	return nil, false
}

// Decode converts data in the encoding named by label to a UTF-8 string.
// Invalid sequences become U+FFFD; unknown labels decode as utf-8.
func Decode(data []byte, label string) string {
	enc, ok := Lookup(label)
	if !ok {
		log.WithField("charset", label).Warn("unknown charset, decoding as utf-8")
		enc = unicode.UTF8
	}

	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		log.WithError(err).WithField("charset", label).Debug("decoder failed, keeping bytes as utf-8")
		out = data
	}
	return Normalize(string(out))
}

// Normalize returns s as valid UTF-8, replacing bad sequences with U+FFFD
func Normalize(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, string(utf8.RuneError))
}

// sniffPatterns are compiled once and only read afterwards.
var sniffPatterns = struct {
	meta   *regexp.Regexp
	pragma *regexp.Regexp
	xml    *regexp.Regexp
}{
	meta:   regexp.MustCompile(`(?i)<meta.*?charset=["']*(.+?)["'>]`),
	pragma: regexp.MustCompile(`(?i)<meta.*?content=["']*;?charset=(.+?)["'>]`),
	xml:    regexp.MustCompile(`^<\?xml.*?encoding=["']*(.+?)["'>]`),
}

// Sniff returns the encodings declared inside a document: <meta charset>,
// <meta content="...charset=">, then an XML declaration. Duplicates are kept
// in match order.
func Sniff(content string) []string {
	var found []string
	for _, re := range []*regexp.Regexp{sniffPatterns.meta, sniffPatterns.pragma, sniffPatterns.xml} {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			found = append(found, m[1])
		}
	}
	return found
}

// SniffFirst returns the first declared encoding, if any
func SniffFirst(content string) (string, bool) {
	found := Sniff(content)
	if len(found) == 0 {
		return "", false
	}
	return found[0], true
}
