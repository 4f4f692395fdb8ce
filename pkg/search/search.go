package search

import (
	"regexp"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/WhileEndless/go-reqresp/pkg/headers"
	"github.com/WhileEndless/go-reqresp/pkg/response"
)

// Location selects which part of a response is searched
type Location int

const (
	InHeaders Location = 1 << iota
	InContent
	InAll = InHeaders | InContent
)

func (l Location) String() string {
	switch l {
	case InHeaders:
		return "headers"
	case InContent:
		return "content"
	case InAll:
		return "all"
	default:
		return "none"
	}
}

// ParseLocation maps "headers", "content" or "all" to a Location.
// Anything else yields InAll.
func ParseLocation(s string) Location {
	switch strings.ToLower(s) {
	case "headers":
		return InHeaders
	case "content", "body":
		return InContent
	default:
		return InAll
	}
}

// Options configures a Searcher
type Options struct {
	Pattern    string
	Regex      bool
	IgnoreCase bool
	Location   Location

	// HeaderNames also matches against header names
	HeaderNames bool

	// MaxResults caps the number of matches (0 = unlimited)
	MaxResults int

	// ContextSize is the number of bytes kept on each side of a match
	ContextSize int
}

// DefaultOptions returns options searching the whole response literally
func DefaultOptions() Options {
	return Options{
		Location:    InAll,
		HeaderNames: true,
		ContextSize: 40,
	}
}

// Match is a single hit
type Match struct {
	Location Location

	// Header is the name of the header the match was found in
	Header string

	Text  string
	Start int
	End   int

	// Line is 1-based within the searched text
	Line    int
	Context string
}

// Result collects the matches of one search over a response
type Result struct {
	Query          string
	Matches        []Match
	HeaderMatches  int
	ContentMatches int
}

// Found reports whether anything matched
func (r *Result) Found() bool {
	return len(r.Matches) > 0
}

// Searcher matches a fixed pattern against responses
type Searcher struct {
	opts    Options
	re      *regexp.Regexp
	pattern string
}

// New compiles opts into a Searcher
func New(opts Options) (*Searcher, error) {
	if opts.Location == 0 {
		opts.Location = InAll
	}
	s := &Searcher{opts: opts, pattern: opts.Pattern}

	expr := opts.Pattern
	if !opts.Regex {
		if !opts.IgnoreCase || opts.Pattern == "" {
			return s, nil
		}
		// Case folding happens in the regexp so offsets index the
		// original text.
		expr = regexp.QuoteMeta(opts.Pattern)
	}
	if opts.IgnoreCase {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "compile pattern %q", opts.Pattern)
	}
	s.re = re

	return s, nil
}

func (s *Searcher) full(n int) bool {
	return s.opts.MaxResults > 0 && n >= s.opts.MaxResults
}

// FindString returns every match in text
func (s *Searcher) FindString(text string) []Match {
	var matches []Match

	add := func(start, end int) {
		matches = append(matches, Match{
			Text:    text[start:end],
			Start:   start,
			End:     end,
			Line:    strings.Count(text[:start], "\n") + 1,
			Context: context(text, start, end, s.opts.ContextSize),
		})
	}

	if s.re != nil {
		for _, loc := range s.re.FindAllStringIndex(text, -1) {
			if s.full(len(matches)) {
				break
			}
			add(loc[0], loc[1])
		}
		return matches
	}

	if s.pattern == "" {
		return nil
	}

	offset := 0
	for !s.full(len(matches)) {
		idx := strings.Index(text[offset:], s.pattern)
		if idx == -1 {
			break
		}
		start := offset + idx
		add(start, start+len(s.pattern))
		offset = start + 1
	}
	return matches
}

// FindHeaders searches header values, and names when HeaderNames is set
func (s *Searcher) FindHeaders(h *headers.Headers) []Match {
	var matches []Match

	for _, hdr := range h.All() {
		var found []Match
		if s.opts.HeaderNames {
			found = append(found, s.FindString(hdr.Name)...)
		}
		found = append(found, s.FindString(hdr.Value)...)

		for _, m := range found {
			if s.full(len(matches)) {
				return matches
			}
			m.Location = InHeaders
			m.Header = hdr.Name
			matches = append(matches, m)
		}
	}
	return matches
}

// FindContent searches decoded content
func (s *Searcher) FindContent(content string) []Match {
	matches := s.FindString(content)
	for i := range matches {
		matches[i].Location = InContent
	}
	return matches
}

// Response searches the parts of r selected by the Location option
func (s *Searcher) Response(r *response.Response) *Result {
	res := &Result{Query: s.opts.Pattern}

	if s.opts.Location&InHeaders != 0 {
		found := s.FindHeaders(r.Headers)
		res.HeaderMatches = len(found)
		res.Matches = append(res.Matches, found...)
	}
	if s.opts.Location&InContent != 0 && !s.full(len(res.Matches)) {
		found := s.FindContent(r.Content)
		if s.opts.MaxResults > 0 && len(res.Matches)+len(found) > s.opts.MaxResults {
			found = found[:s.opts.MaxResults-len(res.Matches)]
		}
		res.ContentMatches = len(found)
		res.Matches = append(res.Matches, found...)
	}
	return res
}

// Contains is a literal substring test
func Contains(text, pattern string, ignoreCase bool) bool {
	if ignoreCase {
		return strings.Contains(strings.ToLower(text), strings.ToLower(pattern))
	}
	return strings.Contains(text, pattern)
}

func context(text string, start, end, size int) string {
	if size <= 0 {
		return text[start:end]
	}
	from := start - size
	if from < 0 {
		from = 0
	}
	to := end + size
	if to > len(text) {
		to = len(text)
	}
	return strings.ToValidUTF8(text[from:to], "")
}
