package headers

import (
	"strings"

	"github.com/valyala/bytebufferpool"

	"github.com/WhileEndless/go-reqresp/pkg/cookies"
)

// Header represents a single HTTP header
type Header struct {
	Name  string
	Value string
}

// Headers is an ordered list of header fields.
// Duplicate names are kept in arrival order; name lookups are case-insensitive.
// A nil *Headers reads as empty; Add and Set need a non-nil value.
type Headers struct {
	entries []Header
}

func (h *Headers) list() []Header {
	if h == nil {
		return nil
	}
	return h.entries
}

// NewHeaders creates an empty Headers instance
func NewHeaders() *Headers {
	return &Headers{entries: make([]Header, 0)}
}

// Add appends a header without touching existing ones with the same name
func (h *Headers) Add(name, value string) {
	h.entries = append(h.entries, Header{Name: name, Value: value})
}

// Set replaces every header named name with a single entry.
// The entry keeps the position of the first match, or is appended.
func (h *Headers) Set(name, value string) {
	kept := make([]Header, 0, len(h.entries)+1)
	placed := false
	for _, e := range h.entries {
		if !strings.EqualFold(e.Name, name) {
			kept = append(kept, e)
			continue
		}
		if !placed {
			kept = append(kept, Header{Name: name, Value: value})
			placed = true
		}
	}
	if !placed {
		kept = append(kept, Header{Name: name, Value: value})
	}
	h.entries = kept
}

// Del removes all headers whose name matches case-insensitively
func (h *Headers) Del(name string) {
	if h == nil {
		return
	}
	kept := make([]Header, 0, len(h.entries))
	for _, e := range h.entries {
		if !strings.EqualFold(e.Name, name) {
			kept = append(kept, e)
		}
	}
	h.entries = kept
}

// Lookup returns the first value for name and whether it was present
func (h *Headers) Lookup(name string) (string, bool) {
	for _, e := range h.list() {
		if strings.EqualFold(e.Name, name) {
			return e.Value, true
		}
	}
	return "", false
}

// Get returns the first value for name, or "" when absent
func (h *Headers) Get(name string) string {
	v, _ := h.Lookup(name)
	return v
}

// Values returns every value stored under name, in order
func (h *Headers) Values(name string) []string {
	var values []string
	for _, e := range h.list() {
		if strings.EqualFold(e.Name, name) {
			values = append(values, e.Value)
		}
	}
	return values
}

// Has checks if a header exists (case-insensitive)
func (h *Headers) Has(name string) bool {
	_, ok := h.Lookup(name)
	return ok
}

// Equal reports whether a header named exactly name carries value,
// comparing the value case-insensitively.
func (h *Headers) Equal(name, value string) bool {
	for _, e := range h.list() {
		if e.Name == name && strings.EqualFold(e.Value, value) {
			return true
		}
	}
	return false
}

// Location returns the Location header and whether it was present
func (h *Headers) Location() (string, bool) {
	return h.Lookup("Location")
}

// Cookie joins the name=value part of every Set-Cookie header with "; "
func (h *Headers) Cookie() string {
	return cookies.JoinPairs(h.Values("Set-Cookie"))
}

// All returns a copy of all headers in their original order
func (h *Headers) All() []Header {
	out := make([]Header, len(h.list()))
	copy(out, h.list())
	return out
}

// Len returns the number of headers
func (h *Headers) Len() int {
	return len(h.list())
}

// Reset drops every header
func (h *Headers) Reset() {
	if h == nil {
		return
	}
	h.entries = h.entries[:0]
}

// Clone returns an independent copy
func (h *Headers) Clone() *Headers {
	return &Headers{entries: h.All()}
}

// Build renders the headers as "Name: Value" lines terminated by sep
func (h *Headers) Build(sep string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	for _, e := range h.list() {
		buf.WriteString(e.Name)
		buf.WriteString(": ")
		buf.WriteString(e.Value)
		buf.WriteString(sep)
	}
	return buf.String()
}
