package headers

import (
	"regexp"
	"strings"
)

// LinePattern matches a "Name: value" header line. The space after the
// colon is optional and not part of the value.
var LinePattern = regexp.MustCompile(`^([^:]+): ?(.*)$`)

// ParseLine splits a single header line (without its terminator)
func ParseLine(line string) (Header, bool) {
	m := LinePattern.FindStringSubmatch(line)
	if m == nil {
		return Header{}, false
	}
	return Header{Name: m[1], Value: strings.TrimRight(m[2], "\r")}, true
}
