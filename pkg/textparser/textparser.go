// Package textparser is a small line-oriented scanner with regex capture
// over the current line. Patterns are passed precompiled so callers keep
// them in package-level variables.
package textparser

import (
	"regexp"
	"strings"
)

// Parser walks a text source one line at a time
type Parser struct {
	lines []string
	pos   int

	lastFullLine string
	lastLine     string
	groups       []string
}

// New creates a Parser over text
func New(text string) *Parser {
	p := &Parser{}
	p.SetSource(text)
	return p
}

// SetSource replaces the text being scanned and rewinds to the start
func (p *Parser) SetSource(text string) {
	p.lines = splitLines(text)
	p.pos = 0
	p.lastFullLine = ""
	p.lastLine = ""
	p.groups = nil
}

// splitLines cuts text after every '\n', keeping the terminators
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// ReadLine advances to the next line. At end of input it clears the last
// line and returns false.
func (p *Parser) ReadLine() bool {
	if p.pos >= len(p.lines) {
		p.lastFullLine = ""
		p.lastLine = ""
		return false
	}
	p.lastFullLine = p.lines[p.pos]
	p.lastLine = strings.TrimRight(p.lastFullLine, "\r\n")
	p.pos++
	return true
}

// ReadUntil reads lines until one matches re, capturing its groups.
// It returns false if input ends first.
func (p *Parser) ReadUntil(re *regexp.Regexp) bool {
	for p.ReadLine() {
		if p.Search(re) {
			return true
		}
	}
	return false
}

// Search tests re against the current line and captures its groups on match
func (p *Parser) Search(re *regexp.Regexp) bool {
	m := re.FindStringSubmatch(p.lastLine)
	if m == nil {
		return false
	}
	p.groups = m[1:]
	return true
}

// Group returns capture i (0-based) of the last successful match
func (p *Parser) Group(i int) string {
	if i < 0 || i >= len(p.groups) {
		return ""
	}
	return p.groups[i]
}

// Groups returns the captures of the last successful match
func (p *Parser) Groups() []string {
	return p.groups
}

// Skip reads n lines, returning false if input ends first
func (p *Parser) Skip(n int) bool {
	for i := 0; i < n; i++ {
		if !p.ReadLine() {
			return false
		}
	}
	return true
}

// LastLine is the current line without its terminator
func (p *Parser) LastLine() string {
	return p.lastLine
}

// LastFullLine is the current line including its terminator
func (p *Parser) LastFullLine() string {
	return p.lastFullLine
}

// Remaining reports how many lines are left unread
func (p *Parser) Remaining() int {
	return len(p.lines) - p.pos
}
