// Package cookies reads Set-Cookie values from responses.
package cookies

import (
	"strconv"
	"strings"
)

// ResponseCookie is one parsed Set-Cookie header
type ResponseCookie struct {
	Name     string
	Value    string
	Path     string
	Domain   string
	Expires  string
	MaxAge   int // -1 when absent
	Secure   bool
	HttpOnly bool
	SameSite string
	Raw      string
}

// Pair returns the leading name=value segment of a Set-Cookie value,
// verbatim: everything before the first ';'.
func Pair(setCookie string) string {
	pair, _, _ := strings.Cut(setCookie, ";")
	return pair
}

// JoinPairs builds a Cookie request value from Set-Cookie values
func JoinPairs(setCookies []string) string {
	pairs := make([]string, 0, len(setCookies))
	for _, v := range setCookies {
		pairs = append(pairs, Pair(v))
	}
	return strings.Join(pairs, "; ")
}

// ParseSetCookie parses a Set-Cookie value. It never fails; unknown
// attributes are ignored.
func ParseSetCookie(setCookie string) ResponseCookie {
	cookie := ResponseCookie{Raw: setCookie, MaxAge: -1}
	if setCookie == "" {
		return cookie
	}

	parts := strings.Split(setCookie, ";")

	first := strings.TrimSpace(parts[0])
	if name, value, ok := strings.Cut(first, "="); ok {
		cookie.Name = strings.TrimSpace(name)
		cookie.Value = unquote(strings.TrimSpace(value))
	} else {
		cookie.Name = first
	}

	for _, attr := range parts[1:] {
		attr = strings.TrimSpace(attr)
		if attr == "" {
			continue
		}

		key, value, hasValue := strings.Cut(attr, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		if !hasValue {
			switch key {
			case "secure":
				cookie.Secure = true
			case "httponly":
				cookie.HttpOnly = true
			}
			continue
		}

		switch key {
		case "path":
			cookie.Path = value
		case "domain":
			cookie.Domain = value
		case "expires":
			cookie.Expires = value
		case "max-age":
			if n, err := strconv.Atoi(value); err == nil {
				cookie.MaxAge = n
			}
		case "samesite":
			cookie.SameSite = value
		}
	}

	return cookie
}

func unquote(v string) string {
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		return v[1 : len(v)-1]
	}
	return v
}

// Build renders the cookie back into a Set-Cookie value
func (c *ResponseCookie) Build() string {
	var parts []string

	if c.Name != "" {
		parts = append(parts, c.Name+"="+c.Value)
	}
	if c.Path != "" {
		parts = append(parts, "Path="+c.Path)
	}
	if c.Domain != "" {
		parts = append(parts, "Domain="+c.Domain)
	}
	if c.Expires != "" {
		parts = append(parts, "Expires="+c.Expires)
	}
	if c.MaxAge >= 0 {
		parts = append(parts, "Max-Age="+strconv.Itoa(c.MaxAge))
	}
	if c.Secure {
		parts = append(parts, "Secure")
	}
	if c.HttpOnly {
		parts = append(parts, "HttpOnly")
	}
	if c.SameSite != "" {
		parts = append(parts, "SameSite="+c.SameSite)
	}

	return strings.Join(parts, "; ")
}
