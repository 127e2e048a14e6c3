package openapi

import (
	"fmt"
	"strings"
)

// Scope is a parsed permission string of the form METHOD:host/path.
type Scope struct {
	// Method is an upper-case HTTP method or "*" for any method.
	Method string
	Host   string
	// Path starts with "/" and may be empty when the scope covers the whole host.
	Path string
}

func (s Scope) String() string {
	return s.Method + ":" + s.Host + s.Path
}

// ParseScope validates and splits a scope string.
func ParseScope(raw string) (Scope, error) {
	raw = strings.TrimSpace(raw)
	method, rest, ok := strings.Cut(raw, ":")
	if !ok {
		return Scope{}, fmt.Errorf("scope %q: expected METHOD:host/path", raw)
	}
	if method != "*" {
		m, err := ParseMethod(method)
		if err != nil {
			return Scope{}, fmt.Errorf("scope %q: %w", raw, err)
		}
		method = m
	}
	host, path := rest, ""
	if i := strings.Index(rest, "/"); i >= 0 {
		host, path = rest[:i], rest[i:]
	}
	if host == "" || strings.ContainsAny(host, " \t") {
		return Scope{}, fmt.Errorf("scope %q: missing or malformed host", raw)
	}
	return Scope{Method: method, Host: strings.ToLower(host), Path: path}, nil
}
