package openapi

import (
	"net/http"
	"strings"
)

var knownMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
	http.MethodConnect: {},
	http.MethodOptions: {},
	http.MethodTrace:   {},
}

// ParseMethod normalizes method to its canonical upper-case form and rejects
// anything outside the standard HTTP method set.
func ParseMethod(method string) (string, error) {
	m := strings.ToUpper(strings.TrimSpace(method))
	if _, ok := knownMethods[m]; !ok {
		return "", &MethodError{Method: method}
	}
	return m, nil
}

// bodyless lists methods whose requests go out without a body.
var bodyless = map[string]struct{}{
	http.MethodHead:    {},
	http.MethodOptions: {},
}

func carriesBody(method string) bool {
	_, ok := bodyless[method]
	return !ok
}
