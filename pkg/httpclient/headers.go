package httpclient

import (
	"errors"
	"fmt"

	"golang.org/x/net/http/httpguts"
)

// ErrInvalidHeader is returned when a header name or value cannot be put on the wire.
var ErrInvalidHeader = errors.New("invalid header")

// ValidateHeader reports whether name and value are legal HTTP header tokens.
// The value itself is never included in the error since it usually carries credentials.
func ValidateHeader(name, value string) error {
	if !httpguts.ValidHeaderFieldName(name) {
		return fmt.Errorf("%w: name %q", ErrInvalidHeader, name)
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return fmt.Errorf("%w: value for %s contains control characters", ErrInvalidHeader, name)
	}
	return nil
}

// ValidateHeaders runs ValidateHeader over every entry.
func ValidateHeaders(headers map[string]string) error {
	for k, v := range headers {
		if err := ValidateHeader(k, v); err != nil {
			return err
		}
	}
	return nil
}
