package openlibrary

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies why a fetch failed.
type ErrorKind string

const (
	// KindUnreachable covers transport failures, timeouts, cancellation, and
	// rate limiter waits that could not complete.
	KindUnreachable ErrorKind = "unreachable"
	// KindHTTPStatus is a response outside the 2xx range.
	KindHTTPStatus ErrorKind = "http_status"
	// KindDecode is a 2xx response whose body is not a JSON object.
	KindDecode ErrorKind = "decode"
)

// FetchError is returned by every failed FetchJSON call.
type FetchError struct {
	Kind       ErrorKind
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("openlibrary: GET %s returned status %d", e.URL, e.StatusCode)
	case KindDecode:
		return fmt.Sprintf("openlibrary: GET %s returned an undecodable body: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("openlibrary: GET %s failed: %v", e.URL, e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func kindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

func IsUnreachable(err error) bool { return kindOf(err) == KindUnreachable }
func IsHTTPStatus(err error) bool  { return kindOf(err) == KindHTTPStatus }
func IsDecode(err error) bool      { return kindOf(err) == KindDecode }

// StatusCode returns the upstream HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.StatusCode
	}
	return 0
}
