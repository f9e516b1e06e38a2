package engine

import (
	"errors"
	"fmt"
)

// ErrUnsupportedLanguage means the catalog has no entry for the
// normalized language. Surfaced to clients as a 400.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// UpstreamError is any non-2xx response or transport failure from the
// execution backend. Status is 0 when the call never got a response.
type UpstreamError struct {
	Status int
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream: %v", e.Err)
	}
	return fmt.Sprintf("upstream: HTTP %d %s", e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
