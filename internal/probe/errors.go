package probe

import (
	"errors"
	"fmt"
)

var (
	ErrNetwork    = errors.New("network error")
	ErrTimeout    = errors.New("request timeout")
	ErrHTTPStatus = errors.New("unexpected status code")
)

// Error describes a failed probe.
type Error struct {
	Kind       error
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == ErrHTTPStatus:
		return fmt.Sprintf("%s: %v %d", e.URL, e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v: %v", e.URL, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.URL, e.Kind)
	}
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
