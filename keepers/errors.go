package keepers

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport marks failures to obtain a response body: request
	// construction, DNS, connect, timeouts, reads and non-2xx statuses.
	ErrTransport = errors.New("keepers transport failure")

	// ErrDecode marks a response body that is not a valid keepers snapshot.
	ErrDecode = errors.New("keepers decode failure")
)

// FetchError describes a failed keepers fetch.
type FetchError struct {
	// Kind is ErrTransport or ErrDecode.
	Kind error
	URL  string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.URL, e.Err)
}

// Unwrap exposes both the kind and the underlying cause to errors.Is / errors.As.
func (e *FetchError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func transportError(url string, err error) error {
	return &FetchError{Kind: ErrTransport, URL: url, Err: err}
}

func decodeError(url string, err error) error {
	return &FetchError{Kind: ErrDecode, URL: url, Err: err}
}

// Reason returns a short label for the kind of a fetch error, suitable for
// metric labels. Errors that are not fetch errors are labelled "unknown".
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrDecode):
		return "decode"
	default:
		return "unknown"
	}
}
