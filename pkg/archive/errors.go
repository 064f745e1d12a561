package archive

import "errors"

// ErrUnsupportedOption is wrapped by every option validation error.
var ErrUnsupportedOption = errors.New("unsupported option")

// RootFetchError is returned when the root document itself cannot be
// retrieved. Unlike per-resource failures, this aborts the whole run.
type RootFetchError struct {
	URL string
	Err error
}

func (e *RootFetchError) Error() string {
	return "fetch root document " + e.URL + ": " + e.Err.Error()
}

func (e *RootFetchError) Unwrap() error { return e.Err }
