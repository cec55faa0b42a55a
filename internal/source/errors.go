package source

import "fmt"

// Failure reasons carried by FetchError.
const (
	ReasonTransport = "transport"
	ReasonStatus    = "status"
	ReasonPayload   = "payload"
)

// FetchError is an adapter failure. It never leaves the aggregator.
type FetchError struct {
	Source string
	Reason string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("source %s: %s error: %v", e.Source, e.Reason, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError builds a FetchError from a format string.
func NewFetchError(source, reason, format string, args ...interface{}) *FetchError {
	return &FetchError{Source: source, Reason: reason, Err: fmt.Errorf(format, args...)}
}
