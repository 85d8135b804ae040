package provider

import (
	"errors"
	"fmt"
)

// MissingResourceError means the metering setup does not expose the requested
// stream at all. Retrying cannot help, the stream should be skipped.
type MissingResourceError struct {
	Resource string
}

func (e *MissingResourceError) Error() string {
	return fmt.Sprintf("missing resource: %s", e.Resource)
}

// MalformedResponseError means the vendor API answered with something the
// client could not decode. Retrying with the same request cannot help.
type MalformedResponseError struct {
	Provider string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s: %v", e.Provider, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// IsTerminal reports whether err can never succeed on retry. Network and
// auth failures are left retryable for the next sync pass.
func IsTerminal(err error) bool {
	var missing *MissingResourceError
	var malformed *MalformedResponseError
	return errors.As(err, &missing) || errors.As(err, &malformed)
}
