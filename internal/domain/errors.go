package domain

import (
	"errors"
	"fmt"
)

// APIError is returned when Teamhood answers with a non-2xx status.
// The response body is carried verbatim so the caller sees exactly
// what the API said.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API Error %d: %s", e.StatusCode, e.Body)
}

// NetworkError wraps a transport-level failure (DNS, refused
// connection, timeout) that prevented a request from completing.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request failed (%s): %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NotFoundError is returned by tools that resolve a resource locally,
// such as get_board scanning a workspace's board list.
type NotFoundError struct {
	Resource string
	ID       string
	Scope    string
}

func (e *NotFoundError) Error() string {
	if e.Scope != "" {
		return fmt.Sprintf("%s %s not found in %s", e.Resource, e.ID, e.Scope)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// UnknownToolError is returned when tools/call names a tool that is
// not in the catalog.
type UnknownToolError struct {
	Tool string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("Unknown tool: %s", e.Tool)
}

// MissingArgumentError is returned when a required tool argument is
// absent from the call.
type MissingArgumentError struct {
	Argument string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("missing required argument: %s", e.Argument)
}

// InvalidArgumentError is returned when an argument is present but
// cannot be interpreted as the expected type.
type InvalidArgumentError struct {
	Argument string
	Expected string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("argument %s must be %s", e.Argument, e.Expected)
}

// IsNotFound reports whether err is a NotFoundError anywhere in its chain.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsAPIError extracts an APIError from err's chain if present.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
