package api

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Sentinel errors identifying the kind of a BuilderError. Match them with
// errors.Is.
var (
	// ErrInvalidMethod is returned when an unsupported HTTP verb is set.
	ErrInvalidMethod = errors.New("yampi: invalid method")

	// ErrInvalidParam is returned when a param targets an unknown bucket.
	ErrInvalidParam = errors.New("yampi: invalid param")

	// ErrInvalidInclude is returned when an include value is empty.
	ErrInvalidInclude = errors.New("yampi: invalid include")

	// ErrInvalidSearchValue is returned when a search value is empty.
	ErrInvalidSearchValue = errors.New("yampi: invalid search value")

	// ErrInvalidTokenType is returned when an auth token type is unknown.
	ErrInvalidTokenType = errors.New("yampi: invalid token type")
)

// BuilderError reports input rejected by a builder method before any network
// call is made.
type BuilderError struct {
	Message string
	Code    int
	kind    error
	request *Request
}

func newBuilderError(kind error, r *Request, code int, format string, args ...interface{}) *BuilderError {
	return &BuilderError{
		Message: fmt.Sprintf(format, args...),
		Code:    code,
		kind:    kind,
		request: r,
	}
}

func (e *BuilderError) Error() string {
	return e.Message
}

// Unwrap returns the sentinel identifying the kind of failure.
func (e *BuilderError) Unwrap() error {
	return e.kind
}

// Request returns the request that rejected the input. It must be treated as
// read-only.
func (e *BuilderError) Request() *Request {
	return e.request
}

// RequestError is returned when the API call fails, either in transport or
// with an error status.
type RequestError struct {
	Message string

	// StatusCode is the HTTP status of the failed call, or 400 when no response
	// was received.
	StatusCode int

	// Response wraps the decoded error body. It is nil when the body could not
	// be decoded or no response was received.
	Response *Response

	Cause   error
	request *Request
}

func (e *RequestError) Error() string {
	if e.Message == "" && e.Cause != nil {
		return fmt.Sprintf("yampi: request failed (%d): %v", e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("yampi: request failed (%d): %s", e.StatusCode, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// Request returns the request that was executed. It must be treated as
// read-only; its route has already been reset.
func (e *RequestError) Request() *Request {
	return e.request
}

// ValidationError is returned for 422 Unprocessable Entity responses.
type ValidationError struct {
	*RequestError

	// Errors maps each rejected field to its messages.
	Errors map[string][]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("yampi: validation failed: %s", e.Message)
}

// Unwrap exposes the embedded RequestError so errors.As matches either type.
func (e *ValidationError) Unwrap() error {
	return e.RequestError
}

// IsRequestError reports whether err is, or wraps, a RequestError. Validation
// errors count as request errors.
func IsRequestError(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr)
}

// IsValidationError reports whether err is, or wraps, a ValidationError.
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

func newTransportError(r *Request, cause error) *RequestError {
	return &RequestError{
		Message:    cause.Error(),
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
		request:    r,
	}
}
