package httpclient

import (
	goerrors "errors"
	"fmt"

	"github.com/hiretrack/hiretrack/internal/errors"
)

// Error is a response the server answered with a status of 400 or above.
// Response holds the raw body so callers can extract server messages.
type Error struct {
	*errors.InternalError
	Method     string
	URL        string
	StatusCode int
	Response   []byte
}

func (e *Error) Unwrap() error {
	return e.InternalError.Unwrap()
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.StatusCode)
}

// NewError wraps a failed response to req
func NewError(req *Request, statusCode int, response []byte) *Error {
	e := &Error{
		InternalError: errors.New(errors.ErrCodeHTTPClient, "http client error"),
		StatusCode:    statusCode,
		Response:      response,
	}
	if req != nil {
		e.Method = req.Method
		e.URL = req.URL
	}
	return e
}

// IsHTTPError returns the *Error inside err, if any
func IsHTTPError(err error) (*Error, bool) {
	var httpErr *Error
	if goerrors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}
