package fetch

import (
	"errors"
	"fmt"
)

var (
	// ErrNoContent means the page loaded but the listing marker never
	// appeared within the content timeout. The caller skips the page.
	ErrNoContent = errors.New("listing content did not appear")
	// ErrSessionStart means no browser session could be started.
	ErrSessionStart = errors.New("browser session could not be started")
	// ErrClosed is returned by a fetcher after Close.
	ErrClosed = errors.New("fetcher is closed")
)

// ErrorCode classifies a fetch failure
type ErrorCode string

const (
	CodeNoContent  ErrorCode = "NO_CONTENT"
	CodeTimeout    ErrorCode = "TIMEOUT"
	CodeNetwork    ErrorCode = "NETWORK_ERROR"
	CodeStatus     ErrorCode = "HTTP_STATUS"
	CodeBrowser    ErrorCode = "BROWSER_ERROR"
	CodeValidation ErrorCode = "VALIDATION"
)

// Error wraps a fetch failure with the URL it happened on.
type Error struct {
	Code       ErrorCode
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s: HTTP %d", e.Code, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

func newError(code ErrorCode, url string, err error) *Error {
	return &Error{Code: code, URL: url, Err: err}
}

// IsNoContent reports whether err means the page had no listing content.
func IsNoContent(err error) bool {
	return errors.Is(err, ErrNoContent)
}
