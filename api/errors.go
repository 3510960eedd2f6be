package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrTransport wraps network failures and undecodable replies.
var ErrTransport = errors.New("transport error")

// Error is a non-2xx reply from the service.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	RequestID  string
}

func (e *Error) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode), body)
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized reports whether err is a 401 or 403 from the service.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized) || hasStatus(err, http.StatusForbidden)
}

func hasStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
