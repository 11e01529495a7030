package invoker

import (
	"errors"
	"fmt"
)

// ErrUnsupportedMethod is returned for methods outside Methods.
var ErrUnsupportedMethod = errors.New("unsupported HTTP method")

// HTTPError is a non-2xx reply from the function endpoint.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

// Error renders "HTTP {code}: {body}", falling back to the status text when
// the body is empty.
func (e *HTTPError) Error() string {
	detail := e.Body
	if detail == "" {
		detail = e.Status
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, detail)
}
