package launcher

import (
	"errors"

	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/invoker"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/normalize"
)

var (
	// ErrInvalidJSON is returned when the event data does not parse.
	ErrInvalidJSON = errors.New("invalid JSON in event data")
	// ErrSuperseded is returned to a submission cancelled by a newer one
	// for the same page, or by the page closing.
	ErrSuperseded = errors.New("submission superseded")
)

// MixedContentWarning is shown when an HTTPS page targets a plain-HTTP
// endpoint that no rewrite covers.
const MixedContentWarning = "Warning: calling an HTTP endpoint from an HTTPS page may be blocked by the browser (mixed content)."

const mixedContentNote = " (This may be caused by mixed content: the page is HTTPS but the endpoint is HTTP.)"

// SubmitError is a failed invocation or an unusable response.
type SubmitError struct {
	Err          error
	MixedContent bool
}

func (e *SubmitError) Error() string { return e.Err.Error() }

func (e *SubmitError) Unwrap() error { return e.Err }

// StatusMessage renders err as the status line shown to the user.
func StatusMessage(err error) string {
	if err == nil {
		return ""
	}

	var msg string
	var formatErr *normalize.FormatError
	var httpErr *invoker.HTTPError
	switch {
	case errors.Is(err, ErrInvalidJSON):
		msg = "Invalid JSON in event data"
	case errors.As(err, &formatErr):
		msg = formatErr.UserMessage()
	case errors.As(err, &httpErr):
		msg = httpErr.Error()
	default:
		msg = err.Error()
	}

	var submitErr *SubmitError
	if errors.As(err, &submitErr) && submitErr.MixedContent {
		msg += mixedContentNote
	}
	return "Error: " + msg
}
