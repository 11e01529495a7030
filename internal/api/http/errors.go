package http

import (
	"errors"
	"net/http"

	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/interceptor"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/invoker"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/launcher"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/normalize"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/scheme"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/widget"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/providers/http/client"
)

// statusFor maps a domain error to an HTTP status.
func statusFor(err error) int {
	var formatErr *normalize.FormatError
	var httpErr *invoker.HTTPError
	var widgetErr *widget.StatusError
	var submitErr *launcher.SubmitError
	var navErr *interceptor.NavigationError

	switch {
	case errors.Is(err, scheme.ErrMissingFunctionID),
		errors.Is(err, scheme.ErrProtocolUnsupported),
		errors.Is(err, launcher.ErrInvalidJSON),
		errors.Is(err, invoker.ErrUnsupportedMethod),
		errors.Is(err, interceptor.ErrUnknownEvent):
		return http.StatusBadRequest
	case errors.Is(err, launcher.ErrSuperseded),
		errors.Is(err, interceptor.ErrTabBusy):
		return http.StatusConflict
	case errors.Is(err, client.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &formatErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &httpErr), errors.As(err, &widgetErr), errors.As(err, &submitErr),
		errors.As(err, &navErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
