package api

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	kberrors "github.com/knowledgeboard/knowledge-server/internal/errors"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			var domainErr *kberrors.Error
			if errors.As(err, &domainErr) {
				return &APIError{
					status:  domainErr.HTTPStatus(),
					Code:    string(domainErr.Code),
					Message: domainErr.Message,
					Details: domainErr.Details,
				}
			}
		}

		apiErr := &APIError{
			status:  status,
			Code:    statusToCode(status),
			Message: message,
		}
		if details := errorDetails(errs); len(details) > 0 {
			apiErr.Details = details
		}
		return apiErr
	}
}

// errorDetails flattens huma's per-field validation errors.
func errorDetails(errs []error) []string {
	var out []string
	for _, err := range errs {
		if err != nil {
			out = append(out, err.Error())
		}
	}
	return out
}

// statusToCode maps HTTP status codes to our domain error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusMethodNotAllowed:
		return string(kberrors.CodeValidation)
	case http.StatusNotFound:
		return string(kberrors.CodeNotFound)
	case http.StatusConflict:
		return string(kberrors.CodeConflict)
	case http.StatusTooManyRequests:
		return string(kberrors.CodeRateLimited)
	case http.StatusServiceUnavailable:
		return string(kberrors.CodeUnavailable)
	default:
		return string(kberrors.CodeInternal)
	}
}

// clientMessage is the error text a sentinel-shaped response carries.
// Coded errors expose their message; anything else stays generic.
func clientMessage(err error) string {
	var domainErr *kberrors.Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return "internal error"
}
