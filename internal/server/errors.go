package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/shiyoungwoo/Resume-assistant/internal/gateway"
	"github.com/shiyoungwoo/Resume-assistant/internal/intro"
	"github.com/shiyoungwoo/Resume-assistant/internal/ledger"
	"github.com/shiyoungwoo/Resume-assistant/internal/media"
	"github.com/shiyoungwoo/Resume-assistant/internal/mocksession"
	"github.com/shiyoungwoo/Resume-assistant/internal/questionbank"
	"github.com/shiyoungwoo/Resume-assistant/internal/station"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// requestValidationError reports the first failed field.
func requestValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ErrValidation{Field: fe.Field(), Message: fe.Tag()}
	}
	return &ErrValidation{Field: "body", Message: err.Error()}
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validationErr *ErrValidation
	var apiErr *gateway.APICallError

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErr),
		errors.Is(err, intro.ErrValidation),
		errors.Is(err, mocksession.ErrValidation),
		errors.Is(err, mocksession.ErrEmptyTurn),
		errors.Is(err, questionbank.ErrNoContext),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, station.ErrUnknownTab):
		return http.StatusBadRequest
	case errors.Is(err, media.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, mocksession.ErrQuotaExceeded),
		errors.Is(err, mocksession.ErrInsufficientPoints):
		return http.StatusPaymentRequired
	case errors.Is(err, questionbank.ErrQuestionNotFound),
		errors.Is(err, station.ErrNoIntro):
		return http.StatusNotFound
	case errors.Is(err, questionbank.ErrBusy),
		errors.Is(err, mocksession.ErrBusy),
		errors.Is(err, mocksession.ErrNotActive),
		errors.Is(err, mocksession.ErrAlreadyStarted),
		errors.Is(err, mocksession.ErrUnlockNotNeeded),
		errors.Is(err, mocksession.ErrInterrupted):
		return http.StatusConflict
	case errors.Is(err, mocksession.ErrSessionClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, intro.ErrNoIntro),
		errors.As(err, &apiErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
