// Package httperr maps ledger errors to HTTP responses.
package httperr

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ronsuru/taskquer/internal/domain"
	"github.com/ronsuru/taskquer/pkg/auth"
	"github.com/ronsuru/taskquer/pkg/utils"
)

func Status(err error) int {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve), errors.Is(err, domain.ErrInvalidAddress), errors.Is(err, domain.ErrInvalidTransaction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrNoSlotsAvailable),
		errors.Is(err, domain.ErrInvalidStateTransition),
		errors.Is(err, domain.ErrDuplicateTransaction),
		errors.Is(err, domain.ErrAlreadySubmitted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrInvalidInitData):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes err with its mapped status. Internal errors are logged and never echoed.
func Respond(w http.ResponseWriter, err error) {
	code := Status(err)
	if code == http.StatusInternalServerError {
		zap.L().Error("request failed", zap.Error(err))
		utils.RespondWithError(w, code, "Internal server error")
		return
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		utils.RespondWithReason(w, code, "Validation failed", ve.Reason)
		return
	}
	utils.RespondWithError(w, code, err.Error())
}
