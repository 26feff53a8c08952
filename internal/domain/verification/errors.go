package verification

import (
	"net/http"

	"gitlab.com/souqly/auth-backend/pkg/errorx"
	"gitlab.com/souqly/auth-backend/pkg/i18nx"
)

var (
	ErrVerificationNotFound = errorx.NewNotFound().WithKey(i18nx.KeyVerificationNotFound).WithHTTPCode(http.StatusBadRequest)
	ErrResetNotFound        = errorx.NewNotFound().WithKey(i18nx.KeyResetNotFound).WithHTTPCode(http.StatusBadRequest)
	ErrCodeExpired          = errorx.NewCodeExpired()
	ErrResetExpired         = errorx.NewCodeExpired().WithKey(i18nx.KeyResetExpired)
	ErrInvalidCode          = errorx.NewInvalidCode()
	ErrInvalidResetCode     = errorx.NewInvalidCode().WithKey(i18nx.KeyInvalidResetCode)
	ErrResetNotVerified     = errorx.NewNotVerified()
	ErrWrongPurpose         = errorx.NewInternalError()
)

// NotFoundFor returns the not found error worded for the purpose.
func NotFoundFor(p Purpose) *errorx.I18nError {
	if p == PurposePasswordReset {
		return ErrResetNotFound
	}
	return ErrVerificationNotFound
}
