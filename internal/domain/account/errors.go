package account

import (
	"gitlab.com/souqly/auth-backend/pkg/errorx"
	"gitlab.com/souqly/auth-backend/pkg/i18nx"
)

var (
	ErrNotApproved          = errorx.NewNotApproved()
	ErrInvalidCredentials   = errorx.NewInvalidCredentials()
	ErrInvalidRole          = errorx.NewInvalidRole()
	ErrEmailTaken           = errorx.NewEmailTaken()
	ErrAccountNotFound      = errorx.NewNotFound().WithKey(i18nx.KeyAccountNotFound)
	ErrNotASeller           = errorx.NewForbidden().WithKey(i18nx.KeyNotASeller)
	ErrCardAlreadySubmitted = errorx.NewConflict().WithKey(i18nx.KeyCardAlreadySubmitted)
	ErrCardNotSubmitted     = errorx.NewBusinessRuleViolation().WithKey(i18nx.KeyCardNotSubmitted)
	ErrMissingDocument      = errorx.NewValidationFailed().WithKey(i18nx.KeyMissingDocument)
	ErrInvalidDraft         = errorx.NewInvalidRequest()
	ErrMissingReviewer      = errorx.NewInvalidRequest().WithKey(i18nx.KeyMissingReviewer)
)
