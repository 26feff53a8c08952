package errorx

import (
	"errors"
	"fmt"
	"maps"
	"net/http"

	"github.com/nicksnyder/go-i18n/v2/i18n"
)

// I18nError is an error carrying a translatable message key and an HTTP status.
// The With* methods return modified copies, so package level sentinels stay untouched.
type I18nError struct {
	cause       error
	MessageKey  string
	MessageArgs map[string]any
	HTTPCode    int
	Code        Code
}

func (e I18nError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("[%s] %s", e.Code, e.MessageKey)
	}

	return fmt.Sprintf("[%s] %s: %s", e.Code, e.MessageKey, e.cause)
}

func (e I18nError) Unwrap() error {
	return e.cause
}

// Is reports whether target is an I18nError with the same code and message key.
func (e *I18nError) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	var t *I18nError
	if !errors.As(target, &t) || t == nil {
		return false
	}
	return e.Code == t.Code && e.MessageKey == t.MessageKey
}

func (e I18nError) Localize(localizer *i18n.Localizer) string {
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    e.MessageKey,
		TemplateData: e.MessageArgs,
	})
	if err != nil {
		return e.MessageKey
	}
	return msg
}

func (e I18nError) HTTPStatusCode() int {
	if e.HTTPCode != 0 {
		return e.HTTPCode
	}

	return HTTPStatusCode(e.Code)
}

func (e I18nError) WithHTTPCode(code int) *I18nError {
	e.HTTPCode = code
	return &e
}

func (e I18nError) WithArgs(args map[string]any) *I18nError {
	merged := make(map[string]any, len(e.MessageArgs)+len(args))
	maps.Copy(merged, e.MessageArgs)
	maps.Copy(merged, args)
	e.MessageArgs = merged
	return &e
}

func (e I18nError) WithCause(cause error) *I18nError {
	e.cause = cause
	return &e
}

func (e I18nError) WithKey(key string) *I18nError {
	e.MessageKey = key
	return &e
}

func (e I18nError) WithCode(code Code) *I18nError {
	e.Code = code
	return &e
}

func New(messageKey string) *I18nError {
	return &I18nError{
		MessageKey: messageKey,
		HTTPCode:   http.StatusInternalServerError,
		Code:       CodeInternal,
	}
}

func HTTPStatusCode(code Code) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalid, CodeValidationFailed, CodeMalformedJSON, CodeEmailTaken, CodeInvalidRole,
		CodeCodeExpired, CodeInvalidCode, CodeNotVerified:
		return http.StatusBadRequest
	case CodeConflict, CodeAlreadyProcessed:
		return http.StatusConflict
	case CodeUnauthorized, CodeInvalidCredentials, CodeTokenExpired:
		return http.StatusUnauthorized
	case CodeForbidden, CodeNotApproved:
		return http.StatusForbidden
	case CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	case CodeBusinessRuleViolation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func IsCode(err error, code Code) bool {
	if err == nil {
		return false
	}

	var i18nErr *I18nError
	if errors.As(err, &i18nErr) {
		return i18nErr.Code == code
	}

	return false
}

func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}

func IsConflict(err error) bool {
	return IsCode(err, CodeConflict)
}

// Client Errors (4xx)
func NewInvalidRequest() *I18nError {
	return &I18nError{
		MessageKey: "invalid",
		Code:       CodeInvalid,
		HTTPCode:   http.StatusBadRequest,
	}
}

func NewValidationFailed() *I18nError {
	return &I18nError{
		MessageKey: "validation_failed",
		Code:       CodeValidationFailed,
		HTTPCode:   http.StatusBadRequest,
	}
}

func NewMalformedJSON() *I18nError {
	return &I18nError{
		MessageKey: "malformed_json",
		Code:       CodeMalformedJSON,
		HTTPCode:   http.StatusBadRequest,
	}
}

func NewUnauthorized() *I18nError {
	return &I18nError{
		MessageKey: "unauthorized",
		Code:       CodeUnauthorized,
		HTTPCode:   http.StatusUnauthorized,
	}
}

func NewInvalidCredentials() *I18nError {
	return &I18nError{
		MessageKey: "invalid_credentials",
		Code:       CodeInvalidCredentials,
		HTTPCode:   http.StatusUnauthorized,
	}
}

func NewTokenExpired() *I18nError {
	return &I18nError{
		MessageKey: "token_expired",
		Code:       CodeTokenExpired,
		HTTPCode:   http.StatusUnauthorized,
	}
}

func NewForbidden() *I18nError {
	return &I18nError{
		MessageKey: "forbidden",
		Code:       CodeForbidden,
		HTTPCode:   http.StatusForbidden,
	}
}

func NewNotApproved() *I18nError {
	return &I18nError{
		MessageKey: "account_not_approved",
		Code:       CodeNotApproved,
		HTTPCode:   http.StatusForbidden,
	}
}

func NewNotFound() *I18nError {
	return &I18nError{
		MessageKey: "not_found",
		Code:       CodeNotFound,
		HTTPCode:   http.StatusNotFound,
	}
}

func NewConflict() *I18nError {
	return &I18nError{
		MessageKey: "conflict",
		Code:       CodeConflict,
		HTTPCode:   http.StatusConflict,
	}
}

func NewEmailTaken() *I18nError {
	return &I18nError{
		MessageKey: "email_already_in_use",
		Code:       CodeEmailTaken,
		HTTPCode:   http.StatusBadRequest,
	}
}

func NewInvalidRole() *I18nError {
	return &I18nError{
		MessageKey: "invalid_role",
		Code:       CodeInvalidRole,
		HTTPCode:   http.StatusBadRequest,
	}
}

func NewCodeExpired() *I18nError {
	return &I18nError{
		MessageKey: "code_expired",
		Code:       CodeCodeExpired,
		HTTPCode:   http.StatusBadRequest,
	}
}

func NewInvalidCode() *I18nError {
	return &I18nError{
		MessageKey: "invalid_code",
		Code:       CodeInvalidCode,
		HTTPCode:   http.StatusBadRequest,
	}
}

func NewNotVerified() *I18nError {
	return &I18nError{
		MessageKey: "reset_not_verified",
		Code:       CodeNotVerified,
		HTTPCode:   http.StatusBadRequest,
	}
}

func NewPayloadTooLarge() *I18nError {
	return &I18nError{
		MessageKey: "payload_too_large",
		Code:       CodePayloadTooLarge,
		HTTPCode:   http.StatusRequestEntityTooLarge,
	}
}

func NewUnsupportedMediaType() *I18nError {
	return &I18nError{
		MessageKey: "unsupported_media_type",
		Code:       CodeUnsupportedMedia,
		HTTPCode:   http.StatusUnsupportedMediaType,
	}
}

// Business Logic Errors
func NewAlreadyProcessed() *I18nError {
	return &I18nError{
		MessageKey: "already_processed",
		Code:       CodeAlreadyProcessed,
		HTTPCode:   http.StatusConflict,
	}
}

func NewBusinessRuleViolation() *I18nError {
	return &I18nError{
		MessageKey: "business_rule_violation",
		Code:       CodeBusinessRuleViolation,
		HTTPCode:   http.StatusUnprocessableEntity,
	}
}

// Server Errors (5xx)
func NewInternalError() *I18nError {
	return &I18nError{
		MessageKey: "internal_error",
		Code:       CodeInternal,
		HTTPCode:   http.StatusInternalServerError,
	}
}

func NewDependencyFailure() *I18nError {
	return &I18nError{
		MessageKey: "dependency_failure",
		Code:       CodeDependencyFailure,
		HTTPCode:   http.StatusInternalServerError,
	}
}
