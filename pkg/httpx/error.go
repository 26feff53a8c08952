package httpx

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/ARUMANDESU/validation"
	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"

	authbackend "gitlab.com/souqly/auth-backend"
	"gitlab.com/souqly/auth-backend/pkg/errorx"
	"gitlab.com/souqly/auth-backend/pkg/otelx"
)

var supportedLanguages = []language.Tag{language.English, language.Arabic}

type ErrorHandler struct {
	bundle  *i18n.Bundle
	matcher language.Matcher
}

func NewErrorHandler() (*ErrorHandler, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files := []string{
		"locales/en.toml",
		"locales/ar.toml",
		"locales/validation.en.toml",
		"locales/validation.ar.toml",
	}
	for _, f := range files {
		if _, err := bundle.LoadMessageFileFS(authbackend.Locales, f); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	return &ErrorHandler{
		bundle:  bundle,
		matcher: language.NewMatcher(supportedLanguages),
	}, nil
}

// Localizer picks en or ar from an Accept-Language header value.
func (h *ErrorHandler) Localizer(acceptLanguage string) *i18n.Localizer {
	tags, _, _ := language.ParseAcceptLanguage(acceptLanguage)
	_, idx, _ := h.matcher.Match(tags...)
	return i18n.NewLocalizer(h.bundle, supportedLanguages[idx].String())
}

// HandleError records err on span and writes the localized error envelope.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, span trace.Span, err error, msg string) {
	otelx.RecordSpanError(span, err, msg)

	localizer := h.Localizer(r.Header.Get("Accept-Language"))

	var appErr *errorx.I18nError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatusCode()
		if status >= http.StatusInternalServerError {
			slog.ErrorContext(r.Context(), msg, "error", err)
		} else {
			slog.DebugContext(r.Context(), msg, "error", err)
		}
		writeError(w, r, appErr.Code, appErr.Localize(localizer), status)
		return
	}

	var valErrs validation.Errors
	if errors.As(err, &valErrs) {
		writeError(w, r, errorx.CodeValidationFailed, h.localizeFieldErrors(localizer, valErrs), http.StatusBadRequest)
		return
	}

	var valErr validation.Error
	if errors.As(err, &valErr) {
		writeError(w, r, errorx.CodeValidationFailed, localizeValidation(localizer, valErr), http.StatusBadRequest)
		return
	}

	slog.ErrorContext(r.Context(), msg, "error", err)
	internal := errorx.NewInternalError()
	writeError(w, r, internal.Code, internal.Localize(localizer), internal.HTTPStatusCode())
}

func (h *ErrorHandler) localizeFieldErrors(localizer *i18n.Localizer, errs validation.Errors) string {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var msg strings.Builder
	for i, field := range fields {
		if i > 0 {
			msg.WriteString("; ")
		}
		fieldErr := errs[field]
		var valErr validation.Error
		if errors.As(fieldErr, &valErr) {
			fmt.Fprintf(&msg, "%s: %s", field, localizeValidation(localizer, valErr))
		} else {
			fmt.Fprintf(&msg, "%s: %s", field, fieldErr.Error())
		}
	}
	return msg.String()
}

func localizeValidation(localizer *i18n.Localizer, valErr validation.Error) string {
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    valErr.Code(),
		TemplateData: valErr.Params(),
	})
	if err != nil {
		return valErr.Error()
	}
	return msg
}

func writeError(w http.ResponseWriter, r *http.Request, code errorx.Code, message string, status int) {
	response := Envelope{
		"success": false,
		"code":    code,
		"message": message,
	}

	if err := WriteJSON(w, status, response, nil); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", "error", err)
	}
}
