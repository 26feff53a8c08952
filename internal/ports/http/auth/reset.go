package authhttp

import (
	"net/http"
	"strings"

	"github.com/ARUMANDESU/validation"

	"gitlab.com/souqly/auth-backend/internal/application/passwordreset/cmd"
	"gitlab.com/souqly/auth-backend/pkg/httpx"
	"gitlab.com/souqly/auth-backend/pkg/logging"
	"gitlab.com/souqly/auth-backend/pkg/otelx"
	"gitlab.com/souqly/auth-backend/pkg/sanitizex"
	"gitlab.com/souqly/auth-backend/pkg/validationx"
)

type ForgetPasswordRequest struct {
	Email string `json:"email"`
}

func (r *ForgetPasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validationx.EmailRules...),
	)
}

// ForgetPassword answers the same way whether or not the email has an account.
func (h *HTTP) ForgetPassword(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ForgetPassword")
	defer span.End()

	var req ForgetPasswordRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to read json")
		return
	}

	req.Email = sanitizex.Email(req.Email)
	otelx.SetSpanAttrs(span, map[string]any{"email": logging.RedactEmail(req.Email)})
	if err := req.Validate(); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to validate request body")
		return
	}

	if err := h.passwordreset.CMD.Request.Handle(ctx, cmd.RequestPasswordReset{Email: req.Email}); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to request password reset")
		return
	}

	httpx.Success(w, r, http.StatusOK, httpx.Envelope{"message": "Password reset code sent to your email."})
}

type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (r *VerifyCodeRequest) Sanitized() {
	r.Email = sanitizex.Email(r.Email)
	r.Code = strings.TrimSpace(r.Code)
}

func (r *VerifyCodeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validationx.EmailRules...),
		validation.Field(&r.Code, validationx.VerificationCodeRules...),
	)
}

func (h *HTTP) VerifyForgotPasswordCode(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "VerifyForgotPasswordCode")
	defer span.End()

	var req VerifyCodeRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to read json")
		return
	}

	req.Sanitized()
	otelx.SetSpanAttrs(span, map[string]any{"email": logging.RedactEmail(req.Email)})
	if err := req.Validate(); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to validate request body")
		return
	}

	err := h.passwordreset.CMD.ConfirmCode.Handle(ctx, cmd.ConfirmPasswordResetCode{Email: req.Email, Code: req.Code})
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to verify reset code")
		return
	}

	httpx.Success(w, r, http.StatusOK, httpx.Envelope{"message": "Code verified successfully"})
}

type ResetPasswordRequest struct {
	Email              string `json:"email"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

func (r *ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validationx.EmailRules...),
		validation.Field(&r.NewPassword, validationx.PasswordRules...),
		validation.Field(&r.ConfirmNewPassword, validation.Required, validationx.EqualTo(r.NewPassword)),
	)
}

func (h *HTTP) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ResetPassword")
	defer span.End()

	var req ResetPasswordRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to read json")
		return
	}

	req.Email = sanitizex.Email(req.Email)
	otelx.SetSpanAttrs(span, map[string]any{"email": logging.RedactEmail(req.Email)})
	if err := req.Validate(); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to validate request body")
		return
	}

	res, err := h.passwordreset.CMD.Complete.Handle(ctx, cmd.CompletePasswordReset{
		Email:       req.Email,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to reset password")
		return
	}

	httpx.Success(w, r, http.StatusOK, httpx.Envelope{
		"message": "Password reset successfully",
		"token":   res.Token,
	})
}
