package http

import (
	"net/http"
	"testing"

	authhttp "gitlab.com/souqly/auth-backend/internal/ports/http/auth"
)

func (h *Helper) Signup(t *testing.T, req SignupRequest) *Response {
	return h.Do(t, Request{
		Method: http.MethodPost,
		Path:   "/api/v1/auth/signup",
		Body:   req,
	})
}

func (h *Helper) SignupMultipart(t *testing.T, form *MultipartFormBuilder) *Response {
	return h.Do(t, NewRequest(http.MethodPost, "/api/v1/auth/signup").WithMultipart(form).Build())
}

func (h *Helper) VerifyEmail(t *testing.T, email, code string) *Response {
	return h.Do(t, Request{
		Method: http.MethodPost,
		Path:   "/api/v1/auth/verifyEmailUser",
		Body:   authhttp.VerifyCodeRequest{Email: email, Code: code},
	})
}

func (h *Helper) Login(t *testing.T, email, password string) *Response {
	return h.Do(t, Request{
		Method: http.MethodPost,
		Path:   "/api/v1/auth/login",
		Body:   authhttp.LoginRequest{Email: email, Password: password},
	})
}

func (h *Helper) ForgetPassword(t *testing.T, email string) *Response {
	return h.Do(t, Request{
		Method: http.MethodPost,
		Path:   "/api/v1/auth/forgetPassword",
		Body:   authhttp.ForgetPasswordRequest{Email: email},
	})
}

func (h *Helper) VerifyForgotPasswordCode(t *testing.T, email, code string) *Response {
	return h.Do(t, Request{
		Method: http.MethodPost,
		Path:   "/api/v1/auth/verifyForgotPasswordCode",
		Body:   authhttp.VerifyCodeRequest{Email: email, Code: code},
	})
}

func (h *Helper) ResetPassword(t *testing.T, email, password, confirm string) *Response {
	return h.Do(t, Request{
		Method: http.MethodPost,
		Path:   "/api/v1/auth/resetPassword",
		Body: authhttp.ResetPasswordRequest{
			Email:              email,
			NewPassword:        password,
			ConfirmNewPassword: confirm,
		},
	})
}

func (h *Helper) UpdateFcmToken(t *testing.T, accessToken, fcmToken string) *Response {
	return h.Do(t, NewRequest(http.MethodPost, "/api/v1/auth/updateFcmToken").
		WithBearer(accessToken).
		WithJSON(authhttp.UpdateFcmTokenRequest{FcmToken: fcmToken}).
		Build())
}

func (h *Helper) GetMe(t *testing.T, accessToken string) *Response {
	return h.Do(t, NewRequest(http.MethodGet, "/api/v1/me").WithBearer(accessToken).Build())
}

func (h *Helper) SubmitVerificationCard(t *testing.T, accessToken string, form *MultipartFormBuilder) *Response {
	return h.Do(t, NewRequest(http.MethodPost, "/api/v1/sellers/me/verification-card").
		WithBearer(accessToken).
		WithMultipart(form).
		Build())
}

func (h *Helper) ApproveVerificationCard(t *testing.T, accessToken, sellerID string) *Response {
	return h.Do(t, NewRequest(http.MethodPost, "/api/v1/admin/sellers/"+sellerID+"/verification-card/approve").
		WithBearer(accessToken).
		Build())
}

func (h *Helper) RejectVerificationCard(t *testing.T, accessToken, sellerID, reason string) *Response {
	return h.Do(t, NewRequest(http.MethodPost, "/api/v1/admin/sellers/"+sellerID+"/verification-card/reject").
		WithBearer(accessToken).
		WithJSON(map[string]string{"reason": reason}).
		Build())
}

// SignupRequest mirrors the JSON signup body. Address is a string for sellers and an object for buyers.
type SignupRequest struct {
	FirstName       string   `json:"firstName"`
	LastName        string   `json:"lastName"`
	Email           string   `json:"email"`
	Password        string   `json:"password"`
	ConfirmPassword string   `json:"confirmPassword"`
	Role            string   `json:"role"`
	PreferredLang   string   `json:"preferredLang,omitempty"`
	PhoneNumber     string   `json:"phoneNumber,omitempty"`
	ShopName        string   `json:"shopName,omitempty"`
	ShopDescription string   `json:"shopDescription,omitempty"`
	Categories      []string `json:"categories,omitempty"`
	Address         any      `json:"address,omitempty"`
	IDType          string   `json:"idType,omitempty"`
	IDNumber        string   `json:"idNumber,omitempty"`
}
