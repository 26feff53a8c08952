package authhttp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/ARUMANDESU/validation"
	"github.com/ARUMANDESU/validation/is"

	"gitlab.com/souqly/auth-backend/internal/application/account/query"
	"gitlab.com/souqly/auth-backend/internal/application/registration/cmd"
	"gitlab.com/souqly/auth-backend/internal/adapters/services/s3"
	"gitlab.com/souqly/auth-backend/internal/domain/account"
	"gitlab.com/souqly/auth-backend/internal/domain/valueobject/role"
	"gitlab.com/souqly/auth-backend/pkg/errorx"
	"gitlab.com/souqly/auth-backend/pkg/httpx"
	"gitlab.com/souqly/auth-backend/pkg/logging"
	"gitlab.com/souqly/auth-backend/pkg/otelx"
	"gitlab.com/souqly/auth-backend/pkg/sanitizex"
	"gitlab.com/souqly/auth-backend/pkg/validationx"
)

const (
	DocumentField = "verificationDocument"
	// maxMultipartSize leaves room for the text fields next to a full size document.
	maxMultipartSize = s3.MaxDocumentSize + 1<<20
	maxCategories    = 20
)

type AddressRequest struct {
	Country    string `json:"country"`
	City       string `json:"city"`
	Street     string `json:"street"`
	Building   string `json:"building"`
	Floor      string `json:"floor"`
	Apartment  string `json:"apartment"`
	PostalCode string `json:"postalCode"`
}

func (a *AddressRequest) Sanitized() {
	a.Country = sanitizex.CleanSingleLine(a.Country)
	a.City = sanitizex.CleanSingleLine(a.City)
	a.Street = sanitizex.CleanSingleLine(a.Street)
	a.Building = sanitizex.CleanSingleLine(a.Building)
	a.Floor = sanitizex.CleanSingleLine(a.Floor)
	a.Apartment = sanitizex.CleanSingleLine(a.Apartment)
	a.PostalCode = sanitizex.CleanSingleLine(a.PostalCode)
}

func (a AddressRequest) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Country, validation.Length(0, 100)),
		validation.Field(&a.City, validation.Length(0, 100)),
		validation.Field(&a.Street, validation.Length(0, 200)),
		validation.Field(&a.Building, validation.Length(0, 50)),
		validation.Field(&a.Floor, validation.Length(0, 20)),
		validation.Field(&a.Apartment, validation.Length(0, 20)),
		validation.Field(&a.PostalCode, validation.Length(0, 20)),
	)
}

// SignupAddress accepts either a single line (a seller's shop address) or an object
// (a buyer's shipping address).
type SignupAddress struct {
	Line  string
	Buyer *AddressRequest
}

func (a *SignupAddress) UnmarshalJSON(data []byte) error {
	switch {
	case string(data) == "null":
		return nil
	case len(data) > 0 && data[0] == '"':
		return json.Unmarshal(data, &a.Line)
	}
	var ar AddressRequest
	if err := json.Unmarshal(data, &ar); err != nil {
		return err
	}
	a.Buyer = &ar
	return nil
}

type SignupRequest struct {
	FirstName       string        `json:"firstName"`
	LastName        string        `json:"lastName"`
	Email           string        `json:"email"`
	Password        string        `json:"password"`
	ConfirmPassword string        `json:"confirmPassword"`
	Role            string        `json:"role"`
	PreferredLang   string        `json:"preferredLang"`
	PhoneNumber     string        `json:"phoneNumber"`
	ShopName        string        `json:"shopName"`
	ShopDescription string        `json:"shopDescription"`
	Logo            string        `json:"logo"`
	CoverImage      string        `json:"coverImage"`
	Categories      []string      `json:"categories"`
	Address         SignupAddress `json:"address"`
	IDType          string        `json:"idType"`
	IDNumber        string        `json:"idNumber"`
}

func (r *SignupRequest) Sanitized() {
	r.FirstName = sanitizex.CleanSingleLine(r.FirstName)
	r.LastName = sanitizex.CleanSingleLine(r.LastName)
	r.Email = sanitizex.Email(r.Email)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	r.PreferredLang = strings.ToLower(strings.TrimSpace(r.PreferredLang))
	r.PhoneNumber = sanitizex.CleanSingleLine(r.PhoneNumber)
	r.ShopName = sanitizex.CleanSingleLine(r.ShopName)
	r.ShopDescription = sanitizex.CleanMultiline(r.ShopDescription)
	r.Logo = strings.TrimSpace(r.Logo)
	r.CoverImage = strings.TrimSpace(r.CoverImage)
	for i := range r.Categories {
		r.Categories[i] = sanitizex.CleanSingleLine(r.Categories[i])
	}
	r.Address.Line = sanitizex.CleanSingleLine(r.Address.Line)
	if r.Address.Buyer != nil {
		r.Address.Buyer.Sanitized()
	}
	r.IDType = sanitizex.CleanSingleLine(r.IDType)
	r.IDNumber = sanitizex.CleanSingleLine(r.IDNumber)
}

func (r *SignupRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.FirstName, validationx.NameRules...),
		validation.Field(&r.LastName, validationx.NameRules...),
		validation.Field(&r.Email, validationx.EmailRules...),
		validation.Field(&r.Password, validationx.PasswordRules...),
		validation.Field(&r.ConfirmPassword, validation.Required, validationx.EqualTo(r.Password)),
		validation.Field(&r.Role, validationx.RoleRules...),
		validation.Field(&r.PreferredLang, validationx.LanguageRules...),
		validation.Field(&r.PhoneNumber, validationx.PhoneRules...),
		validation.Field(&r.ShopName, validation.Length(0, 100)),
		validation.Field(&r.ShopDescription, validation.Length(0, 2000)),
		validation.Field(&r.Logo, is.URL),
		validation.Field(&r.CoverImage, is.URL),
		validation.Field(&r.Categories,
			validation.Length(0, maxCategories),
			validation.Each(validation.Required, validation.Length(1, 60)),
		),
		validation.Field(&r.IDType, validation.Length(0, 50)),
		validation.Field(&r.IDNumber, validation.Length(0, 100)),
	)
	if err != nil {
		return err
	}
	if r.Address.Buyer != nil {
		return validation.Errors{"address": r.Address.Buyer.Validate()}.Filter()
	}
	return nil
}

func (r *SignupRequest) command(documentURL string) cmd.RequestEmailVerification {
	c := cmd.RequestEmailVerification{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		Password:    r.Password,
		Role:        r.Role,
		Language:    r.PreferredLang,
		PhoneNumber: r.PhoneNumber,
		Seller: account.SellerDraftArgs{
			ShopName:        r.ShopName,
			ShopDescription: r.ShopDescription,
			LogoURL:         r.Logo,
			CoverImageURL:   r.CoverImage,
			Categories:      r.Categories,
			Address:         r.Address.Line,
			IDType:          r.IDType,
			IDNumber:        r.IDNumber,
		},
		DocumentURL: documentURL,
	}
	if b := r.Address.Buyer; b != nil {
		c.Address = &account.Address{
			Country:    b.Country,
			City:       b.City,
			Street:     b.Street,
			Building:   b.Building,
			Floor:      b.Floor,
			Apartment:  b.Apartment,
			PostalCode: b.PostalCode,
		}
	}
	return c
}

type uploadedFile struct {
	file   multipart.File
	header *multipart.FileHeader
}

// Signup takes either a JSON body or a multipart form. In the multipart form a seller may attach
// an identity document under DocumentField; it is stored before the pending signup is created
// and removed again if the signup fails.
func (h *HTTP) Signup(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Signup")
	defer span.End()

	req, doc, err := h.readSignup(w, r)
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to read signup request")
		return
	}
	if doc != nil {
		defer doc.file.Close()
	}

	req.Sanitized()
	otelx.SetSpanAttrs(span, map[string]any{
		"email":        logging.RedactEmail(req.Email),
		"role":         req.Role,
		"has_document": doc != nil,
	})
	if err := req.Validate(); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to validate request body")
		return
	}

	var documentURL string
	if doc != nil && role.Role(req.Role) == role.Seller {
		documentURL, err = h.documents.UploadSellerDocument(ctx, "", s3.Document{
			Name:        doc.header.Filename,
			ContentType: doc.header.Header.Get("Content-Type"),
			Body:        doc.file,
		})
		if err != nil {
			h.errhandler.HandleError(w, r, span, err, "failed to upload verification document")
			return
		}
	}

	if err := h.registration.CMD.RequestEmailVerification.Handle(ctx, req.command(documentURL)); err != nil {
		if documentURL != "" {
			h.discardDocument(ctx, documentURL)
		}
		h.errhandler.HandleError(w, r, span, err, "failed to request email verification")
		return
	}

	httpx.Success(w, r, http.StatusOK, httpx.Envelope{"message": "Verification code sent to your email."})
}

func (h *HTTP) discardDocument(ctx context.Context, url string) {
	if err := h.documents.DeleteDocument(context.WithoutCancel(ctx), url); err != nil {
		h.logger.WarnContext(ctx, "failed to remove uploaded document after failed signup",
			slog.String("url", url), slog.Any("error", err))
	}
}

func (h *HTTP) readSignup(w http.ResponseWriter, r *http.Request) (*SignupRequest, *uploadedFile, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req SignupRequest
		if err := httpx.ReadJSON(w, r, &req); err != nil {
			return nil, nil, err
		}
		return &req, nil, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartSize)
	if err := r.ParseMultipartForm(maxMultipartSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, nil, s3.ErrDocumentTooLarge.WithCause(err)
		}
		return nil, nil, errorx.NewInvalidRequest().WithCause(err)
	}

	form := r.MultipartForm.Value
	value := func(key string) string {
		if v := form[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	req := &SignupRequest{
		FirstName:       value("firstName"),
		LastName:        value("lastName"),
		Email:           value("email"),
		Password:        value("password"),
		ConfirmPassword: value("confirmPassword"),
		Role:            value("role"),
		PreferredLang:   value("preferredLang"),
		PhoneNumber:     value("phoneNumber"),
		ShopName:        value("shopName"),
		ShopDescription: value("shopDescription"),
		Logo:            value("logo"),
		CoverImage:      value("coverImage"),
		Categories:      form["categories"],
		Address:         SignupAddress{Line: value("address")},
		IDType:          value("idType"),
		IDNumber:        value("idNumber"),
	}

	file, header, err := r.FormFile(DocumentField)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return req, nil, nil
	case err != nil:
		return nil, nil, errorx.NewInvalidRequest().WithCause(err)
	}
	return req, &uploadedFile{file: file, header: header}, nil
}

type VerifyEmailRequest = VerifyCodeRequest

// VerifyEmail creates the account. Sellers waiting for card approval get no token.
func (h *HTTP) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "VerifyEmail")
	defer span.End()

	var req VerifyEmailRequest
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

	res, err := h.registration.CMD.ConfirmEmailVerification.Handle(ctx, cmd.ConfirmEmailVerification{
		Email: req.Email,
		Code:  req.Code,
	})
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to confirm email verification")
		return
	}

	if res.PendingApproval {
		httpx.Success(w, r, http.StatusCreated, httpx.Envelope{
			"message":         "Email verified successfully. Your account is pending approval.",
			"pendingApproval": true,
		})
		return
	}

	httpx.Success(w, r, http.StatusCreated, httpx.Envelope{
		"message": "Email verified successfully",
		"token":   res.Token,
		"user":    query.NewAccountView(res.Account),
	})
}
