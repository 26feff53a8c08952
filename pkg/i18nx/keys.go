package i18nx

// Message keys shared by errorx constructors, domain errors and the locale catalogs.
const (
	KeyInvalid               = "invalid"
	KeyValidationFailed      = "validation_failed"
	KeyMalformedJSON         = "malformed_json"
	KeyUnauthorized          = "unauthorized"
	KeyInvalidCredentials    = "invalid_credentials"
	KeyTokenExpired          = "token_expired"
	KeyForbidden             = "forbidden"
	KeyAccountNotApproved    = "account_not_approved"
	KeyNotFound              = "not_found"
	KeyConflict              = "conflict"
	KeyEmailAlreadyInUse     = "email_already_in_use"
	KeyInvalidRole           = "invalid_role"
	KeyCodeExpired           = "code_expired"
	KeyInvalidCode           = "invalid_code"
	KeyResetNotVerified      = "reset_not_verified"
	KeyPayloadTooLarge       = "payload_too_large"
	KeyUnsupportedMediaType  = "unsupported_media_type"
	KeyAlreadyProcessed      = "already_processed"
	KeyBusinessRuleViolation = "business_rule_violation"
	KeyInternalError         = "internal_error"
	KeyDependencyFailure     = "dependency_failure"

	KeyVerificationNotFound = "verification_not_found"
	KeyResetNotFound        = "reset_not_found"
	KeyInvalidResetCode     = "invalid_reset_code"
	KeyResetExpired         = "reset_expired"
	KeyAccountNotFound      = "account_not_found"
	KeyMailDispatchFailed   = "mail_dispatch_failed"
	KeyUploadFailed         = "upload_failed"
	KeyNotASeller           = "not_a_seller"
	KeyCardAlreadySubmitted = "card_already_submitted"
	KeyCardNotSubmitted     = "card_not_submitted"
	KeyMissingDocument      = "missing_document"
	KeyMissingReviewer      = "missing_reviewer"
)
