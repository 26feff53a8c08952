package errorx

type Code string

func (c Code) String() string {
	return string(c)
}

const (
	// Client errors (4xx)
	CodeInvalid            Code = "INVALID"
	CodeValidationFailed   Code = "VALIDATION_FAILED"
	CodeMalformedJSON      Code = "MALFORMED_JSON"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeTokenExpired       Code = "TOKEN_EXPIRED"
	CodeForbidden          Code = "FORBIDDEN"
	CodeNotApproved        Code = "NOT_APPROVED"
	CodeNotFound           Code = "NOT_FOUND"
	CodeConflict           Code = "CONFLICT"
	CodeEmailTaken         Code = "EMAIL_TAKEN"
	CodeInvalidRole        Code = "INVALID_ROLE"
	CodeCodeExpired        Code = "CODE_EXPIRED"
	CodeInvalidCode        Code = "INVALID_CODE"
	CodeNotVerified        Code = "NOT_VERIFIED"
	CodePayloadTooLarge    Code = "PAYLOAD_TOO_LARGE"
	CodeUnsupportedMedia   Code = "UNSUPPORTED_MEDIA_TYPE"

	// Business logic
	CodeAlreadyProcessed      Code = "ALREADY_PROCESSED"
	CodeBusinessRuleViolation Code = "BUSINESS_RULE_VIOLATION"

	// Server errors (5xx)
	CodeInternal          Code = "INTERNAL_ERROR"
	CodeDependencyFailure Code = "DEPENDENCY_FAILURE"
)
