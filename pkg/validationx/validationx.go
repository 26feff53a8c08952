package validationx

import (
	"errors"
	"regexp"
	"testing"

	"github.com/ARUMANDESU/validation"
)

var (
	ErrInvalidNameFormat = validation.NewError(
		"validation_is_name",
		"must contain only letters, spaces, hyphens, apostrophes and periods",
	)
	ErrInvalidCodeFormat = validation.NewError(
		"validation_is_verification_code",
		"must be a 6 digit code",
	)
	ErrInvalidNotificationToken = validation.NewError(
		"validation_is_notification_token",
		"FCM token is invalid",
	)
	ErrInvalidPhone = validation.NewError(
		"validation_is_phone",
		"must be a valid phone number",
	)
	ErrPasswordMismatch = validation.NewError(
		"validation_password_mismatch",
		"passwords do not match",
	)
)

var (
	nameRegex              = regexp.MustCompile(`^[\p{L}\p{M}\s'\-\.]+$`)
	codeRegex              = regexp.MustCompile(`^[0-9]{6}$`)
	notificationTokenRegex = regexp.MustCompile(`^[A-Za-z0-9\-_:.]+$`)
	phoneRegex             = regexp.MustCompile(`^\+?[0-9][0-9 \-()]{5,19}$`)
)

// IsPersonName accepts Unicode letters with spaces, hyphens, apostrophes and periods.
// Empty values pass; combine with Required.
var IsPersonName = matchOrEmpty(nameRegex, ErrInvalidNameFormat)

var IsVerificationCode = matchOrEmpty(codeRegex, ErrInvalidCodeFormat)

var IsNotificationToken = matchOrEmpty(notificationTokenRegex, ErrInvalidNotificationToken)

var IsPhone = matchOrEmpty(phoneRegex, ErrInvalidPhone)

func matchOrEmpty(re *regexp.Regexp, verr validation.Error) validation.Rule {
	return validation.By(func(value any) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		if !re.MatchString(s) {
			return verr
		}
		return nil
	})
}

// EqualTo fails with ErrPasswordMismatch when the value differs from other.
func EqualTo(other string) validation.Rule {
	return validation.By(func(value any) error {
		s, _ := value.(string)
		if s != other {
			return ErrPasswordMismatch
		}
		return nil
	})
}

// AssertValidationError checks that err carries a validation error with expected's code.
func AssertValidationError(t *testing.T, err error, expected validation.Error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %v, got nil", expected)
	}

	var verr validation.Error
	if !errors.As(err, &verr) {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			for _, fieldErr := range verrs {
				if errors.As(fieldErr, &verr) && verr.Code() == expected.Code() {
					return
				}
			}
		}
		t.Fatalf("expected validation error %q, got %T: %v", expected.Code(), err, err)
	}

	if verr.Code() != expected.Code() {
		t.Errorf("expected validation error code %q, got %q", expected.Code(), verr.Code())
	}
}
