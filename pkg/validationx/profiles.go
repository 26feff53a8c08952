package validationx

import (
	"github.com/ARUMANDESU/validation"
	"github.com/ARUMANDESU/validation/is"
)

const (
	MinNameLen              = 1
	MaxNameLen              = 60
	MinPasswordLen          = 8
	MaxPasswordLen          = 128
	MinNotificationTokenLen = 16
	MaxNotificationTokenLen = 2000
)

var (
	EmailRules = []validation.Rule{
		validation.Required,
		is.Email,
		validation.Length(5, 255),
	}

	NameRules = []validation.Rule{
		validation.Required,
		validation.Length(MinNameLen, MaxNameLen),
		IsPersonName,
	}

	PasswordRules = []validation.Rule{
		validation.Required,
		validation.Length(MinPasswordLen, MaxPasswordLen),
	}

	// RoleRules leaves "admin" to the domain so it surfaces as an invalid role error.
	RoleRules = []validation.Rule{
		validation.In("buyer", "seller", "admin"),
	}

	LanguageRules = []validation.Rule{
		validation.In("en", "ar"),
	}

	PhoneRules = []validation.Rule{
		IsPhone,
	}

	VerificationCodeRules = []validation.Rule{
		validation.Required,
		IsVerificationCode,
	}

	NotificationTokenRules = []validation.Rule{
		validation.Required,
		validation.Length(MinNotificationTokenLen, MaxNotificationTokenLen),
		IsNotificationToken,
	}
)
