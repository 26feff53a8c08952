package fixtures

const (
	ValidBuyerEmail   = "buyer@test.com"
	ValidBuyer2Email  = "buyer2@test.com"
	ValidSellerEmail  = "seller@test.com"
	ValidSeller2Email = "seller2@test.com"
	ValidAdminEmail   = "admin@test.com"
	UnknownEmail      = "nobody@test.com"
	InvalidEmail      = "notanemail"

	ValidPassword   = "Str0ngPassw0rd!"
	ValidPassword2  = "An0therPassw0rd!"
	InvalidPassword = "short"

	WrongCode = "000000"

	ValidNotificationToken = "fcm-token_1234567890:abcdef.XYZ"
	// NotificationTokenKey is a base64 encoded 32 byte key for sealing notification tokens in tests.
	NotificationTokenKey = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="

	AccessTokenSecretKey = "test-access-secret"

	DocumentURL = "http://localhost:9000/souqly/seller_cards/temp/1700000000000-id.pdf"
)

type TestAccount struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

var (
	TestBuyer = TestAccount{
		FirstName: "Mona",
		LastName:  "Hassan",
		Email:     ValidBuyerEmail,
		Password:  ValidPassword,
	}
	TestSeller = TestAccount{
		FirstName: "Omar",
		LastName:  "Said",
		Email:     ValidSellerEmail,
		Password:  ValidPassword,
	}
	TestAdmin = TestAccount{
		FirstName: "Admin",
		LastName:  "Souqly",
		Email:     ValidAdminEmail,
		Password:  ValidPassword,
	}
)
