package role

type Role string

const (
	Buyer  Role = "buyer"
	Seller Role = "seller"
	Admin  Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

func IsValid[T Role | string](r T) bool {
	switch Role(r) {
	case Buyer, Seller, Admin:
		return true
	default:
		return false
	}
}

// IsSelfRegistrable reports whether an account with this role may be created through public signup.
func (r Role) IsSelfRegistrable() bool {
	return r == Buyer || r == Seller
}
