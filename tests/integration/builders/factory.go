package builders

type Factory struct {
	Account *AccountFactory
	JWT     JWTFactory
}

func NewFactory() *Factory {
	return &Factory{
		Account: &AccountFactory{},
		JWT:     JWTFactory{},
	}
}
