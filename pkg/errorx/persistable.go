package errorx

import (
	"errors"
)

// Persistable marks a domain error whose aggregate changes must still be committed,
// e.g. an expired code whose record is discarded while the caller gets the error.
type Persistable struct {
	Err error
}

func (e *Persistable) Error() string { return e.Err.Error() }
func (e *Persistable) Unwrap() error { return e.Err }

func NewPersistable(err error) error {
	if err == nil {
		return nil
	}
	return &Persistable{Err: err}
}

func IsPersistable(err error) bool {
	if err == nil {
		return false
	}

	var persistable *Persistable
	return errors.As(err, &persistable)
}
