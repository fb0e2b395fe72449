package validators

import (
	"errors"
	"regexp"
)

var (
	ErrNameEmpty    = errors.New("no name provided")
	ErrNameTooShort = errors.New("a name must be at least 2 characters long")
	ErrNameInvalid  = errors.New("name should only contain alphabetic characters")

	nameRe = regexp.MustCompile(`^[a-zA-Z\s]+$`)
)

func NameValidator(n string) error {
	if n == "" {
		return ErrNameEmpty
	}

	if len(n) < 2 {
		return ErrNameTooShort
	}

	if !nameRe.MatchString(n) {
		return ErrNameInvalid
	}

	return nil
}
