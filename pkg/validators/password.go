package validators

import "errors"

var (
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong  = errors.New("password is too long")
	ErrPasswordEmpty    = errors.New("no password provided")
	ErrPasswordMismatch = errors.New("password and confirm password do not match")
)

func PasswordValidator(p string) error {
	if p == "" {
		return ErrPasswordEmpty
	}

	if len(p) < 8 {
		return ErrPasswordTooShort
	}

	if len(p) > 255 {
		return ErrPasswordTooLong
	}

	return nil
}

// PasswordPairValidator validates a password together with its
// confirmation field. The confirmation is transient, it is never stored.
func PasswordPairValidator(password, confirm string) error {
	if err := PasswordValidator(password); err != nil {
		return err
	}

	if password != confirm {
		return ErrPasswordMismatch
	}

	return nil
}
