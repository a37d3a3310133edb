package identity

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// signUpFieldErrors lists the error reported for each failing field, in the
// order they are checked.
var signUpFieldErrors = []struct {
	field string
	err   error
}{
	{"Email", ErrInvalidEmail},
	{"Password", ErrWeakPassword},
	{"DisplayName", ErrInvalidName},
}

// Normalize trims the email and name and lower-cases the email.
func (in *SignUpInput) Normalize() {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.DisplayName = strings.TrimSpace(in.DisplayName)
}

// Validate normalizes the input and reports the first failing field.
func (in *SignUpInput) Validate() error {
	in.Normalize()
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	failed := make(map[string]bool, len(verrs))
	for _, v := range verrs {
		failed[v.StructField()] = true
	}
	for _, fe := range signUpFieldErrors {
		if failed[fe.field] {
			return fe.err
		}
	}
	return ErrInvalidCredentials
}
