package domain

import (
	"fmt"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// emailRules is the validator tag applied to every raw address.
const emailRules = "required,email"

// validate is safe for concurrent use and caches its parsed rules.
var validate = validator.New()

// SubscriberEmail is a syntactically valid email address.
type SubscriberEmail struct {
	value string
}

// ParseSubscriberEmail validates raw against the local-part@domain address
// grammar. The empty string is rejected.
func ParseSubscriberEmail(raw string) (SubscriberEmail, error) {
	if !utf8.ValidString(raw) {
		return SubscriberEmail{}, fmt.Errorf("%w: not valid UTF-8", ErrInvalidEmail)
	}
	if err := validate.Var(raw, emailRules); err != nil {
		return SubscriberEmail{}, fmt.Errorf("%w: not a valid address", ErrInvalidEmail)
	}
	return SubscriberEmail{value: raw}, nil
}

// String returns the address.
func (e SubscriberEmail) String() string { return e.value }
