package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for subscriber validation. ErrInvalidName and
// ErrInvalidEmail both wrap ErrValidation, so errors.Is(err, ErrValidation)
// matches any validation failure.
var (
	ErrValidation   = errors.New("invalid subscriber data")
	ErrInvalidName  = fmt.Errorf("%w: name", ErrValidation)
	ErrInvalidEmail = fmt.Errorf("%w: email", ErrValidation)
)
