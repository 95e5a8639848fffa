package subscription

import "errors"

// Sentinel errors for the subscription service layer.
var (
	ErrStorage = errors.New("subscription storage failed")
)
