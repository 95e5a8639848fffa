package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// MaxNameLength is the maximum number of grapheme clusters in a name.
const MaxNameLength = 256

// forbiddenNameRunes are rejected anywhere in a subscriber name.
const forbiddenNameRunes = `/()"<>\{}`

// SubscriberName is a validated subscriber display name.
type SubscriberName struct {
	value string
}

// ParseSubscriberName validates raw and returns it as a SubscriberName.
//
// A name is rejected when it is empty or whitespace-only, longer than
// MaxNameLength user-perceived characters, or contains any of / ( ) " < > \ { }.
// Input that is not valid UTF-8 is rejected.
func ParseSubscriberName(raw string) (SubscriberName, error) {
	if !utf8.ValidString(raw) {
		return SubscriberName{}, fmt.Errorf("%w: not valid UTF-8", ErrInvalidName)
	}
	if strings.TrimSpace(raw) == "" {
		return SubscriberName{}, fmt.Errorf("%w: empty or whitespace only", ErrInvalidName)
	}
	if n := uniseg.GraphemeClusterCount(raw); n > MaxNameLength {
		return SubscriberName{}, fmt.Errorf("%w: %d characters exceeds limit of %d", ErrInvalidName, n, MaxNameLength)
	}
	if i := strings.IndexAny(raw, forbiddenNameRunes); i >= 0 {
		return SubscriberName{}, fmt.Errorf("%w: forbidden character %q", ErrInvalidName, raw[i])
	}
	return SubscriberName{value: raw}, nil
}

// String returns the name as submitted.
func (n SubscriberName) String() string { return n.value }
