// Package sending defines the contract for delivering a single email.
//
// Each transport (plain HTTP email API, SES, Mailgun, SparkPost) implements
// Sender in internal/delivery. The subscription service depends only on
// this interface.
package sending

import (
	"context"
	"errors"

	"github.com/ignite/newsletter/internal/domain"
)

// Sentinel errors returned by Sender implementations.
var (
	// ErrTransport wraps any failure to hand a message to the provider.
	ErrTransport = errors.New("email transport failed")
	// ErrNotConfigured is returned when a sender lacks credentials.
	ErrNotConfigured = errors.New("email sender not configured")
)

// Sender sends a single email. Implementations must be safe for concurrent
// use and must not retry.
type Sender interface {
	Send(ctx context.Context, msg *domain.EmailMessage) error
}
