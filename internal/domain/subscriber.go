package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus enumerates the states a subscription record can be in.
type SubscriptionStatus string

// StatusPendingConfirmation is the only status the intake pipeline writes.
const StatusPendingConfirmation SubscriptionStatus = "pending_confirmation"

// SubscriptionForm is the raw, untrusted payload of a subscription request.
type SubscriptionForm struct {
	Name  string
	Email string
}

// NewSubscriber is a well-formed subscriber built from a validated name and
// email. The zero value is never returned alongside a nil error.
type NewSubscriber struct {
	name  SubscriberName
	email SubscriberEmail
}

// NewSubscriberFromForm validates the name, then the email, and stops at the
// first failure. The specific reason is discarded: callers only ever see
// ErrValidation.
func NewSubscriberFromForm(form SubscriptionForm) (NewSubscriber, error) {
	name, err := ParseSubscriberName(form.Name)
	if err != nil {
		return NewSubscriber{}, ErrValidation
	}
	email, err := ParseSubscriberEmail(form.Email)
	if err != nil {
		return NewSubscriber{}, ErrValidation
	}
	return NewSubscriber{name: name, email: email}, nil
}

// Name returns the validated name.
func (s NewSubscriber) Name() SubscriberName { return s.name }

// Email returns the validated email.
func (s NewSubscriber) Email() SubscriberEmail { return s.email }

// Subscription is the persisted record of a subscriber.
type Subscription struct {
	ID           uuid.UUID          `json:"id" db:"id"`
	Email        string             `json:"email" db:"email"`
	Name         string             `json:"name" db:"name"`
	SubscribedAt time.Time          `json:"subscribed_at" db:"subscribed_at"`
	Status       SubscriptionStatus `json:"status" db:"status"`
}

// PendingSubscription projects s into a new record awaiting confirmation.
// subscribedAt is normalised to UTC.
func (s NewSubscriber) PendingSubscription(id uuid.UUID, subscribedAt time.Time) *Subscription {
	return &Subscription{
		ID:           id,
		Email:        s.email.String(),
		Name:         s.name.String(),
		SubscribedAt: subscribedAt.UTC(),
		Status:       StatusPendingConfirmation,
	}
}
