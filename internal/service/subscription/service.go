package subscription

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/ignite/newsletter/internal/pkg/metrics"
	"github.com/ignite/newsletter/internal/service/sending"
	"github.com/rs/zerolog"
)

// Service runs the intake pipeline. It is safe for concurrent use.
type Service struct {
	repo      Repository
	sender    sending.Sender
	link      string
	templates *confirmationTemplates
	now       func() time.Time
	newID     func() uuid.UUID
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the source of subscribed_at timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides subscription id generation.
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService creates a subscription service. Every confirmation email links
// to {baseURL}/subscriptions/confirm.
func NewService(repo Repository, sender sending.Sender, baseURL string, opts ...Option) (*Service, error) {
	link, err := url.JoinPath(baseURL, "subscriptions", "confirm")
	if err != nil {
		return nil, fmt.Errorf("application base_url: %w", err)
	}
	templates, err := newConfirmationTemplates()
	if err != nil {
		return nil, err
	}

	s := &Service{
		repo:      repo,
		sender:    sender,
		link:      link,
		templates: templates,
		now:       time.Now,
		newID:     uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ConfirmationLink returns the link embedded in every welcome email.
func (s *Service) ConfirmationLink() string { return s.link }

// Subscribe validates form, stores a pending subscription and sends the
// welcome email. It returns domain.ErrValidation for bad input and an error
// wrapping ErrStorage when the record could not be written. Email delivery
// failures never surface.
func (s *Service) Subscribe(ctx context.Context, form domain.SubscriptionForm) error {
	log := zerolog.Ctx(ctx).With().Str("component", "subscription").Logger()
	log.Debug().Str("state", "received").Msg("subscription request")

	subscriber, err := domain.NewSubscriberFromForm(form)
	if err != nil {
		metrics.RecordSubscription(metrics.OutcomeInvalid)
		log.Info().Str("state", "rejected").Msg("invalid subscriber data")
		return err
	}
	email := logger.RedactEmail(subscriber.Email().String())
	log.Debug().Str("state", "validated").Str("email", email).Msg("subscriber validated")

	record := subscriber.PendingSubscription(s.newID(), s.now())
	if err := s.repo.Insert(ctx, record); err != nil {
		metrics.RecordSubscription(metrics.OutcomeStorageError)
		log.Error().Err(err).Str("state", "failed").Str("email", email).Msg("failed to save subscription")
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	metrics.RecordSubscription(metrics.OutcomeAccepted)
	log.Info().Str("state", "persisted").Str("subscription_id", record.ID.String()).Str("email", email).Msg("subscription saved")

	s.sendConfirmation(ctx, &log, subscriber.Email())
	log.Debug().Str("state", "email_attempted").Str("subscription_id", record.ID.String()).Msg("subscription request handled")
	return nil
}

func (s *Service) sendConfirmation(ctx context.Context, log *zerolog.Logger, to domain.SubscriberEmail) {
	html, text, err := s.templates.render(s.link)
	if err != nil {
		metrics.RecordConfirmationEmail(metrics.OutcomeFailed)
		log.Error().Err(err).Msg("failed to render confirmation email")
		return
	}

	msg := &domain.EmailMessage{
		To:       to,
		Subject:  confirmationSubject,
		HTMLBody: html,
		TextBody: text,
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		metrics.RecordConfirmationEmail(metrics.OutcomeFailed)
		log.Warn().Err(err).Str("email", logger.RedactEmail(to.String())).Msg("failed to send confirmation email")
		return
	}
	metrics.RecordConfirmationEmail(metrics.OutcomeSent)
}
