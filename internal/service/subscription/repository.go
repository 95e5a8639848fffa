package subscription

import (
	"context"

	"github.com/ignite/newsletter/internal/domain"
)

// Repository defines the data access contract for subscriptions.
type Repository interface {
	// Insert stores a new subscription record. Duplicate emails are allowed.
	Insert(ctx context.Context, s *domain.Subscription) error
}
