package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/newsletter/internal/domain"
)

// SubscriptionRepo implements subscription.Repository against PostgreSQL.
type SubscriptionRepo struct{ db *sql.DB }

// NewSubscriptionRepo creates a Postgres-backed subscription repository.
func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{db: db} }

// Insert writes a single subscription row. There is no uniqueness check on
// email; resubmitting the same address creates another row.
func (r *SubscriptionRepo) Insert(ctx context.Context, s *domain.Subscription) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subscriptions (id, email, name, subscribed_at, status)
		VALUES ($1, $2, $3, $4, $5)
	`, s.ID.String(), s.Email, s.Name, s.SubscribedAt, string(s.Status))
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}
