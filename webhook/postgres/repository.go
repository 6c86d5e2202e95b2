package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/marcelsud/wusul-core/webhook"
)

/* PostgreSQL implementation of webhook.SubscriptionRepository
 * Event filters are stored as a TEXT[] and matched in Go so wildcards work
 */

const columns = "id, account_id, url, secret, events, is_active, created_at"

type Repository struct {
	DB *sql.DB
}

// NewRepository creates a repository with the default pool (25, 5, 5 min)
func NewRepository(connectionString string) (*Repository, error) {
	return NewRepositoryWithPoolConfig(connectionString, 25, 5, 5)
}

// NewRepositoryWithPoolConfig creates a repository with a custom pool
func NewRepositoryWithPoolConfig(connectionString string, maxOpenConns, maxIdleConns, maxLifeMinutes int) (*Repository, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if maxIdleConns > 0 {
		db.SetMaxIdleConns(maxIdleConns)
	}
	if maxLifeMinutes > 0 {
		db.SetConnMaxLifetime(time.Duration(maxLifeMinutes) * time.Minute)
	}

	return &Repository{DB: db}, nil
}

// FindActive returns the active subscriptions of accountID that listen for eventType
func (r *Repository) FindActive(ctx context.Context, accountID, eventType string) ([]webhook.Subscription, error) {
	query := `SELECT ` + columns + `
		FROM webhook_subscriptions
		WHERE account_id = $1 AND is_active = TRUE
		ORDER BY created_at`

	subs, err := r.query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}

	matching := make([]webhook.Subscription, 0, len(subs))
	for _, s := range subs {
		if s.Listens(eventType) {
			matching = append(matching, s)
		}
	}
	return matching, nil
}

// GetSubscription retrieves a subscription by ID
func (r *Repository) GetSubscription(ctx context.Context, id string) (webhook.Subscription, error) {
	query := `SELECT ` + columns + `
		FROM webhook_subscriptions
		WHERE id = $1`

	s, err := scan(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return webhook.Subscription{}, fmt.Errorf("subscription %s: %w", id, webhook.ErrNotFound)
	}
	if err != nil {
		return webhook.Subscription{}, fmt.Errorf("selecting subscription: %w", err)
	}
	return s, nil
}

// ListByAccount returns every subscription of accountID, newest first
func (r *Repository) ListByAccount(ctx context.Context, accountID string) ([]webhook.Subscription, error) {
	query := `SELECT ` + columns + `
		FROM webhook_subscriptions
		WHERE account_id = $1
		ORDER BY created_at DESC`

	return r.query(ctx, query, accountID)
}

// Register stores a new subscription
func (r *Repository) Register(ctx context.Context, s webhook.Subscription) error {
	query := `INSERT INTO webhook_subscriptions (` + columns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.DB.ExecContext(ctx, query, s.ID, s.AccountID, s.URL, s.Secret, pq.Array(s.Events), s.IsActive, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting subscription: %w", err)
	}
	return nil
}

// Unregister deletes a subscription owned by accountID
func (r *Repository) Unregister(ctx context.Context, accountID, id string) error {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM webhook_subscriptions WHERE id = $1 AND account_id = $2", id, accountID)
	if err != nil {
		return fmt.Errorf("deleting subscription: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("subscription %s: %w", id, webhook.ErrNotFound)
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close(ctx context.Context) error {
	if r.DB != nil {
		return r.DB.Close()
	}
	return nil
}

// CreateTable creates the webhook_subscriptions table
func (r *Repository) CreateTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS webhook_subscriptions (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			url TEXT NOT NULL,
			secret TEXT NOT NULL,
			events TEXT[] NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_webhook_subscriptions_account ON webhook_subscriptions(account_id)
	`

	_, err := r.DB.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("creating table: %w", err)
	}
	return nil
}

func (r *Repository) query(ctx context.Context, query string, args ...any) ([]webhook.Subscription, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("selecting subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []webhook.Subscription{}
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning subscription: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating subscriptions: %w", err)
	}
	return subs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (webhook.Subscription, error) {
	var s webhook.Subscription
	err := row.Scan(&s.ID, &s.AccountID, &s.URL, &s.Secret, pq.Array(&s.Events), &s.IsActive, &s.CreatedAt)
	return s, err
}

var _ webhook.SubscriptionRepository = (*Repository)(nil)
