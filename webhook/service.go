package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marcelsud/wusul-core/signature"
)

// SubscriptionUseCase defines how accounts manage their webhook endpoints
type SubscriptionUseCase interface {
	Register(ctx context.Context, accountID, url string, events []string, secret string) (Subscription, error)
	Unregister(ctx context.Context, accountID, id string) error
	List(ctx context.Context, accountID string) ([]Subscription, error)
}

/* SubscriptionService validates and stores subscriptions
 * Uses pointer semantics as it's an API, not data
 */
type SubscriptionService struct {
	Repo SubscriptionRepository
	Now  func() time.Time
}

// NewSubscriptionService creates a new subscription service with dependency injection
func NewSubscriptionService(repo SubscriptionRepository) *SubscriptionService {
	return &SubscriptionService{
		Repo: repo,
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Register creates an active subscription; an empty secret is generated
func (s *SubscriptionService) Register(ctx context.Context, accountID, url string, events []string, secret string) (Subscription, error) {
	if secret == "" {
		generated, err := signature.GenerateSecret(signature.MinSecretBytes)
		if err != nil {
			return Subscription{}, fmt.Errorf("generating secret: %w", err)
		}
		secret = generated
	}

	sub := Subscription{
		ID:        uuid.NewString(),
		AccountID: accountID,
		URL:       url,
		Secret:    secret,
		Events:    events,
		IsActive:  true,
		CreatedAt: s.Now(),
	}
	if err := sub.Validate(); err != nil {
		return Subscription{}, fmt.Errorf("validating subscription: %w: %w", ErrInvalidSubscription, err)
	}

	if err := s.Repo.Register(ctx, sub); err != nil {
		return Subscription{}, fmt.Errorf("registering subscription: %w", err)
	}
	return sub, nil
}

// Unregister removes one of accountID's subscriptions
func (s *SubscriptionService) Unregister(ctx context.Context, accountID, id string) error {
	if err := s.Repo.Unregister(ctx, accountID, id); err != nil {
		return fmt.Errorf("unregistering subscription: %w", err)
	}
	return nil
}

// List returns accountID's subscriptions
func (s *SubscriptionService) List(ctx context.Context, accountID string) ([]Subscription, error) {
	subs, err := s.Repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}
	return subs, nil
}
