package subscriptions

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/marcelsud/wusul-core/webhook"
	"gopkg.in/yaml.v3"
)

/* Loader serves subscriptions declared in subscriptions.yaml
 * Provides in-memory lookup for fast access; it is read-only,
 * registration through the API needs the PostgreSQL store
 */

// Config represents the structure of subscriptions.yaml
type Config struct {
	Subscriptions []SubscriptionConfig `yaml:"subscriptions"`
}

// SubscriptionConfig represents a single subscription in the YAML file
type SubscriptionConfig struct {
	ID        string   `yaml:"id"`
	AccountID string   `yaml:"account_id"`
	URL       string   `yaml:"url"`
	Secret    string   `yaml:"secret"`
	SecretEnv string   `yaml:"secret_env"` // Environment variable holding the secret
	Events    []string `yaml:"events"`
	Active    *bool    `yaml:"active"` // Default: true
}

// Loader holds the loaded subscriptions
type Loader struct {
	mu   sync.RWMutex
	subs map[string]webhook.Subscription
}

// NewLoader creates a new subscription loader
func NewLoader() *Loader {
	return &Loader{
		subs: make(map[string]webhook.Subscription),
	}
}

// Load reads and parses the subscriptions file, replacing what was loaded before
func (l *Loader) Load(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading subscriptions file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("parsing subscriptions YAML: %w", err)
	}

	loaded := make(map[string]webhook.Subscription, len(config.Subscriptions))
	loadedAt := time.Now().UTC()
	for i, sc := range config.Subscriptions {
		sub, err := sc.toSubscription(loadedAt)
		if err != nil {
			return fmt.Errorf("subscription %d: %w", i+1, err)
		}
		if _, dup := loaded[sub.ID]; dup {
			return fmt.Errorf("duplicate subscription id: %s", sub.ID)
		}
		loaded[sub.ID] = sub
	}

	l.mu.Lock()
	l.subs = loaded
	l.mu.Unlock()

	return nil
}

func (sc SubscriptionConfig) toSubscription(loadedAt time.Time) (webhook.Subscription, error) {
	if sc.ID == "" {
		return webhook.Subscription{}, fmt.Errorf("id cannot be empty")
	}

	secret := sc.Secret
	if sc.SecretEnv != "" {
		if secret != "" {
			return webhook.Subscription{}, fmt.Errorf("secret and secret_env are exclusive for %s", sc.ID)
		}
		secret = os.Getenv(sc.SecretEnv)
		if secret == "" {
			return webhook.Subscription{}, fmt.Errorf("environment variable %s is empty for %s", sc.SecretEnv, sc.ID)
		}
	}

	active := true
	if sc.Active != nil {
		active = *sc.Active
	}

	sub := webhook.Subscription{
		ID:        sc.ID,
		AccountID: sc.AccountID,
		URL:       sc.URL,
		Secret:    secret,
		Events:    sc.Events,
		IsActive:  active,
		CreatedAt: loadedAt,
	}
	if err := sub.Validate(); err != nil {
		return webhook.Subscription{}, fmt.Errorf("validating %s: %w", sc.ID, err)
	}
	return sub, nil
}

// FindActive returns the active subscriptions of accountID that listen for eventType
func (l *Loader) FindActive(ctx context.Context, accountID, eventType string) ([]webhook.Subscription, error) {
	var matching []webhook.Subscription
	for _, sub := range l.List() {
		if sub.AccountID == accountID && sub.Listens(eventType) {
			matching = append(matching, sub)
		}
	}
	return matching, nil
}

// GetSubscription retrieves a subscription by its ID
func (l *Loader) GetSubscription(ctx context.Context, id string) (webhook.Subscription, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	sub, exists := l.subs[id]
	if !exists {
		return webhook.Subscription{}, fmt.Errorf("subscription %s: %w", id, webhook.ErrNotFound)
	}
	return sub, nil
}

// List returns all loaded subscriptions ordered by ID
func (l *Loader) List() []webhook.Subscription {
	l.mu.RLock()
	defer l.mu.RUnlock()

	subs := make([]webhook.Subscription, 0, len(l.subs))
	for _, sub := range l.subs {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	return subs
}

// ListByAccount returns the subscriptions declared for accountID
func (l *Loader) ListByAccount(ctx context.Context, accountID string) ([]webhook.Subscription, error) {
	var owned []webhook.Subscription
	for _, sub := range l.List() {
		if sub.AccountID == accountID {
			owned = append(owned, sub)
		}
	}
	return owned, nil
}

// Register always fails: file-backed subscriptions change only by editing the file
func (l *Loader) Register(ctx context.Context, sub webhook.Subscription) error {
	return webhook.ErrReadOnly
}

// Unregister always fails, see Register
func (l *Loader) Unregister(ctx context.Context, accountID, id string) error {
	return webhook.ErrReadOnly
}

var _ webhook.SubscriptionRepository = (*Loader)(nil)
