package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/google/uuid"
)

// Intent carries the selected cart lines from the cart view to the checkout
// view. It is read at most once.
type Intent struct {
	ID              uuid.UUID   `json:"id"`
	BuyerID         uuid.UUID   `json:"buyerId"`
	SelectedItemIDs []uuid.UUID `json:"selectedItemIds"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// NewIntent builds an intent over the distinct ids in selected.
func NewIntent(buyerID uuid.UUID, selected []uuid.UUID, now time.Time) (Intent, error) {
	seen := make(map[uuid.UUID]struct{}, len(selected))
	ids := make([]uuid.UUID, 0, len(selected))
	for _, id := range selected {
		if id == uuid.Nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return Intent{}, ErrEmptySelection()
	}
	return Intent{ID: uuid.New(), BuyerID: buyerID, SelectedItemIDs: ids, CreatedAt: now.UTC()}, nil
}

// IntentStore holds intents across a process boundary. Take deletes the slot
// as it reads it.
type IntentStore interface {
	Put(ctx context.Context, intent Intent, ttl time.Duration) error
	Take(ctx context.Context, buyerID, intentID uuid.UUID) (Intent, error)
}

func errIntentGone() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "checkout intent expired or already used")
}

type slotStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	GetDel(ctx context.Context, key string) (string, error)
	CheckoutIntentKey(buyerID, intentID string) string
}

// RedisIntentStore keeps intents in Redis and consumes them with GETDEL.
type RedisIntentStore struct {
	store slotStore
}

// NewRedisIntentStore wraps a Redis client.
func NewRedisIntentStore(store slotStore) (*RedisIntentStore, error) {
	if store == nil {
		return nil, fmt.Errorf("redis store required")
	}
	return &RedisIntentStore{store: store}, nil
}

func (s *RedisIntentStore) Put(ctx context.Context, intent Intent, ttl time.Duration) error {
	raw, err := json.Marshal(intent)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode checkout intent")
	}
	key := s.store.CheckoutIntentKey(intent.BuyerID.String(), intent.ID.String())
	if err := s.store.Set(ctx, key, string(raw), ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store checkout intent")
	}
	return nil
}

func (s *RedisIntentStore) Take(ctx context.Context, buyerID, intentID uuid.UUID) (Intent, error) {
	raw, err := s.store.GetDel(ctx, s.store.CheckoutIntentKey(buyerID.String(), intentID.String()))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return Intent{}, errIntentGone()
		}
		return Intent{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read checkout intent")
	}
	var intent Intent
	if err := json.Unmarshal([]byte(raw), &intent); err != nil {
		return Intent{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode checkout intent")
	}
	return intent, nil
}

// MemoryIntentStore is the in-process store used when Redis is not configured.
type MemoryIntentStore struct {
	mu    sync.Mutex
	slots map[uuid.UUID]memorySlot
	now   func() time.Time
}

type memorySlot struct {
	intent  Intent
	expires time.Time
}

func NewMemoryIntentStore() *MemoryIntentStore {
	return &MemoryIntentStore{slots: make(map[uuid.UUID]memorySlot), now: time.Now}
}

func (s *MemoryIntentStore) Put(_ context.Context, intent Intent, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, slot := range s.slots {
		if now.After(slot.expires) {
			delete(s.slots, id)
		}
	}
	s.slots[intent.ID] = memorySlot{intent: intent, expires: now.Add(ttl)}
	return nil
}

func (s *MemoryIntentStore) Take(_ context.Context, buyerID, intentID uuid.UUID) (Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[intentID]
	if !ok || slot.intent.BuyerID != buyerID {
		return Intent{}, errIntentGone()
	}
	delete(s.slots, intentID)
	if s.now().After(slot.expires) {
		return Intent{}, errIntentGone()
	}
	return slot.intent, nil
}
