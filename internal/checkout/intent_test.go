package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/google/uuid"
)

type fakeSlots struct {
	values map[string]string
	ttls   map[string]time.Duration
	err    error
}

func newFakeSlots() *fakeSlots {
	return &fakeSlots{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeSlots) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.values[key] = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeSlots) GetDel(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.values[key]
	if !ok {
		return "", redis.ErrNil
	}
	delete(f.values, key)
	return v, nil
}

func (f *fakeSlots) CheckoutIntentKey(buyerID, intentID string) string {
	return "sf:checkout_intent:" + buyerID + ":" + intentID
}

func TestNewIntentDedupesAndRejectsEmpty(t *testing.T) {
	id := uuid.New()
	intent, err := NewIntent(uuid.New(), []uuid.UUID{id, id, uuid.Nil}, time.Now())
	if err != nil {
		t.Fatalf("new intent: %v", err)
	}
	if len(intent.SelectedItemIDs) != 1 {
		t.Fatalf("expected one id, got %v", intent.SelectedItemIDs)
	}
	if _, err := NewIntent(uuid.New(), nil, time.Now()); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRedisIntentStoreIsSingleUse(t *testing.T) {
	slots := newFakeSlots()
	store, err := NewRedisIntentStore(slots)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	buyer := uuid.New()
	intent, _ := NewIntent(buyer, []uuid.UUID{uuid.New()}, time.Now())

	if err := store.Put(ctx, intent, time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}
	key := slots.CheckoutIntentKey(buyer.String(), intent.ID.String())
	if slots.ttls[key] != time.Minute {
		t.Fatalf("ttl not forwarded")
	}

	got, err := store.Take(ctx, buyer, intent.ID)
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if got.ID != intent.ID || len(got.SelectedItemIDs) != 1 || got.SelectedItemIDs[0] != intent.SelectedItemIDs[0] {
		t.Fatalf("unexpected intent %+v", got)
	}
	if _, err := store.Take(ctx, buyer, intent.ID); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("second take should miss, got %v", err)
	}
}

func TestRedisIntentStoreDependencyFailure(t *testing.T) {
	slots := newFakeSlots()
	slots.err = errors.New("dial tcp: refused")
	store, _ := NewRedisIntentStore(slots)
	if _, err := store.Take(context.Background(), uuid.New(), uuid.New()); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestMemoryIntentStore(t *testing.T) {
	store := NewMemoryIntentStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()
	buyer := uuid.New()
	intent, _ := NewIntent(buyer, []uuid.UUID{uuid.New()}, now)

	_ = store.Put(ctx, intent, time.Minute)
	if _, err := store.Take(ctx, uuid.New(), intent.ID); err == nil {
		t.Fatalf("another buyer must not read the intent")
	}
	if _, err := store.Take(ctx, buyer, intent.ID); err != nil {
		t.Fatalf("take: %v", err)
	}
	if _, err := store.Take(ctx, buyer, intent.ID); err == nil {
		t.Fatalf("intent must be single use")
	}

	expired, _ := NewIntent(buyer, []uuid.UUID{uuid.New()}, now)
	_ = store.Put(ctx, expired, time.Minute)
	now = now.Add(2 * time.Minute)
	if _, err := store.Take(ctx, buyer, expired.ID); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expired intent should be gone, got %v", err)
	}
}

func TestMemoryIntentStoreSweepsExpiredOnPut(t *testing.T) {
	store := NewMemoryIntentStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()
	buyer := uuid.New()

	stale, _ := NewIntent(buyer, []uuid.UUID{uuid.New()}, now)
	live, _ := NewIntent(buyer, []uuid.UUID{uuid.New()}, now)
	_ = store.Put(ctx, stale, time.Minute)
	_ = store.Put(ctx, live, time.Hour)

	now = now.Add(5 * time.Minute)
	fresh, _ := NewIntent(buyer, []uuid.UUID{uuid.New()}, now)
	_ = store.Put(ctx, fresh, time.Minute)

	if _, ok := store.slots[stale.ID]; ok {
		t.Fatal("expired slot should be swept")
	}
	if len(store.slots) != 2 {
		t.Fatalf("expected live and fresh slots, got %d", len(store.slots))
	}
}
