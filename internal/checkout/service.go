package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/google/uuid"
)

type cartRestrictor interface {
	Restrict(ctx context.Context, buyerID uuid.UUID, selectedIDs []uuid.UUID) ([]cart.Group, error)
}

// Preview is the server-side answer to "proceed to checkout": the cart
// restricted to the selection plus the priced plan.
type Preview struct {
	Groups []cart.Group `json:"groups"`
	Plan   Plan         `json:"plan"`
}

// Service re-validates selections and manages checkout intents.
type Service interface {
	Preview(ctx context.Context, buyerID uuid.UUID, selectedIDs []uuid.UUID) (*Preview, error)
	CreateIntent(ctx context.Context, buyerID uuid.UUID, selectedIDs []uuid.UUID) (Intent, error)
	ConsumeIntent(ctx context.Context, buyerID, intentID uuid.UUID) (Intent, error)
}

type service struct {
	carts       cartRestrictor
	intents     IntentStore
	shippingFee int64
	intentTTL   time.Duration
	now         func() time.Time
}

// NewService builds the checkout service.
func NewService(carts cartRestrictor, intents IntentStore, cfg config.CheckoutConfig) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if intents == nil {
		return nil, fmt.Errorf("intent store required")
	}
	ttl := cfg.IntentTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &service{
		carts:       carts,
		intents:     intents,
		shippingFee: cfg.ShippingFee,
		intentTTL:   ttl,
		now:         time.Now,
	}, nil
}

func (s *service) Preview(ctx context.Context, buyerID uuid.UUID, selectedIDs []uuid.UUID) (*Preview, error) {
	if len(selectedIDs) == 0 {
		return nil, ErrEmptySelection()
	}
	groups, err := s.carts.Restrict(ctx, buyerID, selectedIDs)
	if err != nil {
		return nil, err
	}
	plan := Decompose(groups, cart.NewItemSet(selectedIDs...), s.shippingFee)
	return &Preview{Groups: groups, Plan: plan}, nil
}

func (s *service) CreateIntent(ctx context.Context, buyerID uuid.UUID, selectedIDs []uuid.UUID) (Intent, error) {
	if len(selectedIDs) == 0 {
		return Intent{}, ErrEmptySelection()
	}
	groups, err := s.carts.Restrict(ctx, buyerID, selectedIDs)
	if err != nil {
		return Intent{}, err
	}
	present := make([]uuid.UUID, 0, len(selectedIDs))
	for _, item := range cart.Flatten(groups) {
		present = append(present, item.ID)
	}
	intent, err := NewIntent(buyerID, present, s.now())
	if err != nil {
		return Intent{}, err
	}
	if err := s.intents.Put(ctx, intent, s.intentTTL); err != nil {
		return Intent{}, err
	}
	return intent, nil
}

func (s *service) ConsumeIntent(ctx context.Context, buyerID, intentID uuid.UUID) (Intent, error) {
	return s.intents.Take(ctx, buyerID, intentID)
}
