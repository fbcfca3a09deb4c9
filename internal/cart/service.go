package cart

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-backend/internal/stock"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type conflictRecorder interface {
	StockConflict()
}

// Service exposes the buyer cart operations.
type Service interface {
	Get(ctx context.Context, buyerID uuid.UUID) ([]Group, error)
	Add(ctx context.Context, buyerID uuid.UUID, input AddItemInput) (*LineItem, error)
	UpdateQuantity(ctx context.Context, buyerID, itemID uuid.UUID, quantity int) (*LineItem, error)
	Remove(ctx context.Context, buyerID, itemID uuid.UUID) error
	Restrict(ctx context.Context, buyerID uuid.UUID, selectedIDs []uuid.UUID) ([]Group, error)
}

// AddItemInput is the add-to-cart payload.
type AddItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

type service struct {
	repo      Repository
	tx        txRunner
	conflicts conflictRecorder
}

// NewService builds a cart service. conflicts may be nil.
func NewService(repo Repository, tx txRunner, conflicts conflictRecorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, conflicts: conflicts}, nil
}

func (s *service) Get(ctx context.Context, buyerID uuid.UUID) ([]Group, error) {
	rows, err := s.repo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart items")
	}
	return GroupBySeller(FromModels(rows)), nil
}

func (s *service) Add(ctx context.Context, buyerID uuid.UUID, input AddItemInput) (*LineItem, error) {
	if input.Quantity < stock.MinQuantity {
		return nil, pkgerrors.Field("quantity", "quantity must be at least 1")
	}

	var itemID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		product, err := repo.FindProduct(ctx, input.ProductID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}

		existing, err := repo.FindByProduct(ctx, buyerID, input.ProductID)
		switch {
		case err == nil:
			if err := s.guard(existing.Quantity, input.Quantity, product.Stock); err != nil {
				return err
			}
			itemID = existing.ID
			return repo.UpdateQuantity(ctx, existing.ID, existing.Quantity+input.Quantity)
		case db.IsNotFound(err):
			if err := s.guard(0, input.Quantity, product.Stock); err != nil {
				return err
			}
			row := &models.CartItem{BuyerID: buyerID, ProductID: product.ID, Quantity: input.Quantity}
			if err := repo.Create(ctx, row); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart item")
			}
			itemID = row.ID
			return nil
		default:
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart item")
		}
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, buyerID, itemID)
}

func (s *service) UpdateQuantity(ctx context.Context, buyerID, itemID uuid.UUID, quantity int) (*LineItem, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := repo.FindByID(ctx, buyerID, itemID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart item")
		}
		available := 0
		if row.Product != nil {
			available = row.Product.Stock
		}
		if err := s.guard(row.Quantity, quantity-row.Quantity, available); err != nil {
			return err
		}
		return repo.UpdateQuantity(ctx, row.ID, quantity)
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, buyerID, itemID)
}

func (s *service) Remove(ctx context.Context, buyerID, itemID uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, buyerID, itemID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart item")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return nil
}

// Restrict returns the buyer's cart narrowed to the selected ids, grouped by seller.
// Ids that are not in the cart are ignored.
func (s *service) Restrict(ctx context.Context, buyerID uuid.UUID, selectedIDs []uuid.UUID) ([]Group, error) {
	if len(selectedIDs) == 0 {
		return nil, pkgerrors.Field("selectedItemIds", "select at least one item to check out")
	}
	rows, err := s.repo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart items")
	}
	selected := NewItemSet(selectedIDs...)
	items := make([]LineItem, 0, len(selectedIDs))
	for _, line := range FromModels(rows) {
		if selected.Has(line.ID) {
			items = append(items, line)
		}
	}
	if len(items) == 0 {
		return nil, pkgerrors.Field("selectedItemIds", "none of the selected items are in the cart")
	}
	return GroupBySeller(items), nil
}

func (s *service) guard(current, delta, available int) error {
	err := stock.Check(current, delta, available)
	if err != nil && s.conflicts != nil && pkgerrors.IsCode(err, pkgerrors.CodeStockConflict) {
		s.conflicts.StockConflict()
	}
	return err
}

func (s *service) load(ctx context.Context, buyerID, itemID uuid.UUID) (*LineItem, error) {
	row, err := s.repo.FindByID(ctx, buyerID, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload cart item")
	}
	line := FromModel(*row)
	return &line, nil
}
