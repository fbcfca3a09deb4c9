package cart

import (
	"context"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the persistence surface required by the cart service.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.CartItem, error)
	FindByID(ctx context.Context, buyerID, id uuid.UUID) (*models.CartItem, error)
	FindByProduct(ctx context.Context, buyerID, productID uuid.UUID) (*models.CartItem, error)
	FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, item *models.CartItem) error
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	Delete(ctx context.Context, buyerID, id uuid.UUID) (bool, error)
	DeleteByProducts(ctx context.Context, buyerID uuid.UUID, productIDs []uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds the cart repository to the provided DB handle.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) withItemGraph(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Product").Preload("Product.Seller")
}

func (r *repository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.withItemGraph(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *repository) FindByID(ctx context.Context, buyerID, id uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.withItemGraph(ctx).Where("id = ? AND buyer_id = ?", id, buyerID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindByProduct(ctx context.Context, buyerID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.withItemGraph(ctx).Where("buyer_id = ? AND product_id = ?", buyerID, productID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("Seller").Where("id = ?", productID).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) Create(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", id).
		Update("quantity", quantity).Error
}

func (r *repository) Delete(ctx context.Context, buyerID, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND buyer_id = ?", id, buyerID).Delete(&models.CartItem{})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) DeleteByProducts(ctx context.Context, buyerID uuid.UUID, productIDs []uuid.UUID) error {
	if len(productIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("buyer_id = ? AND product_id IN ?", buyerID, productIDs).
		Delete(&models.CartItem{}).Error
}
