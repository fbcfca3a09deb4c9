package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and the rows they touch.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindAddress(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error)
	FindSellerProducts(ctx context.Context, sellerID uuid.UUID, productIDs []uuid.UUID) ([]models.Product, error)
	ReserveStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error)
	ReleaseStock(ctx context.Context, productID uuid.UUID, qty int) error
	CreateOrder(ctx context.Context, order *models.Order) error
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	UpdateOrderFromStatus(ctx context.Context, orderID uuid.UUID, from enums.OrderStatus, updates map[string]any) (bool, error)
	ListOrders(ctx context.Context, scope ListScope, params pagination.Params, cursor *pagination.Cursor) ([]models.Order, error)
	FindShippingSince(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
	FindReviewByDetail(ctx context.Context, detailID uuid.UUID) (*models.Review, error)
	CreateReview(ctx context.Context, review *models.Review) error
}

// ListScope restricts a listing to one buyer or one seller. Both nil lists everything.
type ListScope struct {
	BuyerID  *uuid.UUID
	SellerID *uuid.UUID
	Status   *enums.OrderStatus
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindAddress(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error) {
	var address models.Address
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", addressID, userID).First(&address).Error; err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *repository) FindSellerProducts(ctx context.Context, sellerID uuid.UUID, productIDs []uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	if len(productIDs) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).
		Where("seller_id = ? AND id IN ?", sellerID, productIDs).
		Find(&products).Error
	return products, err
}

// ReserveStock decrements stock only if enough units remain. False means it did not.
func (r *repository) ReserveStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	return res.RowsAffected == 1, res.Error
}

func (r *repository) ReleaseStock(ctx context.Context, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", qty)).Error
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Details", func(db *gorm.DB) *gorm.DB { return db.Order("product_name ASC").Order("id ASC") }).
		Preload("Details.Review").
		Preload("Seller").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderFromStatus applies updates only while the order is still in from.
func (r *repository) UpdateOrderFromStatus(ctx context.Context, orderID uuid.UUID, from enums.OrderStatus, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(updates)
	return res.RowsAffected == 1, res.Error
}

func (r *repository) ListOrders(ctx context.Context, scope ListScope, params pagination.Params, cursor *pagination.Cursor) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{}).Preload("Details").Preload("Seller")
	if scope.BuyerID != nil {
		q = q.Where("buyer_id = ?", *scope.BuyerID)
	}
	if scope.SellerID != nil {
		q = q.Where("seller_id = ?", *scope.SellerID)
	}
	if scope.Status != nil {
		q = q.Where("status = ?", *scope.Status)
	}
	if cursor != nil {
		q = q.Where("(created_at < ? OR (created_at = ? AND id < ?))", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	err := q.Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindShippingSince(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND status_changed_at <= ?", enums.OrderStatusShipping, cutoff).
		Order("status_changed_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindReviewByDetail(ctx context.Context, detailID uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).Where("order_detail_id = ?", detailID).First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *repository) CreateReview(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}
