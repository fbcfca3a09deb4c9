package checkout

import (
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
)

// OrderDetailRequest is one line of an order-create request.
type OrderDetailRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"min=1,max=99"`
}

// CreateOrderRequest is the payload submitted to create one seller's order.
type CreateOrderRequest struct {
	AddressID     uuid.UUID            `json:"addressId" validate:"required"`
	Note          string               `json:"note,omitempty" validate:"max=500"`
	ShippingFee   int64                `json:"shippingFee" validate:"min=0"`
	TotalPrice    int64                `json:"totalPrice" validate:"min=0"`
	SellerID      uuid.UUID            `json:"sellerId" validate:"required"`
	PaymentMethod enums.PaymentMethod  `json:"paymentMethod" validate:"required,oneof=cod bank_transfer"`
	OrderDetails  []OrderDetailRequest `json:"orderDetails" validate:"required,min=1,dive"`
}

// ConfirmInput holds the buyer choices shared by every bucket.
type ConfirmInput struct {
	AddressID     *uuid.UUID
	Note          string
	PaymentMethod enums.PaymentMethod
}

func (in ConfirmInput) validate() error {
	if in.AddressID == nil || *in.AddressID == uuid.Nil {
		return pkgerrors.Field("addressId", "choose a shipping address")
	}
	if in.PaymentMethod != "" && !in.PaymentMethod.IsValid() {
		return pkgerrors.Field("paymentMethod", "unsupported payment method")
	}
	return nil
}

func (in ConfirmInput) paymentMethod() enums.PaymentMethod {
	if in.PaymentMethod == "" {
		return enums.PaymentMethodCOD
	}
	return in.PaymentMethod
}

// OrderRequests emits one create request per bucket. It refuses to build
// anything for an empty plan.
func (p Plan) OrderRequests(in ConfirmInput) ([]CreateOrderRequest, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if p.IsEmpty() {
		return nil, ErrEmptySelection()
	}
	note := strings.TrimSpace(in.Note)
	method := in.paymentMethod()
	requests := make([]CreateOrderRequest, 0, len(p.Buckets))
	for _, b := range p.Buckets {
		details := make([]OrderDetailRequest, 0, len(b.Items))
		for _, item := range b.Items {
			details = append(details, OrderDetailRequest{ProductID: item.Product.ID, Quantity: item.Quantity})
		}
		requests = append(requests, CreateOrderRequest{
			AddressID:     *in.AddressID,
			Note:          note,
			ShippingFee:   b.ShippingFee,
			TotalPrice:    b.Total,
			SellerID:      b.Seller.ID,
			PaymentMethod: method,
			OrderDetails:  details,
		})
	}
	return requests, nil
}

// ProductIDs lists the products the request orders.
func (r CreateOrderRequest) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.OrderDetails))
	for _, d := range r.OrderDetails {
		ids = append(ids, d.ProductID)
	}
	return ids
}

// ErrEmptySelection is the validation error for a checkout with nothing selected.
func ErrEmptySelection() error {
	return pkgerrors.Field("selectedItemIds", "select at least one item to check out")
}
