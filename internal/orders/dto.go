package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// Actor is the authenticated caller of an order operation.
type Actor struct {
	UserID   uuid.UUID
	Role     enums.ActorRole
	SellerID *uuid.UUID
}

// SystemActor is used by background jobs.
func SystemActor() Actor {
	return Actor{Role: enums.ActorSystem}
}

// TransitionInput asks for one lifecycle action on one order.
type TransitionInput struct {
	OrderID  uuid.UUID
	Actor    Actor
	Action   enums.OrderAction
	Reason   string
	Evidence []string
}

// TransitionRequest is the HTTP body for POST /orders/{id}/transitions.
type TransitionRequest struct {
	Action   enums.OrderAction `json:"action" validate:"required"`
	Reason   string            `json:"reason,omitempty" validate:"max=1000"`
	Evidence []string          `json:"evidence,omitempty" validate:"max=10,dive,max=512"`
}

// ReviewInput attaches a rating to one delivered order detail.
type ReviewInput struct {
	OrderID  uuid.UUID
	DetailID uuid.UUID
	Actor    Actor
	Rating   int
	Comment  string
}

// ReviewRequest is the HTTP body for POST /orders/{id}/details/{detailId}/review.
type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment,omitempty" validate:"max=2000"`
}

// ListFilter narrows an order listing.
type ListFilter struct {
	Status *enums.OrderStatus
}

// DetailView is one order line as returned to clients.
type DetailView struct {
	ID          uuid.UUID   `json:"id"`
	ProductID   uuid.UUID   `json:"productId"`
	ProductName string      `json:"productName"`
	UnitPrice   int64       `json:"unitPrice"`
	Quantity    int         `json:"quantity"`
	LineTotal   int64       `json:"lineTotal"`
	Review      *ReviewView `json:"review,omitempty"`
}

// ReviewView is a review as returned to clients.
type ReviewView struct {
	ID        uuid.UUID `json:"id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// OrderView is an order as returned to clients, including the actions the caller may take.
type OrderView struct {
	ID              uuid.UUID           `json:"id"`
	BuyerID         uuid.UUID           `json:"buyerId"`
	SellerID        uuid.UUID           `json:"sellerId"`
	SellerName      string              `json:"sellerName,omitempty"`
	Status          enums.OrderStatus   `json:"status"`
	PreCancelStatus *enums.OrderStatus  `json:"preCancelStatus,omitempty"`
	PaymentMethod   enums.PaymentMethod `json:"paymentMethod"`
	PaymentStatus   enums.PaymentStatus `json:"paymentStatus"`
	ShippingAddress types.Address       `json:"shippingAddress"`
	ShippingFee     int64               `json:"shippingFee"`
	TotalPrice      int64               `json:"totalPrice"`
	Note            string              `json:"note,omitempty"`
	CancelReason    string              `json:"cancelReason,omitempty"`
	RejectReason    string              `json:"rejectReason,omitempty"`
	RefundReason    string              `json:"refundReason,omitempty"`
	RefundEvidence  []string            `json:"refundEvidence,omitempty"`
	Details         []DetailView        `json:"orderDetails"`
	AllowedActions  []enums.OrderAction `json:"allowedActions"`
	StatusChangedAt time.Time           `json:"statusChangedAt"`
	CompletedAt     *time.Time          `json:"completedAt,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
}

// State returns the lifecycle state carried by the view.
func (v OrderView) State() State {
	return State{Status: v.Status, PreCancelStatus: v.PreCancelStatus}
}

// NewOrderView maps an order row for the given caller.
func NewOrderView(order models.Order, allowed []enums.OrderAction) OrderView {
	view := OrderView{
		ID:              order.ID,
		BuyerID:         order.BuyerID,
		SellerID:        order.SellerID,
		Status:          order.Status,
		PreCancelStatus: order.PreCancelStatus,
		PaymentMethod:   order.PaymentMethod,
		PaymentStatus:   order.PaymentStatus,
		ShippingAddress: order.ShippingAddress,
		ShippingFee:     order.ShippingFee,
		TotalPrice:      order.TotalPrice,
		Note:            deref(order.Note),
		CancelReason:    deref(order.CancelReason),
		RejectReason:    deref(order.RejectReason),
		RefundReason:    deref(order.RefundReason),
		RefundEvidence:  []string(order.RefundEvidence),
		Details:         make([]DetailView, 0, len(order.Details)),
		AllowedActions:  allowed,
		StatusChangedAt: order.StatusChangedAt,
		CompletedAt:     order.CompletedAt,
		CreatedAt:       order.CreatedAt,
	}
	if order.Seller != nil {
		view.SellerName = order.Seller.Name
	}
	if view.AllowedActions == nil {
		view.AllowedActions = []enums.OrderAction{}
	}
	for _, d := range order.Details {
		dv := DetailView{
			ID:          d.ID,
			ProductID:   d.ProductID,
			ProductName: d.ProductName,
			UnitPrice:   d.UnitPrice,
			Quantity:    d.Quantity,
			LineTotal:   d.LineTotal(),
		}
		if d.Review != nil {
			dv.Review = &ReviewView{ID: d.Review.ID, Rating: d.Review.Rating, Comment: d.Review.Comment, CreatedAt: d.Review.CreatedAt}
		}
		view.Details = append(view.Details, dv)
	}
	return view
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
