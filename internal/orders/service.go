package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/stock"
	pricing "github.com/angelmondragon/storefront-backend/pkg/checkout"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/angelmondragon/storefront-backend/pkg/validation"
)

// MaxOrdersPerCheckout bounds how many seller orders one submission may create.
const MaxOrdersPerCheckout = 50

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type cartCleaner interface {
	WithTx(tx *gorm.DB) cart.Repository
}

type orderMetrics interface {
	OrderCreated()
	OrderFailed()
	Transitioned(action, from, to string)
	TransitionRejected(action, code string)
	ObserveBuckets(n int)
	StockConflict()
}

// Service owns order creation and every lifecycle change.
type Service interface {
	CreateOrders(ctx context.Context, buyer Actor, requests []checkout.CreateOrderRequest) (*checkout.CreateOrdersResponse, error)
	Transition(ctx context.Context, input TransitionInput) (*OrderView, error)
	AttachReview(ctx context.Context, input ReviewInput) (*ReviewView, error)
	List(ctx context.Context, actor Actor, filter ListFilter, params pagination.Params) (pagination.Page[OrderView], error)
	Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderView, error)
	AutoComplete(ctx context.Context, shippedBefore time.Time, limit int) (int, error)
}

// ServiceParams groups the order service dependencies.
type ServiceParams struct {
	Repo        Repository
	Tx          txRunner
	Outbox      outboxPublisher
	Carts       cartCleaner
	Metrics     orderMetrics
	Logger      *logger.Logger
	ShippingFee int64
	Now         func() time.Time
}

type service struct {
	repo        Repository
	tx          txRunner
	outbox      outboxPublisher
	carts       cartCleaner
	metrics     orderMetrics
	logg        *logger.Logger
	lifecycle   Lifecycle
	shippingFee int64
	now         func() time.Time
}

// NewService builds the order service.
func NewService(p ServiceParams) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if p.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if p.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if p.Carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if p.Metrics == nil {
		return nil, fmt.Errorf("order metrics required")
	}
	if p.ShippingFee < 0 {
		return nil, fmt.Errorf("shipping fee must not be negative")
	}
	now := p.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:        p.Repo,
		tx:          p.Tx,
		outbox:      p.Outbox,
		carts:       p.Carts,
		metrics:     p.Metrics,
		logg:        p.Logger,
		lifecycle:   NewLifecycle(),
		shippingFee: p.ShippingFee,
		now:         now,
	}, nil
}

// CreateOrders creates one order per request, each in its own transaction.
// A failed request does not undo the others; the response lists both.
func (s *service) CreateOrders(ctx context.Context, buyer Actor, requests []checkout.CreateOrderRequest) (*checkout.CreateOrdersResponse, error) {
	if buyer.Role != enums.ActorBuyer || buyer.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only buyers can place orders")
	}
	if len(requests) == 0 {
		return nil, checkout.ErrEmptySelection()
	}
	if len(requests) > MaxOrdersPerCheckout {
		return nil, pkgerrors.Field("orders", fmt.Sprintf("at most %d orders per checkout", MaxOrdersPerCheckout))
	}

	checkoutID := uuid.New()
	resp := &checkout.CreateOrdersResponse{Created: []checkout.OrderResult{}, Failed: []checkout.OrderResult{}}
	seen := map[uuid.UUID]struct{}{}
	var grandTotal int64

	for _, req := range requests {
		var (
			order *models.Order
			err   error
		)
		if _, dup := seen[req.SellerID]; dup {
			err = pkgerrors.Field("sellerId", "seller appears more than once in this checkout")
		} else {
			seen[req.SellerID] = struct{}{}
			order, err = s.createOne(ctx, buyer, checkoutID, req)
		}

		if err != nil {
			s.metrics.OrderFailed()
			if pkgerrors.IsCode(err, pkgerrors.CodeStockConflict) {
				s.metrics.StockConflict()
			}
			apiErr, _ := pkgerrors.Public(err)
			resp.Failed = append(resp.Failed, checkout.OrderResult{SellerID: req.SellerID, Error: &apiErr})
			s.warn(ctx, "order creation failed", map[string]any{"seller_id": req.SellerID.String(), "error": err.Error()})
			continue
		}

		s.metrics.OrderCreated()
		grandTotal += order.TotalPrice
		id := order.ID
		resp.Created = append(resp.Created, checkout.OrderResult{
			SellerID:   order.SellerID,
			OrderID:    &id,
			Status:     order.Status,
			TotalPrice: order.TotalPrice,
		})
	}
	s.metrics.ObserveBuckets(len(requests))

	// Orders are already committed here; a lost summary event must not turn them into failures.
	if len(resp.Created) > 0 {
		if err := s.emitConverted(ctx, buyer, checkoutID, resp, grandTotal); err != nil {
			s.warn(ctx, "checkout conversion event not recorded", map[string]any{
				"checkout_id": checkoutID.String(),
				"error":       err.Error(),
			})
		}
	}
	return resp, nil
}

func (s *service) createOne(ctx context.Context, buyer Actor, checkoutID uuid.UUID, req checkout.CreateOrderRequest) (*models.Order, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if dup := firstDuplicateProduct(req.OrderDetails); dup != uuid.Nil {
		return nil, pkgerrors.Field("orderDetails", "each product may appear once per order").
			WithDetails(map[string]string{"orderDetails": "duplicate product", "productId": dup.String()})
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		address, err := repo.FindAddress(ctx, buyer.UserID, req.AddressID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Field("addressId", "shipping address not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load shipping address")
		}

		products, err := repo.FindSellerProducts(ctx, req.SellerID, req.ProductIDs())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load products")
		}
		byID := make(map[uuid.UUID]models.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		quote := pricing.Quote{
			ShippingFee:          s.shippingFee,
			SubmittedShippingFee: req.ShippingFee,
			SubmittedTotal:       req.TotalPrice,
		}
		details := make([]models.OrderDetail, 0, len(req.OrderDetails))
		for _, line := range req.OrderDetails {
			product, ok := byID[line.ProductID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not sold by this seller").
					WithDetails(map[string]string{"productId": line.ProductID.String()})
			}
			if err := stock.Check(0, line.Quantity, product.Stock); err != nil {
				return withProduct(err, product.ID)
			}
			quote.Lines = append(quote.Lines, pricing.LineQuote{
				ProductID:   product.ID,
				ProductName: product.Name,
				UnitPrice:   product.Price,
				Quantity:    line.Quantity,
			})
			details = append(details, models.OrderDetail{
				ProductID:   product.ID,
				ProductName: product.Name,
				UnitPrice:   product.Price,
				Quantity:    line.Quantity,
			})
		}
		if err := pricing.ValidateQuote(quote); err != nil {
			return err
		}

		for _, line := range req.OrderDetails {
			ok, err := repo.ReserveStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reserve stock")
			}
			if !ok {
				return withProduct(stock.ConflictError(line.Quantity, byID[line.ProductID].Stock), line.ProductID)
			}
		}

		now := s.now().UTC()
		status := InitialStatus(req.PaymentMethod)
		order = &models.Order{
			BuyerID:         buyer.UserID,
			SellerID:        req.SellerID,
			Status:          status,
			PaymentMethod:   req.PaymentMethod,
			PaymentStatus:   enums.PaymentStatusUnpaid,
			ShippingAddress: address.Snapshot(),
			ShippingFee:     quote.ShippingFee,
			TotalPrice:      quote.Total(),
			Note:            optionalString(req.Note),
			RefundEvidence:  types.StringList{},
			StatusChangedAt: now,
			Details:         details,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}

		if err := s.carts.WithTx(tx).DeleteByProducts(ctx, buyer.UserID, req.ProductIDs()); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear ordered cart items")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(buyer),
			OccurredAt:    now,
			Data: payloads.OrderCreatedEvent{
				OrderID:       order.ID,
				CheckoutID:    checkoutID,
				BuyerID:       order.BuyerID,
				SellerID:      order.SellerID,
				Status:        order.Status,
				PaymentMethod: order.PaymentMethod,
				TotalPrice:    order.TotalPrice,
				ShippingFee:   order.ShippingFee,
				ItemCount:     len(order.Details),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) emitConverted(ctx context.Context, buyer Actor, checkoutID uuid.UUID, resp *checkout.CreateOrdersResponse, grandTotal int64) error {
	event := payloads.CheckoutConvertedEvent{
		CheckoutID:  checkoutID,
		BuyerID:     buyer.UserID,
		GrandTotal:  grandTotal,
		ConvertedAt: s.now().UTC(),
	}
	for _, r := range resp.Created {
		event.OrderIDs = append(event.OrderIDs, *r.OrderID)
	}
	for _, r := range resp.Failed {
		event.FailedSellers = append(event.FailedSellers, r.SellerID)
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCheckoutConverted,
			AggregateType: enums.AggregateCheckout,
			AggregateID:   checkoutID,
			Actor:         actorRef(buyer),
			Data:          event,
		})
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record checkout")
	}
	return nil
}

// Transition applies one lifecycle action and persists its side effects.
func (s *service) Transition(ctx context.Context, input TransitionInput) (*OrderView, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.Field("orderId", "order id required")
	}
	if !input.Actor.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor role missing")
	}

	var (
		from enums.OrderStatus
		next State
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadForActor(ctx, repo, input.Actor, input.OrderID)
		if err != nil {
			return err
		}

		from = order.Status
		next, err = s.lifecycle.Apply(State{Status: order.Status, PreCancelStatus: order.PreCancelStatus}, Command{
			Action:   input.Action,
			Actor:    input.Actor.Role,
			Reason:   input.Reason,
			Evidence: input.Evidence,
		})
		if err != nil {
			return err
		}

		now := s.now().UTC()
		paymentStatus := PaymentStatusAfter(order.PaymentMethod, order.PaymentStatus, input.Action, next.Status)
		updates := map[string]any{
			"status":            next.Status,
			"pre_cancel_status": next.PreCancelStatus,
			"payment_status":    paymentStatus,
			"status_changed_at": now,
		}
		reason := strings.TrimSpace(input.Reason)
		evidence := nonBlank(input.Evidence)
		switch input.Action {
		case enums.ActionReject:
			updates["reject_reason"] = reason
		case enums.ActionRequestCancel:
			updates["cancel_reason"] = reason
		case enums.ActionRequestRefund:
			updates["refund_reason"] = reason
			updates["refund_evidence"] = types.StringList(evidence)
		case enums.ActionConfirmDelivery:
			updates["completed_at"] = now
		}

		ok, err := repo.UpdateOrderFromStatus(ctx, order.ID, from, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeConflict, "order changed concurrently, reload and retry")
		}

		if ReleasesStock(next.Status) {
			for _, d := range order.Details {
				if err := repo.ReleaseStock(ctx, d.ProductID, d.Quantity); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "release stock")
				}
			}
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(input.Actor),
			OccurredAt:    now,
			Data: payloads.OrderStatusChangedEvent{
				OrderID:       order.ID,
				BuyerID:       order.BuyerID,
				SellerID:      order.SellerID,
				Action:        input.Action,
				From:          from,
				To:            next.Status,
				PaymentStatus: paymentStatus,
				Reason:        reason,
				Evidence:      evidence,
				ChangedAt:     now,
			},
		})
	})
	if err != nil {
		code := pkgerrors.CodeInternal
		if typed := pkgerrors.As(err); typed != nil {
			code = typed.Code()
		}
		s.metrics.TransitionRejected(string(input.Action), string(code))
		return nil, err
	}

	s.metrics.Transitioned(string(input.Action), string(from), string(next.Status))
	if s.logg != nil {
		logCtx := s.logg.WithOrderID(ctx, input.OrderID.String())
		logCtx = s.logg.WithFields(logCtx, map[string]any{"action": input.Action, "from": from, "to": next.Status, "actor_role": input.Actor.Role})
		s.logg.Info(logCtx, "order transitioned")
	}
	return s.Get(ctx, input.Actor, input.OrderID)
}

// AttachReview records the buyer's rating of a line of a completed order.
func (s *service) AttachReview(ctx context.Context, input ReviewInput) (*ReviewView, error) {
	if input.Actor.Role != enums.ActorBuyer {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the buyer can review an order")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.Field("rating", "rating must be between 1 and 5")
	}

	var review *models.Review
	var sellerID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadForActor(ctx, repo, input.Actor, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status != enums.OrderStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "only completed orders can be reviewed").
				WithDetails(map[string]string{"status": string(order.Status)})
		}

		var detail *models.OrderDetail
		for i := range order.Details {
			if order.Details[i].ID == input.DetailID {
				detail = &order.Details[i]
				break
			}
		}
		if detail == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order detail not found")
		}
		if detail.Review != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "this item has already been reviewed")
		}
		if _, err := repo.FindReviewByDetail(ctx, detail.ID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "this item has already been reviewed")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing review")
		}

		review = &models.Review{
			OrderDetailID: detail.ID,
			OrderID:       order.ID,
			BuyerID:       input.Actor.UserID,
			ProductID:     detail.ProductID,
			Rating:        input.Rating,
			Comment:       strings.TrimSpace(input.Comment),
			CreatedAt:     s.now().UTC(),
		}
		if err := repo.CreateReview(ctx, review); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create review")
		}
		sellerID = order.SellerID

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderReviewCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(input.Actor),
			Data: payloads.OrderReviewCreatedEvent{
				ReviewID:      review.ID,
				OrderID:       order.ID,
				OrderDetailID: detail.ID,
				ProductID:     detail.ProductID,
				SellerID:      sellerID,
				Rating:        review.Rating,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return &ReviewView{ID: review.ID, Rating: review.Rating, Comment: review.Comment, CreatedAt: review.CreatedAt}, nil
}

func (s *service) List(ctx context.Context, actor Actor, filter ListFilter, params pagination.Params) (pagination.Page[OrderView], error) {
	scope := ListScope{Status: filter.Status}
	switch actor.Role {
	case enums.ActorBuyer:
		id := actor.UserID
		scope.BuyerID = &id
	case enums.ActorSeller:
		if actor.SellerID == nil {
			return pagination.Page[OrderView]{}, pkgerrors.New(pkgerrors.CodeForbidden, "seller context missing")
		}
		scope.SellerID = actor.SellerID
	case enums.ActorAdmin:
	default:
		return pagination.Page[OrderView]{}, pkgerrors.New(pkgerrors.CodeForbidden, "actor cannot list orders")
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return pagination.Page[OrderView]{}, pkgerrors.Field("status", "unknown order status")
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[OrderView]{}, pkgerrors.Field("cursor", "invalid cursor")
	}
	rows, err := s.repo.ListOrders(ctx, scope, params, cursor)
	if err != nil {
		return pagination.Page[OrderView]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}

	page := pagination.Build(rows, params.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	views := make([]OrderView, 0, len(page.Items))
	for _, o := range page.Items {
		views = append(views, s.view(o, actor))
	}
	return pagination.Page[OrderView]{Items: views, NextCursor: page.NextCursor}, nil
}

func (s *service) Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderView, error) {
	order, err := s.loadForActor(ctx, s.repo, actor, orderID)
	if err != nil {
		return nil, err
	}
	view := s.view(*order, actor)
	return &view, nil
}

// AutoComplete confirms delivery for orders shipping since before shippedBefore.
func (s *service) AutoComplete(ctx context.Context, shippedBefore time.Time, limit int) (int, error) {
	if limit <= 0 {
		limit = pagination.MaxLimit
	}
	rows, err := s.repo.FindShippingSince(ctx, shippedBefore, limit)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find shipped orders")
	}

	completed := 0
	var errs error
	for _, o := range rows {
		_, err := s.Transition(ctx, TransitionInput{
			OrderID: o.ID,
			Actor:   SystemActor(),
			Action:  enums.ActionConfirmDelivery,
		})
		switch {
		case err == nil:
			completed++
		case pkgerrors.IsCode(err, pkgerrors.CodeConflict), pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition):
			// moved on since the query; nothing to do
		default:
			errs = multierr.Append(errs, fmt.Errorf("order %s: %w", o.ID, err))
		}
	}
	return completed, errs
}

func (s *service) loadForActor(ctx context.Context, repo Repository, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if err := authorize(actor, order); err != nil {
		return nil, err
	}
	return order, nil
}

func authorize(actor Actor, order *models.Order) error {
	switch actor.Role {
	case enums.ActorBuyer:
		if order.BuyerID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
	case enums.ActorSeller:
		if actor.SellerID == nil || *actor.SellerID != order.SellerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to seller")
		}
	case enums.ActorAdmin, enums.ActorSystem, enums.ActorPaymentChannel:
	default:
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor role missing")
	}
	return nil
}

func (s *service) view(order models.Order, actor Actor) OrderView {
	state := State{Status: order.Status, PreCancelStatus: order.PreCancelStatus}
	return NewOrderView(order, s.lifecycle.Allowed(state, actor.Role))
}

func (s *service) warn(ctx context.Context, msg string, fields map[string]any) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithFields(ctx, fields), msg)
}

func actorRef(a Actor) *outbox.ActorRef {
	return &outbox.ActorRef{UserID: a.UserID, SellerID: a.SellerID, Role: a.Role}
}

func withProduct(err error, productID uuid.UUID) error {
	typed := pkgerrors.As(err)
	if typed == nil {
		return err
	}
	if c, ok := stock.ConflictFrom(err); ok && typed.Code() == pkgerrors.CodeStockConflict {
		return pkgerrors.New(pkgerrors.CodeStockConflict, typed.Message()).WithDetails(ProductConflict{
			ProductID:         productID,
			RequestedQuantity: c.RequestedQuantity,
			MaxQuantity:       c.MaxQuantity,
		})
	}
	return err
}

// ProductConflict is the stock conflict detail for one order line.
type ProductConflict struct {
	ProductID         uuid.UUID `json:"product_id"`
	RequestedQuantity int       `json:"requested_quantity"`
	MaxQuantity       int       `json:"max_quantity"`
}

func firstDuplicateProduct(lines []checkout.OrderDetailRequest) uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			return l.ProductID
		}
		seen[l.ProductID] = struct{}{}
	}
	return uuid.Nil
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
