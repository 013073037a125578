package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/aelshahawy/dokan/internal/domain"
	"github.com/aelshahawy/dokan/internal/events"
	"github.com/aelshahawy/dokan/internal/repository"
	"github.com/aelshahawy/dokan/internal/telemetry"
)

type orderService struct {
	store     Store
	publisher events.Publisher
	logger    *slog.Logger
	metrics   *telemetry.Metrics
}

// NewOrderService creates a new OrderService instance.
func NewOrderService(store Store, publisher events.Publisher, logger *slog.Logger, metrics *telemetry.Metrics) domain.OrderService {
	return &orderService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// Checkout converts the actor's cart into an order. Everything happens in
// one transaction: stock is re-validated and decremented, order items
// freeze the cart-time unit price, and the cart is deleted. Any failure
// rolls the whole consolidation back.
func (s *orderService) Checkout(ctx context.Context, actor domain.Identity, paymentType domain.PaymentType) (*domain.OrderDetail, error) {
	if !paymentType.Valid() {
		return nil, domain.ErrInvalidPaymentType
	}

	var (
		detail  *domain.OrderDetail
		created repository.Order
	)

	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		cart, err := q.GetCartByUserIDForUpdate(ctx, actor.ID)
		if err != nil {
			if isNoRows(err) {
				return domain.ErrNoCart
			}
			return fmt.Errorf("get cart: %w", err)
		}

		items, err := q.ListCartItems(ctx, cart.ID)
		if err != nil {
			return fmt.Errorf("list cart items: %w", err)
		}
		if len(items) == 0 {
			return domain.ErrNoCart
		}

		total := cart.TotalCents
		if cart.TotalAfterDiscountCents.Valid {
			total = cart.TotalAfterDiscountCents.Int64
		}

		order, err := q.CreateOrder(ctx, repository.CreateOrderParams{
			UserID:      actor.ID,
			TotalCents:  total,
			PaymentType: string(paymentType),
		})
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, item := range items {
			rows, err := q.DecrementProductStock(ctx, repository.DecrementProductStockParams{
				ID:       item.ProductID,
				Quantity: item.Quantity,
			})
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			if rows == 0 {
				return domain.ErrOutOfStock
			}

			// The cart line amount was computed from the product price at
			// mutation time, so amount/quantity recovers that price even if
			// the product has been repriced since.
			unitPrice := item.AmountCents / int64(item.Quantity)
			if _, err := q.CreateOrderItem(ctx, repository.CreateOrderItemParams{
				OrderID:        order.ID,
				ProductID:      item.ProductID,
				Quantity:       item.Quantity,
				UnitPriceCents: unitPrice,
			}); err != nil {
				return fmt.Errorf("create order item: %w", err)
			}
		}

		if err := q.DeleteCart(ctx, cart.ID); err != nil {
			return fmt.Errorf("delete cart: %w", err)
		}

		created = order
		detail, err = s.hydrate(ctx, q, order)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrdersCreated.WithLabelValues(string(paymentType)).Inc()
	s.metrics.OrderValue.Observe(float64(created.TotalCents))
	s.publish(ctx, events.SubjectOrderCreated, created)

	return detail, nil
}

// Get retrieves a single order. Owner or administrator only.
func (s *orderService) Get(ctx context.Context, actor domain.Identity, orderID pgtype.UUID) (*domain.OrderDetail, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if order.UserID != actor.ID && !actor.IsAdmin() {
		return nil, domain.ErrOrderAccessForbidden
	}

	return s.hydrate(ctx, s.store, order)
}

// List returns orders visible to the actor: own orders for users, orders
// containing their products for sellers, everything for administrators.
func (s *orderService) List(ctx context.Context, actor domain.Identity, filter domain.OrderFilter) ([]domain.OrderDetail, error) {
	var (
		orders []repository.Order
		err    error
	)

	switch actor.Role {
	case domain.RoleAdmin:
		orders, err = s.store.ListOrders(ctx)
	case domain.RoleSeller:
		orders, err = s.store.ListOrdersBySeller(ctx, actor.ID)
	default:
		orders, err = s.store.ListOrdersByUser(ctx, actor.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	details := make([]domain.OrderDetail, 0, len(orders))
	for _, order := range orders {
		if !matchesFilter(order, filter) {
			continue
		}
		d, err := s.hydrate(ctx, s.store, order)
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, nil
}

func matchesFilter(order repository.Order, filter domain.OrderFilter) bool {
	if filter.Status != "" && order.Status != string(filter.Status) {
		return false
	}
	if filter.Delivery != "" && order.Delivery != string(filter.Delivery) {
		return false
	}
	if filter.PaymentType != "" && order.PaymentType != string(filter.PaymentType) {
		return false
	}
	return true
}

// PayCash marks a cash-on-delivery order as paid. The write is
// unconditional: settling an already-paid COD order rewrites PAID.
func (s *orderService) PayCash(ctx context.Context, orderID pgtype.UUID) (*domain.OrderDetail, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if order.PaymentType != string(domain.PaymentCOD) {
		return nil, domain.ErrWrongPaymentType
	}

	updated, err := s.store.SetOrderStatus(ctx, repository.SetOrderStatusParams{
		ID:     order.ID,
		Status: string(domain.PaymentPaid),
	})
	if err != nil {
		return nil, fmt.Errorf("set order status: %w", err)
	}

	s.metrics.PaymentSucceeded.WithLabelValues(updated.PaymentType).Inc()
	s.publish(ctx, events.SubjectOrderPaid, updated)

	return s.hydrate(ctx, s.store, updated)
}

// HandleProviderEvent applies a verified payment-provider event to the
// order. The transition is guarded in SQL so only PENDING orders move;
// redeliveries and conflicting terminal events are absorbed without
// error, which tells the provider to stop retrying. Storage failures
// surface as errors so the delivery is retried.
func (s *orderService) HandleProviderEvent(ctx context.Context, kind domain.ProviderEventKind, orderID pgtype.UUID) error {
	var status domain.PaymentStatus
	switch kind {
	case domain.ProviderPaymentCompleted:
		status = domain.PaymentPaid
	case domain.ProviderPaymentFailed:
		status = domain.PaymentFailed
	default:
		s.logger.Warn("ignoring unrecognized provider event",
			"kind", string(kind),
			"order_id", domain.UUIDString(orderID))
		return nil
	}

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if isNoRows(err) {
			s.logger.Warn("provider event for unknown order",
				"kind", string(kind),
				"order_id", domain.UUIDString(orderID))
			return nil
		}
		return fmt.Errorf("get order: %w", err)
	}

	rows, err := s.store.SetOrderStatusFromPending(ctx, repository.SetOrderStatusParams{
		ID:     order.ID,
		Status: string(status),
	})
	if err != nil {
		return fmt.Errorf("set order status: %w", err)
	}
	if rows == 0 {
		s.logger.Info("provider event absorbed, order already settled",
			"kind", string(kind),
			"order_id", domain.UUIDString(orderID),
			"status", order.Status)
		return nil
	}

	order.Status = string(status)
	switch status {
	case domain.PaymentPaid:
		s.metrics.PaymentSucceeded.WithLabelValues(order.PaymentType).Inc()
		s.publish(ctx, events.SubjectOrderPaid, order)
	case domain.PaymentFailed:
		s.metrics.PaymentFailed.WithLabelValues(order.PaymentType).Inc()
		s.publish(ctx, events.SubjectOrderPaymentFailed, order)
	}
	return nil
}

// UpdateDelivery sets the delivery status. Staff only; DELIVERED
// additionally requires the order to be paid.
func (s *orderService) UpdateDelivery(ctx context.Context, actor domain.Identity, orderID pgtype.UUID, status domain.DeliveryStatus) (*domain.OrderDetail, error) {
	if !actor.IsStaff() {
		return nil, domain.Forbidden("order.update_delivery", "Only staff can update delivery status")
	}
	if !status.Valid() {
		return nil, domain.ErrInvalidDeliveryState
	}

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if status == domain.DeliveryDelivered && order.Status != string(domain.PaymentPaid) {
		return nil, domain.ErrOrderNotPaid
	}

	updated, err := s.store.SetOrderDelivery(ctx, repository.SetOrderDeliveryParams{
		ID:       order.ID,
		Delivery: string(status),
	})
	if err != nil {
		return nil, fmt.Errorf("set order delivery: %w", err)
	}

	return s.hydrate(ctx, s.store, updated)
}

// Cancel hard-deletes a PENDING order and its items. Owner or
// administrator only. Orders that have settled cannot be cancelled.
func (s *orderService) Cancel(ctx context.Context, actor domain.Identity, orderID pgtype.UUID) error {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if isNoRows(err) {
			return domain.ErrOrderNotFound
		}
		return fmt.Errorf("get order: %w", err)
	}

	if order.UserID != actor.ID && !actor.IsAdmin() {
		return domain.ErrOrderAccessForbidden
	}

	rows, err := s.store.DeleteOrderIfPending(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if rows == 0 {
		return domain.ErrOrderNotPending
	}

	s.metrics.OrdersCanceled.Inc()
	s.publish(ctx, events.SubjectOrderCancelled, order)
	return nil
}

// publish emits an order lifecycle event. Publishing is best-effort and
// never fails the triggering operation.
func (s *orderService) publish(ctx context.Context, subject string, order repository.Order) {
	err := s.publisher.Publish(ctx, subject, events.OrderEvent{
		OrderID:     domain.UUIDString(order.ID),
		UserID:      domain.UUIDString(order.UserID),
		TotalCents:  order.TotalCents,
		PaymentType: order.PaymentType,
		Status:      order.Status,
	})
	if err != nil {
		s.logger.Warn("failed to publish order event",
			"subject", subject,
			"order_id", domain.UUIDString(order.ID),
			"error", err)
	}
}

func (s *orderService) hydrate(ctx context.Context, q repository.Querier, order repository.Order) (*domain.OrderDetail, error) {
	rows, err := q.ListOrderItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}

	items := make([]domain.OrderItemDetail, 0, len(rows))
	for _, r := range rows {
		items = append(items, domain.OrderItemDetail{
			ID:             r.ID,
			ProductID:      r.ProductID,
			ProductName:    r.ProductName,
			Description:    r.ProductDescription,
			ImageURL:       r.ProductImageURL,
			Quantity:       r.Quantity,
			UnitPriceCents: r.UnitPriceCents,
		})
	}

	return &domain.OrderDetail{
		ID:          order.ID,
		UserID:      order.UserID,
		TotalCents:  order.TotalCents,
		PaymentType: domain.PaymentType(order.PaymentType),
		Status:      domain.PaymentStatus(order.Status),
		Delivery:    domain.DeliveryStatus(order.Delivery),
		Items:       items,
		CreatedAt:   order.CreatedAt,
	}, nil
}
