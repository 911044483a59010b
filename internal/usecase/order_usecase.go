package usecase

import (
	"context"
	"time"

	"shopflow-backend/internal/domain"
	"shopflow-backend/pkg/logger"
	"shopflow-backend/pkg/utils"

	"github.com/google/uuid"
)

const simulatedGateway = "simulated"

type OrderUsecase struct {
	orderRepo domain.OrderRepository
}

func NewOrderUsecase(repo domain.OrderRepository) *OrderUsecase {
	return &OrderUsecase{orderRepo: repo}
}

type CreateOrderReq struct {
	Customer       domain.Customer        `json:"customer"`
	Items          []domain.OrderItem     `json:"items"`
	Totals         domain.OrderTotals     `json:"totals"`
	PaymentMethod  string                 `json:"paymentMethod"`
	PaymentDetails *domain.PaymentDetails `json:"paymentDetails,omitempty"`
}

// CreateOrder creates an order and resolves its payment status
// synchronously: COD stays pending until delivery, every other method is
// settled against the simulated gateway immediately.
func (u *OrderUsecase) CreateOrder(ctx context.Context, userID *string, req CreateOrderReq) (*domain.Order, error) {
	if len(req.Items) == 0 {
		return nil, domain.E(domain.KindInvalidArgument, "order must contain at least one item")
	}
	if req.PaymentMethod == "" {
		return nil, domain.E(domain.KindInvalidArgument, "paymentMethod is required")
	}
	if !domain.ValidEnum(domain.PaymentMethods, req.PaymentMethod) {
		return nil, domain.E(domain.KindInvalidArgument, "invalid payment method: %s", req.PaymentMethod)
	}
	for _, item := range req.Items {
		if item.ProductID == "" {
			return nil, domain.E(domain.KindInvalidArgument, "order item is missing a product id")
		}
		if item.Quantity <= 0 {
			return nil, domain.E(domain.KindInvalidArgument, "order item %s has a non-positive quantity", item.ProductID)
		}
	}

	now := time.Now()
	details := domain.PaymentDetails{}
	if req.PaymentDetails != nil {
		details = *req.PaymentDetails
	}

	paymentStatus := domain.PaymentStatusPending
	if req.PaymentMethod != domain.PaymentMethodCOD {
		paymentStatus = domain.PaymentStatusPaid
		if details.TransactionID == "" {
			details.TransactionID = utils.GenerateTransactionID()
		}
		if details.Gateway == "" {
			details.Gateway = simulatedGateway
		}
		details.PaidAt = &now
	}

	actor := "guest"
	if userID != nil {
		actor = *userID
	}

	order := &domain.Order{
		ID:             uuid.NewString(),
		UserID:         userID,
		Customer:       req.Customer,
		Items:          req.Items,
		Totals:         req.Totals,
		PaymentMethod:  req.PaymentMethod,
		PaymentStatus:  paymentStatus,
		PaymentDetails: details,
		Status:         domain.OrderStatusPending,
		Timeline: []domain.TimelineEntry{{
			Status:    domain.OrderStatusPending,
			Timestamp: now,
			Actor:     actor,
			Notes:     "Order placed",
		}},
	}

	if err := u.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info().
		Str("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Str("payment_method", order.PaymentMethod).
		Str("payment_status", order.PaymentStatus).
		Msg("Order created")

	return order, nil
}

// UpdateOrderStatus moves an order to newStatus and applies the payment
// side effect in the same atomic write.
func (u *OrderUsecase) UpdateOrderStatus(ctx context.Context, orderID, newStatus, notes, actor string) (*domain.Order, error) {
	if !domain.ValidEnum(domain.OrderStatuses, newStatus) {
		return nil, domain.E(domain.KindInvalidArgument, "invalid order status: %s", newStatus)
	}

	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	patch := domain.OrderPatch{
		Status: &newStatus,
		AppendTimeline: []domain.TimelineEntry{{
			Status:    newStatus,
			Timestamp: now,
			Actor:     actor,
			Notes:     notes,
		}},
	}

	if eff := PaymentEffectFor(newStatus, order.PaymentMethod, order.PaymentStatus); eff != nil {
		details := order.PaymentDetails
		switch eff.PaymentStatus {
		case domain.PaymentStatusPaid:
			details.PaidAt = &now
		case domain.PaymentStatusRefunded:
			details.RefundedAt = &now
			details.RefundReason = eff.Reason
		case domain.PaymentStatusFailed:
			details.FailedAt = &now
			details.FailureReason = eff.Reason
		}
		patch.PaymentStatus = &eff.PaymentStatus
		patch.PaymentDetails = &details
	}

	updated, err := u.orderRepo.Update(ctx, orderID, patch)
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info().
		Str("order_id", orderID).
		Str("old_status", order.Status).
		Str("new_status", newStatus).
		Str("payment_status", updated.PaymentStatus).
		Msg("Order status updated")

	return updated, nil
}

// UpdatePaymentStatus is the manual admin override. It stamps the matching
// timestamp and records the note, deliberately without consulting the
// automatic side-effect rules.
func (u *OrderUsecase) UpdatePaymentStatus(ctx context.Context, orderID, newPaymentStatus, notes, actor string) (*domain.Order, error) {
	if !domain.ValidEnum(domain.PaymentStatuses, newPaymentStatus) {
		return nil, domain.E(domain.KindInvalidArgument, "invalid payment status: %s", newPaymentStatus)
	}

	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	details := order.PaymentDetails
	switch newPaymentStatus {
	case domain.PaymentStatusPaid:
		details.PaidAt = &now
	case domain.PaymentStatusRefunded:
		details.RefundedAt = &now
	case domain.PaymentStatusFailed:
		details.FailedAt = &now
	}
	if notes != "" {
		details.AdminNotes = notes
	}

	patch := domain.OrderPatch{
		PaymentStatus:  &newPaymentStatus,
		PaymentDetails: &details,
		AppendTimeline: []domain.TimelineEntry{{
			Status:    "payment_" + newPaymentStatus,
			Timestamp: now,
			Actor:     actor,
			Notes:     notes,
		}},
	}

	return u.orderRepo.Update(ctx, orderID, patch)
}

func (u *OrderUsecase) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return u.orderRepo.GetByID(ctx, id)
}

func (u *OrderUsecase) GetMyOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return u.orderRepo.GetByUserID(ctx, userID)
}

func (u *OrderUsecase) GetAllOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	return u.orderRepo.GetAll(ctx, filter)
}
