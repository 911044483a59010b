package usecase

import (
	"context"
	"time"

	"shopflow-backend/internal/domain"
	"shopflow-backend/pkg/cache"
	"shopflow-backend/pkg/logger"
	"shopflow-backend/pkg/utils"

	"github.com/google/uuid"
)

const (
	returnStatsCacheKey = "returns:stats"
	returnStatsCacheTTL = 5 * time.Minute
)

// ReturnUsecase drives the post-sale return workflow: the eligibility
// gate at creation, the admin status graph, and the nested refund
// sub-state machine.
type ReturnUsecase struct {
	returnRepo domain.ReturnRepository
	orderRepo  domain.OrderRepository
	cache      cache.CacheService
}

func NewReturnUsecase(returnRepo domain.ReturnRepository, orderRepo domain.OrderRepository, cacheService cache.CacheService) *ReturnUsecase {
	return &ReturnUsecase{returnRepo: returnRepo, orderRepo: orderRepo, cache: cacheService}
}

type CreateReturnReq struct {
	OrderID         string              `json:"orderId"`
	Type            string              `json:"type"`
	Items           []domain.ReturnItem `json:"items"`
	ExchangeItems   []domain.ReturnItem `json:"exchangeItems,omitempty"`
	CustomerNotes   string              `json:"customerNotes,omitempty"`
	Images          []string            `json:"images,omitempty"`
	BankAccount     *domain.BankAccount `json:"bankAccount,omitempty"`
	ShippingAddress *domain.Address     `json:"shippingAddress,omitempty"`
}

// CreateReturnRequest runs the eligibility gate in order: order exists,
// caller owns it, it was delivered, no return exists yet, and every
// requested item is part of the order. The refund amount is computed
// here from the order's captured unit prices.
func (u *ReturnUsecase) CreateReturnRequest(ctx context.Context, userID string, req CreateReturnReq) (*domain.Return, error) {
	if req.Type != domain.ReturnTypeReturn && req.Type != domain.ReturnTypeExchange {
		return nil, domain.E(domain.KindInvalidArgument, "invalid return type: %s", req.Type)
	}
	if len(req.Items) == 0 {
		return nil, domain.E(domain.KindInvalidArgument, "at least one item is required")
	}
	for _, item := range req.Items {
		if item.ProductID == "" || item.Quantity <= 0 || item.Reason == "" {
			return nil, domain.E(domain.KindInvalidArgument, "each item needs a product, quantity and reason")
		}
		if !domain.ValidEnum(domain.ItemConditions, item.Condition) {
			return nil, domain.E(domain.KindInvalidArgument, "invalid item condition: %s", item.Condition)
		}
	}
	if req.Type == domain.ReturnTypeExchange && len(req.ExchangeItems) == 0 {
		return nil, domain.E(domain.KindInvalidArgument, "exchange requests need replacement items")
	}
	if req.Type == domain.ReturnTypeReturn && req.ShippingAddress == nil {
		return nil, domain.E(domain.KindInvalidArgument, "shipping address is required for returns")
	}

	order, err := u.orderRepo.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.UserID == nil || *order.UserID != userID {
		return nil, domain.E(domain.KindForbidden, "order does not belong to this user")
	}
	if order.Status != domain.OrderStatusDelivered {
		return nil, domain.E(domain.KindOrderNotEligible, "order %s is %s, only delivered orders can be returned", order.OrderNumber, order.Status)
	}

	existing, err := u.returnRepo.GetByOrderID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.E(domain.KindDuplicateReturn, "a return already exists for order %s", order.OrderNumber)
	}

	var amount float64
	for i := range req.Items {
		item := &req.Items[i]
		var matched *domain.OrderItem
		for j := range order.Items {
			if order.Items[j].ProductID == item.ProductID {
				matched = &order.Items[j]
				break
			}
		}
		if matched == nil {
			return nil, domain.E(domain.KindItemNotInOrder, "product %s is not part of order %s", item.ProductID, order.OrderNumber)
		}
		if item.Name == "" {
			item.Name = matched.Name
		}
		amount += matched.Price * float64(item.Quantity)
	}

	now := time.Now()
	ret := &domain.Return{
		ID:            uuid.NewString(),
		OrderID:       order.ID,
		UserID:        userID,
		Type:          req.Type,
		Status:        domain.ReturnStatusPending,
		Items:         req.Items,
		ExchangeItems: req.ExchangeItems,
		CustomerNotes: req.CustomerNotes,
		Images:        req.Images,
		Refund: domain.Refund{
			Status: domain.RefundStatusPending,
			Amount: amount,
		},
		BankAccount:     req.BankAccount,
		ShippingAddress: req.ShippingAddress,
		Timestamps:      domain.ReturnTimestamps{RequestedAt: &now},
	}

	if err := u.returnRepo.Create(ctx, ret); err != nil {
		return nil, err
	}
	u.cache.Delete(returnStatsCacheKey)

	logger.WithContext(ctx).Info().
		Str("return_id", ret.ID).
		Str("order_id", order.ID).
		Str("type", ret.Type).
		Float64("refund_amount", amount).
		Msg("Return request created")

	return ret, nil
}

type UpdateReturnStatusReq struct {
	Status         string `json:"status"`
	AdminNotes     string `json:"adminNotes,omitempty"`
	RefundMethod   string `json:"refundMethod,omitempty"`
	TrackingNumber string `json:"trackingNumber,omitempty"`
	Carrier        string `json:"carrier,omitempty"`
}

// UpdateReturnStatus moves a return along the status graph and stamps
// the timestamp matching the destination state.
func (u *ReturnUsecase) UpdateReturnStatus(ctx context.Context, returnID string, req UpdateReturnStatusReq) (*domain.Return, error) {
	if !domain.ValidEnum(domain.ReturnStatuses, req.Status) {
		return nil, domain.E(domain.KindInvalidArgument, "invalid return status: %s", req.Status)
	}
	if req.RefundMethod != "" && !domain.ValidEnum(domain.RefundMethods, req.RefundMethod) {
		return nil, domain.E(domain.KindInvalidArgument, "invalid refund method: %s", req.RefundMethod)
	}

	ret, err := u.returnRepo.GetByID(ctx, returnID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransitionReturn(ret.Status, req.Status) {
		return nil, domain.E(domain.KindInvalidTransition, "cannot transition from %s to %s", ret.Status, req.Status)
	}

	now := time.Now()
	patch := domain.ReturnPatch{Status: &req.Status}
	if req.AdminNotes != "" {
		patch.AdminNotes = &req.AdminNotes
	}
	if req.RefundMethod != "" {
		refund := ret.Refund
		refund.Method = req.RefundMethod
		patch.Refund = &refund
	}

	ts := ret.Timestamps
	switch req.Status {
	case domain.ReturnStatusApproved:
		ts.ApprovedAt = &now
		patch.Timestamps = &ts
	case domain.ReturnStatusRejected:
		ts.RejectedAt = &now
		patch.Timestamps = &ts
	case domain.ReturnStatusCompleted:
		ts.CompletedAt = &now
		patch.Timestamps = &ts
	case domain.ReturnStatusShipped:
		shipping := ret.ReturnShipping
		shipping.ShippedAt = &now
		if req.TrackingNumber != "" {
			shipping.TrackingNumber = req.TrackingNumber
		}
		if req.Carrier != "" {
			shipping.Carrier = req.Carrier
		}
		patch.ReturnShipping = &shipping
	case domain.ReturnStatusReceived:
		shipping := ret.ReturnShipping
		shipping.DeliveredAt = &now
		patch.ReturnShipping = &shipping
	}

	updated, err := u.returnRepo.Update(ctx, returnID, patch)
	if err != nil {
		return nil, err
	}
	u.cache.Delete(returnStatsCacheKey)

	logger.WithContext(ctx).Info().
		Str("return_id", returnID).
		Str("from", ret.Status).
		Str("to", req.Status).
		Msg("Return status updated")

	return updated, nil
}

// ProcessRefund starts the refund: only approved returns are eligible,
// and a bank transfer needs the customer's bank account on file. The
// transaction id comes from the gateway; one is generated when absent.
func (u *ReturnUsecase) ProcessRefund(ctx context.Context, returnID, transactionID, method string) (*domain.Return, error) {
	ret, err := u.returnRepo.GetByID(ctx, returnID)
	if err != nil {
		return nil, err
	}
	if ret.Status != domain.ReturnStatusApproved {
		return nil, domain.E(domain.KindRefundNotEligible, "refund requires an approved return, current status is %s", ret.Status)
	}

	if method == "" {
		method = ret.Refund.Method
	}
	if !domain.ValidEnum(domain.RefundMethods, method) {
		return nil, domain.E(domain.KindInvalidArgument, "invalid refund method: %s", method)
	}
	if method == domain.RefundMethodBankTransfer && ret.BankAccount == nil {
		return nil, domain.E(domain.KindInvalidArgument, "bank transfer refunds require bank account details")
	}

	if transactionID == "" {
		transactionID = utils.GenerateTransactionID()
	}

	now := time.Now()
	refund := ret.Refund
	refund.Status = domain.RefundStatusProcessing
	refund.Method = method
	refund.TransactionID = transactionID
	refund.ProcessedAt = &now

	updated, err := u.returnRepo.Update(ctx, returnID, domain.ReturnPatch{Refund: &refund})
	if err != nil {
		return nil, err
	}
	u.cache.Delete(returnStatsCacheKey)

	logger.WithContext(ctx).Info().
		Str("return_id", returnID).
		Str("refund_method", method).
		Str("transaction_id", refund.TransactionID).
		Float64("amount", refund.Amount).
		Msg("Refund processing started")

	return updated, nil
}

// CompleteRefund settles a processing refund.
func (u *ReturnUsecase) CompleteRefund(ctx context.Context, returnID string) (*domain.Return, error) {
	ret, err := u.returnRepo.GetByID(ctx, returnID)
	if err != nil {
		return nil, err
	}
	if ret.Refund.Status != domain.RefundStatusProcessing {
		return nil, domain.E(domain.KindRefundNotProcessing, "refund is %s, only processing refunds can be completed", ret.Refund.Status)
	}

	now := time.Now()
	refund := ret.Refund
	refund.Status = domain.RefundStatusCompleted
	refund.CompletedAt = &now

	updated, err := u.returnRepo.Update(ctx, returnID, domain.ReturnPatch{Refund: &refund})
	if err != nil {
		return nil, err
	}
	u.cache.Delete(returnStatsCacheKey)

	logger.WithContext(ctx).Info().
		Str("return_id", returnID).
		Float64("amount", refund.Amount).
		Msg("Refund completed")

	return updated, nil
}

type UpdateReturnReq struct {
	Items           []domain.ReturnItem `json:"items,omitempty"`
	ExchangeItems   []domain.ReturnItem `json:"exchangeItems,omitempty"`
	CustomerNotes   *string             `json:"customerNotes,omitempty"`
	Images          []string            `json:"images,omitempty"`
	BankAccount     *domain.BankAccount `json:"bankAccount,omitempty"`
	ShippingAddress *domain.Address     `json:"shippingAddress,omitempty"`
}

// lockedCheck enforces ownership and the pending-only edit window.
func (u *ReturnUsecase) lockedCheck(ctx context.Context, returnID, userID string) (*domain.Return, error) {
	ret, err := u.returnRepo.GetByID(ctx, returnID)
	if err != nil {
		return nil, err
	}
	if ret.UserID != userID {
		return nil, domain.E(domain.KindForbidden, "return does not belong to this user")
	}
	if ret.Status != domain.ReturnStatusPending {
		return nil, domain.E(domain.KindReturnLocked, "return is %s and can no longer be modified by the customer", ret.Status)
	}
	return ret, nil
}

// UpdateReturnRequest lets the customer amend a still-pending return.
func (u *ReturnUsecase) UpdateReturnRequest(ctx context.Context, returnID, userID string, req UpdateReturnReq) (*domain.Return, error) {
	if _, err := u.lockedCheck(ctx, returnID, userID); err != nil {
		return nil, err
	}

	for _, item := range req.Items {
		if item.ProductID == "" || item.Quantity <= 0 || item.Reason == "" {
			return nil, domain.E(domain.KindInvalidArgument, "each item needs a product, quantity and reason")
		}
		if !domain.ValidEnum(domain.ItemConditions, item.Condition) {
			return nil, domain.E(domain.KindInvalidArgument, "invalid item condition: %s", item.Condition)
		}
	}

	patch := domain.ReturnPatch{
		Items:           req.Items,
		ExchangeItems:   req.ExchangeItems,
		CustomerNotes:   req.CustomerNotes,
		Images:          req.Images,
		BankAccount:     req.BankAccount,
		ShippingAddress: req.ShippingAddress,
	}
	return u.returnRepo.Update(ctx, returnID, patch)
}

// CancelReturnRequest withdraws a still-pending return.
func (u *ReturnUsecase) CancelReturnRequest(ctx context.Context, returnID, userID string) (*domain.Return, error) {
	if _, err := u.lockedCheck(ctx, returnID, userID); err != nil {
		return nil, err
	}

	cancelled := domain.ReturnStatusCancelled
	updated, err := u.returnRepo.Update(ctx, returnID, domain.ReturnPatch{Status: &cancelled})
	if err != nil {
		return nil, err
	}
	u.cache.Delete(returnStatsCacheKey)
	return updated, nil
}

func (u *ReturnUsecase) GetReturn(ctx context.Context, returnID string) (*domain.Return, error) {
	return u.returnRepo.GetByID(ctx, returnID)
}

// GetMyReturn enforces ownership for the customer-facing detail view.
func (u *ReturnUsecase) GetMyReturn(ctx context.Context, returnID, userID string) (*domain.Return, error) {
	ret, err := u.returnRepo.GetByID(ctx, returnID)
	if err != nil {
		return nil, err
	}
	if ret.UserID != userID {
		return nil, domain.E(domain.KindForbidden, "return does not belong to this user")
	}
	return ret, nil
}

func (u *ReturnUsecase) GetMyReturns(ctx context.Context, userID string) ([]domain.Return, error) {
	return u.returnRepo.GetByUserID(ctx, userID)
}

func (u *ReturnUsecase) ListReturns(ctx context.Context, filter domain.ReturnFilter) ([]domain.Return, int64, error) {
	return u.returnRepo.GetAll(ctx, filter)
}

// GetStats serves aggregate return counters, cached briefly since the
// admin dashboard polls them.
func (u *ReturnUsecase) GetStats(ctx context.Context) (*domain.ReturnStats, error) {
	if cached, found := u.cache.Get(returnStatsCacheKey); found {
		if stats, ok := cached.(*domain.ReturnStats); ok {
			return stats, nil
		}
	}

	stats, err := u.returnRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	u.cache.Set(returnStatsCacheKey, stats, returnStatsCacheTTL)
	return stats, nil
}
