package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"shopflow-backend/internal/domain"
)

// In-memory repository fakes. They apply patches the same way the
// Postgres repositories do: field-level merge plus append-only arrays.

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
	seq    int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*domain.Order)}
}

func (r *fakeOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	order.OrderNumber = fmt.Sprintf("ORD-%05d", r.seq)
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, domain.E(domain.KindNotFound, "order not found")
	}
	cp := *order
	return &cp, nil
}

func (r *fakeOrderRepo) GetByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		if o.UserID != nil && *o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) GetAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.PaymentStatus != "" && o.PaymentStatus != filter.PaymentStatus {
			continue
		}
		if filter.Search != "" && !strings.Contains(o.OrderNumber, filter.Search) &&
			!strings.Contains(strings.ToLower(o.Customer.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) Update(ctx context.Context, id string, patch domain.OrderPatch) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, domain.E(domain.KindNotFound, "order not found")
	}
	if patch.Status != nil {
		order.Status = *patch.Status
	}
	if patch.PaymentStatus != nil {
		order.PaymentStatus = *patch.PaymentStatus
	}
	if patch.PaymentDetails != nil {
		order.PaymentDetails = *patch.PaymentDetails
	}
	if patch.DeliveryPartner != nil {
		cp := *patch.DeliveryPartner
		order.DeliveryPartner = &cp
	}
	order.AssignmentHistory = append(order.AssignmentHistory, patch.AppendAssignments...)
	order.Timeline = append(order.Timeline, patch.AppendTimeline...)
	order.UpdatedAt = time.Now()
	cp := *order
	return &cp, nil
}

// fakeTxManager runs fn directly; the map-backed fakes have no
// transactions to join.
type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakePartnerRepo struct {
	mu        sync.Mutex
	partners  map[string]*domain.DeliveryPartner
	completed map[string]int
}

func newFakePartnerRepo() *fakePartnerRepo {
	return &fakePartnerRepo{
		partners:  make(map[string]*domain.DeliveryPartner),
		completed: make(map[string]int),
	}
}

func (r *fakePartnerRepo) Create(ctx context.Context, partner *domain.DeliveryPartner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *partner
	r.partners[partner.ID] = &cp
	return nil
}

func (r *fakePartnerRepo) GetByID(ctx context.Context, id string) (*domain.DeliveryPartner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.partners[id]
	if !ok {
		return nil, domain.E(domain.KindNotFound, "delivery partner not found")
	}
	cp := *p
	return &cp, nil
}

func (r *fakePartnerRepo) GetAll(ctx context.Context) ([]domain.DeliveryPartner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.DeliveryPartner
	for _, p := range r.partners {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakePartnerRepo) GetActiveAvailable(ctx context.Context) ([]domain.DeliveryPartner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.DeliveryPartner
	for _, p := range r.partners {
		if p.Active && p.IsAvailable {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePartnerRepo) SetAvailability(ctx context.Context, id string, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.partners[id]
	if !ok {
		return domain.E(domain.KindNotFound, "delivery partner not found")
	}
	p.IsAvailable = available
	return nil
}

func (r *fakePartnerRepo) IncrementCompletedDeliveries(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.partners[id]; ok {
		p.CompletedDeliveries++
	}
	r.completed[id]++
	return nil
}

type fakeReturnRepo struct {
	mu      sync.Mutex
	returns map[string]*domain.Return
}

func newFakeReturnRepo() *fakeReturnRepo {
	return &fakeReturnRepo{returns: make(map[string]*domain.Return)}
}

func (r *fakeReturnRepo) Create(ctx context.Context, ret *domain.Return) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.returns {
		if existing.OrderID == ret.OrderID {
			return domain.E(domain.KindDuplicateReturn, "a return already exists for this order")
		}
	}
	ret.CreatedAt = time.Now()
	ret.UpdatedAt = ret.CreatedAt
	cp := *ret
	r.returns[ret.ID] = &cp
	return nil
}

func (r *fakeReturnRepo) GetByID(ctx context.Context, id string) (*domain.Return, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ret, ok := r.returns[id]
	if !ok {
		return nil, domain.E(domain.KindNotFound, "return not found")
	}
	cp := *ret
	return &cp, nil
}

func (r *fakeReturnRepo) GetByOrderID(ctx context.Context, orderID string) (*domain.Return, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ret := range r.returns {
		if ret.OrderID == orderID {
			cp := *ret
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeReturnRepo) GetByUserID(ctx context.Context, userID string) ([]domain.Return, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Return
	for _, ret := range r.returns {
		if ret.UserID == userID {
			out = append(out, *ret)
		}
	}
	return out, nil
}

func (r *fakeReturnRepo) GetAll(ctx context.Context, filter domain.ReturnFilter) ([]domain.Return, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Return
	for _, ret := range r.returns {
		if filter.Status != "" && ret.Status != filter.Status {
			continue
		}
		if filter.Type != "" && ret.Type != filter.Type {
			continue
		}
		out = append(out, *ret)
	}
	return out, int64(len(out)), nil
}

func (r *fakeReturnRepo) Update(ctx context.Context, id string, patch domain.ReturnPatch) (*domain.Return, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ret, ok := r.returns[id]
	if !ok {
		return nil, domain.E(domain.KindNotFound, "return not found")
	}
	if patch.Status != nil {
		ret.Status = *patch.Status
	}
	if patch.Items != nil {
		ret.Items = patch.Items
	}
	if patch.ExchangeItems != nil {
		ret.ExchangeItems = patch.ExchangeItems
	}
	if patch.CustomerNotes != nil {
		ret.CustomerNotes = *patch.CustomerNotes
	}
	if patch.AdminNotes != nil {
		ret.AdminNotes = *patch.AdminNotes
	}
	if patch.Images != nil {
		ret.Images = patch.Images
	}
	if patch.Refund != nil {
		ret.Refund = *patch.Refund
	}
	if patch.ReturnShipping != nil {
		ret.ReturnShipping = *patch.ReturnShipping
	}
	if patch.BankAccount != nil {
		cp := *patch.BankAccount
		ret.BankAccount = &cp
	}
	if patch.ShippingAddress != nil {
		cp := *patch.ShippingAddress
		ret.ShippingAddress = &cp
	}
	if patch.Timestamps != nil {
		ret.Timestamps = *patch.Timestamps
	}
	ret.UpdatedAt = time.Now()
	cp := *ret
	return &cp, nil
}

func (r *fakeReturnRepo) Stats(ctx context.Context) (*domain.ReturnStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &domain.ReturnStats{ByStatus: make(map[string]int64)}
	for _, ret := range r.returns {
		stats.ByStatus[ret.Status]++
		stats.TotalRequests++
		if ret.Refund.Status == domain.RefundStatusCompleted {
			stats.TotalRefunded += ret.Refund.Amount
		}
	}
	return stats, nil
}
