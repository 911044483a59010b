package usecase

import (
	"context"
	"testing"
	"time"

	"shopflow-backend/internal/domain"
	"shopflow-backend/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type returnFixture struct {
	uc         *ReturnUsecase
	returnRepo *fakeReturnRepo
	order      *domain.Order
}

// newReturnFixture creates a delivered COD order owned by user-1 so
// return requests pass the eligibility gate.
func newReturnFixture(t *testing.T) *returnFixture {
	t.Helper()
	ctx := context.Background()

	orderRepo := newFakeOrderRepo()
	returnRepo := newFakeReturnRepo()

	orderUC := NewOrderUsecase(orderRepo)
	uc := NewReturnUsecase(returnRepo, orderRepo, cache.NewMemoryCache(time.Minute, time.Minute))

	order, err := orderUC.CreateOrder(ctx, strptr("user-1"), testCreateOrderReq(domain.PaymentMethodCOD))
	require.NoError(t, err)
	order, err = orderUC.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusDelivered, "", "admin-1")
	require.NoError(t, err)

	return &returnFixture{uc: uc, returnRepo: returnRepo, order: order}
}

func testReturnReq(orderID string) CreateReturnReq {
	return CreateReturnReq{
		OrderID: orderID,
		Type:    domain.ReturnTypeReturn,
		Items: []domain.ReturnItem{
			{ProductID: "prod-1", Quantity: 1, Reason: "Wrong size", Condition: domain.ItemConditionNew},
		},
		ShippingAddress: &domain.Address{
			Street:  "12 MG Road",
			City:    "Bengaluru",
			State:   "Karnataka",
			Pincode: "560001",
		},
	}
}

func TestCreateReturnRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("eligible order creates a pending return", func(t *testing.T) {
		f := newReturnFixture(t)
		ret, err := f.uc.CreateReturnRequest(ctx, "user-1", testReturnReq(f.order.ID))
		require.NoError(t, err)
		assert.Equal(t, domain.ReturnStatusPending, ret.Status)
		assert.Equal(t, domain.RefundStatusPending, ret.Refund.Status)
		// prod-1 unit price 500, one unit returned.
		assert.Equal(t, 500.0, ret.Refund.Amount)
		assert.Equal(t, "Cotton Kurta", ret.Items[0].Name)
		require.NotNil(t, ret.Timestamps.RequestedAt)
	})

	t.Run("refund amount sums requested quantities", func(t *testing.T) {
		f := newReturnFixture(t)
		req := testReturnReq(f.order.ID)
		req.Items = []domain.ReturnItem{
			{ProductID: "prod-1", Quantity: 2, Reason: "Wrong size", Condition: domain.ItemConditionNew},
			{ProductID: "prod-2", Quantity: 1, Reason: "Damaged", Condition: domain.ItemConditionDamaged},
		}
		ret, err := f.uc.CreateReturnRequest(ctx, "user-1", req)
		require.NoError(t, err)
		assert.Equal(t, 2200.0, ret.Refund.Amount)
	})

	t.Run("foreign order is forbidden", func(t *testing.T) {
		f := newReturnFixture(t)
		_, err := f.uc.CreateReturnRequest(ctx, "user-2", testReturnReq(f.order.ID))
		assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	})

	t.Run("undelivered order is not eligible", func(t *testing.T) {
		f := newReturnFixture(t)
		orderRepo := newFakeOrderRepo()
		orderUC := NewOrderUsecase(orderRepo)
		uc := NewReturnUsecase(f.returnRepo, orderRepo, cache.NewMemoryCache(time.Minute, time.Minute))
		order, err := orderUC.CreateOrder(ctx, strptr("user-1"), testCreateOrderReq(domain.PaymentMethodCOD))
		require.NoError(t, err)

		_, err = uc.CreateReturnRequest(ctx, "user-1", testReturnReq(order.ID))
		assert.Equal(t, domain.KindOrderNotEligible, domain.KindOf(err))
	})

	t.Run("one return per order", func(t *testing.T) {
		f := newReturnFixture(t)
		_, err := f.uc.CreateReturnRequest(ctx, "user-1", testReturnReq(f.order.ID))
		require.NoError(t, err)
		_, err = f.uc.CreateReturnRequest(ctx, "user-1", testReturnReq(f.order.ID))
		assert.Equal(t, domain.KindDuplicateReturn, domain.KindOf(err))
	})

	t.Run("item must belong to the order", func(t *testing.T) {
		f := newReturnFixture(t)
		req := testReturnReq(f.order.ID)
		req.Items[0].ProductID = "prod-99"
		_, err := f.uc.CreateReturnRequest(ctx, "user-1", req)
		assert.Equal(t, domain.KindItemNotInOrder, domain.KindOf(err))
	})

	t.Run("return type needs a shipping address", func(t *testing.T) {
		f := newReturnFixture(t)
		req := testReturnReq(f.order.ID)
		req.ShippingAddress = nil
		_, err := f.uc.CreateReturnRequest(ctx, "user-1", req)
		assert.Equal(t, domain.KindInvalidArgument, domain.KindOf(err))
	})

	t.Run("exchange needs replacement items", func(t *testing.T) {
		f := newReturnFixture(t)
		req := testReturnReq(f.order.ID)
		req.Type = domain.ReturnTypeExchange
		req.ExchangeItems = nil
		_, err := f.uc.CreateReturnRequest(ctx, "user-1", req)
		assert.Equal(t, domain.KindInvalidArgument, domain.KindOf(err))
	})

	t.Run("invalid condition rejected", func(t *testing.T) {
		f := newReturnFixture(t)
		req := testReturnReq(f.order.ID)
		req.Items[0].Condition = "pristine"
		_, err := f.uc.CreateReturnRequest(ctx, "user-1", req)
		assert.Equal(t, domain.KindInvalidArgument, domain.KindOf(err))
	})
}

func TestUpdateReturnStatusTransitionMatrix(t *testing.T) {
	ctx := context.Background()

	statuses := domain.ReturnStatuses
	for _, from := range statuses {
		for _, to := range statuses {
			from, to := from, to
			t.Run(from+"_to_"+to, func(t *testing.T) {
				f := newReturnFixture(t)
				ret, err := f.uc.CreateReturnRequest(ctx, "user-1", testReturnReq(f.order.ID))
				require.NoError(t, err)

				// Force the starting status directly in the store.
				_, err = f.returnRepo.Update(ctx, ret.ID, domain.ReturnPatch{Status: &from})
				require.NoError(t, err)

				updated, err := f.uc.UpdateReturnStatus(ctx, ret.ID, UpdateReturnStatusReq{Status: to})
				if domain.CanTransitionReturn(from, to) {
					require.NoError(t, err)
					assert.Equal(t, to, updated.Status)
					return
				}
				assert.Equal(t, domain.KindInvalidTransition, domain.KindOf(err))
				stored, err := f.returnRepo.GetByID(ctx, ret.ID)
				require.NoError(t, err)
				assert.Equal(t, from, stored.Status, "rejected transition must leave the return unchanged")
			})
		}
	}
}

func TestUpdateReturnStatusTimestamps(t *testing.T) {
	ctx := context.Background()

	advance := func(t *testing.T, f *returnFixture, retID string, statuses ...string) *domain.Return {
		t.Helper()
		var updated *domain.Return
		var err error
		for _, s := range statuses {
			updated, err = f.uc.UpdateReturnStatus(ctx, retID, UpdateReturnStatusReq{Status: s})
			require.NoError(t, err)
		}
		return updated
	}

	t.Run("approved stamps approvedAt", func(t *testing.T) {
		f := newReturnFixture(t)
		ret, err := f.uc.CreateReturnRequest(ctx, "user-1", testReturnReq(f.order.ID))
		require.NoError(t, err)
		updated := advance(t, f, ret.ID, domain.ReturnStatusApproved)
		require.NotNil(t, updated.Timestamps.ApprovedAt)
		assert.Nil(t, updated.Timestamps.RejectedAt)
	})

	t.Run("rejected stamps rejectedAt and allows re-review", func(t *testing.T) {
		f := newReturnFixture(t)
		ret, err := f.uc.CreateReturnRequest(ctx, "user-1", testReturnReq(f.order.ID))
		require.NoError(t, err)
		updated := advance(t, f, ret.ID, domain.ReturnStatusRejected)
		require.NotNil(t, updated.Timestamps.RejectedAt)

		updated = advance(t, f, ret.ID, domain.ReturnStatusPending, domain.ReturnStatusApproved)
		assert.Equal(t, domain.ReturnStatusApproved, updated.Status)
	})

	t.Run("shipped and received stamp return shipping", func(t *testing.T) {
		f := newReturnFixture(t)
		ret, err := f.uc.CreateReturnRequest(ctx, "user-1", testReturnReq(f.order.ID))
		require.NoError(t, err)

		advance(t, f, ret.ID, domain.ReturnStatusApproved, domain.ReturnStatusProcessing)
		updated, err := f.uc.UpdateReturnStatus(ctx, ret.ID, UpdateReturnStatusReq{
			Status:         domain.ReturnStatusShipped,
			TrackingNumber: "AWB123",
			Carrier:        "BlueDart",
		})
		require.NoError(t, err)
		require.NotNil(t, updated.ReturnShipping.ShippedAt)
		assert.Equal(t, "AWB123", updated.ReturnShipping.TrackingNumber)
		assert.Equal(t, "BlueDart", updated.ReturnShipping.Carrier)

		updated = advance(t, f, ret.ID, domain.ReturnStatusReceived)
		require.NotNil(t, updated.ReturnShipping.DeliveredAt)

		updated = advance(t, f, ret.ID, domain.ReturnStatusCompleted)
		require.NotNil(t, updated.Timestamps.CompletedAt)
	})
}

func TestRefundLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("refund requires approval first", func(t *testing.T) {
		f := newReturnFixture(t)
		ret, err := f.uc.CreateReturnRequest(ctx, "user-1", testReturnReq(f.order.ID))
		require.NoError(t, err)

		_, err = f.uc.ProcessRefund(ctx, ret.ID, "TXN1", domain.RefundMethodOriginal)
		assert.Equal(t, domain.KindRefundNotEligible, domain.KindOf(err))
	})

	t.Run("bank transfer requires account details", func(t *testing.T) {
		f := newReturnFixture(t)
		ret, err := f.uc.CreateReturnRequest(ctx, "user-1", testReturnReq(f.order.ID))
		require.NoError(t, err)
		_, err = f.uc.UpdateReturnStatus(ctx, ret.ID, UpdateReturnStatusReq{Status: domain.ReturnStatusApproved})
		require.NoError(t, err)

		_, err = f.uc.ProcessRefund(ctx, ret.ID, "TXN1", domain.RefundMethodBankTransfer)
		assert.Equal(t, domain.KindInvalidArgument, domain.KindOf(err))
	})

	t.Run("complete requires processing", func(t *testing.T) {
		f := newReturnFixture(t)
		ret, err := f.uc.CreateReturnRequest(ctx, "user-1", testReturnReq(f.order.ID))
		require.NoError(t, err)

		_, err = f.uc.CompleteRefund(ctx, ret.ID)
		assert.Equal(t, domain.KindRefundNotProcessing, domain.KindOf(err))
	})
}

// TestCODReturnScenario walks the full lifecycle: a two-line COD order is
// assigned, delivered (settling payment), one unit comes back, and its
// refund is processed and completed exactly once.
func TestCODReturnScenario(t *testing.T) {
	ctx := context.Background()

	orderRepo := newFakeOrderRepo()
	partnerRepo := newFakePartnerRepo()
	returnRepo := newFakeReturnRepo()
	orderUC := NewOrderUsecase(orderRepo)
	deliveryUC := NewDeliveryUsecase(orderRepo, partnerRepo, fakeTxManager{})
	returnUC := NewReturnUsecase(returnRepo, orderRepo, cache.NewMemoryCache(time.Minute, time.Minute))

	seedPartner(t, partnerRepo, "p1", domain.ServiceArea{City: "All India", State: "All States"})

	order, err := orderUC.CreateOrder(ctx, strptr("user-1"), testCreateOrderReq(domain.PaymentMethodCOD))
	require.NoError(t, err)
	assert.Equal(t, 2200.0, order.Totals.Total)
	assert.Equal(t, domain.PaymentStatusPending, order.PaymentStatus)

	order, _, err = deliveryUC.AssignOrderToPartner(ctx, order.ID, AssignReq{PartnerID: "p1"}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, order.Status)

	order, err = deliveryUC.UpdateDeliveryStatus(ctx, order.ID, domain.DeliveryStatusDelivered, "", "", "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, order.Status)
	assert.Equal(t, domain.PaymentStatusPaid, order.PaymentStatus)

	ret, err := returnUC.CreateReturnRequest(ctx, "user-1", testReturnReq(order.ID))
	require.NoError(t, err)
	assert.Equal(t, domain.ReturnStatusPending, ret.Status)
	assert.Equal(t, 500.0, ret.Refund.Amount)

	ret, err = returnUC.UpdateReturnStatus(ctx, ret.ID, UpdateReturnStatusReq{Status: domain.ReturnStatusApproved})
	require.NoError(t, err)

	ret, err = returnUC.ProcessRefund(ctx, ret.ID, "TXN1", domain.RefundMethodOriginal)
	require.NoError(t, err)
	assert.Equal(t, domain.RefundStatusProcessing, ret.Refund.Status)
	assert.Equal(t, "TXN1", ret.Refund.TransactionID)
	require.NotNil(t, ret.Refund.ProcessedAt)

	ret, err = returnUC.CompleteRefund(ctx, ret.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RefundStatusCompleted, ret.Refund.Status)
	require.NotNil(t, ret.Refund.CompletedAt)

	_, err = returnUC.CompleteRefund(ctx, ret.ID)
	assert.Equal(t, domain.KindRefundNotProcessing, domain.KindOf(err))
}

func TestCustomerReturnEdits(t *testing.T) {
	ctx := context.Background()

	t.Run("pending return can be amended", func(t *testing.T) {
		f := newReturnFixture(t)
		ret, err := f.uc.CreateReturnRequest(ctx, "user-1", testReturnReq(f.order.ID))
		require.NoError(t, err)

		notes := "Please pick up after 6pm"
		updated, err := f.uc.UpdateReturnRequest(ctx, ret.ID, "user-1", UpdateReturnReq{CustomerNotes: &notes})
		require.NoError(t, err)
		assert.Equal(t, notes, updated.CustomerNotes)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		f := newReturnFixture(t)
		ret, err := f.uc.CreateReturnRequest(ctx, "user-1", testReturnReq(f.order.ID))
		require.NoError(t, err)

		_, err = f.uc.UpdateReturnRequest(ctx, ret.ID, "user-2", UpdateReturnReq{})
		assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
		_, err = f.uc.CancelReturnRequest(ctx, ret.ID, "user-2")
		assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	})

	t.Run("approved return is locked", func(t *testing.T) {
		f := newReturnFixture(t)
		ret, err := f.uc.CreateReturnRequest(ctx, "user-1", testReturnReq(f.order.ID))
		require.NoError(t, err)
		_, err = f.uc.UpdateReturnStatus(ctx, ret.ID, UpdateReturnStatusReq{Status: domain.ReturnStatusApproved})
		require.NoError(t, err)

		_, err = f.uc.UpdateReturnRequest(ctx, ret.ID, "user-1", UpdateReturnReq{})
		assert.Equal(t, domain.KindReturnLocked, domain.KindOf(err))
		_, err = f.uc.CancelReturnRequest(ctx, ret.ID, "user-1")
		assert.Equal(t, domain.KindReturnLocked, domain.KindOf(err))
	})

	t.Run("pending return can be cancelled", func(t *testing.T) {
		f := newReturnFixture(t)
		ret, err := f.uc.CreateReturnRequest(ctx, "user-1", testReturnReq(f.order.ID))
		require.NoError(t, err)

		cancelled, err := f.uc.CancelReturnRequest(ctx, ret.ID, "user-1")
		require.NoError(t, err)
		assert.Equal(t, domain.ReturnStatusCancelled, cancelled.Status)
		assert.True(t, cancelled.Terminal())

		// Terminal: no admin transition leads out of cancelled.
		_, err = f.uc.UpdateReturnStatus(ctx, ret.ID, UpdateReturnStatusReq{Status: domain.ReturnStatusPending})
		assert.Equal(t, domain.KindInvalidTransition, domain.KindOf(err))
	})
}

func TestReturnStats(t *testing.T) {
	ctx := context.Background()
	f := newReturnFixture(t)

	ret, err := f.uc.CreateReturnRequest(ctx, "user-1", testReturnReq(f.order.ID))
	require.NoError(t, err)

	stats, err := f.uc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalRequests)
	assert.Equal(t, int64(1), stats.ByStatus[domain.ReturnStatusPending])
	assert.Equal(t, 0.0, stats.TotalRefunded)

	// A status change invalidates the cached snapshot.
	_, err = f.uc.UpdateReturnStatus(ctx, ret.ID, UpdateReturnStatusReq{Status: domain.ReturnStatusApproved})
	require.NoError(t, err)

	stats, err = f.uc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.ByStatus[domain.ReturnStatusApproved])
	assert.Zero(t, stats.ByStatus[domain.ReturnStatusPending])
}
