package usecase

import "shopflow-backend/internal/domain"

// PaymentEffect is the payment-status mutation implied by an order status
// change. A nil effect means the payment record must not be touched.
type PaymentEffect struct {
	PaymentStatus string
	Reason        string
}

// PaymentEffectFor computes the payment side effect of moving an order to
// newStatus. It is a pure function so the coupling between order status
// and payment status can be tested without persistence:
//   - delivered resolves collection for COD and still-pending payments;
//   - cancelled refunds collected payments and fails pending ones;
//   - every other status change leaves the payment record alone.
func PaymentEffectFor(newStatus, paymentMethod, paymentStatus string) *PaymentEffect {
	switch newStatus {
	case domain.OrderStatusDelivered:
		if paymentStatus == domain.PaymentStatusPaid {
			return nil
		}
		if paymentMethod == domain.PaymentMethodCOD || paymentStatus == domain.PaymentStatusPending {
			return &PaymentEffect{PaymentStatus: domain.PaymentStatusPaid}
		}
	case domain.OrderStatusCancelled:
		switch paymentStatus {
		case domain.PaymentStatusPaid:
			return &PaymentEffect{PaymentStatus: domain.PaymentStatusRefunded, Reason: "Order cancelled"}
		case domain.PaymentStatusPending:
			return &PaymentEffect{PaymentStatus: domain.PaymentStatusFailed, Reason: "Order cancelled"}
		}
	}
	return nil
}
