package domain

// Order Statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Payment Statuses
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Payment Methods
const (
	PaymentMethodCard       = "card"
	PaymentMethodUPI        = "upi"
	PaymentMethodNetbanking = "netbanking"
	PaymentMethodWallet     = "wallet"
	PaymentMethodCOD        = "cod"
)

// Delivery Sub-Statuses (tracked on the partner assignment)
const (
	DeliveryStatusPending        = "pending"
	DeliveryStatusAssigned       = "assigned"
	DeliveryStatusPickedUp       = "picked_up"
	DeliveryStatusInTransit      = "in_transit"
	DeliveryStatusOutForDelivery = "out_for_delivery"
	DeliveryStatusDelivered      = "delivered"
	DeliveryStatusFailed         = "failed"
	DeliveryStatusReturned       = "returned"
)

// Return Statuses
const (
	ReturnStatusPending    = "pending"
	ReturnStatusApproved   = "approved"
	ReturnStatusRejected   = "rejected"
	ReturnStatusProcessing = "processing"
	ReturnStatusShipped    = "shipped"
	ReturnStatusReceived   = "received"
	ReturnStatusCompleted  = "completed"
	ReturnStatusCancelled  = "cancelled"
)

// Return Types
const (
	ReturnTypeReturn   = "return"
	ReturnTypeExchange = "exchange"
)

// Refund Statuses (nested sub-state machine inside a Return)
const (
	RefundStatusPending    = "pending"
	RefundStatusProcessing = "processing"
	RefundStatusCompleted  = "completed"
	RefundStatusFailed     = "failed"
)

// Refund Methods
const (
	RefundMethodOriginal     = "original_payment"
	RefundMethodBankTransfer = "bank_transfer"
	RefundMethodStoreCredit  = "store_credit"
)

// Returned Item Conditions
const (
	ItemConditionNew     = "new"
	ItemConditionUsed    = "used"
	ItemConditionDamaged = "damaged"
)

// Service Area Wildcards
const (
	ServiceAreaAllIndia  = "All India"
	ServiceAreaAllStates = "All States"
)

// List Exports for API
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

var PaymentStatuses = []string{
	PaymentStatusPending,
	PaymentStatusPaid,
	PaymentStatusFailed,
	PaymentStatusRefunded,
}

var PaymentMethods = []string{
	PaymentMethodCard,
	PaymentMethodUPI,
	PaymentMethodNetbanking,
	PaymentMethodWallet,
	PaymentMethodCOD,
}

var DeliveryStatuses = []string{
	DeliveryStatusPending,
	DeliveryStatusAssigned,
	DeliveryStatusPickedUp,
	DeliveryStatusInTransit,
	DeliveryStatusOutForDelivery,
	DeliveryStatusDelivered,
	DeliveryStatusFailed,
	DeliveryStatusReturned,
}

var ReturnStatuses = []string{
	ReturnStatusPending,
	ReturnStatusApproved,
	ReturnStatusRejected,
	ReturnStatusProcessing,
	ReturnStatusShipped,
	ReturnStatusReceived,
	ReturnStatusCompleted,
	ReturnStatusCancelled,
}

var RefundMethods = []string{
	RefundMethodOriginal,
	RefundMethodBankTransfer,
	RefundMethodStoreCredit,
}

var ItemConditions = []string{
	ItemConditionNew,
	ItemConditionUsed,
	ItemConditionDamaged,
}

// ReturnTransitions is the return status graph: current status -> allowed
// next statuses. completed and cancelled are terminal. A rejected return
// may be moved back to pending for re-review.
var ReturnTransitions = map[string][]string{
	ReturnStatusPending:    {ReturnStatusApproved, ReturnStatusRejected},
	ReturnStatusApproved:   {ReturnStatusProcessing, ReturnStatusRejected},
	ReturnStatusProcessing: {ReturnStatusShipped, ReturnStatusReceived, ReturnStatusCompleted},
	ReturnStatusShipped:    {ReturnStatusReceived, ReturnStatusCompleted},
	ReturnStatusReceived:   {ReturnStatusCompleted},
	ReturnStatusRejected:   {ReturnStatusPending},
	ReturnStatusCompleted:  {},
	ReturnStatusCancelled:  {},
}

// CanTransitionReturn reports whether a return may move from current to next.
func CanTransitionReturn(current, next string) bool {
	for _, allowed := range ReturnTransitions[current] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidEnum reports whether value is one of the allowed values.
func ValidEnum(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
