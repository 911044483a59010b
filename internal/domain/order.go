package domain

import (
	"context"
	"time"
)

// --- Order Entities ---

// Address is a delivery destination. City, State and Pincode drive
// partner service-area matching.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country,omitempty"`
}

// Customer is the shipping snapshot captured at order creation. It is a
// copy, not a reference: later profile edits must not rewrite history.
type Customer struct {
	Name    string  `json:"name"`
	Email   string  `json:"email,omitempty"`
	Phone   string  `json:"phone"`
	Address Address `json:"address"`
}

type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"` // Unit price at time of purchase
	Quantity  int     `json:"quantity"`
	Variant   JSONB   `json:"variant,omitempty"` // Selected options, e.g. {"size":"XL"}
	Image     string  `json:"image,omitempty"`
}

type OrderTotals struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

type PaymentDetails struct {
	TransactionID string     `json:"transactionId,omitempty"`
	Gateway       string     `json:"gateway,omitempty"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
	RefundedAt    *time.Time `json:"refundedAt,omitempty"`
	FailedAt      *time.Time `json:"failedAt,omitempty"`
	RefundReason  string     `json:"refundReason,omitempty"`
	FailureReason string     `json:"failureReason,omitempty"`
	AdminNotes    string     `json:"adminNotes,omitempty"`
}

// PartnerAssignment is the current delivery-partner snapshot on an order.
type PartnerAssignment struct {
	PartnerID         string     `json:"partnerId"`
	PartnerName       string     `json:"partnerName"`
	AssignedBy        string     `json:"assignedBy"`
	AssignedAt        time.Time  `json:"assignedAt"`
	DeliveryFee       float64    `json:"deliveryFee,omitempty"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
	ActualDelivery    *time.Time `json:"actualDelivery,omitempty"`
	TrackingNumber    string     `json:"trackingNumber"`
	DeliveryStatus    string     `json:"deliveryStatus"`
	DeliveryNotes     string     `json:"deliveryNotes,omitempty"`
	DeliveryProof     string     `json:"deliveryProof,omitempty"`
}

// AssignmentRecord is one append-only entry in the order's assignment
// history: either the initial assignment or an archived, reassigned one.
type AssignmentRecord struct {
	PartnerID      string    `json:"partnerId"`
	PartnerName    string    `json:"partnerName"`
	AssignedBy     string    `json:"assignedBy"`
	AssignedAt     time.Time `json:"assignedAt"`
	TrackingNumber string    `json:"trackingNumber"`
	Status         string    `json:"status"` // assigned, reassigned
	Notes          string    `json:"notes,omitempty"`
}

// TimelineEntry is one append-only entry in the order's event history.
type TimelineEntry struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Notes     string    `json:"notes,omitempty"`
}

type Order struct {
	ID                string             `json:"id"`
	OrderNumber       string             `json:"orderNumber"` // Unique, assigned once at creation
	UserID            *string            `json:"userId,omitempty"`
	Customer          Customer           `json:"customer"`
	Items             []OrderItem        `json:"items"`
	Totals            OrderTotals        `json:"totals"`
	PaymentMethod     string             `json:"paymentMethod"`
	PaymentStatus     string             `json:"paymentStatus"`
	PaymentDetails    PaymentDetails     `json:"paymentDetails"`
	Status            string             `json:"status"`
	DeliveryPartner   *PartnerAssignment `json:"deliveryPartner,omitempty"`
	AssignmentHistory []AssignmentRecord `json:"assignmentHistory,omitempty"`
	Timeline          []TimelineEntry    `json:"timeline"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// HasItem reports whether the order contains the given product.
func (o *Order) HasItem(productID string) bool {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

type OrderFilter struct {
	Page          int
	Limit         int
	Status        string
	PaymentStatus string
	Search        string // matches order number or customer name
}

// OrderPatch is a set of field-level mutations applied in a single atomic
// store update. Append* slices go through jsonb append operators so
// concurrent writers never drop each other's entries.
type OrderPatch struct {
	Status            *string
	PaymentStatus     *string
	PaymentDetails    *PaymentDetails
	DeliveryPartner   *PartnerAssignment
	AppendAssignments []AssignmentRecord
	AppendTimeline    []TimelineEntry
}

// IsZero reports whether the patch mutates nothing.
func (p OrderPatch) IsZero() bool {
	return p.Status == nil && p.PaymentStatus == nil && p.PaymentDetails == nil &&
		p.DeliveryPartner == nil && len(p.AppendAssignments) == 0 && len(p.AppendTimeline) == 0
}

type OrderRepository interface {
	// Create persists the order and assigns its sequential order number.
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByUserID(ctx context.Context, userID string) ([]Order, error)
	GetAll(ctx context.Context, filter OrderFilter) ([]Order, int64, error)
	// Update applies the patch as one atomic statement and returns the
	// updated order.
	Update(ctx context.Context, id string, patch OrderPatch) (*Order, error)
}
