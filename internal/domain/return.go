package domain

import (
	"context"
	"time"
)

// --- Return Entities ---

type ReturnItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name,omitempty"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
	Condition string `json:"condition"` // new, used, damaged
}

// Refund is the sub-state machine nested inside an approved return:
// pending -> processing -> completed (failed is recorded by manual
// override only).
type Refund struct {
	Method        string     `json:"method,omitempty"`
	Amount        float64    `json:"amount,omitempty"`
	Status        string     `json:"status"`
	TransactionID string     `json:"transactionId,omitempty"`
	ProcessedAt   *time.Time `json:"processedAt,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

type ReturnShipping struct {
	TrackingNumber string     `json:"trackingNumber,omitempty"`
	Carrier        string     `json:"carrier,omitempty"`
	ShippedAt      *time.Time `json:"shippedAt,omitempty"`
	DeliveredAt    *time.Time `json:"deliveredAt,omitempty"`
	ReturnAddress  *Address   `json:"returnAddress,omitempty"`
}

// BankAccount is required only when the refund method is bank_transfer.
type BankAccount struct {
	HolderName    string `json:"holderName"`
	AccountNumber string `json:"accountNumber"`
	IFSC          string `json:"ifsc"`
	BankName      string `json:"bankName,omitempty"`
}

type ReturnTimestamps struct {
	RequestedAt *time.Time `json:"requestedAt,omitempty"`
	ApprovedAt  *time.Time `json:"approvedAt,omitempty"`
	RejectedAt  *time.Time `json:"rejectedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type Return struct {
	ID              string           `json:"id"`
	OrderID         string           `json:"orderId"` // Exactly one return per order
	UserID          string           `json:"userId"`
	Type            string           `json:"type"` // return, exchange
	Status          string           `json:"status"`
	Items           []ReturnItem     `json:"items"`
	ExchangeItems   []ReturnItem     `json:"exchangeItems,omitempty"`
	CustomerNotes   string           `json:"customerNotes,omitempty"`
	AdminNotes      string           `json:"adminNotes,omitempty"`
	Images          []string         `json:"images,omitempty"`
	Refund          Refund           `json:"refund"`
	ReturnShipping  ReturnShipping   `json:"returnShipping"`
	BankAccount     *BankAccount     `json:"bankAccount,omitempty"`
	ShippingAddress *Address         `json:"shippingAddress,omitempty"`
	Timestamps      ReturnTimestamps `json:"timestamps"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// Terminal reports whether the return can no longer change.
func (r *Return) Terminal() bool {
	return r.Status == ReturnStatusCompleted || r.Status == ReturnStatusCancelled
}

type ReturnFilter struct {
	Page   int
	Limit  int
	Status string
	Type   string
}

// ReturnPatch mirrors OrderPatch: optional fields are merged into the
// stored record by a single atomic update, never replaced wholesale.
type ReturnPatch struct {
	Status          *string
	Items           []ReturnItem
	ExchangeItems   []ReturnItem
	CustomerNotes   *string
	AdminNotes      *string
	Images          []string
	Refund          *Refund
	ReturnShipping  *ReturnShipping
	BankAccount     *BankAccount
	ShippingAddress *Address
	Timestamps      *ReturnTimestamps
}

type ReturnStats struct {
	ByStatus      map[string]int64 `json:"byStatus"`
	TotalRequests int64            `json:"totalRequests"`
	TotalRefunded float64          `json:"totalRefunded"` // Sum of completed refund amounts
}

type ReturnRepository interface {
	Create(ctx context.Context, ret *Return) error
	GetByID(ctx context.Context, id string) (*Return, error)
	// GetByOrderID returns (nil, nil) when the order has no return yet.
	GetByOrderID(ctx context.Context, orderID string) (*Return, error)
	GetByUserID(ctx context.Context, userID string) ([]Return, error)
	GetAll(ctx context.Context, filter ReturnFilter) ([]Return, int64, error)
	Update(ctx context.Context, id string, patch ReturnPatch) (*Return, error)
	Stats(ctx context.Context) (*ReturnStats, error)
}
