package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	// StatusPaymentApproved is the payment screen state; payment always
	// succeeds.
	StatusPaymentApproved Status = "PAYMENT_APPROVED"
	StatusCompleted       Status = "COMPLETED"
)

type BillLine struct {
	ItemID    string          `json:"item_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Bill is derived from the cart on every read and never stored on it.
type Bill struct {
	Lines           []BillLine      `json:"lines"`
	ItemsTotal      decimal.Decimal `json:"items_total"`
	OfferDiscount   decimal.Decimal `json:"offer_discount"`
	Taxes           decimal.Decimal `json:"taxes"`
	DeliveryCharges decimal.Decimal `json:"delivery_charges"`
	TotalPay        decimal.Decimal `json:"total_pay"`
}

type Session struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Status      Status     `json:"status"`
	Bill        Bill       `json:"bill"`
	ReceiptID   string     `json:"receipt_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
