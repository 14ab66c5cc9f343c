package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the receipt of one completed checkout.
type Order struct {
	ID              string
	UserID          string
	CheckoutID      string
	Status          string
	ItemsTotal      decimal.Decimal
	OfferDiscount   decimal.Decimal
	Taxes           decimal.Decimal
	DeliveryCharges decimal.Decimal
	TotalPay        decimal.Decimal
	OrderItems      []OrderItem
	CreatedAt       time.Time
}

type OrderItem struct {
	ItemID    string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	LineTotal decimal.Decimal
}

type CreateOrderRequest struct {
	UserID          string
	CheckoutID      string
	OfferDiscount   decimal.Decimal
	Taxes           decimal.Decimal
	DeliveryCharges decimal.Decimal
	TotalPay        decimal.Decimal
	Items           []OrderItemRequest
}

type OrderItemRequest struct {
	ItemID    string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

type OrderResponse struct {
	ID         string          `json:"id"`
	CheckoutID string          `json:"checkout_id"`
	Status     string          `json:"status"`
	TotalPay   decimal.Decimal `json:"total_pay"`
	ItemCount  int             `json:"item_count"`
	CreatedAt  time.Time       `json:"created_at"`
}
