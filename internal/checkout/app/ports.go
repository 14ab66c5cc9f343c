package app

import (
	"context"

	"github.com/dwikikusuma/foodstore/internal/checkout/domain"
	"github.com/shopspring/decimal"
)

type CartReader interface {
	GetCart(ctx context.Context, userID string) ([]CartLine, error)
	ClearCart(ctx context.Context, userID string) error
}

type CartLine struct {
	ItemID    string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// ReceiptWriter records a completed checkout and returns the receipt id.
type ReceiptWriter interface {
	RecordReceipt(ctx context.Context, session domain.Session) (string, error)
}

type SessionRepo interface {
	Save(ctx context.Context, s domain.Session) error
	Get(ctx context.Context, id string) (domain.Session, error)
}

type Recorder interface {
	CheckoutCompleted(ctx context.Context, totalPay decimal.Decimal)
}

type nopRecorder struct{}

func (nopRecorder) CheckoutCompleted(context.Context, decimal.Decimal) {}
