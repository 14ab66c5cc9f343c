package app

import (
	"context"

	"github.com/dwikikusuma/foodstore/internal/order/domain"
)

// OrderRepo stores receipts. Create writes the order and its lines
// atomically and fills ID and CreatedAt.
type OrderRepo interface {
	Create(ctx context.Context, order domain.Order) (domain.Order, error)
	// ListByUser returns at most limit receipts, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Order, error)
}
