package app

import (
	"context"

	"github.com/dwikikusuma/foodstore/internal/cart/domain"
)

// CartRepo keeps one Store per user for the life of the process.
type CartRepo interface {
	Get(ctx context.Context, userID string) (*Store, error)
	GetOrCreate(ctx context.Context, userID string) (*Store, error)
	Delete(ctx context.Context, userID string) error
}

// ItemReader resolves catalog items so prices come from the catalog, not
// from the client.
type ItemReader interface {
	GetItem(ctx context.Context, id string) (domain.Item, error)
}

// Recorder counts cart mutations.
type Recorder interface {
	CartMutated(ctx context.Context, op string)
}

type nopRecorder struct{}

func (nopRecorder) CartMutated(context.Context, string) {}
