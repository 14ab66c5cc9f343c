package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dwikikusuma/foodstore/internal/order/domain"
	"github.com/google/uuid"
)

// OrderRepo is used when no database is configured.
type OrderRepo struct {
	mu     sync.RWMutex
	orders []domain.Order
	now    func() time.Time
}

func NewOrderRepo() *OrderRepo {
	return &OrderRepo{now: time.Now}
}

func (r *OrderRepo) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return domain.Order{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	order.ID = uuid.NewString()
	order.CreatedAt = r.now().UTC()
	order.OrderItems = append([]domain.OrderItem(nil), order.OrderItems...)
	r.orders = append(r.orders, order)
	return order, nil
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	var out []domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	r.mu.RUnlock()

	// newest first, insertion order breaks ties
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
