package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/dwikikusuma/foodstore/internal/cart/app"
)

// CartRepo holds carts for the life of the process. Nothing is persisted.
type CartRepo struct {
	mu    sync.RWMutex
	carts map[string]*app.Store
}

func NewCartRepo() *CartRepo {
	return &CartRepo{
		carts: make(map[string]*app.Store),
	}
}

func (r *CartRepo) Get(ctx context.Context, userID string) (*app.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	store, ok := r.carts[userID]
	if !ok {
		return nil, app.ErrNotFound
	}
	return store, nil
}

func (r *CartRepo) GetOrCreate(ctx context.Context, userID string) (*app.Store, error) {
	// 1) Fast path
	store, err := r.Get(ctx, userID)
	if err == nil {
		return store, nil
	}
	if !errors.Is(err, app.ErrNotFound) {
		return nil, err
	}

	// 2) Create, unless someone else got there first
	r.mu.Lock()
	defer r.mu.Unlock()

	if store, ok := r.carts[userID]; ok {
		return store, nil
	}
	store = app.NewStore(userID)
	r.carts[userID] = store
	return store, nil
}

func (r *CartRepo) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
	return nil
}

func (r *CartRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.carts)
}
