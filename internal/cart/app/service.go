package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dwikikusuma/foodstore/internal/cart/domain"
	"github.com/dwikikusuma/foodstore/pkg/observe"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo    CartRepo
	items   ItemReader
	metrics Recorder
}

func NewService(repo CartRepo, items ItemReader, metrics Recorder) *Service {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &Service{
		repo:    repo,
		items:   items,
		metrics: metrics,
	}
}

// GetCart returns the user's cart, empty if the user never touched it.
func (s *Service) GetCart(ctx context.Context, userID string) (domain.Cart, error) {
	store, err := s.store(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}
	return store.Snapshot(), nil
}

// GetOrCreate hands out the user's store for callers that need the live
// object (checkout, streaming).
func (s *Service) GetOrCreate(ctx context.Context, userID string) (*Store, error) {
	return s.store(ctx, userID)
}

func (s *Service) AddItemToCart(ctx context.Context, userID, itemID string) (domain.Cart, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return domain.Cart{}, ErrInvalidInput
	}
	store, err := s.store(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}

	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("resolve item %s: %w", itemID, err)
	}

	store.AddToCart(item)
	s.metrics.CartMutated(ctx, "add")
	return store.Snapshot(), nil
}

func (s *Service) RemoveItemFromCart(ctx context.Context, userID, itemID string) (domain.Cart, error) {
	return s.apply(ctx, userID, "remove", func(st *Store) { st.RemoveFromCart(itemID) })
}

func (s *Service) IncreaseQuantity(ctx context.Context, userID, itemID string) (domain.Cart, error) {
	return s.apply(ctx, userID, "increase", func(st *Store) { st.IncreaseQuantity(itemID) })
}

func (s *Service) DecreaseQuantity(ctx context.Context, userID, itemID string) (domain.Cart, error) {
	return s.apply(ctx, userID, "decrease", func(st *Store) { st.DecreaseQuantity(itemID) })
}

func (s *Service) ClearCart(ctx context.Context, userID string) (domain.Cart, error) {
	return s.apply(ctx, userID, "clear", func(st *Store) { st.Clear() })
}

// ItemQuantity is one requested line of a cart replacement.
type ItemQuantity struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// SetCartItems replaces the cart with the given lines, pricing each from the
// catalog. A zero quantity drops the line. Nothing changes if any item fails
// to resolve.
func (s *Service) SetCartItems(ctx context.Context, userID string, want []ItemQuantity) (domain.Cart, error) {
	store, err := s.store(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}

	lines := make([]domain.CartLine, 0, len(want))
	for i, w := range want {
		id := strings.TrimSpace(w.ItemID)
		if id == "" || w.Quantity < 0 {
			return domain.Cart{}, fmt.Errorf("%w: line %d", ErrInvalidInput, i)
		}
		if w.Quantity == 0 {
			continue
		}
		item, err := s.items.GetItem(ctx, id)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("resolve item %s: %w", id, err)
		}
		lines = append(lines, domain.CartLine{Item: item, Quantity: w.Quantity})
	}

	store.SetItems(lines)
	s.metrics.CartMutated(ctx, "set")
	return store.Snapshot(), nil
}

// Subscribe registers fn on the user's store and returns the cart as it was
// at registration time.
func (s *Service) Subscribe(ctx context.Context, userID string, fn func(domain.Cart)) (domain.Cart, *observe.Subscription, error) {
	store, err := s.store(ctx, userID)
	if err != nil {
		return domain.Cart{}, nil, err
	}
	sub := store.Subscribe(fn)
	return store.Snapshot(), sub, nil
}

func (s *Service) apply(ctx context.Context, userID, op string, fn func(*Store)) (domain.Cart, error) {
	store, err := s.store(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}
	fn(store)
	s.metrics.CartMutated(ctx, op)
	return store.Snapshot(), nil
}

func (s *Service) store(ctx context.Context, userID string) (*Store, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.GetOrCreate(ctx, userID)
}
