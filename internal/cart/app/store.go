package app

import (
	"sync"

	"github.com/dwikikusuma/foodstore/internal/cart/domain"
	"github.com/dwikikusuma/foodstore/pkg/observe"
	"github.com/shopspring/decimal"
)

// Store owns one user's cart lines. Lines keep insertion order, there is at
// most one line per item ID, and no line is ever held at quantity zero.
//
// Every mutation publishes the resulting Cart to all observers before the
// mutating call returns. Publishing happens outside the state lock, so an
// observer may read the store, but must not mutate it.
type Store struct {
	userID string

	mu      sync.Mutex
	lines   []domain.CartLine
	version uint64

	// pubMu keeps notifications in commit order
	pubMu sync.Mutex
	hub   *observe.Hub[domain.Cart]
}

func NewStore(userID string) *Store {
	return &Store{
		userID: userID,
		hub:    observe.NewHub[domain.Cart](),
	}
}

// AddToCart increments the line for item.ID or appends a new line at
// quantity 1.
func (s *Store) AddToCart(item domain.Item) {
	s.mutate(func() bool {
		if i := s.indexOf(item.ID); i >= 0 {
			s.lines[i].Quantity++
			return true
		}
		s.lines = append(s.lines, domain.CartLine{Item: item, Quantity: 1})
		return true
	})
}

func (s *Store) RemoveFromCart(id string) {
	s.mutate(func() bool {
		i := s.indexOf(id)
		if i < 0 {
			return false
		}
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
		return true
	})
}

func (s *Store) IncreaseQuantity(id string) {
	s.mutate(func() bool {
		i := s.indexOf(id)
		if i < 0 {
			return false
		}
		s.lines[i].Quantity++
		return true
	})
}

// DecreaseQuantity removes the line instead of leaving it at zero.
func (s *Store) DecreaseQuantity(id string) {
	s.mutate(func() bool {
		i := s.indexOf(id)
		if i < 0 {
			return false
		}
		if s.lines[i].Quantity <= 1 {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return true
		}
		s.lines[i].Quantity--
		return true
	})
}

// Clear empties the cart unconditionally.
func (s *Store) Clear() {
	s.mutate(func() bool {
		s.lines = nil
		return true
	})
}

// SetItems replaces the contents wholesale. Lines with a non-positive
// quantity are dropped and repeated IDs are merged into the first line.
func (s *Store) SetItems(lines []domain.CartLine) {
	s.mutate(func() bool {
		next := make([]domain.CartLine, 0, len(lines))
		pos := make(map[string]int, len(lines))
		for _, l := range lines {
			if l.Quantity <= 0 {
				continue
			}
			if i, ok := pos[l.ID]; ok {
				next[i].Quantity += l.Quantity
				continue
			}
			pos[l.ID] = len(next)
			next = append(next, l)
		}
		s.lines = next
		return true
	})
}

func (s *Store) Snapshot() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Count returns the sum of line quantities.
func (s *Store) Count() int {
	return s.Snapshot().Count()
}

// Total returns Σ price × quantity.
func (s *Store) Total() decimal.Decimal {
	return s.Snapshot().Total()
}

// Subscribe registers fn for every future mutation. Close the returned
// subscription when the consumer goes away.
func (s *Store) Subscribe(fn func(domain.Cart)) *observe.Subscription {
	return s.hub.Subscribe(fn)
}

// Observers reports how many subscriptions are open. Stream handlers must
// leave it at zero once their client goes away.
func (s *Store) Observers() int {
	return s.hub.Len()
}

func (s *Store) mutate(apply func() bool) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	if !apply() {
		s.mu.Unlock()
		return
	}
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.hub.Publish(snap)
}

func (s *Store) snapshotLocked() domain.Cart {
	lines := make([]domain.CartLine, len(s.lines))
	copy(lines, s.lines)
	return domain.Cart{
		UserID:  s.userID,
		Version: s.version,
		Lines:   lines,
	}
}

func (s *Store) indexOf(id string) int {
	for i := range s.lines {
		if s.lines[i].ID == id {
			return i
		}
	}
	return -1
}
