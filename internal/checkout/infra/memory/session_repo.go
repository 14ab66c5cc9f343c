package memory

import (
	"context"
	"sync"

	"github.com/dwikikusuma/foodstore/internal/checkout/app"
	"github.com/dwikikusuma/foodstore/internal/checkout/domain"
)

// SessionRepo keeps checkout sessions in memory, like the carts they are
// built from.
type SessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{sessions: make(map[string]domain.Session)}
}

func (r *SessionRepo) Save(ctx context.Context, s domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, id string) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return domain.Session{}, app.ErrCheckoutNotFound
	}
	return s, nil
}
