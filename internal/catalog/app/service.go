package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dwikikusuma/foodstore/internal/catalog/domain"
	"github.com/dwikikusuma/foodstore/pkg/observe"
	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// Recorder counts applied and rejected snapshots.
type Recorder interface {
	SnapshotApplied(ctx context.Context, foods int)
	SnapshotRejected(ctx context.Context)
}

type nopRecorder struct{}

func (nopRecorder) SnapshotApplied(context.Context, int) {}
func (nopRecorder) SnapshotRejected(context.Context)     {}

// State is what readers see: the active snapshot, plus the last feed error
// when no snapshot could be loaded yet.
type State struct {
	Snapshot domain.Snapshot
	Loaded   bool
	Err      error
}

// Service holds the most recent catalog snapshot. Readers never see a
// partially applied snapshot.
type Service struct {
	validate *validator.Validate
	metrics  Recorder

	mu    sync.RWMutex
	state State
	foods map[string]domain.Food

	// pubMu keeps notifications in apply order
	pubMu sync.Mutex
	hub   *observe.Hub[State]
}

func NewService(metrics Recorder) *Service {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &Service{
		validate: validator.New(),
		metrics:  metrics,
		foods:    make(map[string]domain.Food),
		hub:      observe.NewHub[State](),
	}
}

// Validate checks a snapshot before it may replace the active one.
func (s *Service) Validate(snap domain.Snapshot) error {
	if err := s.validate.Struct(snap); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	seen := make(map[string]struct{}, len(snap.Foods))
	for _, f := range snap.Foods {
		if f.Price.IsNegative() {
			return fmt.Errorf("%w: food %s has negative price %s", ErrInvalidSnapshot, f.ID, f.Price)
		}
		if _, dup := seen[f.ID]; dup {
			return fmt.Errorf("%w: duplicate food id %s", ErrInvalidSnapshot, f.ID)
		}
		seen[f.ID] = struct{}{}
	}
	return nil
}

// Apply replaces the catalog with snap and notifies subscribers. An invalid
// snapshot leaves the active one in place.
func (s *Service) Apply(ctx context.Context, snap domain.Snapshot) error {
	if err := s.Validate(snap); err != nil {
		s.metrics.SnapshotRejected(ctx)
		return err
	}

	foods := make(map[string]domain.Food, len(snap.Foods))
	for _, f := range snap.Foods {
		foods[f.ID] = f
	}

	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	s.state = State{Snapshot: snap, Loaded: true}
	s.foods = foods
	st := s.state
	s.mu.Unlock()

	s.metrics.SnapshotApplied(ctx, len(snap.Foods))
	s.hub.Publish(st)
	return nil
}

// Fail records a feed failure. It only shows while nothing has loaded; once
// a snapshot is active it stays active.
func (s *Service) Fail(err error) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	if s.state.Loaded {
		s.mu.Unlock()
		return
	}
	s.state.Err = err
	st := s.state
	s.mu.Unlock()

	s.hub.Publish(st)
}

func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Service) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Category(nil), s.state.Snapshot.Categories...)
}

func (s *Service) Foods() []domain.Food {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Food(nil), s.state.Snapshot.Foods...)
}

// FoodsByCategory returns foods whose category label matches name,
// ignoring case and surrounding spaces.
func (s *Service) FoodsByCategory(name string) ([]domain.Food, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Food, 0)
	for _, f := range s.state.Snapshot.Foods {
		if domain.SameCategory(f.Category, name) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *Service) GetFood(ctx context.Context, id string) (domain.Food, error) {
	if err := ctx.Err(); err != nil {
		return domain.Food{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Food{}, ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.foods[id]
	if !ok {
		return domain.Food{}, ErrNotFound
	}
	return f, nil
}

// Subscribe registers fn for every future state change and returns the
// state current at registration.
func (s *Service) Subscribe(fn func(State)) (State, *observe.Subscription) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	return s.State(), s.hub.Subscribe(fn)
}
