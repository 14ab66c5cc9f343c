package app

import (
	"context"
	"errors"
	"testing"

	"github.com/dwikikusuma/foodstore/internal/catalog/domain"
	"github.com/shopspring/decimal"
)

type countingRecorder struct {
	applied, rejected int
}

func (c *countingRecorder) SnapshotApplied(context.Context, int) { c.applied++ }
func (c *countingRecorder) SnapshotRejected(context.Context)     { c.rejected++ }

func snapshot(foods ...domain.Food) domain.Snapshot {
	return domain.Snapshot{
		Categories: []domain.Category{{ID: "c1", Name: "Pizza"}, {ID: "c2", Name: "Drinks"}},
		Foods:      foods,
	}
}

func food(id, category string, price int64) domain.Food {
	return domain.Food{ID: id, Name: "food-" + id, Category: category, Price: decimal.NewFromInt(price)}
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	t.Run("latest snapshot replaces the previous one", func(t *testing.T) {
		svc := NewService(nil)
		if err := svc.Apply(ctx, snapshot(food("a", "pizza", 10), food("b", "pizza", 12))); err != nil {
			t.Fatalf("apply: %v", err)
		}
		if err := svc.Apply(ctx, snapshot(food("c", "drinks", 3))); err != nil {
			t.Fatalf("apply: %v", err)
		}

		foods := svc.Foods()
		if len(foods) != 1 || foods[0].ID != "c" {
			t.Fatalf("expected only the newest snapshot, got %+v", foods)
		}
		if _, err := svc.GetFood(ctx, "a"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected stale food to be gone, got %v", err)
		}
	})

	tests := []struct {
		name string
		snap domain.Snapshot
	}{
		{name: "missing food id", snap: snapshot(domain.Food{Name: "x"})},
		{name: "negative price", snap: snapshot(food("a", "pizza", -1))},
		{name: "duplicate id", snap: snapshot(food("a", "pizza", 1), food("a", "pizza", 2))},
		{name: "category without name", snap: domain.Snapshot{Categories: []domain.Category{{ID: "c"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name+" is rejected and keeps the active snapshot", func(t *testing.T) {
			metrics := &countingRecorder{}
			svc := NewService(metrics)
			if err := svc.Apply(ctx, snapshot(food("keep", "pizza", 5))); err != nil {
				t.Fatalf("seed: %v", err)
			}

			if err := svc.Apply(ctx, tt.snap); !errors.Is(err, ErrInvalidSnapshot) {
				t.Fatalf("expected ErrInvalidSnapshot, got %v", err)
			}
			if _, err := svc.GetFood(ctx, "keep"); err != nil {
				t.Fatalf("active snapshot lost: %v", err)
			}
			if metrics.applied != 1 || metrics.rejected != 1 {
				t.Fatalf("unexpected metrics %+v", metrics)
			}
		})
	}
}

func TestFoodsByCategory(t *testing.T) {
	svc := NewService(nil)
	if err := svc.Apply(context.Background(), snapshot(
		food("a", "Pizza", 10),
		food("b", "pizza ", 11),
		food("c", "Drinks", 2),
	)); err != nil {
		t.Fatalf("apply: %v", err)
	}

	got, err := svc.FoodsByCategory("  PIZZA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("unexpected foods %+v", got)
	}

	got, err = svc.FoodsByCategory("sushi")
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %+v (%v)", got, err)
	}

	if _, err := svc.FoodsByCategory(" "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	svc := NewService(nil)

	var got []State
	initial, sub := svc.Subscribe(func(s State) { got = append(got, s) })
	if initial.Loaded {
		t.Fatalf("expected nothing loaded yet")
	}

	feedErr := errors.New("feed unreachable")
	svc.Fail(feedErr)
	if err := svc.Apply(ctx, snapshot(food("a", "pizza", 1))); err != nil {
		t.Fatalf("apply: %v", err)
	}
	// failures after a successful load do not replace the catalog
	svc.Fail(feedErr)

	sub.Close()
	if err := svc.Apply(ctx, snapshot()); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if !errors.Is(got[0].Err, feedErr) || got[0].Loaded {
		t.Fatalf("expected failure state first, got %+v", got[0])
	}
	if !got[1].Loaded || got[1].Err != nil || len(got[1].Snapshot.Foods) != 1 {
		t.Fatalf("unexpected loaded state %+v", got[1])
	}
	if st := svc.State(); st.Err != nil || !st.Loaded {
		t.Fatalf("unexpected final state %+v", st)
	}
}
