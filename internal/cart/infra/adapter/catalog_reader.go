package adapter

import (
	"context"
	"errors"
	"fmt"

	cartapp "github.com/dwikikusuma/foodstore/internal/cart/app"
	"github.com/dwikikusuma/foodstore/internal/cart/domain"
	catalogapp "github.com/dwikikusuma/foodstore/internal/catalog/app"
)

type CatalogServiceReader struct {
	svc *catalogapp.Service
}

func NewCatalogServiceReader(svc *catalogapp.Service) *CatalogServiceReader {
	return &CatalogServiceReader{svc: svc}
}

// GetItem resolves a food from the active catalog snapshot.
func (r *CatalogServiceReader) GetItem(ctx context.Context, id string) (domain.Item, error) {
	f, err := r.svc.GetFood(ctx, id)
	switch {
	case errors.Is(err, catalogapp.ErrNotFound):
		return domain.Item{}, fmt.Errorf("food %s: %w", id, cartapp.ErrNotFound)
	case errors.Is(err, catalogapp.ErrInvalidInput):
		return domain.Item{}, cartapp.ErrInvalidInput
	case err != nil:
		return domain.Item{}, err
	}

	return domain.Item{
		ID:       f.ID,
		Name:     f.Name,
		Price:    f.Price,
		Image:    f.Image,
		Category: f.Category,
	}, nil
}
