package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dwikikusuma/foodstore/internal/order/domain"
	"github.com/shopspring/decimal"
)

var ErrInvalidInput = errors.New("invalid input")

type Service struct {
	repo OrderRepo
}

const (
	// OrderStatusPaid is the only status; payment always succeeds.
	OrderStatusPaid = "PAID"
)

func NewService(repo OrderRepo) *Service {
	return &Service{repo: repo}
}

// CreateOrder stores a receipt. Line totals and the items total are
// recomputed here; the adjustments come from the checkout bill and must add
// up to TotalPay.
func (s *Service) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (domain.OrderResponse, error) {
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.CheckoutID) == "" {
		return domain.OrderResponse{}, fmt.Errorf("%w: user and checkout id are required", ErrInvalidInput)
	}
	if len(req.Items) == 0 {
		return domain.OrderResponse{}, fmt.Errorf("%w: items must not be empty", ErrInvalidInput)
	}
	if req.DeliveryCharges.IsNegative() || req.Taxes.IsNegative() {
		return domain.OrderResponse{}, fmt.Errorf("%w: charges cannot be negative", ErrInvalidInput)
	}

	orderItems := make([]domain.OrderItem, 0, len(req.Items))
	itemsTotal := decimal.Zero

	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return domain.OrderResponse{}, fmt.Errorf("%w: item %d: quantity must be positive, got %d", ErrInvalidInput, i, item.Quantity)
		}
		if item.UnitPrice.IsNegative() {
			return domain.OrderResponse{}, fmt.Errorf("%w: item %d: unit price cannot be negative, got %s", ErrInvalidInput, i, item.UnitPrice)
		}

		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		orderItems = append(orderItems, domain.OrderItem{
			ItemID:    item.ItemID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: lineTotal,
		})
		itemsTotal = itemsTotal.Add(lineTotal)
	}

	expected := itemsTotal.Add(req.OfferDiscount).Add(req.Taxes).Add(req.DeliveryCharges)
	if !expected.Equal(req.TotalPay) {
		return domain.OrderResponse{}, fmt.Errorf("%w: total pay %s does not match computed %s", ErrInvalidInput, req.TotalPay, expected)
	}

	order := domain.Order{
		UserID:          req.UserID,
		CheckoutID:      req.CheckoutID,
		Status:          OrderStatusPaid,
		ItemsTotal:      itemsTotal,
		OfferDiscount:   req.OfferDiscount,
		Taxes:           req.Taxes,
		DeliveryCharges: req.DeliveryCharges,
		TotalPay:        req.TotalPay,
		OrderItems:      orderItems,
	}

	createdOrder, err := s.repo.Create(ctx, order)
	if err != nil {
		return domain.OrderResponse{}, err
	}

	return toResponse(createdOrder), nil
}

func (s *Service) ListOrders(ctx context.Context, userID string, limit int) ([]domain.OrderResponse, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	orders, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	out := make([]domain.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toResponse(o))
	}
	return out, nil
}

func toResponse(o domain.Order) domain.OrderResponse {
	count := 0
	for _, it := range o.OrderItems {
		count += it.Quantity
	}
	return domain.OrderResponse{
		ID:         o.ID,
		CheckoutID: o.CheckoutID,
		Status:     o.Status,
		TotalPay:   o.TotalPay,
		ItemCount:  count,
		CreatedAt:  o.CreatedAt,
	}
}
