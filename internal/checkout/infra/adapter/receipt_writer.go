package adapter

import (
	"context"

	"github.com/dwikikusuma/foodstore/internal/checkout/domain"
	orderapp "github.com/dwikikusuma/foodstore/internal/order/app"
	orderdomain "github.com/dwikikusuma/foodstore/internal/order/domain"
)

type OrderServiceWriter struct {
	svc *orderapp.Service
}

func NewOrderServiceWriter(svc *orderapp.Service) *OrderServiceWriter {
	return &OrderServiceWriter{svc: svc}
}

func (w *OrderServiceWriter) RecordReceipt(ctx context.Context, session domain.Session) (string, error) {
	items := make([]orderdomain.OrderItemRequest, 0, len(session.Bill.Lines))
	for _, l := range session.Bill.Lines {
		items = append(items, orderdomain.OrderItemRequest{
			ItemID:    l.ItemID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}

	resp, err := w.svc.CreateOrder(ctx, orderdomain.CreateOrderRequest{
		UserID:          session.UserID,
		CheckoutID:      session.ID,
		OfferDiscount:   session.Bill.OfferDiscount,
		Taxes:           session.Bill.Taxes,
		DeliveryCharges: session.Bill.DeliveryCharges,
		TotalPay:        session.Bill.TotalPay,
		Items:           items,
	})
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}
