package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Money is shown with two decimals everywhere a bill leaves the process.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type BillLineView struct {
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

type BillView struct {
	Lines           []BillLineView `json:"lines"`
	ItemsTotal      string         `json:"items_total"`
	OfferDiscount   string         `json:"offer_discount"`
	Taxes           string         `json:"taxes"`
	DeliveryCharges string         `json:"delivery_charges"`
	TotalPay        string         `json:"total_pay"`
}

func (b Bill) View() BillView {
	lines := make([]BillLineView, 0, len(b.Lines))
	for _, l := range b.Lines {
		lines = append(lines, BillLineView{
			ItemID:    l.ItemID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: Money(l.UnitPrice),
			LineTotal: Money(l.LineTotal),
		})
	}
	return BillView{
		Lines:           lines,
		ItemsTotal:      Money(b.ItemsTotal),
		OfferDiscount:   Money(b.OfferDiscount),
		Taxes:           Money(b.Taxes),
		DeliveryCharges: Money(b.DeliveryCharges),
		TotalPay:        Money(b.TotalPay),
	}
}

type SessionView struct {
	ID          string     `json:"id"`
	Status      Status     `json:"status"`
	Bill        BillView   `json:"bill"`
	TotalPay    string     `json:"total_pay"`
	ReceiptID   string     `json:"receipt_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (s Session) View() SessionView {
	return SessionView{
		ID:          s.ID,
		Status:      s.Status,
		Bill:        s.Bill.View(),
		TotalPay:    Money(s.Bill.TotalPay),
		ReceiptID:   s.ReceiptID,
		CreatedAt:   s.CreatedAt,
		CompletedAt: s.CompletedAt,
	}
}
