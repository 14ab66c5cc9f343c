package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Policy holds the bill constants. There is a single discount tier.
type Policy struct {
	OfferThreshold  decimal.Decimal
	OfferDiscount   decimal.Decimal
	TaxRate         decimal.Decimal
	DeliveryCharges decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{
		OfferThreshold:  decimal.NewFromInt(1000),
		OfferDiscount:   decimal.NewFromInt(-50),
		TaxRate:         decimal.RequireFromString("0.08"),
		DeliveryCharges: decimal.NewFromInt(30),
	}
}

// ParsePolicy builds a Policy from decimal strings.
func ParsePolicy(threshold, discount, taxRate, delivery string) (Policy, error) {
	var p Policy
	var err error
	if p.OfferThreshold, err = decimal.NewFromString(threshold); err != nil {
		return Policy{}, fmt.Errorf("offer threshold: %w", err)
	}
	if p.OfferDiscount, err = decimal.NewFromString(discount); err != nil {
		return Policy{}, fmt.Errorf("offer discount: %w", err)
	}
	if p.TaxRate, err = decimal.NewFromString(taxRate); err != nil {
		return Policy{}, fmt.Errorf("tax rate: %w", err)
	}
	if p.DeliveryCharges, err = decimal.NewFromString(delivery); err != nil {
		return Policy{}, fmt.Errorf("delivery charges: %w", err)
	}
	if p.OfferDiscount.IsPositive() {
		return Policy{}, fmt.Errorf("offer discount must not be positive, got %s", discount)
	}
	if p.TaxRate.IsNegative() || p.DeliveryCharges.IsNegative() {
		return Policy{}, fmt.Errorf("tax rate and delivery charges must not be negative")
	}
	return p, nil
}

// ComputeBill prices lines under p. Taxes apply to the items total, not the
// discounted total, and delivery is charged only on a non-empty bill.
func (p Policy) ComputeBill(lines []BillLine) Bill {
	out := make([]BillLine, 0, len(lines))
	itemsTotal := decimal.Zero
	for _, l := range lines {
		l.LineTotal = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		itemsTotal = itemsTotal.Add(l.LineTotal)
		out = append(out, l)
	}

	discount := decimal.Zero
	if itemsTotal.GreaterThan(p.OfferThreshold) {
		discount = p.OfferDiscount
	}

	delivery := decimal.Zero
	if itemsTotal.IsPositive() {
		delivery = p.DeliveryCharges
	}

	taxes := itemsTotal.Mul(p.TaxRate)

	return Bill{
		Lines:           out,
		ItemsTotal:      itemsTotal,
		OfferDiscount:   discount,
		Taxes:           taxes,
		DeliveryCharges: delivery,
		TotalPay:        itemsTotal.Add(discount).Add(taxes).Add(delivery),
	}
}
