package domain

import "github.com/shopspring/decimal"

// Item is the catalog record a cart line is built from. ID is the merge key.
type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Category string          `json:"category"`
}

type CartLine struct {
	Item
	Quantity int `json:"quantity"`
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an immutable view of a store's contents at one version.
type Cart struct {
	UserID  string     `json:"user_id"`
	Version uint64     `json:"version"`
	Lines   []CartLine `json:"lines"`
}

// Count is the sum of quantities, not the number of distinct lines.
func (c Cart) Count() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
