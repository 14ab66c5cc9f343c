package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/dwikikusuma/foodstore/internal/order/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrLineTotalMismatch rejects a receipt line whose total is not unit price
// times quantity. Nothing is written.
var ErrLineTotalMismatch = errors.New("line total mismatch")

type OrderRepo struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

func NewOrderRepo(pool *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *OrderRepo) execTX(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	err = fn(tx)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("tx err: %w; rollback err: %v", err, rbErr)
		}
		return err
	}

	return tx.Commit(ctx)
}

func (r *OrderRepo) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	orderID := uuid.New()
	checkoutID, err := uuid.Parse(order.CheckoutID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("invalid checkout UUID: %w", err)
	}

	amounts, err := numerics(order.ItemsTotal, order.OfferDiscount, order.Taxes, order.DeliveryCharges, order.TotalPay)
	if err != nil {
		return domain.Order{}, err
	}
	lines, err := lineNumerics(order.OrderItems)
	if err != nil {
		return domain.Order{}, err
	}

	created := order
	err = r.execTX(ctx, func(tx pgx.Tx) error {
		query, args, err := r.sb.Insert("orders").
			Columns("id", "user_id", "checkout_id", "status",
				"items_total", "offer_discount", "taxes", "delivery_charges", "total_pay").
			Values(orderID, order.UserID, checkoutID, order.Status,
				amounts[0], amounts[1], amounts[2], amounts[3], amounts[4]).
			Suffix("RETURNING created_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert order: %w", err)
		}

		if err := tx.QueryRow(ctx, query, args...).Scan(&created.CreatedAt); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		if len(order.OrderItems) == 0 {
			return nil
		}

		ins := r.sb.Insert("order_items").
			Columns("order_id", "position", "item_id", "name", "unit_price", "quantity", "line_total")
		for i, item := range order.OrderItems {
			ins = ins.Values(orderID, i, item.ItemID, item.Name, lines[i][0], item.Quantity, lines[i][1])
		}

		query, args, err = ins.ToSql()
		if err != nil {
			return fmt.Errorf("build insert items: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert items: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	created.ID = orderID.String()
	return created, nil
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Order, error) {
	query, args, err := r.sb.Select("id::text", "user_id", "checkout_id::text", "status",
		"items_total", "offer_discount", "taxes", "delivery_charges", "total_pay", "created_at").
		From("orders").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select orders: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	index := make(map[string]int)
	for rows.Next() {
		var o domain.Order
		var n [5]pgtype.Numeric
		if err := rows.Scan(&o.ID, &o.UserID, &o.CheckoutID, &o.Status,
			&n[0], &n[1], &n[2], &n[3], &n[4], &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		d, err := decimals(n[:]...)
		if err != nil {
			return nil, err
		}
		o.ItemsTotal, o.OfferDiscount, o.Taxes, o.DeliveryCharges, o.TotalPay = d[0], d[1], d[2], d[3], d[4]
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	query, args, err = r.sb.Select("order_id::text", "item_id", "name", "unit_price", "quantity", "line_total").
		From("order_items").
		Where(sq.Expr("order_id::text = ANY(?)", ids)).
		OrderBy("order_id", "position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select items: %w", err)
	}

	itemRows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var orderID string
		var it domain.OrderItem
		var unit, line pgtype.Numeric
		if err := itemRows.Scan(&orderID, &it.ItemID, &it.Name, &unit, &it.Quantity, &line); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		d, err := decimals(unit, line)
		if err != nil {
			return nil, err
		}
		it.UnitPrice, it.LineTotal = d[0], d[1]
		if i, ok := index[orderID]; ok {
			orders[i].OrderItems = append(orders[i].OrderItems, it)
		}
	}
	return orders, itemRows.Err()
}

// lineNumerics checks every line total against unit price times quantity
// and encodes both amounts.
func lineNumerics(items []domain.OrderItem) ([][]pgtype.Numeric, error) {
	out := make([][]pgtype.Numeric, len(items))
	for i, item := range items {
		expected := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		if !item.LineTotal.Equal(expected) {
			return nil, fmt.Errorf("item %d: %w: %s != %s x %d", i, ErrLineTotalMismatch, item.LineTotal, item.UnitPrice, item.Quantity)
		}
		prices, err := numerics(item.UnitPrice, item.LineTotal)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out[i] = prices
	}
	return out, nil
}

func numerics(values ...decimal.Decimal) ([]pgtype.Numeric, error) {
	out := make([]pgtype.Numeric, len(values))
	for i, v := range values {
		if err := out[i].Scan(v.String()); err != nil {
			return nil, fmt.Errorf("encode numeric %s: %w", v, err)
		}
	}
	return out, nil
}

func decimals(values ...pgtype.Numeric) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		raw, err := v.Value()
		if err != nil {
			return nil, fmt.Errorf("decode numeric: %w", err)
		}
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("decode numeric: unexpected %T", raw)
		}
		if out[i], err = decimal.NewFromString(s); err != nil {
			return nil, fmt.Errorf("decode numeric %q: %w", s, err)
		}
	}
	return out, nil
}
