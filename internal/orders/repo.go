package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo struct{ DB *pgxpool.Pool }

// txStore runs the reservation loop inside one pgx transaction, so stock
// decrements for earlier items roll back together with the header and lines
// when a later item aborts.
type txStore struct{ tx pgx.Tx }

func (s txStore) ProductForReserve(ctx context.Context, productID int64) (int, int, decimal.Decimal, error) {
	var stock, sales int
	var price decimal.Decimal
	err := s.tx.QueryRow(ctx, `SELECT stock, sales, price FROM products WHERE id=$1`, productID).
		Scan(&stock, &sales, &price)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, decimal.Zero, ErrProductNotFound
	}
	return stock, sales, price, err
}

func (s txStore) ReserveStock(ctx context.Context, productID int64, expectStock, qty int) (bool, error) {
	ct, err := s.tx.Exec(ctx, `
		UPDATE products SET stock = stock - $3, sales = sales + $3, updated_at = now()
		WHERE id=$1 AND stock=$2`, productID, expectStock, qty)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

func (s txStore) InsertLine(ctx context.Context, orderID string, productID int64, qty int, price decimal.Decimal) error {
	_, err := s.tx.Exec(ctx, `
		INSERT INTO order_lines(order_id, product_id, count, price, comment)
		VALUES ($1, $2, $3, $4, '')`, orderID, productID, qty, price)
	return err
}

// Commit writes the order header, reserves every item, fixes the totals and
// commits, all in one transaction. Typed reservation failures pass through
// for the caller to map.
func (r *Repo) Commit(ctx context.Context, o Order, items []itemQty) (Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, user_id, address_id, pay_method, total_count, total_price, transit_price, status)
		VALUES ($1, $2, $3, $4, 0, 0, $5, $6)`,
		o.ID, o.UserID, o.AddressID, o.PayMethod, o.TransitPrice, StatusUnpaid)
	if err != nil {
		return Order{}, err
	}

	count, price, err := reserveAll(ctx, txStore{tx}, o.ID, items)
	if err != nil {
		return Order{}, err
	}

	_, err = tx.Exec(ctx, `UPDATE orders SET total_count=$2, total_price=$3 WHERE id=$1`,
		o.ID, count, price)
	if err != nil {
		return Order{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, err
	}
	o.TotalCount = count
	o.TotalPrice = price
	o.Status = StatusUnpaid
	return o, nil
}

const orderCols = `id, user_id, address_id, pay_method, total_count, total_price, transit_price, status, COALESCE(trade_no, ''), created_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.AddressID, &o.PayMethod, &o.TotalCount,
		&o.TotalPrice, &o.TransitPrice, &o.Status, &o.TradeNo, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return o, ErrNotFound
	}
	return o, err
}

// Get returns the order only when it belongs to the user.
func (r *Repo) Get(ctx context.Context, orderID string, userID int64) (Order, error) {
	return scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1 AND user_id=$2`,
		orderID, userID))
}

func (r *Repo) Lines(ctx context.Context, orderID string) ([]Line, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT order_id, product_id, count, price, comment
		FROM order_lines WHERE order_id=$1 ORDER BY product_id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.OrderID, &l.ProductID, &l.Count, &l.Price, &l.Comment); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repo) CountByUser(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE user_id=$1`, userID).Scan(&n)
	return n, err
}

func (r *Repo) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+orderCols+` FROM orders
		WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// PayableOrder fetches an order eligible for online payment: owned by the
// user, paid via the gateway, still unpaid.
func (r *Repo) PayableOrder(ctx context.Context, orderID string, userID int64) (Order, error) {
	o, err := r.Get(ctx, orderID, userID)
	if err != nil {
		return Order{}, err
	}
	if o.PayMethod != PayAlipay || o.Status != StatusUnpaid {
		return Order{}, ErrWrongState
	}
	return o, nil
}

// MarkPaid flips unpaid -> paid and records the gateway trade id. The guard
// on the current status makes replayed confirmations no-ops.
func (r *Repo) MarkPaid(ctx context.Context, orderID, tradeNo string) (bool, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET status=$3, trade_no=$4
		WHERE id=$1 AND status=$2`, orderID, StatusUnpaid, StatusPaid, tradeNo)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

// SetComments stores per-line review text and completes the order.
func (r *Repo) SetComments(ctx context.Context, orderID string, userID int64, comments map[int64]string) error {
	o, err := r.Get(ctx, orderID, userID)
	if err != nil {
		return err
	}
	if !CanTransition(o.Status, StatusCompleted) {
		return ErrWrongState
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for productID, content := range comments {
		if content == "" {
			continue
		}
		if _, err := tx.Exec(ctx, `
			UPDATE order_lines SET comment=$3
			WHERE order_id=$1 AND product_id=$2`, orderID, productID, content); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx, `UPDATE orders SET status=$2 WHERE id=$1`, orderID, StatusCompleted); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
