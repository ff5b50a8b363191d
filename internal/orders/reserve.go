package orders

import (
	"context"

	"github.com/shopspring/decimal"
)

// Concurrent buyers race on the conditional stock update; each product gets
// this many read-check-update attempts before the whole order aborts.
const reserveAttempts = 3

// reservationStore is the transactional surface the reservation loop runs
// against. The production implementation is a pgx transaction (repo.go);
// tests use an in-memory fake.
type reservationStore interface {
	// ProductForReserve reads the current stock, sales and unit price.
	ProductForReserve(ctx context.Context, productID int64) (stock, sales int, price decimal.Decimal, err error)
	// ReserveStock decrements stock and increments sales only if stock still
	// equals expectStock. Returns false when the row was lost to a
	// concurrent update.
	ReserveStock(ctx context.Context, productID int64, expectStock, qty int) (bool, error)
	// InsertLine records the price-at-purchase snapshot.
	InsertLine(ctx context.Context, orderID string, productID int64, qty int, price decimal.Decimal) error
}

type itemQty struct {
	ProductID int64
	Qty       int
}

// reserveAll converts cart quantities into durable order lines, enforcing the
// oversell invariant per product via compare-and-swap on the stock column.
// Any returned error must abort (roll back) the enclosing transaction.
func reserveAll(ctx context.Context, st reservationStore, orderID string, items []itemQty) (totalCount int, totalPrice decimal.Decimal, err error) {
	totalPrice = decimal.Zero
	for _, it := range items {
		lineTotal, err := reserveItem(ctx, st, orderID, it.ProductID, it.Qty)
		if err != nil {
			return 0, decimal.Zero, err
		}
		totalCount += it.Qty
		totalPrice = totalPrice.Add(lineTotal)
	}
	return totalCount, totalPrice, nil
}

func reserveItem(ctx context.Context, st reservationStore, orderID string, productID int64, qty int) (decimal.Decimal, error) {
	for i := 0; i < reserveAttempts; i++ {
		stock, _, price, err := st.ProductForReserve(ctx, productID)
		if err != nil {
			return decimal.Zero, err
		}
		if qty > stock {
			return decimal.Zero, ErrInsufficientStock
		}

		ok, err := st.ReserveStock(ctx, productID, stock, qty)
		if err != nil {
			return decimal.Zero, err
		}
		if !ok {
			// lost the race, re-read and try again
			continue
		}

		if err := st.InsertLine(ctx, orderID, productID, qty, price); err != nil {
			return decimal.Zero, err
		}
		return price.Mul(decimal.NewFromInt(int64(qty))), nil
	}
	return decimal.Zero, ErrReservationConflict
}
