package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

type fakeProduct struct {
	stock int
	sales int
	price decimal.Decimal
}

// fakeReserveStore mimics the transactional store. conflicts[id] injects that
// many lost CAS races: each one simulates a concurrent buyer taking a unit
// between the read and the conditional update.
type fakeReserveStore struct {
	products  map[int64]*fakeProduct
	conflicts map[int64]int
	reads     map[int64]int
	casCalls  map[int64]int
	lines     []Line
}

func newFakeStore() *fakeReserveStore {
	return &fakeReserveStore{
		products:  map[int64]*fakeProduct{},
		conflicts: map[int64]int{},
		reads:     map[int64]int{},
		casCalls:  map[int64]int{},
	}
}

func (f *fakeReserveStore) add(id int64, stock int, price string) {
	d, _ := decimal.NewFromString(price)
	f.products[id] = &fakeProduct{stock: stock, price: d}
}

func (f *fakeReserveStore) ProductForReserve(_ context.Context, id int64) (int, int, decimal.Decimal, error) {
	f.reads[id]++
	p, ok := f.products[id]
	if !ok {
		return 0, 0, decimal.Zero, ErrProductNotFound
	}
	return p.stock, p.sales, p.price, nil
}

func (f *fakeReserveStore) ReserveStock(_ context.Context, id int64, expect, qty int) (bool, error) {
	f.casCalls[id]++
	p := f.products[id]
	if f.conflicts[id] > 0 {
		f.conflicts[id]--
		if p.stock > 0 {
			p.stock-- // concurrent buyer got there first
		}
		return false, nil
	}
	if p.stock != expect {
		return false, nil
	}
	p.stock -= qty
	p.sales += qty
	return true, nil
}

func (f *fakeReserveStore) InsertLine(_ context.Context, orderID string, id int64, qty int, price decimal.Decimal) error {
	f.lines = append(f.lines, Line{OrderID: orderID, ProductID: id, Count: qty, Price: price})
	return nil
}

func TestReserveAllTotals(t *testing.T) {
	st := newFakeStore()
	st.add(1, 5, "10.00")
	st.add(2, 1, "20.00")

	count, price, err := reserveAll(context.Background(), st, "ord-1", []itemQty{
		{ProductID: 1, Qty: 2},
		{ProductID: 2, Qty: 1},
	})
	if err != nil {
		t.Fatalf("reserveAll: %v", err)
	}
	if count != 3 {
		t.Errorf("total count = %d, want 3", count)
	}
	if want, _ := decimal.NewFromString("40.00"); !price.Equal(want) {
		t.Errorf("total price = %s, want 40.00", price)
	}
	if st.products[1].stock != 3 || st.products[2].stock != 0 {
		t.Errorf("stocks = %d, %d; want 3, 0", st.products[1].stock, st.products[2].stock)
	}
	if st.products[1].sales != 2 || st.products[2].sales != 1 {
		t.Errorf("sales = %d, %d; want 2, 1", st.products[1].sales, st.products[2].sales)
	}
	if len(st.lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(st.lines))
	}
	// price snapshot, not a reference
	if want, _ := decimal.NewFromString("10.00"); !st.lines[0].Price.Equal(want) {
		t.Errorf("line price = %s, want 10.00", st.lines[0].Price)
	}
}

func TestReserveItemRetriesThenSucceeds(t *testing.T) {
	st := newFakeStore()
	st.add(1, 10, "2.50")
	st.conflicts[1] = 2 // lose the race twice, win the third

	total, err := reserveItem(context.Background(), st, "ord-2", 1, 3)
	if err != nil {
		t.Fatalf("reserveItem: %v", err)
	}
	if want, _ := decimal.NewFromString("7.50"); !total.Equal(want) {
		t.Errorf("line total = %s, want 7.50", total)
	}
	if st.casCalls[1] != 3 {
		t.Errorf("cas attempts = %d, want 3", st.casCalls[1])
	}
}

func TestReserveItemGivesUpAfterThreeAttempts(t *testing.T) {
	st := newFakeStore()
	st.add(1, 10, "2.50")
	st.conflicts[1] = 5 // more contention than the budget allows

	_, err := reserveItem(context.Background(), st, "ord-3", 1, 1)
	if !errors.Is(err, ErrReservationConflict) {
		t.Fatalf("err = %v, want ErrReservationConflict", err)
	}
	if st.casCalls[1] != 3 {
		t.Errorf("cas attempts = %d, want exactly 3", st.casCalls[1])
	}
	if len(st.lines) != 0 {
		t.Errorf("no line must survive a failed reservation, got %d", len(st.lines))
	}
}

func TestReserveItemInsufficientStock(t *testing.T) {
	st := newFakeStore()
	st.add(1, 2, "4.00")

	_, err := reserveItem(context.Background(), st, "ord-4", 1, 3)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	if st.products[1].stock != 2 {
		t.Errorf("stock touched on failure: %d", st.products[1].stock)
	}
	if len(st.lines) != 0 {
		t.Errorf("no line must survive, got %d", len(st.lines))
	}
}

func TestReserveItemProductGone(t *testing.T) {
	st := newFakeStore()
	_, err := reserveItem(context.Background(), st, "ord-5", 99, 1)
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("err = %v, want ErrProductNotFound", err)
	}
}

// Two buyers race for the last unit: the loser must see insufficient stock
// once the winner's decrement lands.
func TestReserveLastUnitOversell(t *testing.T) {
	st := newFakeStore()
	st.add(1, 1, "5.00")

	if _, err := reserveItem(context.Background(), st, "buyer-a", 1, 1); err != nil {
		t.Fatalf("first buyer: %v", err)
	}
	_, err := reserveItem(context.Background(), st, "buyer-b", 1, 1)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("second buyer err = %v, want ErrInsufficientStock", err)
	}
	if st.products[1].stock != 0 {
		t.Errorf("stock = %d, want 0 (never negative)", st.products[1].stock)
	}
	if st.products[1].sales != 1 {
		t.Errorf("sales = %d, want 1", st.products[1].sales)
	}
}

func TestReserveAllAbortsWholeOrder(t *testing.T) {
	st := newFakeStore()
	st.add(1, 5, "10.00")
	st.add(2, 0, "20.00") // second item cannot be served

	_, _, err := reserveAll(context.Background(), st, "ord-6", []itemQty{
		{ProductID: 1, Qty: 2},
		{ProductID: 2, Qty: 1},
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	// the caller rolls back the transaction; the error alone must abort
}
