package orders

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dailyfresh/storefront/internal/catalog"
	"github.com/dailyfresh/storefront/internal/users"
)

type fakeCommitter struct {
	got     Order
	items   []itemQty
	fail    error
	commits int
}

func (f *fakeCommitter) Commit(_ context.Context, o Order, items []itemQty) (Order, error) {
	f.commits++
	if f.fail != nil {
		return Order{}, f.fail
	}
	f.got, f.items = o, items
	o.Status = StatusUnpaid
	return o, nil
}

type fakeCart struct {
	qty     map[int64]int
	removed []int64
}

func (f *fakeCart) Quantity(_ context.Context, _ int64, productID int64) (int, error) {
	return f.qty[productID], nil
}

func (f *fakeCart) Remove(_ context.Context, _ int64, productIDs ...int64) error {
	f.removed = append(f.removed, productIDs...)
	return nil
}

type fakeAddresses struct {
	known map[int64]bool
}

func (f *fakeAddresses) Address(_ context.Context, id, _ int64) (users.Address, error) {
	if !f.known[id] {
		return users.Address{}, users.ErrUnknownAddress
	}
	return users.Address{ID: id}, nil
}

func (f *fakeAddresses) Addresses(_ context.Context, _ int64) ([]users.Address, error) {
	out := []users.Address{}
	for id := range f.known {
		out = append(out, users.Address{ID: id})
	}
	return out, nil
}

type fakeProducts struct {
	prices map[int64]string
}

func (f *fakeProducts) Product(_ context.Context, id int64) (catalog.Product, error) {
	s, ok := f.prices[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	d, _ := decimal.NewFromString(s)
	return catalog.Product{ID: id, Price: d}, nil
}

type fakeBumper struct{ bumps int }

func (f *fakeBumper) Bump(context.Context) error { f.bumps++; return nil }

type recordedTask struct {
	taskType, key string
}

type fakeTasks struct{ sent []recordedTask }

func (f *fakeTasks) Submit(taskType, key string, _ any) {
	f.sent = append(f.sent, recordedTask{taskType, key})
}

func newTestService() (*Service, *fakeCommitter, *fakeCart, *fakeBumper, *fakeTasks) {
	transit, _ := decimal.NewFromString("10.00")
	committer := &fakeCommitter{}
	cart := &fakeCart{qty: map[int64]int{1: 2, 2: 1}}
	bumper := &fakeBumper{}
	tasksRec := &fakeTasks{}
	svc := &Service{
		Orders:       committer,
		Cart:         cart,
		Addresses:    &fakeAddresses{known: map[int64]bool{7: true}},
		Products:     &fakeProducts{prices: map[int64]string{1: "10.00", 2: "20.00"}},
		Catalog:      bumper,
		Tasks:        tasksRec,
		TransitPrice: transit,
	}
	return svc, committer, cart, bumper, tasksRec
}

func TestPlaceTotals(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	p, err := svc.Place(context.Background(), 42, []int64{1, 2})
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if p.TotalCount != 3 {
		t.Errorf("total count = %d, want 3", p.TotalCount)
	}
	if want, _ := decimal.NewFromString("40.00"); !p.TotalPrice.Equal(want) {
		t.Errorf("total price = %s, want 40.00", p.TotalPrice)
	}
	if want, _ := decimal.NewFromString("50.00"); !p.TotalPay.Equal(want) {
		t.Errorf("total pay = %s, want 50.00", p.TotalPay)
	}
	if len(p.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(p.Lines))
	}
	if want, _ := decimal.NewFromString("20.00"); !p.Lines[0].Amount.Equal(want) {
		t.Errorf("line 0 amount = %s, want 20.00", p.Lines[0].Amount)
	}
}

func TestPlaceMissingCartEntry(t *testing.T) {
	svc, _, cart, _, _ := newTestService()
	cart.qty[3] = 0
	svc.Products.(*fakeProducts).prices[3] = "5.00"

	_, err := svc.Place(context.Background(), 42, []int64{3})
	if !errors.Is(err, ErrNotInCart) {
		t.Fatalf("err = %v, want ErrNotInCart", err)
	}
}

func TestCommitHappyPath(t *testing.T) {
	svc, committer, cart, bumper, tasksRec := newTestService()

	o, err := svc.Commit(context.Background(), 42, 7, PayAlipay, []int64{1, 2})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if o.Status != StatusUnpaid {
		t.Errorf("status = %d, want unpaid", o.Status)
	}
	if len(committer.items) != 2 || committer.items[0].Qty != 2 || committer.items[1].Qty != 1 {
		t.Errorf("items = %+v", committer.items)
	}
	if len(cart.removed) != 2 {
		t.Errorf("cart entries removed = %v, want both products", cart.removed)
	}
	if bumper.bumps != 1 {
		t.Errorf("catalog bumps = %d, want 1", bumper.bumps)
	}
	if len(tasksRec.sent) != 1 {
		t.Errorf("tasks submitted = %d, want 1", len(tasksRec.sent))
	}
}

func TestCommitValidation(t *testing.T) {
	t.Run("bad pay method", func(t *testing.T) {
		svc, committer, _, _, _ := newTestService()
		_, err := svc.Commit(context.Background(), 42, 7, 99, []int64{1})
		if !errors.Is(err, ErrInvalidPayMethod) {
			t.Fatalf("err = %v, want ErrInvalidPayMethod", err)
		}
		if committer.commits != 0 {
			t.Error("commit reached the store")
		}
	})

	t.Run("foreign address", func(t *testing.T) {
		svc, committer, _, _, _ := newTestService()
		_, err := svc.Commit(context.Background(), 42, 999, PayAlipay, []int64{1})
		if !errors.Is(err, ErrInvalidAddress) {
			t.Fatalf("err = %v, want ErrInvalidAddress", err)
		}
		if committer.commits != 0 {
			t.Error("commit reached the store")
		}
	})

	t.Run("empty cart entry", func(t *testing.T) {
		svc, committer, cart, _, _ := newTestService()
		cart.qty[1] = 0
		_, err := svc.Commit(context.Background(), 42, 7, PayAlipay, []int64{1})
		if !errors.Is(err, ErrNotInCart) {
			t.Fatalf("err = %v, want ErrNotInCart", err)
		}
		if committer.commits != 0 {
			t.Error("commit reached the store")
		}
	})
}

func TestCommitFailureLeavesCartAlone(t *testing.T) {
	svc, committer, cart, bumper, _ := newTestService()
	committer.fail = ErrReservationConflict

	_, err := svc.Commit(context.Background(), 42, 7, PayAlipay, []int64{1, 2})
	if !errors.Is(err, ErrReservationConflict) {
		t.Fatalf("err = %v, want ErrReservationConflict", err)
	}
	if len(cart.removed) != 0 {
		t.Errorf("cart touched on failed commit: %v", cart.removed)
	}
	if bumper.bumps != 0 {
		t.Errorf("catalog bumped on failed commit")
	}
}

func TestNewOrderID(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	id := NewOrderID(now)

	re := regexp.MustCompile(`^20240315093000-[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	if !re.MatchString(id) {
		t.Fatalf("order id %q does not match timestamp-uuid shape", id)
	}
	if NewOrderID(now) == id {
		t.Error("two ids from the same instant must differ")
	}
}

func TestOrderTotalPay(t *testing.T) {
	price, _ := decimal.NewFromString("40.00")
	transit, _ := decimal.NewFromString("10.00")
	o := Order{TotalPrice: price, TransitPrice: transit}
	if want, _ := decimal.NewFromString("50.00"); !o.TotalPay().Equal(want) {
		t.Errorf("total pay = %s, want 50.00", o.TotalPay())
	}
}
