package cart

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/dailyfresh/storefront/internal/catalog"
)

// fakeHash backs the cart hash with a plain map, answering through the
// go-redis result constructors so the store sees real Cmd values.
type fakeHash struct {
	data map[string]map[string]string
}

func newFakeHash() *fakeHash { return &fakeHash{data: map[string]map[string]string{}} }

func (f *fakeHash) bucket(key string) map[string]string {
	if f.data[key] == nil {
		f.data[key] = map[string]string{}
	}
	return f.data[key]
}

func (f *fakeHash) HGet(_ context.Context, key, field string) *redis.StringCmd {
	v, ok := f.bucket(key)[field]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeHash) HSet(_ context.Context, key string, values ...any) *redis.IntCmd {
	b := f.bucket(key)
	for i := 0; i+1 < len(values); i += 2 {
		field := values[i].(string)
		switch v := values[i+1].(type) {
		case string:
			b[field] = v
		case int:
			b[field] = strconv.Itoa(v)
		default:
			return redis.NewIntResult(0, errors.New("unsupported value type"))
		}
	}
	return redis.NewIntResult(1, nil)
}

func (f *fakeHash) HDel(_ context.Context, key string, fields ...string) *redis.IntCmd {
	b := f.bucket(key)
	var n int64
	for _, field := range fields {
		if _, ok := b[field]; ok {
			delete(b, field)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeHash) HGetAll(_ context.Context, key string) *redis.MapStringStringCmd {
	out := map[string]string{}
	for k, v := range f.bucket(key) {
		out[k] = v
	}
	return redis.NewMapStringStringResult(out, nil)
}

func (f *fakeHash) HLen(_ context.Context, key string) *redis.IntCmd {
	return redis.NewIntResult(int64(len(f.bucket(key))), nil)
}

func (f *fakeHash) HVals(_ context.Context, key string) *redis.StringSliceCmd {
	vals := []string{}
	for _, v := range f.bucket(key) {
		vals = append(vals, v)
	}
	return redis.NewStringSliceResult(vals, nil)
}

type stubProducts struct {
	byID map[int64]catalog.Product
}

func (s *stubProducts) Product(_ context.Context, id int64) (catalog.Product, error) {
	p, ok := s.byID[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func price(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func newCartService() (*Service, *fakeHash) {
	h := newFakeHash()
	svc := &Service{
		Store: &Store{R: h},
		Products: &stubProducts{byID: map[int64]catalog.Product{
			1: {ID: 1, Name: "strawberry", Price: price("10.00"), Stock: 5},
			2: {ID: 2, Name: "mango", Price: price("20.00"), Stock: 1},
		}},
	}
	return svc, h
}

func TestQuantityAbsentIsZero(t *testing.T) {
	svc, _ := newCartService()
	n, err := svc.Store.Quantity(context.Background(), 42, 1)
	if err != nil {
		t.Fatalf("Quantity: %v", err)
	}
	if n != 0 {
		t.Errorf("quantity = %d, want 0 for an empty cart", n)
	}
}

func TestAddIsCumulative(t *testing.T) {
	svc, _ := newCartService()
	ctx := context.Background()

	if _, err := svc.Add(ctx, 42, 1, 2); err != nil {
		t.Fatalf("first add: %v", err)
	}
	entries, err := svc.Add(ctx, 42, 1, 3)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if entries != 1 {
		t.Errorf("entries = %d, want 1 distinct product", entries)
	}
	n, _ := svc.Store.Quantity(ctx, 42, 1)
	if n != 5 {
		t.Errorf("quantity = %d, want 5 (2 then +3)", n)
	}
}

func TestAddOverStock(t *testing.T) {
	svc, _ := newCartService()
	ctx := context.Background()

	if _, err := svc.Add(ctx, 42, 1, 4); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err := svc.Add(ctx, 42, 1, 2) // 4+2 > stock 5
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	n, _ := svc.Store.Quantity(ctx, 42, 1)
	if n != 4 {
		t.Errorf("quantity = %d, failed add must not change the entry", n)
	}
}

func TestAddValidation(t *testing.T) {
	svc, _ := newCartService()
	if _, err := svc.Add(context.Background(), 42, 1, 0); !errors.Is(err, ErrBadQuantity) {
		t.Errorf("qty 0: err = %v, want ErrBadQuantity", err)
	}
	if _, err := svc.Add(context.Background(), 42, 99, 1); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("unknown product: err = %v, want catalog.ErrNotFound", err)
	}
}

func TestUpdateIsAbsolute(t *testing.T) {
	svc, _ := newCartService()
	ctx := context.Background()

	if _, err := svc.Add(ctx, 42, 1, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	units, err := svc.Update(ctx, 42, 1, 5)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if units != 5 {
		t.Errorf("units = %d, want 5 (replace, not add)", units)
	}
	if _, err := svc.Update(ctx, 42, 2, 3); !errors.Is(err, ErrInsufficientStock) {
		t.Errorf("over stock: err = %v, want ErrInsufficientStock", err)
	}
}

func TestDelete(t *testing.T) {
	svc, _ := newCartService()
	ctx := context.Background()

	svc.Add(ctx, 42, 1, 2)
	svc.Add(ctx, 42, 2, 1)

	units, err := svc.Delete(ctx, 42, 1)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if units != 1 {
		t.Errorf("units = %d, want 1 remaining", units)
	}
	if n, _ := svc.Store.Quantity(ctx, 42, 1); n != 0 {
		t.Errorf("deleted entry still present: %d", n)
	}
}

func TestListTotalsAndWithdrawnProducts(t *testing.T) {
	svc, h := newCartService()
	ctx := context.Background()

	svc.Add(ctx, 42, 1, 2)
	svc.Add(ctx, 42, 2, 1)
	// product 3 was withdrawn from the catalog after being carted
	h.bucket("cart:42")["3"] = "4"

	c, err := svc.List(ctx, 42)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(c.Lines) != 2 {
		t.Fatalf("lines = %d, want 2 (withdrawn product skipped)", len(c.Lines))
	}
	if c.TotalCount != 3 {
		t.Errorf("total count = %d, want 3", c.TotalCount)
	}
	if !c.TotalPrice.Equal(price("40.00")) {
		t.Errorf("total price = %s, want 40.00", c.TotalPrice)
	}

	ids := []int64{c.Lines[0].Product.ID, c.Lines[1].Product.ID}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if ids[0] != 1 || ids[1] != 2 {
		t.Errorf("line products = %v", ids)
	}
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	svc, _ := newCartService()
	ctx := context.Background()

	svc.Add(ctx, 42, 1, 2)
	if n, _ := svc.Store.Quantity(ctx, 43, 1); n != 0 {
		t.Errorf("user 43 sees user 42's cart: %d", n)
	}
}
