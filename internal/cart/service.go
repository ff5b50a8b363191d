package cart

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/dailyfresh/storefront/internal/catalog"
)

var (
	ErrBadQuantity       = errors.New("invalid quantity")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type productGetter interface {
	Product(ctx context.Context, id int64) (catalog.Product, error)
}

type Service struct {
	Store    *Store
	Products productGetter
}

// Add merges qty into an existing entry (add-to-cart is cumulative). The
// combined quantity must not exceed current stock.
func (s *Service) Add(ctx context.Context, userID, productID int64, qty int) (entries int, err error) {
	if qty < 1 {
		return 0, ErrBadQuantity
	}
	p, err := s.Products.Product(ctx, productID)
	if err != nil {
		return 0, err
	}
	have, err := s.Store.Quantity(ctx, userID, productID)
	if err != nil {
		return 0, err
	}
	qty += have
	if qty > p.Stock {
		return 0, ErrInsufficientStock
	}
	if err := s.Store.Set(ctx, userID, productID, qty); err != nil {
		return 0, err
	}
	return s.Store.EntryCount(ctx, userID)
}

// Update sets an entry to an absolute quantity.
func (s *Service) Update(ctx context.Context, userID, productID int64, qty int) (units int, err error) {
	if qty < 1 {
		return 0, ErrBadQuantity
	}
	p, err := s.Products.Product(ctx, productID)
	if err != nil {
		return 0, err
	}
	if qty > p.Stock {
		return 0, ErrInsufficientStock
	}
	if err := s.Store.Set(ctx, userID, productID, qty); err != nil {
		return 0, err
	}
	return s.Store.UnitCount(ctx, userID)
}

// Delete drops one entry.
func (s *Service) Delete(ctx context.Context, userID, productID int64) (units int, err error) {
	if _, err := s.Products.Product(ctx, productID); err != nil {
		return 0, err
	}
	if err := s.Store.Remove(ctx, userID, productID); err != nil {
		return 0, err
	}
	return s.Store.UnitCount(ctx, userID)
}

type Line struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
}

type Contents struct {
	Lines      []Line          `json:"lines"`
	TotalCount int             `json:"total_count"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// List resolves the cart against the catalog with per-line amounts and totals.
func (s *Service) List(ctx context.Context, userID int64) (Contents, error) {
	entries, err := s.Store.Entries(ctx, userID)
	if err != nil {
		return Contents{}, err
	}

	out := Contents{TotalPrice: decimal.Zero}
	for id, qty := range entries {
		p, err := s.Products.Product(ctx, id)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				continue // product withdrawn after it was carted
			}
			return Contents{}, err
		}
		amount := p.Price.Mul(decimal.NewFromInt(int64(qty)))
		out.Lines = append(out.Lines, Line{Product: p, Quantity: qty, Amount: amount})
		out.TotalCount += qty
		out.TotalPrice = out.TotalPrice.Add(amount)
	}
	return out, nil
}
