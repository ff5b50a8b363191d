package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/dailyfresh/storefront/internal/catalog"
	"github.com/dailyfresh/storefront/internal/pagination"
	"github.com/dailyfresh/storefront/internal/tasks"
	"github.com/dailyfresh/storefront/internal/users"
)

const historyPageSize = 5

// Narrow views of the collaborators, so the orchestration is testable without
// Postgres or Redis.
type committer interface {
	Commit(ctx context.Context, o Order, items []itemQty) (Order, error)
}

type cartAccess interface {
	Quantity(ctx context.Context, userID, productID int64) (int, error)
	Remove(ctx context.Context, userID int64, productIDs ...int64) error
}

type addressStore interface {
	Address(ctx context.Context, id, userID int64) (users.Address, error)
	Addresses(ctx context.Context, userID int64) ([]users.Address, error)
}

type productGetter interface {
	Product(ctx context.Context, id int64) (catalog.Product, error)
}

type versionBumper interface {
	Bump(ctx context.Context) error
}

type taskSubmitter interface {
	Submit(taskType, key string, payload any)
}

type Service struct {
	Orders    committer
	Repo      *Repo
	Cart      cartAccess
	Addresses addressStore
	Products  productGetter
	Catalog   versionBumper
	Tasks     taskSubmitter

	TransitPrice decimal.Decimal
}

// NewOrderID keeps the original human-readable timestamp prefix but appends a
// uuid so rapid submissions by one user can never collide.
func NewOrderID(now time.Time) string {
	return now.UTC().Format("20060102150405") + "-" + uuid.NewString()
}

type PlaceLine struct {
	Product catalog.Product `json:"product"`
	Count   int             `json:"count"`
	Amount  decimal.Decimal `json:"amount"`
}

type Placement struct {
	Lines        []PlaceLine     `json:"lines"`
	TotalCount   int             `json:"total_count"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	TransitPrice decimal.Decimal `json:"transit_price"`
	TotalPay     decimal.Decimal `json:"total_pay"`
	Addresses    []users.Address `json:"addresses"`
}

// Place previews an order: cart quantities priced at current catalog prices,
// plus the user's delivery addresses.
func (s *Service) Place(ctx context.Context, userID int64, productIDs []int64) (Placement, error) {
	out := Placement{TotalPrice: decimal.Zero, TransitPrice: s.TransitPrice}
	for _, id := range productIDs {
		p, err := s.Products.Product(ctx, id)
		if err != nil {
			return Placement{}, err
		}
		qty, err := s.Cart.Quantity(ctx, userID, id)
		if err != nil {
			return Placement{}, err
		}
		if qty < 1 {
			return Placement{}, ErrNotInCart
		}
		amount := p.Price.Mul(decimal.NewFromInt(int64(qty)))
		out.Lines = append(out.Lines, PlaceLine{Product: p, Count: qty, Amount: amount})
		out.TotalCount += qty
		out.TotalPrice = out.TotalPrice.Add(amount)
	}
	out.TotalPay = out.TotalPrice.Add(out.TransitPrice)

	addrs, err := s.Addresses.Addresses(ctx, userID)
	if err != nil {
		return Placement{}, err
	}
	out.Addresses = addrs
	return out, nil
}

// Commit turns cart entries into a durable order. All relational writes are
// one atomic transaction; the cart cleanup and cache invalidation run only
// after that commits, and their failures never fail the order.
func (s *Service) Commit(ctx context.Context, userID, addressID int64, payMethod int, productIDs []int64) (Order, error) {
	if !ValidPayMethod(payMethod) {
		return Order{}, ErrInvalidPayMethod
	}
	if _, err := s.Addresses.Address(ctx, addressID, userID); err != nil {
		return Order{}, ErrInvalidAddress
	}

	items := make([]itemQty, 0, len(productIDs))
	for _, id := range productIDs {
		qty, err := s.Cart.Quantity(ctx, userID, id)
		if err != nil {
			return Order{}, err
		}
		if qty < 1 {
			return Order{}, ErrNotInCart
		}
		items = append(items, itemQty{ProductID: id, Qty: qty})
	}

	o := Order{
		ID:           NewOrderID(time.Now()),
		UserID:       userID,
		AddressID:    addressID,
		PayMethod:    payMethod,
		TransitPrice: s.TransitPrice,
	}
	o, err := s.Orders.Commit(ctx, o, items)
	if err != nil {
		return Order{}, err
	}

	// Stale cart entries after a crash here are display artifacts only; log
	// for reconciliation instead of failing a committed order.
	if err := s.Cart.Remove(ctx, userID, productIDs...); err != nil {
		log.Error().Err(err).Str("order", o.ID).Msg("cart cleanup failed, needs reconciliation")
	}
	if err := s.Catalog.Bump(ctx); err != nil {
		log.Warn().Err(err).Msg("catalog version bump failed")
	}
	if s.Tasks != nil {
		// pre-warm the homepage snapshot at the new content version
		s.Tasks.Submit(tasks.TaskRegenerateIndex, "catalog", tasks.RegenerateIndexPayload{Reason: "order commit"})
	}
	return o, nil
}

type OrderWithLines struct {
	Order
	Lines []Line `json:"lines"`
}

type HistoryPage struct {
	Orders   []OrderWithLines `json:"orders"`
	Page     int              `json:"page"`
	NumPages int              `json:"num_pages"`
	Pages    []int            `json:"pages"`
}

// History lists the user's orders newest first with line items, paginated.
// An out-of-range page resets to the first page.
func (s *Service) History(ctx context.Context, userID int64, page int) (HistoryPage, error) {
	total, err := s.Repo.CountByUser(ctx, userID)
	if err != nil {
		return HistoryPage{}, err
	}
	numPages := pagination.NumPages(total, historyPageSize)
	if page < 1 || page > numPages {
		page = 1
	}

	list, err := s.Repo.ListByUser(ctx, userID, historyPageSize, (page-1)*historyPageSize)
	if err != nil {
		return HistoryPage{}, err
	}
	out := HistoryPage{Page: page, NumPages: numPages, Pages: pagination.Window(page, numPages)}
	for _, o := range list {
		lines, err := s.Repo.Lines(ctx, o.ID)
		if err != nil {
			return HistoryPage{}, err
		}
		out.Orders = append(out.Orders, OrderWithLines{Order: o, Lines: lines})
	}
	return out, nil
}

// Detail returns one order with lines, scoped to its owner.
func (s *Service) Detail(ctx context.Context, orderID string, userID int64) (OrderWithLines, error) {
	o, err := s.Repo.Get(ctx, orderID, userID)
	if err != nil {
		return OrderWithLines{}, err
	}
	lines, err := s.Repo.Lines(ctx, orderID)
	if err != nil {
		return OrderWithLines{}, err
	}
	return OrderWithLines{Order: o, Lines: lines}, nil
}

// Comment stores line reviews and completes the order.
func (s *Service) Comment(ctx context.Context, orderID string, userID int64, comments map[int64]string) error {
	if err := s.Repo.SetComments(ctx, orderID, userID, comments); err != nil {
		return fmt.Errorf("comment order %s: %w", orderID, err)
	}
	return nil
}
