package catalog

import (
	"context"

	"github.com/dailyfresh/storefront/internal/pagination"
)

const listPageSize = 20

type ListPage struct {
	Category Category  `json:"category"`
	Products []Product `json:"products"`
	Newest   []Product `json:"newest"`
	Sort     string    `json:"sort"`
	Page     int       `json:"page"`
	NumPages int       `json:"num_pages"`
	Pages    []int     `json:"pages"`
}

// List renders one page of a category, ordered by the requested sort.
// Out-of-range pages snap to the nearest valid page.
func (s *Service) List(ctx context.Context, categoryID int64, page int, sort string) (ListPage, error) {
	cat, err := s.Repo.Category(ctx, categoryID)
	if err != nil {
		return ListPage{}, err
	}
	total, err := s.Repo.CountByCategory(ctx, categoryID)
	if err != nil {
		return ListPage{}, err
	}

	numPages := pagination.NumPages(total, listPageSize)
	page = pagination.Clamp(page, numPages)

	products, err := s.Repo.ListByCategory(ctx, categoryID, sort, listPageSize, (page-1)*listPageSize)
	if err != nil {
		return ListPage{}, err
	}
	newest, err := s.Repo.NewInCategory(ctx, categoryID, 2)
	if err != nil {
		return ListPage{}, err
	}

	return ListPage{
		Category: cat,
		Products: products,
		Newest:   newest,
		Sort:     sort,
		Page:     page,
		NumPages: numPages,
		Pages:    pagination.Window(page, numPages),
	}, nil
}
