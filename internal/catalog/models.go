package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Logo  string `json:"logo"`
	Image string `json:"image"`
}

// Product is a sellable SKU. Products sharing a SPUID are variants of the
// same retail unit (different weights, pack sizes).
type Product struct {
	ID         int64           `json:"id"`
	CategoryID int64           `json:"category_id"`
	SPUID      int64           `json:"spu_id"`
	Name       string          `json:"name"`
	Desc       string          `json:"desc"`
	Unit       string          `json:"unit"`
	Price      decimal.Decimal `json:"price"`
	Image      string          `json:"image"`
	Stock      int             `json:"stock"`
	Sales      int             `json:"sales"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type Banner struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Image     string `json:"image"`
	Index     int    `json:"index"`
}

type Promotion struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	URL   string `json:"url"`
	Image string `json:"image"`
	Index int    `json:"index"`
}

// FeaturedItem pins a product onto the homepage shelf of its category.
// DisplayType 0 renders as a text link, 1 as an image tile.
type FeaturedItem struct {
	CategoryID  int64 `json:"category_id"`
	ProductID   int64 `json:"product_id"`
	DisplayType int   `json:"display_type"`
	Index       int   `json:"index"`
}

// IndexSnapshot is the cached homepage payload.
type IndexSnapshot struct {
	Categories []Category     `json:"categories"`
	Banners    []Banner       `json:"banners"`
	Promotions []Promotion    `json:"promotions"`
	Featured   []FeaturedItem `json:"featured"`
}

// Comment is a line-item review shown on the product detail page.
type Comment struct {
	OrderID   string    `json:"order_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
