package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("product not found")

// Sort orders accepted by the list page.
const (
	SortDefault = "default" // newest first
	SortPrice   = "price"
	SortSales   = "sales"
)

type Repo struct{ DB *pgxpool.Pool }

const productCols = `id, category_id, spu_id, name, description, unit, price, image, stock, sales, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.CategoryID, &p.SPUID, &p.Name, &p.Desc, &p.Unit,
		&p.Price, &p.Image, &p.Stock, &p.Sales, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

func (r *Repo) Product(ctx context.Context, id int64) (Product, error) {
	return scanProduct(r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id))
}

func (r *Repo) collect(ctx context.Context, q string, args ...any) ([]Product, error) {
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Products resolves a set of ids, preserving the order given. Unknown ids are
// silently skipped (stale history entries are display artifacts).
func (r *Repo) Products(ctx context.Context, ids []int64) ([]Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := r.collect(ctx, `SELECT `+productCols+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *Repo) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE category_id=$1`, categoryID).Scan(&n)
	return n, err
}

func (r *Repo) ListByCategory(ctx context.Context, categoryID int64, sort string, limit, offset int) ([]Product, error) {
	order := `id DESC`
	switch sort {
	case SortPrice:
		order = `price ASC`
	case SortSales:
		order = `sales DESC`
	}
	return r.collect(ctx, `SELECT `+productCols+` FROM products WHERE category_id=$1
		ORDER BY `+order+` LIMIT $2 OFFSET $3`, categoryID, limit, offset)
}

// NewInCategory returns the newest products of a category, for the detail
// page sidebar.
func (r *Repo) NewInCategory(ctx context.Context, categoryID int64, limit int) ([]Product, error) {
	return r.collect(ctx, `SELECT `+productCols+` FROM products WHERE category_id=$1
		ORDER BY created_at DESC LIMIT $2`, categoryID, limit)
}

// Siblings returns the other SKUs of the same SPU.
func (r *Repo) Siblings(ctx context.Context, spuID, excludeID int64) ([]Product, error) {
	return r.collect(ctx, `SELECT `+productCols+` FROM products WHERE spu_id=$1 AND id<>$2`, spuID, excludeID)
}

func (r *Repo) Category(ctx context.Context, id int64) (Category, error) {
	var c Category
	err := r.DB.QueryRow(ctx, `SELECT id, name, logo, image FROM categories WHERE id=$1`,
		id).Scan(&c.ID, &c.Name, &c.Logo, &c.Image)
	if errors.Is(err, pgx.ErrNoRows) {
		return c, ErrNotFound
	}
	return c, err
}

func (r *Repo) Categories(ctx context.Context) ([]Category, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name, logo, image FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Logo, &c.Image); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) Banners(ctx context.Context) ([]Banner, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, product_id, image, sort_index FROM banners ORDER BY sort_index`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Banner
	for rows.Next() {
		var b Banner
		if err := rows.Scan(&b.ID, &b.ProductID, &b.Image, &b.Index); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) Promotions(ctx context.Context) ([]Promotion, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name, url, image, sort_index FROM promotions ORDER BY sort_index`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Promotion
	for rows.Next() {
		var p Promotion
		if err := rows.Scan(&p.ID, &p.Name, &p.URL, &p.Image, &p.Index); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Featured(ctx context.Context) ([]FeaturedItem, error) {
	rows, err := r.DB.Query(ctx, `SELECT category_id, product_id, display_type, sort_index
		FROM featured_items ORDER BY category_id, display_type, sort_index`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FeaturedItem
	for rows.Next() {
		var f FeaturedItem
		if err := rows.Scan(&f.CategoryID, &f.ProductID, &f.DisplayType, &f.Index); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// CommentsForProduct returns non-empty line-item reviews for a product.
func (r *Repo) CommentsForProduct(ctx context.Context, productID int64) ([]Comment, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT ol.order_id, u.username, ol.comment, o.created_at
		FROM order_lines ol
		JOIN orders o ON o.id = ol.order_id
		JOIN users u ON u.id = o.user_id
		WHERE ol.product_id = $1 AND ol.comment <> ''
		ORDER BY o.created_at DESC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.OrderID, &c.Username, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
