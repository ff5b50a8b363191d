package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/dailyfresh/storefront/internal/redisx"
)

const (
	historyLen   = 5
	detailLRUCap = 256
)

type Service struct {
	Repo  *Repo
	Redis *redis.Client

	// in-process read cache for product rows, keyed by "{id}@{content version}"
	// so entries die naturally when the catalog changes
	detail *lru.Cache[string, Product]
}

func NewService(repo *Repo, rdb *redis.Client) *Service {
	c, _ := lru.New[string, Product](detailLRUCap)
	return &Service{Repo: repo, Redis: rdb, detail: c}
}

// Version reads the catalog content version. Missing key counts as 0.
func (s *Service) Version(ctx context.Context) int64 {
	v, err := s.Redis.Get(ctx, redisx.KeyCatalogVersion).Int64()
	if err != nil {
		return 0
	}
	return v
}

// Bump invalidates all version-keyed caches by advancing the content version.
// Called after any catalog-mutating write, order commits included.
func (s *Service) Bump(ctx context.Context) error {
	return s.Redis.Incr(ctx, redisx.KeyCatalogVersion).Err()
}

// Product is a read-through lookup: LRU first, then Postgres.
func (s *Service) Product(ctx context.Context, id int64) (Product, error) {
	key := fmt.Sprintf("%d@%d", id, s.Version(ctx))
	if p, ok := s.detail.Get(key); ok {
		return p, nil
	}
	p, err := s.Repo.Product(ctx, id)
	if err != nil {
		return Product{}, err
	}
	s.detail.Add(key, p)
	return p, nil
}

// Homepage returns the index snapshot, read through the Redis cache keyed by
// the current content version.
func (s *Service) Homepage(ctx context.Context) (IndexSnapshot, error) {
	key := fmt.Sprintf(redisx.KeyIndexCache, s.Version(ctx))
	if raw, err := s.Redis.Get(ctx, key).Bytes(); err == nil {
		var snap IndexSnapshot
		if err := json.Unmarshal(raw, &snap); err == nil {
			return snap, nil
		}
	}
	return s.RebuildIndex(ctx)
}

// RebuildIndex recomputes the homepage snapshot and stores it at the current
// content version. Also run by the background worker on regenerate tasks.
func (s *Service) RebuildIndex(ctx context.Context) (IndexSnapshot, error) {
	var snap IndexSnapshot
	var err error
	if snap.Categories, err = s.Repo.Categories(ctx); err != nil {
		return snap, err
	}
	if snap.Banners, err = s.Repo.Banners(ctx); err != nil {
		return snap, err
	}
	if snap.Promotions, err = s.Repo.Promotions(ctx); err != nil {
		return snap, err
	}
	if snap.Featured, err = s.Repo.Featured(ctx); err != nil {
		return snap, err
	}

	key := fmt.Sprintf(redisx.KeyIndexCache, s.Version(ctx))
	if raw, err := json.Marshal(snap); err == nil {
		if err := s.Redis.Set(ctx, key, raw, redisx.TTLIndexCache).Err(); err != nil {
			log.Warn().Err(err).Msg("index cache write failed")
		}
	}
	return snap, nil
}

type DetailPage struct {
	Product  Product   `json:"product"`
	Siblings []Product `json:"siblings"`
	Newest   []Product `json:"newest"`
	Comments []Comment `json:"comments"`
}

// Detail assembles the product detail page. A non-zero userID records the
// visit in that user's browse history (newest first, capped).
func (s *Service) Detail(ctx context.Context, productID, userID int64) (DetailPage, error) {
	p, err := s.Product(ctx, productID)
	if err != nil {
		return DetailPage{}, err
	}

	page := DetailPage{Product: p}
	if page.Siblings, err = s.Repo.Siblings(ctx, p.SPUID, p.ID); err != nil {
		return DetailPage{}, err
	}
	if page.Newest, err = s.Repo.NewInCategory(ctx, p.CategoryID, 2); err != nil {
		return DetailPage{}, err
	}
	if page.Comments, err = s.Repo.CommentsForProduct(ctx, p.ID); err != nil {
		return DetailPage{}, err
	}

	if userID != 0 {
		key := fmt.Sprintf(redisx.KeyHistory, userID)
		id := fmt.Sprintf("%d", productID)
		pipe := s.Redis.Pipeline()
		pipe.LRem(ctx, key, 0, id)
		pipe.LPush(ctx, key, id)
		pipe.LTrim(ctx, key, 0, historyLen-1)
		if _, err := pipe.Exec(ctx); err != nil {
			log.Warn().Err(err).Int64("user", userID).Msg("history update failed")
		}
	}
	return page, nil
}

// History resolves a user's recently viewed products, newest first.
func (s *Service) History(ctx context.Context, userID int64) ([]Product, error) {
	key := fmt.Sprintf(redisx.KeyHistory, userID)
	raw, err := s.Redis.LRange(ctx, key, 0, historyLen-1).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(raw))
	for _, s := range raw {
		var id int64
		if _, err := fmt.Sscanf(s, "%d", &id); err == nil {
			ids = append(ids, id)
		}
	}
	return s.Repo.Products(ctx, ids)
}
