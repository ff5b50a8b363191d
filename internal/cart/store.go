// Package cart keeps pending purchase quantities in a Redis hash per user:
// cart:{user_id} -> {product_id: quantity}. Entries are display state until an
// order commit consumes them; the reservation logic guards stock, not the cart.
package cart

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/dailyfresh/storefront/internal/redisx"
)

// hashCmds is the slice of the Redis API the store needs; *redis.Client
// satisfies it, tests supply a map-backed fake.
type hashCmds interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HSet(ctx context.Context, key string, values ...any) *redis.IntCmd
	HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HLen(ctx context.Context, key string) *redis.IntCmd
	HVals(ctx context.Context, key string) *redis.StringSliceCmd
}

type Store struct{ R hashCmds }

func key(userID int64) string { return fmt.Sprintf(redisx.KeyCart, userID) }

func field(productID int64) string { return strconv.FormatInt(productID, 10) }

// Quantity returns the pending quantity for one product, 0 when absent.
func (s *Store) Quantity(ctx context.Context, userID, productID int64) (int, error) {
	v, err := s.R.HGet(ctx, key(userID), field(productID)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("corrupt cart entry %q: %w", v, err)
	}
	return n, nil
}

func (s *Store) Set(ctx context.Context, userID, productID int64, qty int) error {
	return s.R.HSet(ctx, key(userID), field(productID), qty).Err()
}

func (s *Store) Remove(ctx context.Context, userID int64, productIDs ...int64) error {
	if len(productIDs) == 0 {
		return nil
	}
	fields := make([]string, len(productIDs))
	for i, id := range productIDs {
		fields[i] = field(id)
	}
	return s.R.HDel(ctx, key(userID), fields...).Err()
}

// Entries returns the full cart hash as product id -> quantity.
func (s *Store) Entries(ctx context.Context, userID int64) (map[int64]int, error) {
	raw, err := s.R.HGetAll(ctx, key(userID)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[int64]int, len(raw))
	for f, v := range raw {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		out[id] = n
	}
	return out, nil
}

// EntryCount is the number of distinct products in the cart.
func (s *Store) EntryCount(ctx context.Context, userID int64) (int, error) {
	n, err := s.R.HLen(ctx, key(userID)).Result()
	return int(n), err
}

// UnitCount is the total quantity across all entries.
func (s *Store) UnitCount(ctx context.Context, userID int64) (int, error) {
	vals, err := s.R.HVals(ctx, key(userID)).Result()
	if err != nil {
		return 0, err
	}
	total := 0
	for _, v := range vals {
		if n, err := strconv.Atoi(v); err == nil {
			total += n
		}
	}
	return total, nil
}
