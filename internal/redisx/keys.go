package redisx

import "time"

const (
	// Cart hash per user: cart:{user_id} -> {product_id: quantity}
	KeyCart = "cart:%d"

	// Browse history per user: history:{user_id} -> list of product ids (newest first)
	KeyHistory = "history:%d"

	// Session token: session:{token} -> user_id
	KeySession = "session:%s"

	// Pending account activation: activate:{token} -> user_id
	KeyActivation = "activate:%s"

	// Catalog content version counter, bumped on every catalog-mutating write.
	KeyCatalogVersion = "cache:catalog:ver"

	// Homepage snapshot keyed by content version: cache:index:{ver} -> JSON
	KeyIndexCache = "cache:index:%d"

	// Dedup task processing: dedup:{service}:{task_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIndexCache = time.Hour
	TTLDedup      = 48 * time.Hour
)
