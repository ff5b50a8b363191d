package httpx

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dailyfresh/storefront/internal/cart"
	"github.com/dailyfresh/storefront/internal/catalog"
)

type CatalogHandler struct {
	Catalog *catalog.Service
	Cart    *cart.Store
	Auth    *Auth
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.Maybe)
		r.Get("/", h.index)
		r.Get("/products/{id}", h.detail)
		r.Get("/categories/{id}/products", h.list)
	})
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// cartEntries is 0 for anonymous visitors; cart badge is a display nicety,
// errors are not surfaced.
func (h *CatalogHandler) cartEntries(r *http.Request) int {
	uid := UserID(r)
	if uid == 0 {
		return 0
	}
	n, err := h.Cart.EntryCount(r.Context(), uid)
	if err != nil {
		return 0
	}
	return n
}

func (h *CatalogHandler) index(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Catalog.Homepage(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"index":      snap,
		"cart_count": h.cartEntries(r),
	})
}

func (h *CatalogHandler) detail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errBody{Error: "bad_product_id"})
		return
	}
	page, err := h.Catalog.Detail(r.Context(), id, UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"detail":     page,
		"cart_count": h.cartEntries(r),
	})
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errBody{Error: "bad_category_id"})
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	sort := r.URL.Query().Get("sort")
	if sort == "" {
		sort = catalog.SortDefault
	}
	out, err := h.Catalog.List(r.Context(), id, page, sort)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
