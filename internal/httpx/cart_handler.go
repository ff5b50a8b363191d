package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/dailyfresh/storefront/internal/cart"
)

type CartHandler struct {
	Cart     *cart.Service
	Auth     *Auth
	Validate *validatorv10.Validate
}

type cartItemReq struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Count     int   `json:"count" validate:"required,min=1"`
}

type cartDeleteReq struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.Require)
		r.Get("/cart", h.show)
		r.Post("/cart/add", h.add)
		r.Post("/cart/update", h.update)
		r.Post("/cart/delete", h.del)
	})
}

func (h *CartHandler) show(w http.ResponseWriter, r *http.Request) {
	contents, err := h.Cart.List(r.Context(), UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contents)
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	var req cartItemReq
	if !bindAndValidate(w, r, &req, h.Validate) {
		return
	}
	entries, err := h.Cart.Add(r.Context(), UserID(r), req.ProductID, req.Count)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"total_count": entries})
}

func (h *CartHandler) update(w http.ResponseWriter, r *http.Request) {
	var req cartItemReq
	if !bindAndValidate(w, r, &req, h.Validate) {
		return
	}
	units, err := h.Cart.Update(r.Context(), UserID(r), req.ProductID, req.Count)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"total_count": units})
}

func (h *CartHandler) del(w http.ResponseWriter, r *http.Request) {
	var req cartDeleteReq
	if !bindAndValidate(w, r, &req, h.Validate) {
		return
	}
	units, err := h.Cart.Delete(r.Context(), UserID(r), req.ProductID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"total_count": units})
}
