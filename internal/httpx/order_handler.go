package httpx

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/dailyfresh/storefront/internal/orders"
)

type OrderHandler struct {
	Orders   *orders.Service
	Auth     *Auth
	Validate *validatorv10.Validate
}

type placeReq struct {
	ProductIDs []int64 `json:"product_ids" validate:"required,min=1,dive,gt=0"`
}

type commitReq struct {
	AddressID  int64   `json:"address_id" validate:"required,gt=0"`
	PayMethod  int     `json:"pay_method" validate:"required"`
	ProductIDs []int64 `json:"product_ids" validate:"required,min=1,dive,gt=0"`
}

type commentReq struct {
	Comments map[int64]string `json:"comments" validate:"required,min=1"`
}

func (h *OrderHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.Require)
		r.Post("/orders/place", h.place)
		r.Post("/orders/commit", h.commit)
		r.Get("/orders", h.history)
		r.Get("/orders/{id}", h.detail)
		r.Post("/orders/{id}/comments", h.comment)
	})
}

func (h *OrderHandler) place(w http.ResponseWriter, r *http.Request) {
	var req placeReq
	if !bindAndValidate(w, r, &req, h.Validate) {
		return
	}
	out, err := h.Orders.Place(r.Context(), UserID(r), req.ProductIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrderHandler) commit(w http.ResponseWriter, r *http.Request) {
	var req commitReq
	if !bindAndValidate(w, r, &req, h.Validate) {
		return
	}
	o, err := h.Orders.Commit(r.Context(), UserID(r), req.AddressID, req.PayMethod, req.ProductIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) history(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	out, err := h.Orders.History(r.Context(), UserID(r), page)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrderHandler) detail(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.Detail(r.Context(), chi.URLParam(r, "id"), UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) comment(w http.ResponseWriter, r *http.Request) {
	var req commentReq
	if !bindAndValidate(w, r, &req, h.Validate) {
		return
	}
	if err := h.Orders.Comment(r.Context(), chi.URLParam(r, "id"), UserID(r), req.Comments); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
