package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/dailyfresh/storefront/internal/payment"
)

type PaymentHandler struct {
	Payments *payment.Service
	Auth     *Auth
	Validate *validatorv10.Validate
}

type notifyReq struct {
	OutTradeNo string `json:"out_trade_no" validate:"required"`
	TradeNo    string `json:"trade_no" validate:"required"`
}

func (h *PaymentHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.Require)
		r.Post("/orders/{id}/pay", h.pay)
		r.Post("/orders/{id}/check", h.check)
	})
	// gateway callback, authenticated by the gateway's signature upstream
	r.Post("/payments/notify", h.notify)
}

func (h *PaymentHandler) pay(w http.ResponseWriter, r *http.Request) {
	url, err := h.Payments.Pay(r.Context(), chi.URLParam(r, "id"), UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"pay_url": url})
}

func (h *PaymentHandler) check(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.Payments.Check(r.Context(), chi.URLParam(r, "id"), UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"outcome": string(outcome)})
}

func (h *PaymentHandler) notify(w http.ResponseWriter, r *http.Request) {
	var req notifyReq
	if !bindAndValidate(w, r, &req, h.Validate) {
		return
	}
	applied, err := h.Payments.Notify(r.Context(), req.OutTradeNo, req.TradeNo)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"applied": applied})
}
