package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/dailyfresh/storefront/internal/cart"
	"github.com/dailyfresh/storefront/internal/catalog"
	"github.com/dailyfresh/storefront/internal/orders"
	"github.com/dailyfresh/storefront/internal/users"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errBody struct {
	Error string `json:"error"`
	Msg   string `json:"msg,omitempty"`
}

// writeError maps the domain failure taxonomy onto HTTP. Anything unmapped is
// a 500 with the detail kept out of the response.
func writeError(w http.ResponseWriter, err error) {
	var code int
	var slug string
	switch {
	case errors.Is(err, users.ErrBadCredentials):
		code, slug = http.StatusUnauthorized, "bad_credentials"
	case errors.Is(err, users.ErrInactive):
		code, slug = http.StatusForbidden, "account_inactive"
	case errors.Is(err, users.ErrUsernameTaken):
		code, slug = http.StatusConflict, "username_taken"
	case errors.Is(err, users.ErrBadToken):
		code, slug = http.StatusNotFound, "bad_token"
	case errors.Is(err, users.ErrNotFound), errors.Is(err, users.ErrUnknownAddress):
		code, slug = http.StatusNotFound, "not_found"
	case errors.Is(err, catalog.ErrNotFound):
		code, slug = http.StatusNotFound, "product_not_found"
	case errors.Is(err, cart.ErrBadQuantity):
		code, slug = http.StatusBadRequest, "bad_quantity"
	case errors.Is(err, cart.ErrInsufficientStock), errors.Is(err, orders.ErrInsufficientStock):
		code, slug = http.StatusConflict, "insufficient_stock"
	case errors.Is(err, orders.ErrInvalidPayMethod):
		code, slug = http.StatusBadRequest, "invalid_pay_method"
	case errors.Is(err, orders.ErrInvalidAddress):
		code, slug = http.StatusBadRequest, "invalid_address"
	case errors.Is(err, orders.ErrProductNotFound):
		code, slug = http.StatusNotFound, "product_not_found"
	case errors.Is(err, orders.ErrNotInCart):
		code, slug = http.StatusBadRequest, "not_in_cart"
	case errors.Is(err, orders.ErrReservationConflict):
		code, slug = http.StatusConflict, "reservation_conflict"
	case errors.Is(err, orders.ErrNotFound):
		code, slug = http.StatusNotFound, "order_not_found"
	case errors.Is(err, orders.ErrWrongState):
		code, slug = http.StatusConflict, "wrong_order_state"
	default:
		log.Error().Err(err).Msg("internal error")
		writeJSON(w, http.StatusInternalServerError, errBody{Error: "internal"})
		return
	}
	writeJSON(w, code, errBody{Error: slug, Msg: err.Error()})
}
