package httpx

import (
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	validatorv10 "github.com/go-playground/validator/v10"
)

func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

var mobileRe = regexp.MustCompile(`^1[3-8][0-9]{9}$`)

// NewValidator returns the request validator with the storefront's custom
// rules registered.
func NewValidator() *validatorv10.Validate {
	v := validatorv10.New()
	_ = v.RegisterValidation("cnmobile", func(fl validatorv10.FieldLevel) bool {
		return mobileRe.MatchString(fl.Field().String())
	})
	return v
}
