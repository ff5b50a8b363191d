package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/dailyfresh/storefront/internal/catalog"
	"github.com/dailyfresh/storefront/internal/users"
)

type UserHandler struct {
	Users    *users.Service
	Repo     *users.Repo
	Catalog  *catalog.Service
	Auth     *Auth
	Validate *validatorv10.Validate
}

type registerReq struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Password string `json:"password" validate:"required,min=8"`
	Email    string `json:"email" validate:"required,email"`
}

type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type addressReq struct {
	Receiver string `json:"receiver" validate:"required"`
	Addr     string `json:"addr" validate:"required"`
	ZipCode  string `json:"zip_code"`
	Phone    string `json:"phone" validate:"required,cnmobile"`
}

func (h *UserHandler) Register(r *chi.Mux) {
	r.Post("/users/register", h.register)
	r.Get("/users/activate/{token}", h.activate)
	r.Post("/users/login", h.login)

	r.Group(func(r chi.Router) {
		r.Use(h.Auth.Require)
		r.Post("/users/logout", h.logout)
		r.Get("/users/me", h.me)
		r.Get("/users/addresses", h.listAddresses)
		r.Post("/users/addresses", h.addAddress)
	})
}

func (h *UserHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if !bindAndValidate(w, r, &req, h.Validate) {
		return
	}
	id, err := h.Users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *UserHandler) activate(w http.ResponseWriter, r *http.Request) {
	if err := h.Users.Activate(r.Context(), chi.URLParam(r, "token")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "activated"})
}

func (h *UserHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if !bindAndValidate(w, r, &req, h.Validate) {
		return
	}
	token, err := h.Users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *UserHandler) logout(w http.ResponseWriter, r *http.Request) {
	if tok := sessionToken(r); tok != "" {
		_ = h.Users.Logout(r.Context(), tok)
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *UserHandler) me(w http.ResponseWriter, r *http.Request) {
	uid := UserID(r)
	u, err := h.Users.Profile(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	addr, err := h.Repo.DefaultAddress(r.Context(), uid)
	if err != nil && err != users.ErrUnknownAddress {
		writeError(w, err)
		return
	}
	history, err := h.Catalog.History(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := map[string]any{"user": u, "history": history}
	if addr.ID != 0 {
		resp["default_address"] = addr
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *UserHandler) listAddresses(w http.ResponseWriter, r *http.Request) {
	addrs, err := h.Repo.Addresses(r.Context(), UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addrs)
}

func (h *UserHandler) addAddress(w http.ResponseWriter, r *http.Request) {
	var req addressReq
	if !bindAndValidate(w, r, &req, h.Validate) {
		return
	}
	id, err := h.Repo.AddAddress(r.Context(), users.Address{
		UserID:   UserID(r),
		Receiver: req.Receiver,
		Addr:     req.Addr,
		ZipCode:  req.ZipCode,
		Phone:    req.Phone,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}
