package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/accountsvc/apiserver/internal/services"
	"github.com/accountsvc/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// AccountService is the account core consumed by the HTTP layer.
type AccountService interface {
	Signup(ctx context.Context, in services.SignupInput) (string, error)
	Login(ctx context.Context, in services.LoginInput) (string, error)
	GetAccount(ctx context.Context, req services.AccountRequest) (types.AccountView, error)
	ListAccounts(ctx context.Context) ([]types.AccountView, error)
	DeleteAccount(ctx context.Context, req services.AccountRequest) (string, error)
}

// AccountHandler provides HTTP handlers for accounts.
type AccountHandler struct {
	accounts  AccountService
	validator *requestValidator
	logger    zerolog.Logger
}

func NewAccountHandler(accounts AccountService, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts:  accounts,
		validator: newRequestValidator(),
		logger:    logger,
	}
}

// AccountRouter registers account routes on the given router.
func AccountRouter(r chi.Router, accounts AccountService, logger zerolog.Logger) {
	handler := NewAccountHandler(accounts, logger)

	r.Post("/signup", handler.Signup)
	r.Post("/login", handler.Login)
	r.Get("/", handler.ListAccounts)
	r.Route("/{accountID}", func(r chi.Router) {
		r.Get("/", handler.GetAccount)
		r.Delete("/", handler.DeleteAccount)
	})
}

// TokenResponse carries a freshly issued token.
type TokenResponse struct {
	Token string `json:"token"`
}

// MessageResponse carries a confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := h.validator.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.accounts.Signup(r.Context(), req.input())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, TokenResponse{Token: token})
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := h.validator.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.accounts.Login(r.Context(), req.input())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}

func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	views, err := h.accounts.ListAccounts(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	view, err := h.accounts.GetAccount(r.Context(), accountRequest(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	message, err := h.accounts.DeleteAccount(r.Context(), accountRequest(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: message})
}

// accountRequest leaves Token empty when the header is missing or malformed;
// the service answers that with ErrUnauthorized.
func accountRequest(r *http.Request) services.AccountRequest {
	token, _ := bearerToken(r)
	return services.AccountRequest{
		Token: token,
		ID:    chi.URLParam(r, "accountID"),
	}
}

func (h *AccountHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		writeError(w, statusFor(svcErr.Kind), svcErr.Message)
		return
	}

	h.logger.Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("unexpected failure")
	writeError(w, http.StatusInternalServerError, "internal error")
}

func statusFor(kind error) int {
	switch {
	case errors.Is(kind, services.ErrValidation), errors.Is(kind, services.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(kind, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(kind, services.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
