package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dwikikusuma/foodstore/internal/auth/app"
	"github.com/dwikikusuma/foodstore/internal/auth/token"
	"github.com/dwikikusuma/foodstore/pkg/httpx"
	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Messages shown to the user on form validation failures.
const (
	msgMissingFields    = "Please fill in all fields"
	msgPasswordMismatch = "Passwords do not match"
)

type AuthService interface {
	SignIn(ctx context.Context, req app.SignInRequest) (app.Session, error)
	SignUp(ctx context.Context, req app.SignUpRequest) (app.Identity, error)
}

type TokenValidator interface {
	Validate(tokenStr string) (*token.Claims, error)
}

type Handler struct {
	svc     AuthService
	limiter *RateLimiter
}

func NewHandler(svc AuthService, limiter *RateLimiter) *Handler {
	return &Handler{svc: svc, limiter: limiter}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		if h.limiter != nil {
			r.Use(h.limiter.Middleware)
		}
		r.Post("/signin", h.SignIn)
		r.Post("/signup", h.SignUp)
	})
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req app.SignInRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	session, err := h.svc.SignIn(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, r, toStatus(err, codes.Unauthenticated))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, session)
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req app.SignUpRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	id, err := h.svc.SignUp(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, r, toStatus(err, codes.InvalidArgument))
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]string{
		"user_id":      id.UserID,
		"email":        id.Email,
		"display_name": id.DisplayName,
		"message":      "Account created successfully!",
	})
}

// RequireSession rejects requests without a valid Bearer session token and
// puts the token subject on the request context.
func RequireSession(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if header == "" || !ok || strings.TrimSpace(raw) == "" {
				httpx.WriteError(w, r, status.Error(codes.Unauthenticated, "missing bearer token"))
				return
			}

			claims, err := v.Validate(strings.TrimSpace(raw))
			if err != nil {
				httpx.WriteError(w, r, status.Error(codes.Unauthenticated, "invalid or expired session"))
				return
			}

			next.ServeHTTP(w, r.WithContext(httpx.WithUserID(r.Context(), claims.Subject)))
		})
	}
}

// toStatus maps auth failures. Provider rejections use rejected and keep
// the provider's message.
func toStatus(err error, rejected codes.Code) error {
	var perr *app.ProviderError
	switch {
	case errors.Is(err, app.ErrMissingFields):
		return status.Error(codes.InvalidArgument, msgMissingFields)
	case errors.Is(err, app.ErrPasswordMismatch):
		return status.Error(codes.InvalidArgument, msgPasswordMismatch)
	case errors.As(err, &perr):
		return status.Error(rejected, perr.Message)
	case errors.Is(err, app.ErrProviderUnavailable):
		return status.Error(codes.Unavailable, "identity provider unavailable")
	default:
		return status.Errorf(codes.Internal, "auth: %v", err)
	}
}
