package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/dwikikusuma/foodstore/internal/checkout/app"
	"github.com/dwikikusuma/foodstore/internal/checkout/domain"
	"github.com/dwikikusuma/foodstore/pkg/httpx"
	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type CheckoutService interface {
	Bill(ctx context.Context, userID string) (domain.Bill, error)
	Initiate(ctx context.Context, userID string) (domain.Session, error)
	Get(ctx context.Context, userID, sessionID string) (domain.Session, error)
	Complete(ctx context.Context, userID, sessionID string) (domain.Session, error)
}

type Handler struct {
	svc CheckoutService
}

func NewHandler(svc CheckoutService) *Handler {
	return &Handler{svc: svc}
}

// Routes expects to be mounted behind the auth middleware.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/cart/bill", h.Bill)
	r.Post("/checkout", h.Initiate)
	r.Get("/checkout/{id}", h.Get)
	r.Post("/checkout/{id}/complete", h.Complete)
}

func (h *Handler) Bill(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.UserID(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	bill, err := h.svc.Bill(r.Context(), userID)
	if err != nil {
		httpx.WriteError(w, r, toStatus(err, "bill"))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, bill.View())
}

func (h *Handler) Initiate(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.UserID(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	session, err := h.svc.Initiate(r.Context(), userID)
	if err != nil {
		httpx.WriteError(w, r, toStatus(err, "initiate checkout"))
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, session.View())
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, h.svc.Get, "get checkout")
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, h.svc.Complete, "complete checkout")
}

func (h *Handler) withSession(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, userID, sessionID string) (domain.Session, error), op string) {
	userID, err := httpx.UserID(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	session, err := fn(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, toStatus(err, op))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, session.View())
}

func toStatus(err error, op string) error {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, app.ErrEmptyCart):
		return status.Error(codes.FailedPrecondition, "cart is empty")
	case errors.Is(err, app.ErrCheckoutNotFound):
		return status.Error(codes.NotFound, "checkout not found")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, op+" timed out")
	default:
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}
