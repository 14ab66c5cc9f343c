package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/dwikikusuma/foodstore/internal/order/app"
	"github.com/dwikikusuma/foodstore/internal/order/domain"
	"github.com/dwikikusuma/foodstore/pkg/httpx"
	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type OrderService interface {
	ListOrders(ctx context.Context, userID string, limit int) ([]domain.OrderResponse, error)
}

type Handler struct {
	svc OrderService
}

func NewHandler(svc OrderService) *Handler {
	return &Handler{svc: svc}
}

// Routes expects to be mounted behind the auth middleware.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/orders", h.ListOrders)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.UserID(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			httpx.WriteError(w, r, status.Error(codes.InvalidArgument, "limit must be a non-negative integer"))
			return
		}
	}

	orders, err := h.svc.ListOrders(r.Context(), userID, limit)
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			httpx.WriteError(w, r, status.Error(codes.InvalidArgument, err.Error()))
			return
		}
		httpx.WriteError(w, r, status.Errorf(codes.Internal, "list orders: %v", err))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"orders": orders})
}
