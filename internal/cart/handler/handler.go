package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dwikikusuma/foodstore/internal/cart/app"
	"github.com/dwikikusuma/foodstore/internal/cart/domain"
	checkoutdomain "github.com/dwikikusuma/foodstore/internal/checkout/domain"
	"github.com/dwikikusuma/foodstore/pkg/httpx"
	"github.com/dwikikusuma/foodstore/pkg/observe"
	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type CartService interface {
	GetCart(ctx context.Context, userID string) (domain.Cart, error)
	AddItemToCart(ctx context.Context, userID, itemID string) (domain.Cart, error)
	RemoveItemFromCart(ctx context.Context, userID, itemID string) (domain.Cart, error)
	IncreaseQuantity(ctx context.Context, userID, itemID string) (domain.Cart, error)
	DecreaseQuantity(ctx context.Context, userID, itemID string) (domain.Cart, error)
	ClearCart(ctx context.Context, userID string) (domain.Cart, error)
	SetCartItems(ctx context.Context, userID string, items []app.ItemQuantity) (domain.Cart, error)
	Subscribe(ctx context.Context, userID string, fn func(domain.Cart)) (domain.Cart, *observe.Subscription, error)
}

type Handler struct {
	svc    CartService
	policy checkoutdomain.Policy
	log    *slog.Logger
}

// NewHandler renders carts with the bill priced under policy.
func NewHandler(svc CartService, policy checkoutdomain.Policy, log *slog.Logger) *Handler {
	return &Handler{svc: svc, policy: policy, log: log}
}

// Routes expects to be mounted behind the auth middleware.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Get("/count", h.Count)
		r.Get("/events", h.Events)
		r.Post("/items", h.AddItem)
		r.Put("/items", h.SetItems)
		r.Delete("/items/{id}", h.RemoveItem)
		r.Post("/items/{id}/increase", h.IncreaseQuantity)
		r.Post("/items/{id}/decrease", h.DecreaseQuantity)
	})
}

type LineView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Category  string `json:"category"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

type CartView struct {
	Lines   []LineView              `json:"lines"`
	Count   int                     `json:"count"`
	Total   string                  `json:"total"`
	Version uint64                  `json:"version"`
	Bill    checkoutdomain.BillView `json:"bill"`
}

func (h *Handler) view(c domain.Cart) CartView {
	lines := make([]LineView, 0, len(c.Lines))
	billLines := make([]checkoutdomain.BillLine, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, LineView{
			ID:        l.ID,
			Name:      l.Name,
			Image:     l.Image,
			Category:  l.Category,
			Price:     checkoutdomain.Money(l.Price),
			Quantity:  l.Quantity,
			LineTotal: checkoutdomain.Money(l.LineTotal()),
		})
		billLines = append(billLines, checkoutdomain.BillLine{
			ItemID:    l.ID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.Price,
		})
	}

	return CartView{
		Lines:   lines,
		Count:   c.Count(),
		Total:   checkoutdomain.Money(c.Total()),
		Version: c.Version,
		Bill:    h.policy.ComputeBill(billLines).View(),
	}
}

type addItemRequest struct {
	ItemID string `json:"item_id" validate:"required"`
}

type setItemsRequest struct {
	Items []setItemLine `json:"items" validate:"dive"`
}

type setItemLine struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(ctx context.Context, userID string) (domain.Cart, error) {
		return h.svc.GetCart(ctx, userID)
	})
}

func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.UserID(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	cart, err := h.svc.GetCart(r.Context(), userID)
	if err != nil {
		httpx.WriteError(w, r, toStatus(err))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int{"count": cart.Count()})
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	h.run(w, r, func(ctx context.Context, userID string) (domain.Cart, error) {
		return h.svc.AddItemToCart(ctx, userID, req.ItemID)
	})
}

// SetItems replaces the whole cart. Lines with quantity zero are dropped.
func (h *Handler) SetItems(w http.ResponseWriter, r *http.Request) {
	var req setItemsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	want := make([]app.ItemQuantity, 0, len(req.Items))
	for _, l := range req.Items {
		want = append(want, app.ItemQuantity{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	h.run(w, r, func(ctx context.Context, userID string) (domain.Cart, error) {
		return h.svc.SetCartItems(ctx, userID, want)
	})
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.runItem(w, r, h.svc.RemoveItemFromCart)
}

func (h *Handler) IncreaseQuantity(w http.ResponseWriter, r *http.Request) {
	h.runItem(w, r, h.svc.IncreaseQuantity)
}

func (h *Handler) DecreaseQuantity(w http.ResponseWriter, r *http.Request) {
	h.runItem(w, r, h.svc.DecreaseQuantity)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.svc.ClearCart)
}

// Events streams the cart view as server-sent events, first as it is now,
// then after every change.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.UserID(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	updates := observe.NewMailbox[domain.Cart]()
	current, sub, err := h.svc.Subscribe(r.Context(), userID, updates.Put)
	if err != nil {
		httpx.WriteError(w, r, toStatus(err))
		return
	}
	defer sub.Close()

	stream, err := httpx.NewEventStream(w)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := stream.Send("cart", h.view(current)); err != nil {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-httpx.Draining(r.Context()):
			return
		case c := <-updates.C():
			// the initial snapshot may already include this change
			if c.Version <= current.Version {
				continue
			}
			current = c
			if err := stream.Send("cart", h.view(c)); err != nil {
				h.log.Debug("cart stream closed", slog.String("user_id", userID), slog.Any("err", err))
				return
			}
		}
	}
}

func (h *Handler) runItem(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, userID, itemID string) (domain.Cart, error)) {
	itemID := chi.URLParam(r, "id")
	h.run(w, r, func(ctx context.Context, userID string) (domain.Cart, error) {
		return fn(ctx, userID, itemID)
	})
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, userID string) (domain.Cart, error)) {
	userID, err := httpx.UserID(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	cart, err := fn(r.Context(), userID)
	if err != nil {
		httpx.WriteError(w, r, toStatus(err))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.view(cart))
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, app.ErrNotFound):
		return status.Error(codes.NotFound, "item not found")
	default:
		return status.Errorf(codes.Internal, "cart: %v", err)
	}
}
