package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dwikikusuma/foodstore/internal/catalog/app"
	"github.com/dwikikusuma/foodstore/internal/catalog/domain"
	"github.com/dwikikusuma/foodstore/pkg/httpx"
	"github.com/dwikikusuma/foodstore/pkg/observe"
	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const emptyMessage = "No items available right now"

type CatalogService interface {
	State() app.State
	FoodsByCategory(name string) ([]domain.Food, error)
	GetFood(ctx context.Context, id string) (domain.Food, error)
	Subscribe(fn func(app.State)) (app.State, *observe.Subscription)
}

type Handler struct {
	svc CatalogService
	log *slog.Logger
}

func NewHandler(svc CatalogService, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/catalog", func(r chi.Router) {
		r.Get("/", h.Snapshot)
		r.Get("/categories", h.Categories)
		r.Get("/foods", h.Foods)
		r.Get("/foods/{id}", h.Food)
		r.Get("/events", h.Events)
	})
}

type FoodView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Image       string `json:"image"`
	Category    string `json:"category"`
}

// CatalogView carries an empty-state message instead of an error when the
// feed has not delivered anything usable.
type CatalogView struct {
	Categories []domain.Category `json:"categories"`
	Foods      []FoodView        `json:"foods"`
	Version    int64             `json:"version"`
	Loaded     bool              `json:"loaded"`
	Message    string            `json:"message,omitempty"`
}

func toFoodView(f domain.Food) FoodView {
	return FoodView{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		Price:       f.Price.StringFixed(2),
		Image:       f.Image,
		Category:    f.Category,
	}
}

func toFoodViews(foods []domain.Food) []FoodView {
	out := make([]FoodView, 0, len(foods))
	for _, f := range foods {
		out = append(out, toFoodView(f))
	}
	return out
}

func toView(st app.State) CatalogView {
	v := CatalogView{
		Categories: append([]domain.Category{}, st.Snapshot.Categories...),
		Foods:      toFoodViews(st.Snapshot.Foods),
		Version:    st.Snapshot.Version,
		Loaded:     st.Loaded,
	}
	if len(v.Categories) == 0 && len(v.Foods) == 0 {
		v.Message = emptyMessage
	}
	return v
}

func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, toView(h.svc.State()))
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	v := toView(h.svc.State())
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"categories": v.Categories,
		"message":    v.Message,
	})
}

// Foods lists every food, or only those of ?category= when given.
func (h *Handler) Foods(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		v := toView(h.svc.State())
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"foods": v.Foods, "message": v.Message})
		return
	}

	foods, err := h.svc.FoodsByCategory(category)
	if err != nil {
		httpx.WriteError(w, r, toStatus(err))
		return
	}
	body := map[string]any{"foods": toFoodViews(foods)}
	if len(foods) == 0 {
		body["message"] = emptyMessage
	}
	httpx.WriteJSON(w, http.StatusOK, body)
}

func (h *Handler) Food(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.GetFood(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, toStatus(err))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toFoodView(f))
}

// Events streams the catalog as server-sent events: the current state
// first, then every replacement. The subscription ends with the request.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	updates := observe.NewMailbox[app.State]()
	current, sub := h.svc.Subscribe(updates.Put)
	defer sub.Close()

	stream, err := httpx.NewEventStream(w)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := stream.Send("catalog", toView(current)); err != nil {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-httpx.Draining(r.Context()):
			return
		case st := <-updates.C():
			if err := stream.Send("catalog", toView(st)); err != nil {
				h.log.Debug("catalog stream closed", slog.Any("err", err))
				return
			}
		}
	}
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, "id or category is required")
	case errors.Is(err, app.ErrNotFound):
		return status.Error(codes.NotFound, "food not found")
	default:
		return status.Errorf(codes.Internal, "catalog: %v", err)
	}
}
