package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dwikikusuma/foodstore/internal/catalog/app"
	"github.com/dwikikusuma/foodstore/internal/catalog/domain"
	"github.com/dwikikusuma/foodstore/pkg/httpx"
	"github.com/dwikikusuma/foodstore/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func seeded(t *testing.T) *app.Service {
	t.Helper()
	svc := app.NewService(nil)
	err := svc.Apply(context.Background(), domain.Snapshot{
		Version:    1,
		Categories: []domain.Category{{ID: "c1", Name: "Pizza"}, {ID: "c2", Name: "Drinks"}},
		Foods: []domain.Food{
			{ID: "margherita", Name: "Margherita", Price: decimal.RequireFromString("12.5"), Category: "pizza"},
			{ID: "cola", Name: "Cola", Price: decimal.NewFromInt(2), Category: "DRINKS"},
		},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return svc
}

func router(svc CatalogService) http.Handler {
	r := chi.NewRouter()
	NewHandler(svc, logger.Discard()).Routes(r)
	return r
}

func get(t *testing.T, h http.Handler, target string, dst any) int {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	if dst != nil {
		if err := json.NewDecoder(rr.Body).Decode(dst); err != nil {
			t.Fatalf("decode %s: %v", target, err)
		}
	}
	return rr.Code
}

func TestFoods(t *testing.T) {
	h := router(seeded(t))

	t.Run("filters by category ignoring case", func(t *testing.T) {
		var body struct {
			Foods []FoodView `json:"foods"`
		}
		if code := get(t, h, "/catalog/foods?category=Drinks", &body); code != http.StatusOK {
			t.Fatalf("unexpected status %d", code)
		}
		if len(body.Foods) != 1 || body.Foods[0].ID != "cola" || body.Foods[0].Price != "2.00" {
			t.Fatalf("unexpected foods %+v", body.Foods)
		}
	})

	t.Run("unknown category shows empty state", func(t *testing.T) {
		var body struct {
			Foods   []FoodView `json:"foods"`
			Message string     `json:"message"`
		}
		get(t, h, "/catalog/foods?category=sushi", &body)
		if len(body.Foods) != 0 || body.Message == "" {
			t.Fatalf("expected empty state, got %+v", body)
		}
	})

	t.Run("single food", func(t *testing.T) {
		var f FoodView
		if code := get(t, h, "/catalog/foods/margherita", &f); code != http.StatusOK {
			t.Fatalf("unexpected status %d", code)
		}
		if f.Price != "12.50" {
			t.Fatalf("unexpected price %s", f.Price)
		}
	})

	t.Run("missing food -> 404", func(t *testing.T) {
		if code := get(t, h, "/catalog/foods/ghost", nil); code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", code)
		}
	})
}

func TestSnapshotBeforeLoad(t *testing.T) {
	svc := app.NewService(nil)
	svc.Fail(context.DeadlineExceeded)

	var v CatalogView
	if code := get(t, router(svc), "/catalog", &v); code != http.StatusOK {
		t.Fatalf("unexpected status %d", code)
	}
	if v.Loaded || v.Message != emptyMessage || len(v.Foods) != 0 {
		t.Fatalf("expected empty state, got %+v", v)
	}
}

func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var event, data string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			return event, data
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestEvents(t *testing.T) {
	svc := seeded(t)
	srv := httptest.NewServer(router(svc))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/catalog/events", nil)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	r := bufio.NewReader(resp.Body)
	event, data := readEvent(t, r)
	var first CatalogView
	if err := json.Unmarshal([]byte(data), &first); err != nil || event != "catalog" {
		t.Fatalf("bad first event %q %q (%v)", event, data, err)
	}
	if first.Version != 1 || len(first.Foods) != 2 {
		t.Fatalf("unexpected first view %+v", first)
	}

	if err := svc.Apply(context.Background(), domain.Snapshot{Version: 2}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	_, data = readEvent(t, r)
	var second CatalogView
	if err := json.Unmarshal([]byte(data), &second); err != nil {
		t.Fatalf("decode second event: %v", err)
	}
	if second.Version != 2 || len(second.Foods) != 0 || second.Message == "" {
		t.Fatalf("unexpected second view %+v", second)
	}
}

func TestEventsEndOnShutdown(t *testing.T) {
	drain := httpx.NewDrain()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	server := &http.Server{Handler: drain.Middleware(router(seeded(t)))}
	server.RegisterOnShutdown(drain.Close)
	go server.Serve(ln)

	resp, err := http.Get("http://" + ln.Addr().String() + "/catalog/events")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()
	readEvent(t, bufio.NewReader(resp.Body))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown with an open stream: %v", err)
	}
}
