package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dwikikusuma/foodstore/internal/auth/app"
	"github.com/dwikikusuma/foodstore/internal/auth/token"
	"github.com/dwikikusuma/foodstore/pkg/httpx"
	"github.com/go-chi/chi/v5"
)

type stubProvider struct{}

func (stubProvider) SignIn(_ context.Context, email, password string) (app.Identity, error) {
	if password != "right" {
		return app.Identity{}, &app.ProviderError{Status: 400, Message: "INVALID_LOGIN_CREDENTIALS"}
	}
	return app.Identity{UserID: "uid-1", Email: email}, nil
}

func (stubProvider) SignUp(_ context.Context, email, _, name string) (app.Identity, error) {
	if email == "taken@b.co" {
		return app.Identity{}, &app.ProviderError{Status: 400, Message: "EMAIL_EXISTS"}
	}
	return app.Identity{UserID: "uid-2", Email: email, DisplayName: name}, nil
}

func newTokens(t *testing.T) *token.Manager {
	t.Helper()
	m, err := token.NewManager("0123456789abcdef0123456789abcdef", time.Hour, "foodstore")
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	return m
}

func post(h http.Handler, target, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, target, bytes.NewBufferString(body)))
	return rr
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body httpx.ErrorBody
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error.Message
}

func TestSignIn(t *testing.T) {
	tokens := newTokens(t)
	r := chi.NewRouter()
	NewHandler(app.NewService(stubProvider{}, tokens), nil).Routes(r)

	t.Run("returns a usable session token", func(t *testing.T) {
		rr := post(r, "/auth/signin", `{"email":"a@b.co","password":"right"}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("unexpected status %d", rr.Code)
		}
		var s app.Session
		if err := json.NewDecoder(rr.Body).Decode(&s); err != nil {
			t.Fatalf("decode: %v", err)
		}
		claims, err := tokens.Validate(s.Token)
		if err != nil || claims.Subject != "uid-1" {
			t.Fatalf("token not valid: %+v, %v", claims, err)
		}
	})

	t.Run("empty field", func(t *testing.T) {
		rr := post(r, "/auth/signin", `{"email":"a@b.co","password":""}`)
		if rr.Code != http.StatusBadRequest || errorMessage(t, rr) != "Please fill in all fields" {
			t.Fatalf("unexpected response %d", rr.Code)
		}
	})

	t.Run("provider rejection is verbatim", func(t *testing.T) {
		rr := post(r, "/auth/signin", `{"email":"a@b.co","password":"wrong"}`)
		if rr.Code != http.StatusUnauthorized || errorMessage(t, rr) != "INVALID_LOGIN_CREDENTIALS" {
			t.Fatalf("unexpected response %d", rr.Code)
		}
	})
}

func TestSignUp(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(app.NewService(stubProvider{}, newTokens(t)), nil).Routes(r)

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantMsg  string
	}{
		{name: "created", body: `{"full_name":"Ann","email":"a@b.co","password":"pw","confirm_password":"pw"}`, wantCode: http.StatusCreated},
		{name: "missing field", body: `{"email":"a@b.co","password":"pw","confirm_password":"pw"}`, wantCode: http.StatusBadRequest, wantMsg: "Please fill in all fields"},
		{name: "mismatch", body: `{"full_name":"Ann","email":"a@b.co","password":"pw","confirm_password":"px"}`, wantCode: http.StatusBadRequest, wantMsg: "Passwords do not match"},
		{name: "provider rejection", body: `{"full_name":"Ann","email":"taken@b.co","password":"pw","confirm_password":"pw"}`, wantCode: http.StatusBadRequest, wantMsg: "EMAIL_EXISTS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := post(r, "/auth/signup", tt.body)
			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rr.Code)
			}
			if tt.wantMsg != "" {
				if got := errorMessage(t, rr); got != tt.wantMsg {
					t.Fatalf("expected %q, got %q", tt.wantMsg, got)
				}
			}
		})
	}
}

func TestRequireSession(t *testing.T) {
	tokens := newTokens(t)
	good, _, err := tokens.Issue("uid-9", "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var seen string
	h := RequireSession(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = httpx.UserID(r)
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{name: "valid", header: "Bearer " + good, wantCode: http.StatusNoContent},
		{name: "missing", header: "", wantCode: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + good, wantCode: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", wantCode: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/cart", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rr.Code)
			}
			if tt.wantCode == http.StatusNoContent && seen != "uid-9" {
				t.Fatalf("expected user on context, got %q", seen)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	r := chi.NewRouter()
	NewHandler(app.NewService(stubProvider{}, newTokens(t)), rl).Routes(r)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, post(r, "/auth/signin", `{"email":"a@b.co","password":"right"}`).Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}

	// a different client has its own bucket
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", bytes.NewBufferString(`{"email":"a@b.co","password":"right"}`))
	req.RemoteAddr = "10.0.0.9:4000"
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected other client to pass, got %d", rr.Code)
	}

	rl.now = func() time.Time { return time.Now().Add(10 * time.Minute) }
	if left := rl.Sweep(); left != 0 {
		t.Fatalf("expected idle visitors swept, %d left", left)
	}
}
