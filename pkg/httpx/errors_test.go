package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestStatusFromGRPC(t *testing.T) {
	t.Run("InvalidArgument -> 400", func(t *testing.T) {
		err := status.Error(codes.InvalidArgument, "bad")
		gotStatus, gotCode, _ := StatusFromGRPC(err)
		if gotStatus != http.StatusBadRequest || gotCode != "INVALID_ARGUMENT" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("Unauthenticated -> 401 keeps message", func(t *testing.T) {
		err := status.Error(codes.Unauthenticated, "INVALID_PASSWORD")
		gotStatus, gotCode, msg := StatusFromGRPC(err)
		if gotStatus != http.StatusUnauthorized || gotCode != "UNAUTHENTICATED" || msg != "INVALID_PASSWORD" {
			t.Fatalf("got (%d,%s,%s)", gotStatus, gotCode, msg)
		}
	})

	t.Run("NotFound -> 404", func(t *testing.T) {
		err := status.Error(codes.NotFound, "missing")
		gotStatus, gotCode, _ := StatusFromGRPC(err)
		if gotStatus != http.StatusNotFound || gotCode != "NOT_FOUND" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("FailedPrecondition -> 409", func(t *testing.T) {
		err := status.Error(codes.FailedPrecondition, "cart is empty")
		gotStatus, gotCode, _ := StatusFromGRPC(err)
		if gotStatus != http.StatusConflict || gotCode != "FAILED_PRECONDITION" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("ResourceExhausted -> 429", func(t *testing.T) {
		err := status.Error(codes.ResourceExhausted, "slow down")
		gotStatus, _, _ := StatusFromGRPC(err)
		if gotStatus != http.StatusTooManyRequests {
			t.Fatalf("got %d", gotStatus)
		}
	})

	t.Run("Unavailable -> 503", func(t *testing.T) {
		err := status.Error(codes.Unavailable, "down")
		gotStatus, gotCode, _ := StatusFromGRPC(err)
		if gotStatus != http.StatusServiceUnavailable || gotCode != "UNAVAILABLE" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("DeadlineExceeded -> 503", func(t *testing.T) {
		err := status.Error(codes.DeadlineExceeded, "timeout")
		gotStatus, gotCode, _ := StatusFromGRPC(err)
		if gotStatus != http.StatusServiceUnavailable || gotCode != "UNAVAILABLE" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("non-grpc error -> 500", func(t *testing.T) {
		err := errors.New("boom")
		gotStatus, gotCode, msg := StatusFromGRPC(err)
		if gotStatus != http.StatusInternalServerError || gotCode != "INTERNAL" || msg != "internal error" {
			t.Fatalf("got (%d,%s,%s)", gotStatus, gotCode, msg)
		}
	})
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	WriteError(rr, req, status.Error(codes.NotFound, "item not found"))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status %d", rr.Code)
	}
	var body ErrorBody
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "NOT_FOUND" || body.Error.Message != "item not found" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestDecodeJSON(t *testing.T) {
	type req struct {
		Email string `json:"email" validate:"required,email"`
	}

	tests := []struct {
		name     string
		body     string
		wantCode codes.Code
	}{
		{name: "valid", body: `{"email":"a@b.co"}`, wantCode: codes.OK},
		{name: "empty body", body: ``, wantCode: codes.InvalidArgument},
		{name: "unknown field", body: `{"email":"a@b.co","x":1}`, wantCode: codes.InvalidArgument},
		{name: "validation", body: `{"email":"nope"}`, wantCode: codes.InvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(tt.body))
			var dst req
			err := DecodeJSON(r, &dst)
			if got := status.Code(err); got != tt.wantCode {
				t.Fatalf("expected %v, got %v (%v)", tt.wantCode, got, err)
			}
		})
	}
}
