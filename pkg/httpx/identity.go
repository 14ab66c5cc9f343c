package httpx

import (
	"context"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type userIDKey struct{}

// WithUserID stores the authenticated user id on ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserID returns the authenticated user id, or Unauthenticated when the
// request did not pass through the auth middleware.
func UserID(r *http.Request) (string, error) {
	id, _ := r.Context().Value(userIDKey{}).(string)
	if id == "" {
		return "", status.Error(codes.Unauthenticated, "missing session")
	}
	return id, nil
}
