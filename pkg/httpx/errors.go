// Package httpx holds the JSON and streaming helpers shared by every HTTP
// handler. Handlers express failures as gRPC status errors; this package
// turns them into HTTP responses.
package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusFromGRPC maps err to an HTTP status, a stable error code and the
// message to show the user. Non-status errors become INTERNAL.
func StatusFromGRPC(err error) (int, string, string) {
	st, ok := status.FromError(err)
	if !ok {
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}

	switch st.Code() {
	case codes.OK:
		return http.StatusOK, "OK", st.Message()
	case codes.InvalidArgument:
		return http.StatusBadRequest, "INVALID_ARGUMENT", st.Message()
	case codes.Unauthenticated:
		return http.StatusUnauthorized, "UNAUTHENTICATED", st.Message()
	case codes.PermissionDenied:
		return http.StatusForbidden, "PERMISSION_DENIED", st.Message()
	case codes.NotFound:
		return http.StatusNotFound, "NOT_FOUND", st.Message()
	case codes.AlreadyExists:
		return http.StatusConflict, "ALREADY_EXISTS", st.Message()
	case codes.FailedPrecondition:
		return http.StatusConflict, "FAILED_PRECONDITION", st.Message()
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests, "RESOURCE_EXHAUSTED", st.Message()
	case codes.Unavailable, codes.DeadlineExceeded:
		return http.StatusServiceUnavailable, "UNAVAILABLE", st.Message()
	default:
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}
}

// WriteError renders err as an ErrorBody. Internal failures are logged with
// the original error and reported to the client without detail.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	httpStatus, code, msg := StatusFromGRPC(err)
	if httpStatus >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Int("status", httpStatus),
			slog.Any("err", err),
		)
	}
	WriteJSON(w, httpStatus, ErrorBody{Error: ErrorDetail{Code: code, Message: msg}})
}

func WriteJSON(w http.ResponseWriter, httpStatus int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}
