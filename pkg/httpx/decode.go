package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const maxBodyBytes = 1 << 20

var validate = validator.New()

// DecodeJSON reads a bounded JSON body into dst and validates it against
// its `validate` tags. Failures come back as InvalidArgument.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return status.Error(codes.InvalidArgument, "request body is required")
		}
		return status.Errorf(codes.InvalidArgument, "malformed body: %v", err)
	}
	if err := validate.Struct(dst); err != nil {
		return status.Error(codes.InvalidArgument, describe(err))
	}
	return nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	return fmt.Sprintf("field %s failed %s", fe.Field(), fe.Tag())
}
