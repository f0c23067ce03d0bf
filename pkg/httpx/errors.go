package httpx

import (
	"log/slog"
	"net/http"

	"github.com/dwikikusuma/storefront/pkg/apperr"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Available *int   `json:"available,omitempty"`
	VariantID string `json:"product_variant_id,omitempty"`
}

type errorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// WriteError maps err to a status code and JSON body. Internal causes are
// logged, never returned.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	httpStatus, code, msg := httpStatusFromGRPC(apperr.ToStatus(err))

	body := ErrorBody{Code: code, Message: msg}
	if e, ok := apperr.As(err); ok {
		body.Available = e.Available
		body.VariantID = e.VariantID
	}

	if httpStatus >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("err", err),
		)
	}

	WriteJSON(w, httpStatus, errorEnvelope{Error: body})
}

func httpStatusFromGRPC(err error) (int, string, string) {
	st, ok := status.FromError(err)
	if !ok {
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}

	switch st.Code() {
	case codes.InvalidArgument:
		return http.StatusBadRequest, "INVALID_ARGUMENT", st.Message()
	case codes.Unauthenticated:
		return http.StatusUnauthorized, "UNAUTHENTICATED", st.Message()
	case codes.PermissionDenied:
		return http.StatusForbidden, "FORBIDDEN", st.Message()
	case codes.NotFound:
		return http.StatusNotFound, "NOT_FOUND", st.Message()
	case codes.Aborted, codes.AlreadyExists:
		return http.StatusConflict, "CONFLICT", st.Message()
	case codes.FailedPrecondition:
		return http.StatusConflict, "INVALID_TRANSITION", st.Message()
	case codes.Unavailable, codes.DeadlineExceeded:
		return http.StatusServiceUnavailable, "UNAVAILABLE", st.Message()
	default:
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}
}
