package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dwikikusuma/storefront/pkg/apperr"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestHTTPStatusFromGRPC(t *testing.T) {
	t.Run("InvalidArgument -> 400", func(t *testing.T) {
		err := status.Error(codes.InvalidArgument, "bad")
		gotStatus, gotCode, _ := httpStatusFromGRPC(err)
		if gotStatus != http.StatusBadRequest || gotCode != "INVALID_ARGUMENT" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("Unauthenticated -> 401", func(t *testing.T) {
		err := status.Error(codes.Unauthenticated, "invalid password")
		gotStatus, gotCode, msg := httpStatusFromGRPC(err)
		if gotStatus != http.StatusUnauthorized || gotCode != "UNAUTHENTICATED" || msg != "invalid password" {
			t.Fatalf("got (%d,%s,%s)", gotStatus, gotCode, msg)
		}
	})

	t.Run("NotFound -> 404", func(t *testing.T) {
		err := status.Error(codes.NotFound, "missing")
		gotStatus, gotCode, _ := httpStatusFromGRPC(err)
		if gotStatus != http.StatusNotFound || gotCode != "NOT_FOUND" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("PermissionDenied -> 403", func(t *testing.T) {
		err := status.Error(codes.PermissionDenied, "status managed externally")
		gotStatus, gotCode, _ := httpStatusFromGRPC(err)
		if gotStatus != http.StatusForbidden || gotCode != "FORBIDDEN" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("Aborted -> 409", func(t *testing.T) {
		err := status.Error(codes.Aborted, "insufficient stock")
		gotStatus, gotCode, _ := httpStatusFromGRPC(err)
		if gotStatus != http.StatusConflict || gotCode != "CONFLICT" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("FailedPrecondition -> 409 invalid transition", func(t *testing.T) {
		err := status.Error(codes.FailedPrecondition, "invalid status transition")
		gotStatus, gotCode, _ := httpStatusFromGRPC(err)
		if gotStatus != http.StatusConflict || gotCode != "INVALID_TRANSITION" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("Unavailable -> 503", func(t *testing.T) {
		err := status.Error(codes.Unavailable, "down")
		gotStatus, gotCode, _ := httpStatusFromGRPC(err)
		if gotStatus != http.StatusServiceUnavailable || gotCode != "UNAVAILABLE" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("DeadlineExceeded -> 503", func(t *testing.T) {
		err := status.Error(codes.DeadlineExceeded, "timeout")
		gotStatus, gotCode, _ := httpStatusFromGRPC(err)
		if gotStatus != http.StatusServiceUnavailable || gotCode != "UNAVAILABLE" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("non-grpc error -> 500", func(t *testing.T) {
		err := errors.New("boom")
		gotStatus, gotCode, _ := httpStatusFromGRPC(err)
		if gotStatus != http.StatusInternalServerError || gotCode != "INTERNAL" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})
}

func TestWriteError(t *testing.T) {
	t.Run("insufficient stock exposes available", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/orders/checkout", nil)

		WriteError(rec, req, apperr.InsufficientStock("v-1", 1))

		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d", rec.Code)
		}
		var body errorEnvelope
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body.Error.Available == nil || *body.Error.Available != 1 || body.Error.VariantID != "v-1" {
			t.Fatalf("unexpected body %+v", body.Error)
		}
	})

	t.Run("internal cause is hidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/orders/checkout", nil)

		WriteError(rec, req, apperr.Internal("insert order", errors.New("pq: password leaked")))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d", rec.Code)
		}
		var body errorEnvelope
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body.Error.Message != "internal error" {
			t.Fatalf("internal message leaked: %q", body.Error.Message)
		}
	})
}
