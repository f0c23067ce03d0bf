package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"pg error", &pgconn.PgError{Code: "23505"}, true},
		{"wrapped pg error", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true},
		{"other pg error", &pgconn.PgError{Code: "23503"}, false},
		{"message fallback", errors.New(`ERROR: duplicate key value violates unique constraint "carts_customer_id_key"`), true},
		{"plain error", errors.New("boom"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsUniqueViolation(tc.err); got != tc.want {
				t.Fatalf("IsUniqueViolation(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestIsCheckViolation(t *testing.T) {
	if !IsCheckViolation(fmt.Errorf("update: %w", &pgconn.PgError{Code: "23514"})) {
		t.Fatal("expected check violation")
	}
	if IsCheckViolation(errors.New("23514")) {
		t.Fatal("plain errors are not check violations")
	}
}
