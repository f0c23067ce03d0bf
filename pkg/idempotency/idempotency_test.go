package idempotency

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	r := httptest.NewRequest("POST", "/orders/checkout", nil)
	r.Header.Set(Header, "  abc-123 ")
	if got := Key(r); got != "abc-123" {
		t.Fatalf("got %q", got)
	}

	r.Header.Set(Header, strings.Repeat("x", maxKeyLen+1))
	if got := Key(r); got != "" {
		t.Fatalf("oversized key should be ignored, got %q", got)
	}
}

func TestMemoryStoreKeepsFirstResult(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, ok, _ := s.Lookup(ctx, "cust-1", "k"); ok {
		t.Fatal("unexpected hit")
	}
	_ = s.Remember(ctx, "cust-1", "k", "order-1", time.Hour)
	_ = s.Remember(ctx, "cust-1", "k", "order-2", time.Hour)

	got, ok, _ := s.Lookup(ctx, "cust-1", "k")
	if !ok || got != "order-1" {
		t.Fatalf("got (%q,%v)", got, ok)
	}
	if _, ok, _ := s.Lookup(ctx, "cust-2", "k"); ok {
		t.Fatal("keys must be scoped per customer")
	}
}
