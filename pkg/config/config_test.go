package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HTTP_PORT", "")
	t.Setenv("REQUEST_TIMEOUT", "")

	cfg := Load()
	if cfg.HTTPPort != 8080 {
		t.Fatalf("expected default http port 8080, got %d", cfg.HTTPPort)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("expected default timeout 10s, got %s", cfg.RequestTimeout)
	}
	if cfg.CheckoutRequirePaymentOption {
		t.Fatal("payment option requirement must default to false")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Run("duration string", func(t *testing.T) {
		t.Setenv("REQUEST_TIMEOUT", "3s")
		if got := Load().RequestTimeout; got != 3*time.Second {
			t.Fatalf("got %s", got)
		}
	})

	t.Run("duration millis", func(t *testing.T) {
		t.Setenv("REQUEST_TIMEOUT", "2500")
		if got := Load().RequestTimeout; got != 2500*time.Millisecond {
			t.Fatalf("got %s", got)
		}
	})

	t.Run("bad int falls back", func(t *testing.T) {
		t.Setenv("GRPC_PORT", "abc")
		if got := Load().GRPCPort; got != 8081 {
			t.Fatalf("got %d", got)
		}
	})

	t.Run("bool", func(t *testing.T) {
		t.Setenv("CHECKOUT_REQUIRE_PAYMENT_OPTION", "yes")
		if !Load().CheckoutRequirePaymentOption {
			t.Fatal("expected true")
		}
	})
}
