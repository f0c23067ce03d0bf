package kafka

import (
	"errors"
	"testing"
)

func TestNewClient(t *testing.T) {
	c := NewClient(" broker-1:9092, ,broker-2:9092 ")
	if len(c.Brokers) != 2 || c.Brokers[0] != "broker-1:9092" || c.Brokers[1] != "broker-2:9092" {
		t.Fatalf("unexpected brokers %v", c.Brokers)
	}
	if !c.Enabled() {
		t.Fatal("expected enabled")
	}
}

func TestDisabledPublisher(t *testing.T) {
	_, err := NewClient("").NewPublisher()
	if !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}
