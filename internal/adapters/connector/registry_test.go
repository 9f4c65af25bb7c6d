package connector

import (
	"context"
	"testing"

	"github.com/example/hearth/internal/ports/secondary"
)

type stubHandler struct{}

func (stubHandler) Handle(ctx context.Context, method string, params map[string]any) (*secondary.ConnectorResult, error) {
	return &secondary.ConnectorResult{Success: true}, nil
}

func TestRegistryRegisterAndResolve(t *testing.T) {
	r := NewRegistry()

	if err := r.Register("homeassistant", stubHandler{}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register("webhook", stubHandler{}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, ok := r.Handler("homeassistant"); !ok {
		t.Error("registered handler not resolvable")
	}
	if _, ok := r.Handler("smartthings"); ok {
		t.Error("unregistered service resolved")
	}

	services := r.Services()
	if len(services) != 2 || services[0] != "homeassistant" || services[1] != "webhook" {
		t.Errorf("services = %v, want sorted [homeassistant webhook]", services)
	}
}

func TestRegistryRejectsBadRegistrations(t *testing.T) {
	r := NewRegistry()

	if err := r.Register("", stubHandler{}); err == nil {
		t.Error("empty service name accepted")
	}
	if err := r.Register("homeassistant", nil); err == nil {
		t.Error("nil handler accepted")
	}

	if err := r.Register("homeassistant", stubHandler{}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register("homeassistant", stubHandler{}); err == nil {
		t.Error("duplicate registration accepted")
	}
}
