package tools

import (
	"testing"
)

func TestOptionalString(t *testing.T) {
	args := map[string]any{"protocol": "ospf", "port_filter": nil, "vlan_id": 10}

	got, err := optionalString(args, "protocol", "")
	if err != nil || got != "ospf" {
		t.Errorf("present: got %q, err %v", got, err)
	}

	got, err = optionalString(args, "missing", "static")
	if err != nil || got != "static" {
		t.Errorf("absent: got %q, err %v", got, err)
	}

	got, err = optionalString(args, "port_filter", "fallback")
	if err != nil || got != "fallback" {
		t.Errorf("nil value: got %q, err %v", got, err)
	}

	if _, err = optionalString(args, "vlan_id", ""); err == nil || err.Code != CodeInvalidRequest {
		t.Errorf("non-string: err = %v", err)
	}
}
