package inventory

import (
	"sort"
	"testing"

	"github.com/nextlevelbuilder/aosgate/internal/config"
)

func TestBuildAppliesDefaults(t *testing.T) {
	idx := Build(config.InventoryConfig{
		DeviceDefaults: &config.DeviceDefaults{
			Username: "netops",
			Port:     2222,
			Jump:     "bastion",
		},
		JumpHosts: []config.JumpHostConfig{
			{Name: "bastion", Host: "10.0.0.254", Username: "jump"},
		},
		Devices: []config.DeviceConfig{
			{ID: "core-1", Host: "10.9.19.10"},
			{ID: "edge-1", Host: "10.9.19.20", Port: 22, Username: "local", Jump: "bastion"},
		},
	})

	dev, ok := idx.Lookup("core-1")
	if !ok {
		t.Fatalf("core-1 not indexed")
	}
	if dev.Port != 2222 || dev.Username != "netops" || dev.Jump != "bastion" {
		t.Errorf("defaults not applied: %+v", dev)
	}

	dev, ok = idx.Lookup("edge-1")
	if !ok {
		t.Fatalf("edge-1 not indexed")
	}
	if dev.Port != 22 || dev.Username != "local" {
		t.Errorf("explicit values overridden: %+v", dev)
	}
}

func TestLookupByHost(t *testing.T) {
	idx := Build(config.InventoryConfig{
		Devices: []config.DeviceConfig{{ID: "core-1", Host: "10.9.19.10"}},
	})

	byID, ok1 := idx.Lookup("core-1")
	byHost, ok2 := idx.Lookup("10.9.19.10")
	if !ok1 || !ok2 {
		t.Fatalf("lookup by id/host = %v/%v", ok1, ok2)
	}
	if byID.Host != byHost.Host || byID.ID != byHost.ID {
		t.Errorf("id and host lookups disagree: %+v vs %+v", byID, byHost)
	}

	if _, ok := idx.Lookup("unknown"); ok {
		t.Errorf("unknown key resolved")
	}
}

func TestPortDefaultsTo22(t *testing.T) {
	idx := Build(config.InventoryConfig{
		Devices: []config.DeviceConfig{{ID: "sw", Host: "10.0.0.1"}},
	})
	dev, _ := idx.Lookup("sw")
	if dev.Port != 22 {
		t.Errorf("port = %d, want 22", dev.Port)
	}
}

func TestDevicesDeduplicates(t *testing.T) {
	idx := Build(config.InventoryConfig{
		Devices: []config.DeviceConfig{
			{ID: "core-1", Host: "10.9.19.10"},
			{ID: "edge-1", Host: "10.9.19.20"},
		},
	})
	ids := idx.Devices()
	sort.Strings(ids)
	if len(ids) != 2 || ids[0] != "core-1" || ids[1] != "edge-1" {
		t.Errorf("Devices() = %v", ids)
	}
}
