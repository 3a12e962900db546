package aosparse

import (
	"testing"
)

const macLearningOS6860 = `Legend: Mac Address: * = address not valid,

   Domain    Vlan/SrvcId/[ISId/vnID]  Mac Address         Type      Operation  Interface
------------+------------------------+-------------------+---------+----------+-----------
     VLAN    1098                     70:4c:a5:50:45:ce   dynamic    bridging   1/1/24
     VLAN    78                       ac:71:2e:98:1f:3c   dynamic    bridging   1/1/1
     VLAN    78                       2c:fa:a2:44:55:66   static     bridging   1/1/2
`

func TestParseMACLearningOS6860(t *testing.T) {
	entries := ParseMACLearning(macLearningOS6860, 0, 0)
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	e := entries[0]
	if e.MACAddress != "70:4c:a5:50:45:ce" || e.VLAN != 1098 || e.Port != "1/1/24" || e.Type != "dynamic" {
		t.Errorf("entry 0 = %+v", e)
	}
	if entries[2].Type != "static" {
		t.Errorf("entry 2 type = %s", entries[2].Type)
	}
}

func TestParseMACLearningVLANFilter(t *testing.T) {
	entries := ParseMACLearning(macLearningOS6860, 78, 0)
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	for _, e := range entries {
		if e.VLAN != 78 {
			t.Errorf("entry not filtered: %+v", e)
		}
	}
}

func TestParseMACLearningLimit(t *testing.T) {
	entries := ParseMACLearning(macLearningOS6860, 0, 2)
	if len(entries) != 2 {
		t.Errorf("entries = %d, want 2", len(entries))
	}
}

func TestParseMACLearningColumnar(t *testing.T) {
	output := `  Mac Address         Vlan   Port     Type
-------------------+------+--------+---------
70:4C:A5:50:45:CE    1098   1/1/24   dynamic
`
	entries := ParseMACLearning(output, 0, 0)
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	// Hex is lowercased.
	if entries[0].MACAddress != "70:4c:a5:50:45:ce" {
		t.Errorf("mac = %s", entries[0].MACAddress)
	}
}

func TestParseARP(t *testing.T) {
	output := ` Total 2 arp entries
  IP Addr          Hardware Addr       Vlan  Interface
-----------------+-------------------+-----+-----------
 10.78.2.101      70:4c:a5:50:45:ce   1098  1/1/24
 10.78.0.1        2c:fa:a2:44:55:66   78    1/1/1
`
	entries := ParseARP(output)
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	e := entries[0]
	if e.IPAddress != "10.78.2.101" || e.MACAddress != "70:4c:a5:50:45:ce" || e.Type != "arp" {
		t.Errorf("entry 0 = %+v", e)
	}
	if e.VLAN != 1098 || e.Port != "1/1/24" {
		t.Errorf("entry 0 vlan/port = %d/%s", e.VLAN, e.Port)
	}
}

func TestNormalizeMAC(t *testing.T) {
	got := NormalizeMAC("70-4C-A5-50-45-CE")
	if got != "70:4c:a5:50:45:ce" {
		t.Errorf("NormalizeMAC = %s", got)
	}
}
