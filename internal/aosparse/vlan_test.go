package aosparse

import (
	"strings"
	"testing"
)

const showVLANOutput = ` vlan    type   admin   oper    ip    mtu          name
------+-------+-------+------+------+------+------------------
    1    std     Ena     Ena   Dis    1500    VLAN 1
   78    std     Ena     Ena   Ena    1500    MGMT-SWITCHES
 1098    std     Ena     Dis   Dis    1500    old-users-test
 4094    vcm     Ena     Ena   Dis    1500    VCM IPC
`

func TestParseShowVLAN(t *testing.T) {
	vlans := ParseShowVLAN(showVLANOutput)
	if len(vlans) != 4 {
		t.Fatalf("parsed %d vlans, want 4", len(vlans))
	}

	mgmt := vlans[1]
	if mgmt.VLANID != 78 || mgmt.Name != "MGMT-SWITCHES" {
		t.Errorf("vlan 78: id=%d name=%q", mgmt.VLANID, mgmt.Name)
	}
	if mgmt.IPRouting != "Ena" || mgmt.MTU != 1500 {
		t.Errorf("vlan 78: routing=%s mtu=%d", mgmt.IPRouting, mgmt.MTU)
	}

	if vlans[3].Type != "vcm" || vlans[3].Name != "VCM IPC" {
		t.Errorf("vlan 4094: type=%s name=%q", vlans[3].Type, vlans[3].Name)
	}
}

func TestAnalyzeVLANs(t *testing.T) {
	vlans := ParseShowVLAN(showVLANOutput)
	summary, issues := AnalyzeVLANs(vlans)

	if summary.Total != 4 || summary.Enabled != 4 {
		t.Errorf("summary: total=%d enabled=%d", summary.Total, summary.Enabled)
	}
	if summary.Down != 1 || summary.WithIPRouting != 1 {
		t.Errorf("summary: down=%d routing=%d", summary.Down, summary.WithIPRouting)
	}
	if summary.StdVLANs != 3 || summary.VCMVLANs != 1 {
		t.Errorf("summary: std=%d vcm=%d", summary.StdVLANs, summary.VCMVLANs)
	}

	// Rules fired: VLAN 1 enabled, VLAN 1098 enabled-but-down, VLAN 1098
	// suspicious name.
	if len(issues) != 3 {
		t.Fatalf("got %d issues, want 3: %v", len(issues), issues)
	}

	foundDown, foundSuspicious := false, false
	for _, issue := range issues {
		if strings.Contains(issue, "1098") && strings.Contains(issue, "operationally down") {
			foundDown = true
		}
		if strings.Contains(issue, "Suspicious name") {
			foundSuspicious = true
		}
	}
	if !foundDown || !foundSuspicious {
		t.Errorf("missing expected issues: %v", issues)
	}
}

func TestAnalyzeVLANsDeterministic(t *testing.T) {
	vlans := ParseShowVLAN(showVLANOutput)
	_, first := AnalyzeVLANs(vlans)
	_, second := AnalyzeVLANs(vlans)
	if strings.Join(first, "|") != strings.Join(second, "|") {
		t.Errorf("issue list not deterministic:\n%v\n%v", first, second)
	}
}

func TestParseVLANMembersWithPortColumn(t *testing.T) {
	output := ` vlan   port      type        status
------+--------+-----------+--------------
 1098   1/1/19   default     forwarding
 1099   1/1/19   qtagged     forwarding
  200   1/1/20   qtagged     inactive
`
	members := ParseVLANMembers(output, "")
	if len(members) != 3 {
		t.Fatalf("parsed %d members, want 3", len(members))
	}
	if members[0].Type != "untagged" || members[0].Port != "1/1/19" {
		t.Errorf("row 0: %+v", members[0])
	}
	if members[1].Type != "tagged" {
		t.Errorf("row 1 type = %s", members[1].Type)
	}
	if members[2].Status != "inactive" {
		t.Errorf("row 2 status = %s", members[2].Status)
	}
}

func TestParseVLANMembersPerPort(t *testing.T) {
	output := ` vlan   type        status
------+-----------+--------------
 1098   default     forwarding
 1099   qtagged     forwarding
`
	members := ParseVLANMembers(output, "1/1/19")
	if len(members) != 2 {
		t.Fatalf("parsed %d members, want 2", len(members))
	}
	for _, m := range members {
		if m.Port != "1/1/19" {
			t.Errorf("port = %s, want 1/1/19", m.Port)
		}
	}
	if members[0].Type != "untagged" || members[1].Type != "tagged" {
		t.Errorf("types: %s %s", members[0].Type, members[1].Type)
	}
}

func TestParseShowVLANDetail(t *testing.T) {
	output := `Name                    : MGMT-SWITCHES,
Type                    : Static Vlan,
Administrative State    : Ena,
Operational State       : Ena,
IP Routing              : Ena,
IP MTU                  : 1500
`
	d := ParseShowVLANDetail(output)
	if d.Name != "MGMT-SWITCHES" || d.AdminState != "Ena" || d.MTU != 1500 {
		t.Errorf("detail = %+v", d)
	}
}
