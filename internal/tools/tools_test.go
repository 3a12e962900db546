package tools

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/nextlevelbuilder/aosgate/internal/aosparse"
	"github.com/nextlevelbuilder/aosgate/internal/config"
	"github.com/nextlevelbuilder/aosgate/internal/policy"
	"github.com/nextlevelbuilder/aosgate/internal/sshx"
	"github.com/nextlevelbuilder/aosgate/pkg/protocol"
)

// scriptRunner serves canned responses by exact command string and records
// every command it is asked to run.
type scriptRunner struct {
	responses map[string]sshx.CommandResult
	calls     []string
}

func (r *scriptRunner) Run(_ context.Context, _ sshx.Device, command string, _ sshx.RunOpts) (sshx.CommandResult, error) {
	r.calls = append(r.calls, command)
	if res, ok := r.responses[command]; ok {
		return res, nil
	}
	return sshx.CommandResult{}, fmt.Errorf("no response scripted for %q", command)
}

func newTestService(t *testing.T, runner sshx.Runner) *Service {
	t.Helper()
	cfg := config.Default()
	compiled, err := policy.Compile(cfg.Policy)
	if err != nil {
		t.Fatalf("compile policy: %v", err)
	}
	return &Service{
		Config:   cfg,
		Policy:   policy.NewStore(compiled),
		Runner:   runner,
		Registry: NewCatalog(),
	}
}

func ok(stdout string) sshx.CommandResult {
	return sshx.CommandResult{Stdout: stdout}
}

func lanpowerOutput(ports int) string {
	var sb strings.Builder
	sb.WriteString(" Port   Maximum(mW)  Actual Used(mW)  Status    Priority  On/Off  Class  Type\n")
	sb.WriteString("--------+----------+---------------+-----------+---------+-------+------+----\n")
	for i := 1; i <= ports; i++ {
		state, class, used := "ON", "4", 6200
		if i%3 == 0 {
			state, class, used = "OFF", "_", 0
		}
		fmt.Fprintf(&sb, " 1/1/%-3d   30000       %5d        Powered On   Low       %s      %s\n", i, used, state, class)
	}
	sb.WriteString("\n ChassisId 1 Slot 1 Max Watts 780\n")
	sb.WriteString(" 150 Watts Actual Power Consumed\n")
	sb.WriteString(" 630 Watts Actual Power Budget Remaining\n")
	sb.WriteString(" 780 Watts Total Power Budget Available\n")
	sb.WriteString(" 1 Power Supply Available\n")
	return sb.String()
}

func TestDiagPoESlotDefault(t *testing.T) {
	runner := &scriptRunner{responses: map[string]sshx.CommandResult{
		"show lanpower slot 1/1": ok(lanpowerOutput(24)),
	}}
	svc := newTestService(t, runner)

	result := svc.Dispatch(context.Background(), &protocol.ToolCallRequest{
		Tool: "aos.diag.poe",
		Args: map[string]any{"host": "10.9.19.10"},
	})

	if result.Status != "ok" {
		t.Fatalf("status = %q, error = %+v", result.Status, result.Error)
	}
	want := []string{"show lanpower slot 1/1"}
	if got := result.Data["commands_executed"]; !reflect.DeepEqual(got, want) {
		t.Errorf("commands_executed = %v, want %v", got, want)
	}
	if got := result.Meta["tool"]; got != "aos.diag.poe" {
		t.Errorf("meta.tool = %v", got)
	}
}

func TestMACLookupNormalizesAndLowercases(t *testing.T) {
	macOutput := "   VLAN    1098   70:4C:A5:50:45:CE    dynamic     bridging      1/1/24\n"
	runner := &scriptRunner{responses: map[string]sshx.CommandResult{
		"show mac-learning mac 70:4c:a5:50:45:ce": ok(macOutput),
	}}
	svc := newTestService(t, runner)

	result := svc.Dispatch(context.Background(), &protocol.ToolCallRequest{
		Tool: "aos.mac.lookup",
		Args: map[string]any{"host": "10.9.19.10", "mac_address": "70-4C-A5-50-45-CE"},
	})

	if result.Status != "ok" {
		t.Fatalf("status = %q, error = %+v", result.Status, result.Error)
	}
	// The dash-form uppercase argument must reach the device normalized.
	if runner.calls[0] != "show mac-learning mac 70:4c:a5:50:45:ce" {
		t.Errorf("command = %q", runner.calls[0])
	}
}

func TestMACLookupEntryFields(t *testing.T) {
	macOutput := "   VLAN    1098   70:4C:A5:50:45:CE    dynamic     bridging      1/1/24\n"
	runner := &scriptRunner{responses: map[string]sshx.CommandResult{
		"show mac-learning mac 70:4c:a5:50:45:ce": ok(macOutput),
	}}
	svc := newTestService(t, runner)

	out, err := macLookup(context.Background(), svc, map[string]any{
		"host": "10.9.19.10", "mac_address": "70-4C-A5-50-45-CE",
	})
	if err != nil {
		t.Fatalf("macLookup: %v", err)
	}

	if out.Data["total_found"] != 1 {
		t.Fatalf("total_found = %v", out.Data["total_found"])
	}
	text := out.Content[0].Text
	for _, want := range []string{"70:4c:a5:50:45:ce", "vlan 1098", "port 1/1/24", "dynamic"} {
		if !strings.Contains(text, want) {
			t.Errorf("content missing %q:\n%s", want, text)
		}
	}
}

func TestMACLookupRequiresExactlyOneSelector(t *testing.T) {
	svc := newTestService(t, &scriptRunner{})

	for _, args := range []map[string]any{
		{"host": "h"},
		{"host": "h", "mac_address": "aa:bb:cc:dd:ee:ff", "vlan_id": 10},
	} {
		_, err := macLookup(context.Background(), svc, args)
		if err == nil {
			t.Errorf("args %v: expected error", args)
			continue
		}
		if te := err.(*Error); te.Code != CodeInvalidRequest {
			t.Errorf("args %v: code = %q", args, te.Code)
		}
	}
}

const portStatusOutput = `Legends: ...
 Chas/
 Slot/ Port  Admin   Auto   Speed   Duplex   ...
-----------+-------+------+-------+--------+
 1/1/24      en      en     1000    Full
`

const portDetailOutput = `Chassis/Slot/Port  1/1/24
  Operational Status     : up,
  Administrative Status  : up,
  BandWidth (Megabits)   : 1000,
  Duplex                 : Full,
  Interface Type         : Ethernet,
  MAC address            : 2c:fa:a2:11:22:33,
  Rx
    Bytes Received  :   123456,
    Unicast Frames  :   1000,
  Tx
    Bytes Xmitted   :   654321,
    Unicast Frames  :   2000,
`

const vlanMembersPortOutput = `   vlan   type     status
--------+---------+------------
   1098   default   forwarding
`

const macTableOutput = `   VLAN    1098   70:4c:a5:50:45:ce    dynamic     bridging      1/1/24
`

const lldpPortOutput = `Remote LLDP nearest-bridge Agents on Local Port 1/1/24:
  Chassis 80:5e:c0:12:34:56, Port 00:15:65:aa:bb:cc:
    Port Description   = (null),
    System Name        = SIP-T46U,
    System Description = 108.86.0.55,
    Capabilities Supported = Bridge Telephone,
    Management IP Address  = 10.9.119.55,
`

func TestPortDiscoverCommandSequence(t *testing.T) {
	runner := &scriptRunner{responses: map[string]sshx.CommandResult{
		"show interfaces 1/1/24 status":       ok(portStatusOutput),
		"show interfaces 1/1/24":              ok(portDetailOutput),
		"show vlan members port 1/1/24":       ok(vlanMembersPortOutput),
		"show mac-learning port 1/1/24":       ok(macTableOutput),
		"show lldp port 1/1/24 remote-system": ok(lldpPortOutput),
		"show lanpower slot 1/1":              ok(lanpowerOutput(24)),
	}}
	svc := newTestService(t, runner)

	result := svc.Dispatch(context.Background(), &protocol.ToolCallRequest{
		Tool: "aos.port.discover",
		Args: map[string]any{"host": "10.9.19.10", "port_id": "1/1/24"},
	})

	if result.Status != "ok" {
		t.Fatalf("status = %q, error = %+v", result.Status, result.Error)
	}
	want := []string{
		"show interfaces 1/1/24 status",
		"show interfaces 1/1/24",
		"show vlan members port 1/1/24",
		"show mac-learning port 1/1/24",
		"show lldp port 1/1/24 remote-system",
		"show lanpower slot 1/1",
	}
	if got := result.Data["commands_executed"]; !reflect.DeepEqual(got, want) {
		t.Errorf("commands_executed = %v, want %v", got, want)
	}
	if got := result.Data["untagged_vlan"]; got != 1098 {
		t.Errorf("untagged_vlan = %v", got)
	}

	text := result.Content[0].Text
	if !strings.Contains(text, "SIP-T46U") {
		t.Errorf("content missing neighbor name:\n%s", text)
	}
}

func TestPortDiscoverRejectsBadPortID(t *testing.T) {
	runner := &scriptRunner{}
	svc := newTestService(t, runner)

	result := svc.Dispatch(context.Background(), &protocol.ToolCallRequest{
		Tool: "aos.port.discover",
		Args: map[string]any{"host": "10.9.19.10", "port_id": "24"},
	})

	if result.Status != "error" || result.Error.Code != CodeInvalidRequest {
		t.Fatalf("result = %+v", result)
	}
	if len(runner.calls) != 0 {
		t.Errorf("runner called %d times for invalid args", len(runner.calls))
	}
}

const vrfOutput = `  Virtual Routers            Profile     Protocols
---------------------------+---------+-------------
default                      default    BGP OSPF RIP
`

const ospfNeighborOutput = ` IP Address      Area           Interface       State
----------------+--------------+---------------+------
10.9.0.1        10.9.19.5      0.0.0.0         router   vlan-19   Init
`

const ospfInterfaceOutput = `Interface    DomainName  DomainId  DR-Address  BDR-Address  Admin    Oper  State  BFD
-----------+-----------+---------+-----------+------------+--------+-----+------+----
vlan-19      ospf        0         10.9.19.1   0.0.0.0      enabled  up    DR     disabled
`

const ipInterfaceOutput = `Name          IP Address    Subnet Mask     Status  Forward  Device
-----------+--------------+---------------+-------+--------+-------
vlan-19      10.9.19.1     255.255.255.0   UP      YES      vlan 19
`

func TestRoutingAuditFlagsInitNeighbor(t *testing.T) {
	runner := &scriptRunner{responses: map[string]sshx.CommandResult{
		"show vrf":               ok(vrfOutput),
		"show ip ospf area":      ok("Area Id  AdminStatus\n0.0.0.0  enabled\n"),
		"show ip ospf interface": ok(ospfInterfaceOutput),
		"show ip ospf neighbor":  ok(ospfNeighborOutput),
		"show ip interface":      ok(ipInterfaceOutput),
	}}
	svc := newTestService(t, runner)

	result := svc.Dispatch(context.Background(), &protocol.ToolCallRequest{
		Tool: "aos.routing.audit",
		Args: map[string]any{"host": "10.9.19.10"},
	})

	if result.Status != "ok" {
		t.Fatalf("status = %q, error = %+v", result.Status, result.Error)
	}
	if got := result.Data["total_vrfs"]; got != 1 {
		t.Errorf("total_vrfs = %v, want 1", got)
	}
	summary := result.Data["summary"].(map[string]any)
	if summary["total_vrfs"] != 1 || summary["vrfs_with_ospf"] != 1 {
		t.Errorf("summary = %v", summary)
	}
	if summary["total_ospf_neighbors"] != 1 || summary["total_ip_interfaces"] != 1 {
		t.Errorf("summary = %v", summary)
	}

	issues := result.Data["issues"].([]string)
	found := false
	for _, issue := range issues {
		if strings.Contains(issue, "Init") {
			found = true
		}
	}
	if !found {
		t.Errorf("no issue mentions the Init neighbor: %v", issues)
	}
}

const ospfNeighborFullOutput = ` Router ID        Address          Area Id        Type    Interface  State
----------------+----------------+--------------+-------+----------+--------
 10.255.0.1       10.9.19.5        0.0.0.0        DR      vlan-19    Full
`

func TestRoutingAuditHealthyNeighborNoIssues(t *testing.T) {
	runner := &scriptRunner{responses: map[string]sshx.CommandResult{
		"show vrf":               ok(vrfOutput),
		"show ip ospf area":      ok(" Area Id   AdminStatus  Type    OperStatus\n---------+------------+-------+-----------\n 0.0.0.0   enabled      normal  up\n"),
		"show ip ospf interface": ok(ospfInterfaceOutput),
		"show ip ospf neighbor":  ok(ospfNeighborFullOutput),
		"show ip interface":      ok(ipInterfaceOutput),
	}}
	svc := newTestService(t, runner)

	result := svc.Dispatch(context.Background(), &protocol.ToolCallRequest{
		Tool: "aos.routing.audit",
		Args: map[string]any{"host": "10.9.19.10"},
	})

	if result.Status != "ok" {
		t.Fatalf("status = %q, error = %+v", result.Status, result.Error)
	}
	// The column-header line must not surface as a down neighbor.
	if issues := result.Data["issues"].([]string); len(issues) != 0 {
		t.Errorf("healthy device flagged: %v", issues)
	}
	summary := result.Data["summary"].(map[string]any)
	if summary["total_ospf_neighbors"] != 1 {
		t.Errorf("summary = %v", summary)
	}

	vrfs := result.Data["vrfs"].([]map[string]any)
	areas := vrfs[0]["ospf_areas"].([]aosparse.OSPFArea)
	if len(areas) != 1 || areas[0].AreaID != "0.0.0.0" || areas[0].OperStatus != "up" {
		t.Errorf("ospf_areas = %+v", areas)
	}
}

const spantreeModeOutput = `Spanning Tree Global Parameters
   Current Running Mode        : flat,
   Current Protocol            : rstp,
`

const spantreeCISTOutput = `Spanning Tree Parameters for Cist
  Spanning Tree Status :           ON,
  Protocol             :         RSTP,
  Bridge ID            : 8000-2c:fa:a2:11:22:33,
  Designated Root      : 8000-2c:fa:a2:11:22:33,
  Topology Changes     :            7,
`

const spantreePortsOutput = ` Msti  Port      Oper Status  Path Cost  Role   Loop Guard
-----+---------+------------+----------+------+-----------
   0   1/1/1     FORW         2004       DESG   DIS
   0   1/1/2     FORW         2004       DESG   DIS
`

const spantreeVLANOutput = ` Vlan   STP Status   Protocol   Priority
------+------------+----------+--------------
   1    ON           RSTP       32768 (0x8000)
`

func TestSpantreeAuditSummary(t *testing.T) {
	runner := &scriptRunner{responses: map[string]sshx.CommandResult{
		"show spantree mode":       ok(spantreeModeOutput),
		"show spantree cist":       ok(spantreeCISTOutput),
		"show spantree cist ports": ok(spantreePortsOutput),
		"show spantree vlan":       ok(spantreeVLANOutput),
	}}
	svc := newTestService(t, runner)

	result := svc.Dispatch(context.Background(), &protocol.ToolCallRequest{
		Tool: "aos.spantree.audit",
		Args: map[string]any{"host": "10.9.19.10"},
	})

	if result.Status != "ok" {
		t.Fatalf("status = %q, error = %+v", result.Status, result.Error)
	}
	summary := result.Data["summary"].(map[string]any)
	if summary["is_root_bridge"] != true {
		t.Errorf("is_root_bridge = %v", summary["is_root_bridge"])
	}
	if tc, ok := summary["topology_changes"].(int); !ok || tc != 7 {
		t.Errorf("topology_changes = %v", summary["topology_changes"])
	}
	if summary["total_ports"] != 2 {
		t.Errorf("total_ports = %v", summary["total_ports"])
	}
	if issues := result.Data["issues"].([]string); len(issues) != 0 {
		t.Errorf("healthy bridge flagged: %v", issues)
	}
}

func TestCLIReadonlyRejectsWithoutSSH(t *testing.T) {
	runner := &scriptRunner{}
	svc := newTestService(t, runner)

	result := svc.Dispatch(context.Background(), &protocol.ToolCallRequest{
		Tool: "aos.cli.readonly",
		Args: map[string]any{"host": "10.9.19.10", "command": "rm -rf /"},
	})

	if result.Status != "error" {
		t.Fatalf("status = %q", result.Status)
	}
	if result.Error.Code != CodeInvalidCommand {
		t.Errorf("error code = %q, want %q", result.Error.Code, CodeInvalidCommand)
	}
	if result.Data != nil || result.Content != nil {
		t.Errorf("data/content must be null on error")
	}
	if len(runner.calls) != 0 {
		t.Errorf("rejected command reached the runner: %v", runner.calls)
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	svc := newTestService(t, &scriptRunner{})

	result := svc.Dispatch(context.Background(), &protocol.ToolCallRequest{
		Tool: "aos.does.not.exist",
	})

	if result.Status != "error" || result.Error.Code != CodeUnknownTool {
		t.Fatalf("result = %+v", result)
	}
	if result.Meta["tool"] != "aos.does.not.exist" {
		t.Errorf("meta.tool = %v", result.Meta["tool"])
	}
}

func TestDispatchRecoversFromPanic(t *testing.T) {
	svc := newTestService(t, &scriptRunner{})
	svc.Registry = NewRegistry(&Tool{
		Name: "aos.test.panic",
		Handler: func(context.Context, *Service, map[string]any) (*Output, error) {
			panic("boom")
		},
	})

	result := svc.Dispatch(context.Background(), &protocol.ToolCallRequest{Tool: "aos.test.panic"})

	if result.Status != "error" || result.Error.Code != CodeInternalError {
		t.Fatalf("result = %+v", result)
	}
	if result.Error.Message != "Internal server error" {
		t.Errorf("public message leaked detail: %q", result.Error.Message)
	}
}

func TestDispatchRejectsUnknownArgument(t *testing.T) {
	svc := newTestService(t, &scriptRunner{})

	result := svc.Dispatch(context.Background(), &protocol.ToolCallRequest{
		Tool: "aos.device.facts",
		Args: map[string]any{"host": "10.9.19.10", "hsot": "typo"},
	})

	if result.Status != "error" || result.Error.Code != CodeInvalidRequest {
		t.Fatalf("result = %+v", result)
	}
}

func TestPoERestartOrderAndSuccess(t *testing.T) {
	zero := 0
	runner := &scriptRunner{responses: map[string]sshx.CommandResult{
		"lanpower port 1/1/24 admin-state disable": {ExitStatus: &zero},
		"lanpower port 1/1/24 admin-state enable":  {ExitStatus: &zero},
	}}
	svc := newTestService(t, runner)

	out, err := poeRestart(context.Background(), svc, map[string]any{
		"host": "10.9.19.10", "port_id": "1/1/24", "wait_seconds": float64(1),
	})
	if err != nil {
		t.Fatalf("poeRestart: %v", err)
	}

	want := []string{
		"lanpower port 1/1/24 admin-state disable",
		"lanpower port 1/1/24 admin-state enable",
	}
	if !reflect.DeepEqual(out.Commands, want) {
		t.Errorf("commands = %v, want %v", out.Commands, want)
	}
	if out.Data["success"] != true {
		t.Errorf("success = %v", out.Data["success"])
	}
}

func TestCatalogComplete(t *testing.T) {
	reg := NewCatalog()
	if reg.Len() != 20 {
		t.Fatalf("catalog has %d tools, want 20", reg.Len())
	}
	for _, tool := range reg.List() {
		if tool.Handler == nil {
			t.Errorf("%s: nil handler", tool.Name)
		}
		if tool.Description == "" {
			t.Errorf("%s: empty description", tool.Name)
		}
		if tool.InputSchema == nil {
			t.Errorf("%s: nil input schema", tool.Name)
		}
	}
}
