package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/nextlevelbuilder/aosgate/internal/aosparse"
	"github.com/nextlevelbuilder/aosgate/pkg/protocol"
)

// vlanAudit implements aos.vlan.audit: VLAN table summary plus rule-derived
// issues, optionally drilling into one VLAN.
func vlanAudit(ctx context.Context, svc *Service, args map[string]any) (*Output, error) {
	if err := checkKeys(args, "host", "port", "vlan_id"); err != nil {
		return nil, err
	}
	host, port, err := hostArgs(args)
	if err != nil {
		return nil, err
	}
	vlanID, err := optionalInt(args, "vlan_id", 0)
	if err != nil {
		return nil, err
	}
	if vlanID < 0 || vlanID > 4094 {
		return nil, invalidRequest("argument \"vlan_id\" must be between 1 and 4094")
	}

	s := svc.newSession(host, port)
	timeout := s.commandTimeout()

	res, runErr := s.run(ctx, "show vlan", timeout)
	if runErr != nil {
		return nil, runErr
	}
	vlans := aosparse.ParseShowVLAN(res.Stdout)
	summary, issues := aosparse.AnalyzeVLANs(vlans)

	data := map[string]any{
		"host":    s.device.Host,
		"vlans":   vlans,
		"summary": summary,
		"issues":  issues,
	}

	if vlanID > 0 {
		detailRes, runErr := s.run(ctx, fmt.Sprintf("show vlan %d", vlanID), timeout)
		if runErr != nil {
			return nil, runErr
		}
		data["vlan_detail"] = aosparse.ParseShowVLANDetail(detailRes.Stdout)
		data["vlan_id"] = vlanID
	}

	data["duration_ms"] = s.durationMS()
	data["commands_executed"] = s.commands

	var sb strings.Builder
	fmt.Fprintf(&sb, "**VLAN audit: %s**\n\n", s.device.Host)
	fmt.Fprintf(&sb, "VLANs: %d total, %d enabled, %d operational\n", summary.Total, summary.Enabled, summary.Operational)
	if len(issues) == 0 {
		sb.WriteString("No issues found.")
	} else {
		fmt.Fprintf(&sb, "Issues (%d):\n", len(issues))
		for _, issue := range issues {
			fmt.Fprintf(&sb, "- %s\n", issue)
		}
	}

	return &Output{Data: data, Content: []protocol.ContentBlock{textBlock(sb.String())}, Commands: s.commands}, nil
}

// vrfPrefix qualifies a command for a non-default VRF.
func vrfPrefix(vrf, command string) string {
	if vrf == "" || vrf == "default" {
		return command
	}
	return "vrf " + vrf + " " + command
}

// routingAudit implements aos.routing.audit: VRF inventory with per-VRF OSPF
// and IP-interface state, and optionally the route table.
func routingAudit(ctx context.Context, svc *Service, args map[string]any) (*Output, error) {
	if err := checkKeys(args, "host", "port", "include_routes", "route_limit", "protocol"); err != nil {
		return nil, err
	}
	host, port, err := hostArgs(args)
	if err != nil {
		return nil, err
	}
	includeRoutes, err := optionalBool(args, "include_routes", false)
	if err != nil {
		return nil, err
	}
	routeLimit, err := optionalInt(args, "route_limit", 100)
	if err != nil {
		return nil, err
	}
	protocolFilter, err := optionalString(args, "protocol", "")
	if err != nil {
		return nil, err
	}

	s := svc.newSession(host, port)
	timeout := s.commandTimeout()

	vrfRes, runErr := s.run(ctx, "show vrf", timeout)
	if runErr != nil {
		return nil, runErr
	}
	vrfs := aosparse.ParseShowVRF(vrfRes.Stdout)
	if len(vrfs) == 0 {
		// Single-VRF platforms answer `show vrf` with an error or nothing.
		vrfs = []aosparse.VRF{{Name: "default"}}
	}

	var issues []string
	var vrfsWithOSPF, totalOSPFInterfaces, totalOSPFNeighbors, totalIPInterfaces, totalRoutes int
	vrfRecords := make([]map[string]any, 0, len(vrfs))
	for _, vrf := range vrfs {
		rec := map[string]any{
			"name":      vrf.Name,
			"profile":   vrf.Profile,
			"protocols": vrf.Protocols,
		}

		hasOSPF := false
		for _, p := range vrf.Protocols {
			if strings.EqualFold(p, "OSPF") {
				hasOSPF = true
			}
		}

		if hasOSPF {
			vrfsWithOSPF++
			if res, ok := s.runOptional(ctx, vrfPrefix(vrf.Name, "show ip ospf area"), timeout); ok {
				rec["ospf_areas"] = aosparse.ParseShowOSPFArea(res.Stdout)
			}
			if res, ok := s.runOptional(ctx, vrfPrefix(vrf.Name, "show ip ospf interface"), timeout); ok {
				ifaces := aosparse.ParseShowOSPFInterface(res.Stdout)
				rec["ospf_interfaces"] = ifaces
				totalOSPFInterfaces += len(ifaces)
				for _, i := range ifaces {
					if strings.EqualFold(i.OperStatus, "down") {
						issues = append(issues, fmt.Sprintf("VRF %s: OSPF interface %s is operationally down", vrf.Name, i.Interface))
					}
					if strings.EqualFold(i.AdminStatus, "disabled") {
						issues = append(issues, fmt.Sprintf("VRF %s: OSPF interface %s is administratively disabled", vrf.Name, i.Interface))
					}
				}
			}
			if res, ok := s.runOptional(ctx, vrfPrefix(vrf.Name, "show ip ospf neighbor"), timeout); ok {
				neighbors := aosparse.ParseShowOSPFNeighbor(res.Stdout)
				rec["ospf_neighbors"] = neighbors
				totalOSPFNeighbors += len(neighbors)
				for _, n := range neighbors {
					if n.State != "Full" && n.State != "TwoWay" {
						issues = append(issues, fmt.Sprintf("VRF %s: OSPF neighbor %s in state %s", vrf.Name, n.RouterID, n.State))
					}
				}
			}
		}

		if res, ok := s.runOptional(ctx, vrfPrefix(vrf.Name, "show ip interface"), timeout); ok {
			ifaces := aosparse.ParseShowIPInterface(res.Stdout)
			rec["ip_interfaces"] = ifaces
			totalIPInterfaces += len(ifaces)
			for _, i := range ifaces {
				if strings.EqualFold(i.OperStatus, "DOWN") {
					issues = append(issues, fmt.Sprintf("VRF %s: IP interface %s (%s) is down", vrf.Name, i.Interface, i.IPAddress))
				}
			}
		}

		if includeRoutes {
			if res, ok := s.runOptional(ctx, vrfPrefix(vrf.Name, "show ip routes"), timeout); ok {
				routes := aosparse.ParseShowIPRoutes(res.Stdout, routeLimit, protocolFilter)
				rec["routes"] = routes
				totalRoutes += len(routes.Routes)
			}
		}

		vrfRecords = append(vrfRecords, rec)
	}

	summary := map[string]any{
		"total_vrfs":            len(vrfs),
		"vrfs_with_ospf":        vrfsWithOSPF,
		"total_ospf_interfaces": totalOSPFInterfaces,
		"total_ospf_neighbors":  totalOSPFNeighbors,
		"total_ip_interfaces":   totalIPInterfaces,
		"total_routes":          totalRoutes,
	}

	data := map[string]any{
		"host":              s.device.Host,
		"total_vrfs":        len(vrfs),
		"vrfs":              vrfRecords,
		"summary":           summary,
		"issues":            issues,
		"duration_ms":       s.durationMS(),
		"commands_executed": s.commands,
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Routing audit: %s**\n\nVRFs: %d\n", s.device.Host, len(vrfs))
	if len(issues) == 0 {
		sb.WriteString("No issues found.")
	} else {
		fmt.Fprintf(&sb, "Issues (%d):\n", len(issues))
		for _, issue := range issues {
			fmt.Fprintf(&sb, "- %s\n", issue)
		}
	}

	return &Output{Data: data, Content: []protocol.ContentBlock{textBlock(sb.String())}, Commands: s.commands}, nil
}

// spantreeAudit implements aos.spantree.audit: spanning-tree mode, CIST
// bridge, per-port roles and per-VLAN status with derived issues.
func spantreeAudit(ctx context.Context, svc *Service, args map[string]any) (*Output, error) {
	if err := checkKeys(args, "host", "port"); err != nil {
		return nil, err
	}
	host, port, err := hostArgs(args)
	if err != nil {
		return nil, err
	}

	s := svc.newSession(host, port)
	timeout := s.commandTimeout()

	modeRes, runErr := s.run(ctx, "show spantree mode", timeout)
	if runErr != nil {
		return nil, runErr
	}
	cistRes, runErr := s.run(ctx, "show spantree cist", timeout)
	if runErr != nil {
		return nil, runErr
	}
	portsRes, runErr := s.run(ctx, "show spantree cist ports", timeout)
	if runErr != nil {
		return nil, runErr
	}
	vlanRes, runErr := s.run(ctx, "show spantree vlan", timeout)
	if runErr != nil {
		return nil, runErr
	}

	mode := aosparse.ParseSpantreeMode(modeRes.Stdout)
	bridge := aosparse.ParseSpantreeCIST(cistRes.Stdout)
	ports := aosparse.ParseSpantreePorts(portsRes.Stdout)
	vlans := aosparse.ParseSpantreeVLAN(vlanRes.Stdout)

	var issues []string
	if bridge.STPStatus != "" && !strings.EqualFold(bridge.STPStatus, "ON") {
		issues = append(issues, fmt.Sprintf("Spanning tree status is %s on the CIST bridge", bridge.STPStatus))
	}
	for _, p := range ports {
		if strings.EqualFold(p.Role, "ROOT") && !strings.EqualFold(p.OperStatus, "FORW") {
			issues = append(issues, fmt.Sprintf("Root port %s is not forwarding (%s)", p.PortID, p.OperStatus))
		}
	}
	for _, v := range vlans {
		if strings.EqualFold(v.Status, "OFF") {
			issues = append(issues, fmt.Sprintf("VLAN %d has spanning tree disabled", v.VLANID))
		}
	}

	roleCounts := make(map[string]int)
	for _, p := range ports {
		roleCounts[strings.ToUpper(p.Role)]++
	}

	summary := map[string]any{
		"is_root_bridge":   bridge.BridgeID != "" && bridge.BridgeID == bridge.DesignatedRoot,
		"topology_changes": bridge.TopologyChanges,
		"total_ports":      len(ports),
	}

	data := map[string]any{
		"host":              s.device.Host,
		"mode":              mode,
		"bridge":            bridge,
		"ports":             ports,
		"port_roles":        roleCounts,
		"vlans":             vlans,
		"summary":           summary,
		"issues":            issues,
		"duration_ms":       s.durationMS(),
		"commands_executed": s.commands,
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Spanning tree audit: %s**\n\n", s.device.Host)
	fmt.Fprintf(&sb, "Mode: %s (%s) | Root: %s | Ports: %d | VLANs: %d\n",
		orDash(mode.Mode), orDash(mode.Protocol), orDash(bridge.DesignatedRoot), len(ports), len(vlans))
	if len(issues) == 0 {
		sb.WriteString("No issues found.")
	} else {
		fmt.Fprintf(&sb, "Issues (%d):\n", len(issues))
		for _, issue := range issues {
			fmt.Fprintf(&sb, "- %s\n", issue)
		}
	}

	return &Output{Data: data, Content: []protocol.ContentBlock{textBlock(sb.String())}, Commands: s.commands}, nil
}
