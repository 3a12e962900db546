package tools

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nextlevelbuilder/aosgate/internal/aosparse"
	"github.com/nextlevelbuilder/aosgate/pkg/protocol"
)

// sortedPortStatuses orders ports numerically by chassis, slot and port so
// the discovery output is stable across runs.
func sortedPortStatuses(byPort map[string]aosparse.PortStatus) []aosparse.PortStatus {
	out := make([]aosparse.PortStatus, 0, len(byPort))
	for _, st := range byPort {
		out = append(out, st)
	}
	key := func(id string) [3]int {
		var k [3]int
		for i, part := range strings.SplitN(id, "/", 3) {
			n, _ := strconv.Atoi(part)
			k[i] = n
		}
		return k
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := key(out[i].PortID), key(out[j].PortID)
		for n := 0; n < 3; n++ {
			if a[n] != b[n] {
				return a[n] < b[n]
			}
		}
		return false
	})
	return out
}

// deviceFacts implements aos.device.facts: normalized identity facts from
// `show system` and `show chassis`, enriched with `show hardware-info` when
// the platform supports it.
func deviceFacts(ctx context.Context, svc *Service, args map[string]any) (*Output, error) {
	if err := checkKeys(args, "host", "port"); err != nil {
		return nil, err
	}
	host, port, err := hostArgs(args)
	if err != nil {
		return nil, err
	}

	s := svc.newSession(host, port)
	timeout := s.commandTimeout()

	system, runErr := s.run(ctx, "show system", timeout)
	if runErr != nil {
		return nil, runErr
	}
	chassis, runErr := s.run(ctx, "show chassis", timeout)
	if runErr != nil {
		return nil, runErr
	}

	facts := aosparse.ParseShowSystem(system.Stdout)
	for k, v := range aosparse.ParseShowChassisFacts(chassis.Stdout) {
		facts[k] = v
	}
	if hw, ok := s.runOptional(ctx, "show hardware-info", timeout); ok {
		for k, v := range aosparse.ParseShowHardwareInfo(hw.Stdout) {
			facts[k] = v
		}
	}

	data := map[string]any{
		"host":              s.device.Host,
		"facts":             facts,
		"duration_ms":       s.durationMS(),
		"commands_executed": s.commands,
	}

	name, _ := facts["system_name"].(string)
	model, _ := facts["model"].(string)
	version, _ := facts["software_version"].(string)
	serial, _ := facts["serial_number"].(string)
	text := fmt.Sprintf(
		"**Device facts: %s**\n\nName: %s\nModel: %s\nVersion: %s\nSerial: %s",
		s.device.Host, orDash(name), orDash(model), orDash(version), orDash(serial))

	return &Output{Data: data, Content: []protocol.ContentBlock{textBlock(text)}, Commands: s.commands}, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// portInfo implements aos.port.info: basic single-port status.
func portInfo(ctx context.Context, svc *Service, args map[string]any) (*Output, error) {
	if err := checkKeys(args, "host", "port", "port_id"); err != nil {
		return nil, err
	}
	host, port, err := hostArgs(args)
	if err != nil {
		return nil, err
	}
	portID, err := requirePortID(args, "port_id")
	if err != nil {
		return nil, err
	}

	s := svc.newSession(host, port)
	res, runErr := s.run(ctx, "show interfaces port "+portID, s.commandTimeout())
	if runErr != nil {
		return nil, runErr
	}

	detail := aosparse.ParseInterfaceDetail(res.Stdout, portID)

	data := map[string]any{
		"host":              s.device.Host,
		"port_id":           portID,
		"admin_state":       detail.AdminState,
		"oper_state":        detail.OperState,
		"speed":             detail.Speed,
		"duplex":            detail.Duplex,
		"interface_type":    detail.InterfaceType,
		"mac_address":       detail.MACAddress,
		"duration_ms":       s.durationMS(),
		"commands_executed": s.commands,
	}

	text := fmt.Sprintf("**Port %s on %s**\n\nOper: %s | Admin: %s | Speed: %s | Duplex: %s",
		portID, s.device.Host, orDash(detail.OperState), orDash(detail.AdminState),
		orDash(detail.Speed), orDash(detail.Duplex))

	return &Output{Data: data, Content: []protocol.ContentBlock{textBlock(text)}, Commands: s.commands}, nil
}

// portDiscover implements aos.port.discover: the full picture of one port
// composed from five required views plus an optional PoE probe.
func portDiscover(ctx context.Context, svc *Service, args map[string]any) (*Output, error) {
	if err := checkKeys(args, "host", "port", "port_id"); err != nil {
		return nil, err
	}
	host, port, err := hostArgs(args)
	if err != nil {
		return nil, err
	}
	portID, err := requirePortID(args, "port_id")
	if err != nil {
		return nil, err
	}

	s := svc.newSession(host, port)
	timeout := s.commandTimeout()

	status, runErr := s.run(ctx, fmt.Sprintf("show interfaces %s status", portID), timeout)
	if runErr != nil {
		return nil, runErr
	}
	detail, runErr := s.run(ctx, "show interfaces "+portID, timeout)
	if runErr != nil {
		return nil, runErr
	}
	members, runErr := s.run(ctx, "show vlan members port "+portID, timeout)
	if runErr != nil {
		return nil, runErr
	}
	macs, runErr := s.run(ctx, "show mac-learning port "+portID, timeout)
	if runErr != nil {
		return nil, runErr
	}
	lldp, runErr := s.run(ctx, fmt.Sprintf("show lldp port %s remote-system", portID), timeout)
	if runErr != nil {
		return nil, runErr
	}

	portRecord := map[string]any{"port_id": portID}
	if st, ok := aosparse.ParseInterfacesStatus(status.Stdout)[portID]; ok {
		portRecord["admin_state"] = st.AdminState
		portRecord["oper_state"] = st.OperState
		portRecord["speed"] = st.Speed
		portRecord["duplex"] = st.Duplex
		portRecord["auto_neg"] = st.AutoNeg
	}
	detailRecord := aosparse.ParseInterfaceDetail(detail.Stdout, portID)
	if _, ok := portRecord["oper_state"]; !ok && detailRecord.OperState != "" {
		portRecord["oper_state"] = detailRecord.OperState
	}
	portRecord["interface_type"] = detailRecord.InterfaceType
	portRecord["mac_address"] = detailRecord.MACAddress
	if detailRecord.Statistics != nil {
		portRecord["statistics"] = detailRecord.Statistics
	}

	memberRecords := aosparse.ParseVLANMembers(members.Stdout, portID)
	var untaggedVLAN int
	for _, m := range memberRecords {
		if m.Type == "untagged" {
			untaggedVLAN = m.VLANID
			break
		}
	}

	macRecords := aosparse.ParseMACLearning(macs.Stdout, 0, 0)
	neighbors := aosparse.ParseLLDPRemoteSystems(lldp.Stdout)

	data := map[string]any{
		"host":          s.device.Host,
		"port":          portRecord,
		"vlans":         memberRecords,
		"untagged_vlan": untaggedVLAN,
		"macs":          macRecords,
		"lldp":          neighbors,
	}

	// Slot for the PoE probe comes from the port id: c/s/p -> c/s.
	if idx := strings.LastIndex(portID, "/"); idx > 0 {
		slot := portID[:idx]
		if poe, ok := s.runOptional(ctx, "show lanpower slot "+slot, timeout); ok {
			info := aosparse.ParseLanpower(poe.Stdout)
			for _, p := range info.Ports {
				if p.PortID == portID {
					data["poe"] = map[string]any{
						"enabled":        p.AdminState == "ON",
						"status":         p.Status,
						"actual_used_mw": p.ActualUsedMW,
						"max_power_mw":   p.MaxPowerMW,
						"priority":       p.Priority,
					}
					break
				}
			}
		}
	}

	data["duration_ms"] = s.durationMS()
	data["commands_executed"] = s.commands

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Port discovery %s on %s**\n\n", portID, s.device.Host)
	fmt.Fprintf(&sb, "State: %v/%v | Untagged VLAN: %d | MACs: %d\n",
		portRecord["admin_state"], portRecord["oper_state"], untaggedVLAN, len(macRecords))
	for _, n := range neighbors {
		fmt.Fprintf(&sb, "\nNeighbor: %s", orDash(n.SystemName))
		if n.ManagementIP != "" {
			fmt.Fprintf(&sb, " (%s)", n.ManagementIP)
		}
	}

	return &Output{Data: data, Content: []protocol.ContentBlock{textBlock(sb.String())}, Commands: s.commands}, nil
}

// interfacesDiscover implements aos.interfaces.discover: an inventory of all
// ports aggregated from status, VLAN membership, the forwarding table and
// LLDP, as an outer-left join keyed on port id starting from status.
func interfacesDiscover(ctx context.Context, svc *Service, args map[string]any) (*Output, error) {
	if err := checkKeys(args, "host", "port", "include_inactive", "include_statistics"); err != nil {
		return nil, err
	}
	host, port, err := hostArgs(args)
	if err != nil {
		return nil, err
	}
	includeInactive, err := optionalBool(args, "include_inactive", true)
	if err != nil {
		return nil, err
	}
	includeStats, err := optionalBool(args, "include_statistics", false)
	if err != nil {
		return nil, err
	}

	s := svc.newSession(host, port)
	timeout := s.commandTimeout()

	status, runErr := s.run(ctx, "show interfaces status", timeout)
	if runErr != nil {
		return nil, runErr
	}

	var details map[string]aosparse.InterfaceDetail
	if includeStats {
		if res, ok := s.runOptional(ctx, "show interfaces", timeout); ok {
			details = aosparse.ParseInterfacesDetailed(res.Stdout)
		}
	}

	members, runErr := s.run(ctx, "show vlan members", timeout)
	if runErr != nil {
		return nil, runErr
	}
	macs, runErr := s.run(ctx, "show mac-learning", timeout)
	if runErr != nil {
		return nil, runErr
	}
	lldp, runErr := s.run(ctx, "show lldp remote-system", timeout)
	if runErr != nil {
		return nil, runErr
	}

	// PoE probe: a switch without inline power fails or answers with an
	// unrelated error; only outputs mentioning lanpower are trusted.
	var poeInfo *aosparse.LanpowerInfo
	if res, ok := s.runOptional(ctx, "show lanpower slot 1/1", timeout); ok {
		if strings.Contains(strings.ToLower(res.Stdout+res.Stderr), "lanpower") {
			parsed := aosparse.ParseLanpower(res.Stdout)
			poeInfo = &parsed
		}
	}

	statusByPort := aosparse.ParseInterfacesStatus(status.Stdout)
	membersByPort := make(map[string][]aosparse.VLANMembership)
	for _, m := range aosparse.ParseVLANMembers(members.Stdout, "") {
		membersByPort[m.Port] = append(membersByPort[m.Port], m)
	}
	macCountByPort := make(map[string]int)
	for _, e := range aosparse.ParseMACLearning(macs.Stdout, 0, 0) {
		macCountByPort[e.Port]++
	}
	neighborsByPort := make(map[string][]aosparse.LLDPNeighbor)
	for _, n := range aosparse.ParseLLDPRemoteSystems(lldp.Stdout) {
		neighborsByPort[n.LocalPort] = append(neighborsByPort[n.LocalPort], n)
	}
	poeByPort := make(map[string]aosparse.PoEPort)
	if poeInfo != nil {
		for _, p := range poeInfo.Ports {
			poeByPort[p.PortID] = p
		}
	}

	var ports []map[string]any
	active := 0
	for _, st := range sortedPortStatuses(statusByPort) {
		if !includeInactive && st.OperState != "up" {
			continue
		}
		if st.OperState == "up" {
			active++
		}
		rec := map[string]any{
			"port_id":     st.PortID,
			"admin_state": st.AdminState,
			"oper_state":  st.OperState,
			"speed":       st.Speed,
			"duplex":      st.Duplex,
			"auto_neg":    st.AutoNeg,
		}
		if ms := membersByPort[st.PortID]; len(ms) > 0 {
			rec["vlans"] = ms
		}
		if c := macCountByPort[st.PortID]; c > 0 {
			rec["mac_count"] = c
		}
		if ns := neighborsByPort[st.PortID]; len(ns) > 0 {
			rec["lldp"] = ns
		}
		if p, ok := poeByPort[st.PortID]; ok {
			rec["poe"] = map[string]any{
				"enabled":        p.AdminState == "ON",
				"status":         p.Status,
				"actual_used_mw": p.ActualUsedMW,
			}
		}
		if d, ok := details[st.PortID]; ok && d.Statistics != nil {
			rec["statistics"] = d.Statistics
		}
		ports = append(ports, rec)
	}

	data := map[string]any{
		"host":              s.device.Host,
		"interfaces":        ports,
		"total_count":       len(ports),
		"poe_capable":       poeInfo != nil,
		"duration_ms":       s.durationMS(),
		"commands_executed": s.commands,
	}

	text := fmt.Sprintf("**Interface discovery: %s**\n\nPorts: %d (%d up)\nPoE capable: %v",
		s.device.Host, len(ports), active, poeInfo != nil)

	return &Output{Data: data, Content: []protocol.ContentBlock{textBlock(text)}, Commands: s.commands}, nil
}
