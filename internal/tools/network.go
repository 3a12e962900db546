package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/nextlevelbuilder/aosgate/internal/aosparse"
	"github.com/nextlevelbuilder/aosgate/pkg/protocol"
)

// macLookup implements aos.mac.lookup: locate a device in the forwarding
// table by MAC address, IP address (via ARP) or VLAN scan. Exactly one of the
// three selectors must be given.
func macLookup(ctx context.Context, svc *Service, args map[string]any) (*Output, error) {
	if err := checkKeys(args, "host", "port", "mac_address", "ip_address", "vlan_id", "limit"); err != nil {
		return nil, err
	}
	host, port, err := hostArgs(args)
	if err != nil {
		return nil, err
	}
	mac, err := optionalString(args, "mac_address", "")
	if err != nil {
		return nil, err
	}
	ip, err := optionalString(args, "ip_address", "")
	if err != nil {
		return nil, err
	}
	vlanID, err := optionalInt(args, "vlan_id", 0)
	if err != nil {
		return nil, err
	}
	limit, err := optionalInt(args, "limit", 100)
	if err != nil {
		return nil, err
	}

	selectors := 0
	for _, set := range []bool{mac != "", ip != "", vlanID > 0} {
		if set {
			selectors++
		}
	}
	if selectors != 1 {
		return nil, invalidRequest("exactly one of \"mac_address\", \"ip_address\" or \"vlan_id\" is required")
	}

	s := svc.newSession(host, port)
	timeout := s.commandTimeout()

	var entries []aosparse.MACEntry
	var query string
	switch {
	case mac != "":
		mac = aosparse.NormalizeMAC(mac)
		query = "mac " + mac
		res, runErr := s.run(ctx, "show mac-learning mac "+mac, timeout)
		if runErr != nil {
			return nil, runErr
		}
		entries = aosparse.ParseMACLearning(res.Stdout, 0, limit)
	case ip != "":
		query = "ip " + ip
		res, runErr := s.run(ctx, "show arp "+ip, timeout)
		if runErr != nil {
			return nil, runErr
		}
		entries = aosparse.ParseARP(res.Stdout)
	default:
		query = fmt.Sprintf("vlan %d", vlanID)
		res, runErr := s.run(ctx, fmt.Sprintf("show mac-learning domain vlan %d", vlanID), timeout)
		if runErr != nil {
			return nil, runErr
		}
		entries = aosparse.ParseMACLearning(res.Stdout, vlanID, limit)
	}

	// The same MAC can appear once per VLAN; dedup on the full tuple.
	seen := make(map[string]struct{}, len(entries))
	deduped := entries[:0]
	for _, e := range entries {
		key := fmt.Sprintf("%s|%d|%s", e.MACAddress, e.VLAN, e.Port)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, e)
	}
	entries = deduped
	if entries == nil {
		entries = []aosparse.MACEntry{}
	}

	data := map[string]any{
		"host":              s.device.Host,
		"query":             query,
		"entries":           entries,
		"total_found":       len(entries),
		"duration_ms":       s.durationMS(),
		"commands_executed": s.commands,
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**MAC lookup on %s (%s)**\n\nEntries: %d\n", s.device.Host, query, len(entries))
	for i, e := range entries {
		if i >= 10 {
			fmt.Fprintf(&sb, "... and %d more\n", len(entries)-10)
			break
		}
		fmt.Fprintf(&sb, "- %s vlan %d port %s (%s)", e.MACAddress, e.VLAN, e.Port, e.Type)
		if e.IPAddress != "" {
			fmt.Fprintf(&sb, " ip %s", e.IPAddress)
		}
		sb.WriteString("\n")
	}

	return &Output{Data: data, Content: []protocol.ContentBlock{textBlock(sb.String())}, Commands: s.commands}, nil
}

// lacpInfo implements aos.lacp.info: link aggregation inventory with LACP
// protocol detail and derived issues.
func lacpInfo(ctx context.Context, svc *Service, args map[string]any) (*Output, error) {
	if err := checkKeys(args, "host", "port"); err != nil {
		return nil, err
	}
	host, port, err := hostArgs(args)
	if err != nil {
		return nil, err
	}

	s := svc.newSession(host, port)
	timeout := s.commandTimeout()

	res, runErr := s.run(ctx, "show linkagg", timeout)
	if runErr != nil {
		return nil, runErr
	}
	linkagg := aosparse.ParseShowLinkagg(res.Stdout)

	var lacp aosparse.LACPInfo
	if r, ok := s.runOptional(ctx, "show lacp", timeout); ok {
		lacp = aosparse.ParseShowLACP(r.Stdout)
	}

	issues := append(linkagg.Issues, aosparse.AnalyzeLACP(lacp, linkagg)...)

	data := map[string]any{
		"host":              s.device.Host,
		"lags":              linkagg.LAGs,
		"total_lags":        linkagg.TotalLAGs,
		"lacp":              lacp,
		"issues":            issues,
		"duration_ms":       s.durationMS(),
		"commands_executed": s.commands,
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Link aggregation: %s**\n\nLAGs: %d\n", s.device.Host, linkagg.TotalLAGs)
	for _, lag := range linkagg.LAGs {
		fmt.Fprintf(&sb, "- LAG %s (%s): %s/%s, type %s\n", lag.AggID, lag.Name, lag.AdminState, lag.OperState, lag.Type)
	}
	if len(issues) == 0 {
		sb.WriteString("No issues found.")
	} else {
		fmt.Fprintf(&sb, "Issues (%d):\n", len(issues))
		for _, issue := range issues {
			fmt.Fprintf(&sb, "! %s\n", issue)
		}
	}

	return &Output{Data: data, Content: []protocol.ContentBlock{textBlock(sb.String())}, Commands: s.commands}, nil
}

// ntpStatus implements aos.ntp.status: time synchronization state plus the
// per-server reachability list.
func ntpStatus(ctx context.Context, svc *Service, args map[string]any) (*Output, error) {
	if err := checkKeys(args, "host", "port", "include_servers"); err != nil {
		return nil, err
	}
	host, port, err := hostArgs(args)
	if err != nil {
		return nil, err
	}
	includeServers, err := optionalBool(args, "include_servers", true)
	if err != nil {
		return nil, err
	}

	s := svc.newSession(host, port)
	timeout := s.commandTimeout()

	res, runErr := s.run(ctx, "show ntp status", timeout)
	if runErr != nil {
		return nil, runErr
	}
	status := aosparse.ParseNTPStatus(res.Stdout)

	var servers []aosparse.NTPServer
	if includeServers {
		if r, ok := s.runOptional(ctx, "show ntp client server-list", timeout); ok {
			servers = aosparse.ParseNTPServerList(r.Stdout)
		}
	}
	issues := aosparse.AnalyzeNTP(status, servers)

	data := map[string]any{
		"host":              s.device.Host,
		"status":            status,
		"servers":           servers,
		"issues":            issues,
		"duration_ms":       s.durationMS(),
		"commands_executed": s.commands,
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**NTP status: %s**\n\n", s.device.Host)
	if status.Synchronized {
		sb.WriteString("Clock synchronized")
		if status.Stratum != nil {
			fmt.Fprintf(&sb, " (stratum %d)", *status.Stratum)
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("Clock NOT synchronized\n")
	}
	fmt.Fprintf(&sb, "Servers: %d\n", len(servers))
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

// dhcpRelayInfo implements aos.dhcp.relay.info: relay configuration per
// interface, optionally with counters and counter-derived issues.
func dhcpRelayInfo(ctx context.Context, svc *Service, args map[string]any) (*Output, error) {
	if err := checkKeys(args, "host", "port", "include_counters"); err != nil {
		return nil, err
	}
	host, port, err := hostArgs(args)
	if err != nil {
		return nil, err
	}
	includeCounters, err := optionalBool(args, "include_counters", true)
	if err != nil {
		return nil, err
	}

	s := svc.newSession(host, port)
	timeout := s.commandTimeout()

	res, runErr := s.run(ctx, "show ip dhcp-relay interface", timeout)
	if runErr != nil {
		return nil, runErr
	}
	cfg := aosparse.ParseDHCPRelayConfig(res.Stdout)

	var counters aosparse.DHCPCounters
	if includeCounters {
		if r, ok := s.runOptional(ctx, "show ip dhcp-relay counters", timeout); ok {
			counters = aosparse.ParseDHCPRelayCounters(r.Stdout)
		}
	}
	issues := aosparse.AnalyzeDHCPRelay(cfg, counters)

	data := map[string]any{
		"host":              s.device.Host,
		"relay":             cfg,
		"counters":          counters,
		"issues":            issues,
		"duration_ms":       s.durationMS(),
		"commands_executed": s.commands,
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**DHCP relay: %s**\n\nStatus: %s | Interfaces: %d\n",
		s.device.Host, cfg.AdminStatus, len(cfg.Interfaces))
	for _, iface := range cfg.Interfaces {
		fmt.Fprintf(&sb, "- %s -> %s\n", iface.Interface, strings.Join(iface.Servers, ", "))
	}
	if len(issues) == 0 {
		sb.WriteString("No issues found.")
	} else {
		fmt.Fprintf(&sb, "Issues (%d):\n", len(issues))
		for _, issue := range issues {
			fmt.Fprintf(&sb, "! %s\n", issue)
		}
	}

	return &Output{Data: data, Content: []protocol.ContentBlock{textBlock(sb.String())}, Commands: s.commands}, nil
}

// lldpNeighbors implements aos.lldp.neighbors: discovered neighbors from
// `show lldp remote-system`, optionally restricted to one local port.
func lldpNeighbors(ctx context.Context, svc *Service, args map[string]any) (*Output, error) {
	if err := checkKeys(args, "host", "port", "port_filter"); err != nil {
		return nil, err
	}
	host, port, err := hostArgs(args)
	if err != nil {
		return nil, err
	}
	portFilter, err := optionalString(args, "port_filter", "")
	if err != nil {
		return nil, err
	}

	s := svc.newSession(host, port)
	res, runErr := s.run(ctx, "show lldp remote-system", s.commandTimeout())
	if runErr != nil {
		return nil, runErr
	}

	neighbors := aosparse.ParseLLDPRemoteSystems(res.Stdout)
	if portFilter != "" {
		filtered := neighbors[:0]
		for _, n := range neighbors {
			if n.LocalPort == portFilter {
				filtered = append(filtered, n)
			}
		}
		neighbors = filtered
	}
	if neighbors == nil {
		neighbors = []aosparse.LLDPNeighbor{}
	}

	data := map[string]any{
		"host":              s.device.Host,
		"neighbors":         neighbors,
		"total_count":       len(neighbors),
		"duration_ms":       s.durationMS(),
		"commands_executed": s.commands,
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**LLDP neighbors: %s**\n\nNeighbors: %d\n", s.device.Host, len(neighbors))
	for _, n := range neighbors {
		fmt.Fprintf(&sb, "- %s: %s", n.LocalPort, orDash(n.SystemName))
		if n.ManagementIP != "" {
			fmt.Fprintf(&sb, " (%s)", n.ManagementIP)
		}
		if n.PortDescription != "" {
			fmt.Fprintf(&sb, " via %s", n.PortDescription)
		}
		sb.WriteString("\n")
	}

	return &Output{Data: data, Content: []protocol.ContentBlock{textBlock(sb.String())}, Commands: s.commands}, nil
}
