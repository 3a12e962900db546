package aosparse

import (
	"fmt"
	"regexp"
	"strings"
)

// DHCPRelayInterface is one relay mapping (interface -> server list).
type DHCPRelayInterface struct {
	Interface  string   `json:"interface"`
	Servers    []string `json:"servers"`
	AdminState string   `json:"admin_state"`
}

// DHCPRelayConfig is the structured view of `show ip dhcp relay interface`:
// one record with the global settings plus the per-interface mappings.
type DHCPRelayConfig struct {
	AdminStatus      string               `json:"admin_status"`
	ForwardDelay     int                  `json:"forward_delay"`
	MaxHops          int                  `json:"max_hops"`
	AgentInformation bool                 `json:"agent_information"`
	PXESupport       bool                 `json:"pxe_support"`
	RelayMode        string               `json:"relay_mode"`
	Interfaces       []DHCPRelayInterface `json:"interfaces"`
}

var (
	dhcpEnabledRE   = regexp.MustCompile(`(?i)=\s*(Enable|Enabled)`)
	dhcpDelayRE     = regexp.MustCompile(`(?i)Forward Delay.*=\s*(\d+)`)
	dhcpHopsRE      = regexp.MustCompile(`(?i)Max.*hops.*=\s*(\d+)`)
	dhcpModeRE      = regexp.MustCompile(`=\s*(.+?)(?:,|$)`)
	dhcpInterfaceRE = regexp.MustCompile(`(?i)From Interface\s+(\S+)\s+to Server\s+(\d+\.\d+\.\d+\.\d+)`)
)

// ParseDHCPRelayConfig parses `show ip dhcp relay interface`. Multiple
// "From Interface X to Server Y" lines for the same interface are merged into
// one entry with an ordered server list.
func ParseDHCPRelayConfig(output string) DHCPRelayConfig {
	cfg := DHCPRelayConfig{
		AdminStatus: "disabled",
		MaxHops:     16,
		RelayMode:   "unknown",
		Interfaces:  []DHCPRelayInterface{},
	}

	index := map[string]int{}

	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if strings.Contains(line, "Admin Status") {
			if dhcpEnabledRE.MatchString(line) {
				cfg.AdminStatus = "enabled"
			} else {
				cfg.AdminStatus = "disabled"
			}
		}
		if m := dhcpDelayRE.FindStringSubmatch(line); m != nil {
			cfg.ForwardDelay = atoi(m[1])
		}
		if m := dhcpHopsRE.FindStringSubmatch(line); m != nil {
			cfg.MaxHops = atoi(m[1])
		}
		if strings.Contains(line, "Agent Information") && dhcpEnabledRE.MatchString(line) {
			cfg.AgentInformation = true
		}
		if strings.Contains(line, "PXE") && dhcpEnabledRE.MatchString(line) {
			cfg.PXESupport = true
		}
		if strings.Contains(line, "Relay Mode") {
			if m := dhcpModeRE.FindStringSubmatch(line); m != nil {
				cfg.RelayMode = strings.TrimSpace(m[1])
			}
		}

		if m := dhcpInterfaceRE.FindStringSubmatch(line); m != nil {
			name, server := m[1], m[2]
			i, ok := index[name]
			if !ok {
				i = len(cfg.Interfaces)
				index[name] = i
				cfg.Interfaces = append(cfg.Interfaces, DHCPRelayInterface{
					Interface:  name,
					AdminState: "enabled",
				})
			}
			cfg.Interfaces[i].Servers = append(cfg.Interfaces[i].Servers, server)
		}
	}

	return cfg
}

// DHCPCounters holds packet counts by message type from
// `show ip dhcp relay counters`.
type DHCPCounters struct {
	Discover             int64 `json:"discover"`
	Offer                int64 `json:"offer"`
	Request              int64 `json:"request"`
	ACK                  int64 `json:"ack"`
	NACK                 int64 `json:"nack"`
	Release              int64 `json:"release"`
	Decline              int64 `json:"decline"`
	Inform               int64 `json:"inform"`
	Renew                int64 `json:"renew"`
	TotalClientRequests  int64 `json:"total_client_requests"`
	TotalServerResponses int64 `json:"total_server_responses"`
}

var dhcpCounterRE = regexp.MustCompile(`(?i)DHCP\s+(\w+)\s+Packets?\s*:\s*(\d+)`)

// ParseDHCPRelayCounters parses `show ip dhcp relay counters`.
func ParseDHCPRelayCounters(output string) DHCPCounters {
	var c DHCPCounters
	for _, line := range strings.Split(output, "\n") {
		m := dhcpCounterRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		count := atoi64(m[2])
		switch strings.ToLower(m[1]) {
		case "discover":
			c.Discover = count
		case "offer":
			c.Offer = count
		case "request":
			c.Request = count
		case "ack":
			c.ACK = count
		case "nack":
			c.NACK = count
		case "release":
			c.Release = count
		case "decline":
			c.Decline = count
		case "inform":
			c.Inform = count
		case "renew":
			c.Renew = count
		}
	}
	c.TotalClientRequests = c.Discover + c.Request + c.Release + c.Decline + c.Inform
	c.TotalServerResponses = c.Offer + c.ACK + c.NACK
	return c
}

// DHCPRelayStats holds relay traffic statistics from
// `show ip dhcp relay statistics`.
type DHCPRelayStats struct {
	RequestsReceived  int64 `json:"requests_received"`
	RequestsForwarded int64 `json:"requests_forwarded"`
	RequestsDropped   int64 `json:"requests_dropped"`
	RepliesReceived   int64 `json:"replies_received"`
	RepliesForwarded  int64 `json:"replies_forwarded"`
	RepliesDropped    int64 `json:"replies_dropped"`
	TotalPackets      int64 `json:"total_packets"`
	Errors            int64 `json:"errors"`
}

var (
	dhcpRxClientRE   = regexp.MustCompile(`(?i)Reception From Client.*Total Count\s*=\s*(\d+)`)
	dhcpTxServerRE   = regexp.MustCompile(`(?i)Tx Server.*Total Count\s*=\s*(\d+)`)
	dhcpViolationRE  = regexp.MustCompile(`(?i)(Forw Delay|Max Hops|Agent Info|Invalid Gateway).*Total Count\s*=\s*(\d+)`)
	dhcpReqRecvRE    = regexp.MustCompile(`(?i)Requests?\s+Received:\s*(\d+)`)
	dhcpReqFwdRE     = regexp.MustCompile(`(?i)Requests?\s+Forwarded:\s*(\d+)`)
	dhcpReqDropRE    = regexp.MustCompile(`(?i)Requests?\s+Dropped:\s*(\d+)`)
	dhcpRepRecvRE    = regexp.MustCompile(`(?i)Replies\s+Received:\s*(\d+)`)
	dhcpRepFwdRE     = regexp.MustCompile(`(?i)Replies\s+Forwarded:\s*(\d+)`)
	dhcpRepDropRE    = regexp.MustCompile(`(?i)Replies\s+Dropped:\s*(\d+)`)
	dhcpErrRE        = regexp.MustCompile(`(?i)Errors?:\s*(\d+)`)
)

// ParseDHCPRelayStatistics parses `show ip dhcp relay statistics`, accepting
// both the violation-counter layout and the plain Received/Forwarded/Dropped
// one.
func ParseDHCPRelayStatistics(output string) DHCPRelayStats {
	var s DHCPRelayStats
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if m := dhcpRxClientRE.FindStringSubmatch(line); m != nil {
			s.RequestsReceived = atoi64(m[1])
		}
		if m := dhcpTxServerRE.FindStringSubmatch(line); m != nil {
			s.RequestsForwarded += atoi64(m[1])
		}
		if m := dhcpViolationRE.FindStringSubmatch(line); m != nil {
			if n := atoi64(m[2]); n > 0 {
				s.RequestsDropped += n
				s.Errors += n
			}
		}
		if m := dhcpReqRecvRE.FindStringSubmatch(line); m != nil {
			s.RequestsReceived = atoi64(m[1])
		}
		if m := dhcpReqFwdRE.FindStringSubmatch(line); m != nil {
			s.RequestsForwarded = atoi64(m[1])
		}
		if m := dhcpReqDropRE.FindStringSubmatch(line); m != nil {
			s.RequestsDropped = atoi64(m[1])
		}
		if m := dhcpRepRecvRE.FindStringSubmatch(line); m != nil {
			s.RepliesReceived = atoi64(m[1])
		}
		if m := dhcpRepFwdRE.FindStringSubmatch(line); m != nil {
			s.RepliesForwarded = atoi64(m[1])
		}
		if m := dhcpRepDropRE.FindStringSubmatch(line); m != nil {
			s.RepliesDropped = atoi64(m[1])
		}
		if m := dhcpErrRE.FindStringSubmatch(line); m != nil {
			s.Errors += atoi64(m[1])
		}
	}
	s.TotalPackets = s.RequestsReceived + s.RepliesReceived
	return s
}

// AnalyzeDHCPRelay derives the issue list from relay configuration and
// counters. NACK rate above 5% and a decline count above 100 flag pool
// exhaustion and duplicate-IP conflicts respectively.
func AnalyzeDHCPRelay(cfg DHCPRelayConfig, counters DHCPCounters) []string {
	var issues []string

	if cfg.AdminStatus != "enabled" {
		return append(issues, "DHCP Relay is disabled")
	}
	if len(cfg.Interfaces) == 0 {
		return append(issues, "DHCP Relay enabled but no interfaces configured")
	}
	for _, iface := range cfg.Interfaces {
		if len(iface.Servers) == 0 {
			issues = append(issues, fmt.Sprintf("%s: No DHCP servers configured", iface.Interface))
		}
	}

	if counters.ACK > 0 && counters.NACK > 0 {
		nackRate := float64(counters.NACK) / float64(counters.ACK+counters.NACK) * 100
		if nackRate > 5 {
			issues = append(issues, fmt.Sprintf("High DHCP NACK rate: %.1f%% - check IP pool exhaustion", nackRate))
		}
	}
	if counters.Decline > 100 {
		issues = append(issues, fmt.Sprintf("DHCP Decline packets: %d - possible duplicate IP conflicts", counters.Decline))
	}
	if counters.Discover > 1000 && counters.Offer > 0 {
		offerRate := float64(counters.Offer) / float64(counters.Discover) * 100
		if offerRate < 90 {
			issues = append(issues, fmt.Sprintf("Low DHCP offer rate: %.1f%% - server may be unreachable", offerRate))
		}
	}

	return issues
}
