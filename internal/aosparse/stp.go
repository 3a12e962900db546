package aosparse

import (
	"strings"
)

// STPMode is the structured view of `show spantree mode`.
type STPMode struct {
	Mode                string `json:"mode,omitempty"`
	Protocol            string `json:"protocol,omitempty"`
	PathCostMode        string `json:"path_cost_mode,omitempty"`
	AutoVLANContainment string `json:"auto_vlan_containment,omitempty"`
}

// ParseSpantreeMode parses `show spantree mode`.
func ParseSpantreeMode(output string) STPMode {
	var mode STPMode
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		value := strings.TrimSuffix(strings.TrimSpace(line[idx+1:]), ",")
		switch {
		case strings.Contains(line, "Current Running Mode"):
			mode.Mode = value
		case strings.Contains(line, "Current Protocol"):
			mode.Protocol = value
		case strings.Contains(line, "Path Cost Mode"):
			mode.PathCostMode = value
		case strings.Contains(line, "Auto Vlan Containment"):
			mode.AutoVLANContainment = value
		}
	}
	return mode
}

// STPBridge is the structured view of `show spantree cist`. Numeric fields
// fall back to the raw string when the device prints something unexpected.
type STPBridge struct {
	STPStatus         string `json:"stp_status,omitempty"`
	Protocol          string `json:"protocol,omitempty"`
	Mode              string `json:"mode,omitempty"`
	Priority          string `json:"priority,omitempty"`
	BridgeID          string `json:"bridge_id,omitempty"`
	CSTDesignatedRoot string `json:"cst_designated_root,omitempty"`
	CostToCSTRoot     any    `json:"cost_to_cst_root,omitempty"`
	DesignatedRoot    string `json:"designated_root,omitempty"`
	CostToRoot        any    `json:"cost_to_root,omitempty"`
	RootPort          string `json:"root_port,omitempty"`
	TopologyChanges   any    `json:"topology_changes,omitempty"`
	TopologyAge       string `json:"topology_age,omitempty"`
	LastTCPort        string `json:"last_tc_port,omitempty"`
	LastTCBridge      string `json:"last_tc_bridge,omitempty"`
	MaxAge            string `json:"max_age,omitempty"`
	ForwardDelay      string `json:"forward_delay,omitempty"`
	HelloTime         string `json:"hello_time,omitempty"`
}

func intOrString(v string) any {
	if isDigits(v) {
		return atoi(v)
	}
	return v
}

// ParseSpantreeCIST parses `show spantree cist`.
func ParseSpantreeCIST(output string) STPBridge {
	var b STPBridge
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSuffix(strings.TrimSpace(line[idx+1:]), ",")

		switch {
		case strings.Contains(key, "Spanning Tree Status"):
			b.STPStatus = value
		case key == "Protocol":
			b.Protocol = value
		case key == "mode":
			b.Mode = value
		case key == "Priority":
			b.Priority = value
		case key == "Bridge ID":
			b.BridgeID = value
		case key == "CST Designated Root":
			b.CSTDesignatedRoot = value
		case key == "Cost to CST Root":
			b.CostToCSTRoot = intOrString(value)
		case key == "Designated Root":
			b.DesignatedRoot = value
		case key == "Cost to Root Bridge":
			b.CostToRoot = intOrString(value)
		case key == "Root Port":
			b.RootPort = value
		case key == "Topology Changes":
			b.TopologyChanges = intOrString(value)
		case key == "Topology age":
			b.TopologyAge = value
		case key == "Last TC Rcvd Port":
			b.LastTCPort = value
		case key == "Last TC Rcvd Bridge":
			b.LastTCBridge = value
		case strings.Contains(key, "Max Age") && strings.Contains(line, "="):
			b.MaxAge = trimAfterEquals(value)
		case strings.Contains(key, "Forward Delay") && strings.Contains(line, "="):
			b.ForwardDelay = trimAfterEquals(value)
		case strings.Contains(key, "Hello Time") && strings.Contains(line, "="):
			b.HelloTime = trimAfterEquals(value)
		}
	}
	return b
}

func trimAfterEquals(v string) string {
	if idx := strings.Index(v, "="); idx >= 0 {
		return strings.TrimSuffix(strings.TrimSpace(v[idx+1:]), ",")
	}
	return v
}

// STPPort is one row of `show spantree ports`.
type STPPort struct {
	MSTI       string `json:"msti"`
	PortID     string `json:"port_id"`
	OperStatus string `json:"oper_status"`
	PathCost   string `json:"path_cost"`
	Role       string `json:"role"`
	LoopGuard  string `json:"loop_guard"`
}

// ParseSpantreePorts parses `show spantree ports`. Rows follow the
// Msti/Port/Oper Status header; repeated headers inside the output are
// skipped.
func ParseSpantreePorts(output string) []STPPort {
	var ports []STPPort
	inData := false

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)

		if strings.Contains(line, "Msti") && strings.Contains(line, "Port") && strings.Contains(line, "Oper Status") {
			inData = true
			continue
		}
		if !inData || line == "" || strings.HasPrefix(line, "---") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 6 {
			continue
		}
		if parts[0] == "Msti" || parts[1] == "Port" {
			continue
		}
		ports = append(ports, STPPort{
			MSTI:       parts[0],
			PortID:     parts[1],
			OperStatus: parts[2],
			PathCost:   parts[3],
			Role:       parts[4],
			LoopGuard:  parts[5],
		})
	}
	return ports
}

// STPVLAN is one row of `show spantree vlan`.
type STPVLAN struct {
	VLANID   int    `json:"vlan_id"`
	Status   string `json:"status"`
	Protocol string `json:"protocol"`
	Priority string `json:"priority"`
}

// ParseSpantreeVLAN parses `show spantree vlan`.
func ParseSpantreeVLAN(output string) []STPVLAN {
	var vlans []STPVLAN
	inData := false

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)

		if strings.Contains(line, "Vlan") && strings.Contains(line, "STP Status") && strings.Contains(line, "Protocol") {
			inData = true
			continue
		}
		if !inData || line == "" || strings.HasPrefix(line, "---") {
			continue
		}
		if strings.Contains(line, "Spanning Tree") || strings.Contains(line, "Inactive") || strings.Contains(line, "Path Cost Mode") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 4 || !isDigits(parts[0]) {
			continue
		}
		vlans = append(vlans, STPVLAN{
			VLANID:   atoi(parts[0]),
			Status:   parts[1],
			Protocol: parts[2],
			Priority: parts[3],
		})
	}
	return vlans
}
