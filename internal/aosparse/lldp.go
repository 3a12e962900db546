package aosparse

import (
	"regexp"
	"strings"
)

// LLDPNeighbor is one remote agent from `show lldp remote-system`.
type LLDPNeighbor struct {
	LocalPort         string `json:"local_port"`
	ChassisID         string `json:"chassis_id,omitempty"`
	PortID            string `json:"port_id,omitempty"`
	PortDescription   string `json:"port_description,omitempty"`
	SystemName        string `json:"system_name,omitempty"`
	SystemDescription string `json:"system_description,omitempty"`
	ManagementIP      string `json:"management_ip,omitempty"`
	Capabilities      string `json:"capabilities,omitempty"`
}

var (
	// Both header forms:
	//   AOS 5:  "Remote LLDP Agents on Local Slot/Port: 2/47,"
	//   AOS 8+: "Remote LLDP nearest-bridge Agents on Local Port 1/1/25:"
	lldpPortHeaderRE = regexp.MustCompile(`^Remote LLDP(?:\s+\S+)*\s+Agents on Local\s+(?:Slot/Port:\s*|Port\s+)([0-9]+(?:/[0-9]+)+)\s*[:,]?\s*$`)
	// AOS 8 sub-header: "Chassis 78:24:..., Port 1016:"
	lldpChassisPortRE = regexp.MustCompile(`^\s*Chassis\s+([^,]+),\s*Port\s+(.+):\s*$`)
	lldpKVRE          = regexp.MustCompile(`^\s*([A-Za-z0-9 /_-]+?)\s*=\s*(.*?),?\s*$`)
	wsRE              = regexp.MustCompile(`\s+`)
)

// ParseLLDPRemoteSystems parses `show lldp remote-system` (all ports or the
// per-port form). Blocks start with either the AOS5 or AOS8 header; "(null)"
// values become empty.
func ParseLLDPRemoteSystems(output string) []LLDPNeighbor {
	var neighbors []LLDPNeighbor
	var current *LLDPNeighbor

	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimRight(raw, "\r")

		if m := lldpPortHeaderRE.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			if current != nil {
				neighbors = append(neighbors, *current)
			}
			current = &LLDPNeighbor{LocalPort: m[1]}
			continue
		}
		if current == nil {
			continue
		}

		if m := lldpChassisPortRE.FindStringSubmatch(line); m != nil {
			current.ChassisID = strings.TrimSpace(m[1])
			current.PortID = strings.TrimSpace(m[2])
			continue
		}

		m := lldpKVRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key := strings.ToLower(wsRE.ReplaceAllString(strings.TrimSpace(m[1]), " "))
		value := cleanNull(strings.Trim(strings.TrimSpace(m[2]), `"`))

		switch {
		case strings.HasPrefix(key, "chassis id") && !strings.Contains(key, "subtype"):
			current.ChassisID = value
		case strings.HasPrefix(key, "port id") && !strings.Contains(key, "subtype"):
			current.PortID = value
		case strings.HasPrefix(key, "port description"):
			current.PortDescription = value
		case strings.HasPrefix(key, "system name"):
			current.SystemName = value
		case strings.HasPrefix(key, "system description"):
			current.SystemDescription = value
		case strings.HasPrefix(key, "capabilities"):
			current.Capabilities = value
		case strings.Contains(key, "management ip address"), strings.Contains(key, "management address"):
			if ip := firstIPv4(value); ip != "" {
				current.ManagementIP = ip
			}
		}
	}

	if current != nil {
		neighbors = append(neighbors, *current)
	}
	return neighbors
}

var lldpMgmtIPRE = regexp.MustCompile(`Management IP Address\s*=\s*(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})`)

// ParseLLDPLocalManagementAddress returns the first local management IPv4
// from `show lldp local-management-address`, or "".
func ParseLLDPLocalManagementAddress(output string) string {
	for _, line := range strings.Split(output, "\n") {
		if m := lldpMgmtIPRE.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	return ""
}
