package aosparse

import (
	"regexp"
	"strings"
)

// PortStatus is one row of `show interfaces status`.
type PortStatus struct {
	PortID     string `json:"port_id"`
	AdminState string `json:"admin_state"`
	AutoNeg    bool   `json:"auto_neg"`
	Speed      string `json:"speed,omitempty"`
	Duplex     string `json:"duplex,omitempty"`
	OperState  string `json:"oper_state"`
}

var statusRowRE = regexp.MustCompile(`^\s*(\d+/\d+/\d+)\s+(\S+)\s+(\S+)\s+(\S+)\s+(\S+)`)

// ParseInterfacesStatus parses `show interfaces status`. The data region
// begins after the dashed separator line; a port with no detected speed ("-")
// is operationally down.
func ParseInterfacesStatus(output string) map[string]PortStatus {
	interfaces := make(map[string]PortStatus)

	inData := false
	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, "-------") {
			inData = true
			continue
		}
		if !inData {
			continue
		}

		m := statusRowRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		portID, admin, autoNeg, speed, duplex := m[1], m[2], m[3], m[4], m[5]

		st := PortStatus{
			PortID:  portID,
			AutoNeg: autoNeg == "en",
		}
		if admin == "en" {
			st.AdminState = "enabled"
		} else {
			st.AdminState = "disabled"
		}
		if speed == "-" {
			st.OperState = "down"
		} else {
			st.OperState = "up"
			if isDigits(speed) {
				st.Speed = speed + "Mbps"
			} else {
				st.Speed = speed
			}
		}
		if duplex != "-" {
			st.Duplex = duplex
		}

		interfaces[portID] = st
	}

	return interfaces
}

// InterfaceDetail is the detailed single-port view of `show interfaces <port>`
// including traffic statistics.
type InterfaceDetail struct {
	PortID        string           `json:"port_id"`
	AdminState    string           `json:"admin_state,omitempty"`
	OperState     string           `json:"oper_state,omitempty"`
	Speed         string           `json:"speed,omitempty"`
	Duplex        string           `json:"duplex,omitempty"`
	InterfaceType string           `json:"interface_type,omitempty"`
	SFPType       string           `json:"sfp_type,omitempty"`
	MACAddress    string           `json:"mac_address,omitempty"`
	Statistics    map[string]int64 `json:"statistics,omitempty"`
}

var (
	ifaceTypeRE  = regexp.MustCompile(`(?i)Interface Type\s*:\s*(\w+)`)
	sfpRE        = regexp.MustCompile(`(?i)SFP/XFP\s*:\s*(.+?),`)
	ifaceMACRE   = regexp.MustCompile(`(?i)MAC address\s*:\s*([0-9a-f:]+)`)
	operStateRE  = regexp.MustCompile(`(?i)Operational Status\s*:\s*(\w+)`)
	adminStateRE = regexp.MustCompile(`(?i)Admin(?:istrative)? Status\s*:\s*(\w+)`)
	bandwidthRE  = regexp.MustCompile(`(?i)BandWidth \(Megabits\)\s*:\s*(\d+)`)
	duplexValRE  = regexp.MustCompile(`(?i)Duplex\s*:\s*(\w+)`)

	rxBytesRE     = regexp.MustCompile(`Bytes Received\s*:\s*(\d+)`)
	rxUnicastRE   = regexp.MustCompile(`(?s)Rx.*?Unicast Frames\s*:\s*(\d+)`)
	rxBroadcastRE = regexp.MustCompile(`(?s)Rx.*?Broadcast Frames:\s*(\d+)`)
	rxMcastRE     = regexp.MustCompile(`(?s)Rx.*?M-cast Frames\s*:\s*(\d+)`)
	rxErrRE       = regexp.MustCompile(`(?s)Rx.*?Error Frames\s*:\s*(\d+)`)
	txBytesRE     = regexp.MustCompile(`Bytes Xmitted\s*:\s*(\d+)`)
	txUnicastRE   = regexp.MustCompile(`(?s)Tx.*?Unicast Frames\s*:\s*(\d+)`)
	txBroadcastRE = regexp.MustCompile(`(?s)Tx.*?Broadcast Frames:\s*(\d+)`)
	txMcastRE     = regexp.MustCompile(`(?s)Tx.*?M-cast Frames\s*:\s*(\d+)`)
	txErrRE       = regexp.MustCompile(`(?s)Tx.*?Error Frames\s*:\s*(\d+)`)
)

// ParseInterfaceDetail parses a single `show interfaces <port>` block.
func ParseInterfaceDetail(output, portID string) InterfaceDetail {
	d := InterfaceDetail{PortID: portID}

	if m := operStateRE.FindStringSubmatch(output); m != nil {
		d.OperState = strings.ToLower(m[1])
	}
	if m := adminStateRE.FindStringSubmatch(output); m != nil {
		d.AdminState = strings.ToLower(m[1])
	}
	if m := bandwidthRE.FindStringSubmatch(output); m != nil {
		d.Speed = m[1] + "Mbps"
	}
	if m := duplexValRE.FindStringSubmatch(output); m != nil {
		d.Duplex = m[1]
	}
	if m := ifaceTypeRE.FindStringSubmatch(output); m != nil {
		d.InterfaceType = m[1]
	}
	if m := sfpRE.FindStringSubmatch(output); m != nil {
		if v := strings.TrimSpace(m[1]); v != "N/A" {
			d.SFPType = v
		}
	}
	if m := ifaceMACRE.FindStringSubmatch(output); m != nil {
		d.MACAddress = m[1]
	}

	stats := make(map[string]int64)
	grab := func(re *regexp.Regexp, key string) {
		if m := re.FindStringSubmatch(output); m != nil {
			stats[key] = atoi64(m[1])
		}
	}
	grab(rxBytesRE, "rx_bytes")
	grab(rxUnicastRE, "rx_unicast")
	grab(rxBroadcastRE, "rx_broadcast")
	grab(rxMcastRE, "rx_multicast")
	grab(rxErrRE, "rx_errors")
	grab(txBytesRE, "tx_bytes")
	grab(txUnicastRE, "tx_unicast")
	grab(txBroadcastRE, "tx_broadcast")
	grab(txMcastRE, "tx_multicast")
	grab(txErrRE, "tx_errors")
	if len(stats) > 0 {
		d.Statistics = stats
	}

	return d
}

var chassisSlotPortRE = regexp.MustCompile(`Chassis/Slot/Port\s+(\d+/\d+/\d+)`)

// ParseInterfacesDetailed parses the all-ports form of `show interfaces`,
// splitting the output into per-port blocks on the Chassis/Slot/Port header.
func ParseInterfacesDetailed(output string) map[string]InterfaceDetail {
	result := make(map[string]InterfaceDetail)

	locs := chassisSlotPortRE.FindAllStringSubmatchIndex(output, -1)
	for i, loc := range locs {
		start := loc[0]
		end := len(output)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		portID := output[loc[2]:loc[3]]
		result[portID] = ParseInterfaceDetail(output[start:end], portID)
	}

	return result
}
