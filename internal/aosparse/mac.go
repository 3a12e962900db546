package aosparse

import (
	"regexp"
	"strings"
)

// MACEntry is one forwarding-table or ARP entry. Type is dynamic, static or
// arp; IPAddress is set only for ARP entries.
type MACEntry struct {
	MACAddress string `json:"mac_address"`
	IPAddress  string `json:"ip_address,omitempty"`
	VLAN       int    `json:"vlan"`
	Port       string `json:"port"`
	Type       string `json:"type"`
}

var (
	// OS6860: "VLAN    1098   70:4c:a5:50:45:ce    dynamic     bridging      1/1/24"
	macOS6860RE = regexp.MustCompile(`(?i)VLAN\s+(\d+)\s+([0-9a-fA-F:]{17})\s+(dynamic|static)\s+\w+\s+(\S+)`)
	// Columnar: "MAC Address   VLAN   Port   Type"
	macColumnRE = regexp.MustCompile(`(?i)([0-9a-fA-F:]{17})\s+(\d+)\s+(\S+)\s+(dynamic|static)`)
	arpRowRE    = regexp.MustCompile(`(\d+\.\d+\.\d+\.\d+)\s+([0-9a-fA-F:]{17})\s+(\d+)\s+(\S+)`)
)

// ParseMACLearning parses `show mac-learning` output in both the OS6860
// VLAN-first layout and the columnar one. vlanFilter 0 keeps all VLANs;
// limit 0 means no cap.
func ParseMACLearning(output string, vlanFilter, limit int) []MACEntry {
	var entries []MACEntry
	for _, line := range strings.Split(output, "\n") {
		if limit > 0 && len(entries) >= limit {
			break
		}
		if m := macOS6860RE.FindStringSubmatch(line); m != nil {
			vlan := atoi(m[1])
			if vlanFilter > 0 && vlan != vlanFilter {
				continue
			}
			entries = append(entries, MACEntry{
				MACAddress: strings.ToLower(m[2]),
				VLAN:       vlan,
				Port:       m[4],
				Type:       strings.ToLower(m[3]),
			})
			continue
		}
		if m := macColumnRE.FindStringSubmatch(line); m != nil {
			vlan := atoi(m[2])
			if vlanFilter > 0 && vlan != vlanFilter {
				continue
			}
			entries = append(entries, MACEntry{
				MACAddress: strings.ToLower(m[1]),
				VLAN:       vlan,
				Port:       m[3],
				Type:       strings.ToLower(m[4]),
			})
		}
	}
	return entries
}

// ParseARP parses `show arp` output into MAC entries of type "arp".
func ParseARP(output string) []MACEntry {
	var entries []MACEntry
	for _, line := range strings.Split(output, "\n") {
		m := arpRowRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		entries = append(entries, MACEntry{
			IPAddress:  m[1],
			MACAddress: strings.ToLower(m[2]),
			VLAN:       atoi(m[3]),
			Port:       m[4],
			Type:       "arp",
		})
	}
	return entries
}

// NormalizeMAC canonicalizes a MAC address argument: dashes become colons,
// hex lowered.
func NormalizeMAC(mac string) string {
	return strings.ToLower(strings.ReplaceAll(mac, "-", ":"))
}
