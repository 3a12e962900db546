package aosparse

import (
	"fmt"
	"regexp"
	"strings"
)

// VLAN is one row of `show vlan`.
type VLAN struct {
	VLANID     int    `json:"vlan_id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	AdminState string `json:"admin_state"`
	OperState  string `json:"oper_state"`
	IPRouting  string `json:"ip_routing"`
	MTU        int    `json:"mtu"`
}

var vlanRowRE = regexp.MustCompile(`^\s*(\d+)\s+(\w+)\s+(Ena|Dis)\s+(Ena|Dis)\s+(Ena|Dis)\s+(\d+)\s+(.*)$`)

// ParseShowVLAN parses `show vlan`, skipping legend and header lines.
func ParseShowVLAN(output string) []VLAN {
	var vlans []VLAN
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		lowerLine := strings.ToLower(line)
		if strings.Contains(lowerLine, "vlan") && strings.Contains(lowerLine, "type") {
			continue
		}
		if strings.Contains(line, "----") || strings.TrimSpace(line) == "" {
			continue
		}

		m := vlanRowRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		vlans = append(vlans, VLAN{
			VLANID:     atoi(m[1]),
			Name:       strings.TrimSpace(m[7]),
			Type:       m[2],
			AdminState: m[3],
			OperState:  m[4],
			IPRouting:  m[5],
			MTU:        atoi(m[6]),
		})
	}
	return vlans
}

// VLANDetail is the key/value form of `show vlan <id>`.
type VLANDetail struct {
	Name         string `json:"name,omitempty"`
	Type         string `json:"type,omitempty"`
	AdminState   string `json:"admin_state,omitempty"`
	OperState    string `json:"oper_state,omitempty"`
	IPRouting    string `json:"ip_routing,omitempty"`
	MTU          int    `json:"mtu,omitempty"`
	MACTunneling string `json:"mac_tunneling,omitempty"`
}

// ParseShowVLANDetail parses `show vlan <id>`.
func ParseShowVLANDetail(output string) VLANDetail {
	var d VLANDetail
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSuffix(strings.TrimSpace(line[idx+1:]), ",")

		switch key {
		case "Name":
			d.Name = value
		case "Type":
			d.Type = value
		case "Administrative State":
			d.AdminState = value
		case "Operational State":
			d.OperState = value
		case "IP Routing":
			d.IPRouting = value
		case "IP MTU":
			if isDigits(value) {
				d.MTU = atoi(value)
			}
		case "MAC Tunneling":
			d.MACTunneling = value
		}
	}
	return d
}

// VLANMembership is one (vlan, port) association from `show vlan members`.
type VLANMembership struct {
	VLANID int    `json:"vlan_id"`
	Port   string `json:"port"`
	Type   string `json:"type"`   // tagged | untagged
	Status string `json:"status"` // forwarding | inactive
}

var (
	// AOS8 with port column: "1098  1/1/19  default  forwarding"
	memberWithPortRE = regexp.MustCompile(`^\s*(\d+)\s+(\d+/\d+/\d+)\s+(\S+)\s+(\S+)`)
	// Per-port form without port column: "1098  default  forwarding"
	memberNoPortRE = regexp.MustCompile(`^\s*(\d+)\s+(\S+)\s+(\S+)\s*$`)
)

// ParseVLANMembers parses `show vlan members` (all ports) or
// `show vlan members port <id>` (single port; pass the port so rows without a
// port column are attributed). Both layouts are accepted.
func ParseVLANMembers(output, port string) []VLANMembership {
	var members []VLANMembership
	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, "----") || strings.TrimSpace(line) == "" {
			continue
		}
		lowerLine := strings.ToLower(line)
		if strings.Contains(lowerLine, "vlan") && strings.Contains(lowerLine, "type") {
			continue
		}

		if m := memberWithPortRE.FindStringSubmatch(line); m != nil {
			members = append(members, VLANMembership{
				VLANID: atoi(m[1]),
				Port:   m[2],
				Type:   normalizeMemberType(m[3]),
				Status: strings.ToLower(m[4]),
			})
			continue
		}
		if port != "" {
			if m := memberNoPortRE.FindStringSubmatch(line); m != nil {
				members = append(members, VLANMembership{
					VLANID: atoi(m[1]),
					Port:   port,
					Type:   normalizeMemberType(m[2]),
					Status: strings.ToLower(m[3]),
				})
			}
		}
	}
	return members
}

// normalizeMemberType maps the CLI's member type column onto tagged/untagged.
// AOS prints "default" for the untagged VLAN and "qtagged" for tagged ones.
func normalizeMemberType(t string) string {
	switch strings.ToLower(t) {
	case "default", "untagged":
		return "untagged"
	case "qtagged", "tagged":
		return "tagged"
	default:
		return strings.ToLower(t)
	}
}

// VLANSummary aggregates `show vlan` rows for the audit tool.
type VLANSummary struct {
	Total         int `json:"total"`
	Enabled       int `json:"enabled"`
	Disabled      int `json:"disabled"`
	Operational   int `json:"operational"`
	Down          int `json:"down"`
	WithIPRouting int `json:"with_ip_routing"`
	StdVLANs      int `json:"std_vlans"`
	VCMVLANs      int `json:"vcm_vlans"`
}

var suspiciousNameWords = []string{"test", "temp", "old", "unused", "ne pas", "poubelle", "toto"}

// AnalyzeVLANs derives the audit summary and issue list. Every issue comes
// from a fixed rule; no free-form text.
func AnalyzeVLANs(vlans []VLAN) (VLANSummary, []string) {
	summary := VLANSummary{Total: len(vlans)}
	var issues []string

	for _, v := range vlans {
		if v.AdminState == "Ena" {
			summary.Enabled++
		} else {
			summary.Disabled++
		}
		if v.OperState == "Ena" {
			summary.Operational++
		} else {
			summary.Down++
		}
		if v.IPRouting == "Ena" {
			summary.WithIPRouting++
		}
		switch v.Type {
		case "std":
			summary.StdVLANs++
		case "vcm":
			summary.VCMVLANs++
		}

		if v.AdminState == "Ena" && v.OperState == "Dis" {
			issues = append(issues, fmt.Sprintf("VLAN %d (%s): Enabled but operationally down", v.VLANID, v.Name))
		}
		if v.VLANID == 1 && v.AdminState == "Ena" {
			issues = append(issues, "VLAN 1: Default VLAN is enabled - consider disabling if unused")
		}
		nameLower := strings.ToLower(v.Name)
		for _, w := range suspiciousNameWords {
			if strings.Contains(nameLower, w) {
				issues = append(issues, fmt.Sprintf("VLAN %d (%s): Suspicious name suggests temporary/test VLAN", v.VLANID, v.Name))
				break
			}
		}
	}

	return summary, issues
}
