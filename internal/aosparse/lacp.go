package aosparse

import (
	"fmt"
	"regexp"
	"strings"
)

// LinkAgg is one aggregate from `show linkagg`.
type LinkAgg struct {
	AggID         string   `json:"agg_id"`
	Name          string   `json:"name"`
	Size          int      `json:"size"`
	AdminState    string   `json:"admin_state"`
	OperState     string   `json:"oper_state"`
	Type          string   `json:"type"`
	HashAlgorithm string   `json:"hash_algorithm,omitempty"`
	Members       []string `json:"members"`
	AttachedPorts int      `json:"attached_ports,omitempty"`
	SelectedPorts int      `json:"selected_ports,omitempty"`
}

// LinkAggInfo is the structured view of `show linkagg` with derived issues.
type LinkAggInfo struct {
	LAGs      []LinkAgg `json:"lags"`
	TotalLAGs int       `json:"total_lags"`
	Issues    []string  `json:"issues"`
}

var (
	// OS6860: Number Aggregate SNMPId Size Admin Oper Att Sel
	linkaggOS6860RE = regexp.MustCompile(`^\s*(\d+)\s+(\S+)\s+\d+\s+(\d+)\s+(ENABLED|DISABLED)\s+(UP|DOWN)\s+(\d+)\s+(\d+)`)
	// AOS8: Agg Name Size AdminState OperState Type Hash
	linkaggAOS8RE = regexp.MustCompile(`(?i)(\d+)\s+(\S+)\s+(\d+)\s+(enabled|disabled)\s+(up|down)\s+(lacp|static)\s+(\S+)`)
)

// ParseShowLinkagg parses `show linkagg` in both the OS6860 and AOS8 layouts.
func ParseShowLinkagg(output string) LinkAggInfo {
	info := LinkAggInfo{LAGs: []LinkAgg{}, Issues: []string{}}

	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if m := linkaggOS6860RE.FindStringSubmatch(line); m != nil {
			name := m[2]
			if name == "---" {
				name = "agg" + m[1]
			}
			lagType := "static"
			if strings.Contains(strings.ToLower(m[2]), "dynamic") {
				lagType = "lacp"
			}
			lag := LinkAgg{
				AggID:         m[1],
				Name:          name,
				Size:          atoi(m[3]),
				AdminState:    strings.ToLower(m[4]),
				OperState:     strings.ToLower(m[5]),
				Type:          lagType,
				HashAlgorithm: "unknown",
				Members:       []string{},
				AttachedPorts: atoi(m[6]),
				SelectedPorts: atoi(m[7]),
			}
			info.LAGs = append(info.LAGs, lag)
			info.TotalLAGs++

			if lag.AdminState == "enabled" && lag.OperState == "down" {
				info.Issues = append(info.Issues,
					fmt.Sprintf("LAG %s (%s): administratively enabled but operationally down", lag.AggID, m[2]))
			}
			if lag.SelectedPorts < lag.AttachedPorts {
				info.Issues = append(info.Issues,
					fmt.Sprintf("LAG %s (%s): %d port(s) attached but not selected", lag.AggID, m[2], lag.AttachedPorts-lag.SelectedPorts))
			}
			continue
		}

		if m := linkaggAOS8RE.FindStringSubmatch(line); m != nil {
			name := m[2]
			if name == "---" {
				name = "agg" + m[1]
			}
			lag := LinkAgg{
				AggID:         m[1],
				Name:          name,
				Size:          atoi(m[3]),
				AdminState:    strings.ToLower(m[4]),
				OperState:     strings.ToLower(m[5]),
				Type:          strings.ToLower(m[6]),
				HashAlgorithm: m[7],
				Members:       []string{},
			}
			info.LAGs = append(info.LAGs, lag)
			info.TotalLAGs++

			if lag.AdminState == "enabled" && lag.OperState == "down" {
				info.Issues = append(info.Issues,
					fmt.Sprintf("LAG %s (%s): administratively enabled but operationally down", lag.AggID, m[2]))
			}
		}
	}

	return info
}

// LACPPort is one (aggregate, port, partner) row of `show lacp`.
type LACPPort struct {
	Port          string `json:"port"`
	PartnerSystem string `json:"partner_system"`
	PartnerPort   string `json:"partner_port"`
}

// LACPAggregate groups `show lacp` rows by aggregate.
type LACPAggregate struct {
	AggID string     `json:"agg_id"`
	Ports []LACPPort `json:"ports"`
}

// LACPInfo is the structured view of `show lacp`.
type LACPInfo struct {
	LACPEnabled    bool            `json:"lacp_enabled"`
	Aggregates     []LACPAggregate `json:"aggregates"`
	SystemID       string          `json:"system_id,omitempty"`
	SystemPriority *int            `json:"system_priority,omitempty"`
}

var (
	lacpSystemIDRE = regexp.MustCompile(`:\s*([0-9a-fA-F:]{17})`)
	lacpPrioRE     = regexp.MustCompile(`:\s*(\d+)`)
	lacpEnabledRE  = regexp.MustCompile(`(?i)LACP\s+(Enabled|Active)`)
	lacpPortRowRE  = regexp.MustCompile(`(\d+)\s+(\d+/\d+/\d+)\s+([0-9a-fA-F:]{17})\s+(\S+)`)
)

// ParseShowLACP parses `show lacp`.
func ParseShowLACP(output string) LACPInfo {
	info := LACPInfo{Aggregates: []LACPAggregate{}}

	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if strings.Contains(line, "System ID:") || strings.Contains(line, "System MAC:") {
			if m := lacpSystemIDRE.FindStringSubmatch(line); m != nil {
				info.SystemID = m[1]
			}
		}
		if strings.Contains(line, "System Priority:") {
			if m := lacpPrioRE.FindStringSubmatch(line); m != nil {
				p := atoi(m[1])
				info.SystemPriority = &p
			}
		}
		if lacpEnabledRE.MatchString(line) {
			info.LACPEnabled = true
		}

		m := lacpPortRowRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		aggID := m[1]
		var agg *LACPAggregate
		for i := range info.Aggregates {
			if info.Aggregates[i].AggID == aggID {
				agg = &info.Aggregates[i]
				break
			}
		}
		if agg == nil {
			info.Aggregates = append(info.Aggregates, LACPAggregate{AggID: aggID})
			agg = &info.Aggregates[len(info.Aggregates)-1]
		}
		agg.Ports = append(agg.Ports, LACPPort{
			Port:          m[2],
			PartnerSystem: m[3],
			PartnerPort:   m[4],
		})
	}

	return info
}

// AnalyzeLACP cross-checks LACP state against the configured aggregates and
// returns the detected issues.
func AnalyzeLACP(lacp LACPInfo, linkagg LinkAggInfo) []string {
	var issues []string

	hasLACPLAGs := false
	for _, lag := range linkagg.LAGs {
		if lag.Type == "lacp" {
			hasLACPLAGs = true
			break
		}
	}
	if hasLACPLAGs && !lacp.LACPEnabled {
		issues = append(issues, "LACP LAGs configured but LACP protocol not enabled")
	}

	for _, lag := range linkagg.LAGs {
		if lag.OperState == "down" && lag.AdminState == "enabled" {
			issues = append(issues, fmt.Sprintf("LAG %s (%s): no active members", lag.AggID, lag.Name))
		}
	}

	return issues
}
