package aosparse

import (
	"regexp"
	"strings"
)

// PoEPort is one per-port row of `show lanpower slot`.
type PoEPort struct {
	PortID       string `json:"port_id"`
	MaxPowerMW   int    `json:"max_power_mw"`
	ActualUsedMW int    `json:"actual_used_mw"`
	Status       string `json:"status"`
	Priority     string `json:"priority"`
	AdminState   string `json:"admin_state"`
	Class        string `json:"class,omitempty"`
	Type         string `json:"type,omitempty"`
}

// PoEChassisSummary holds the slot-wide power aggregates from the trailing
// lines of `show lanpower slot`.
type PoEChassisSummary struct {
	ChassisID                int `json:"chassis_id,omitempty"`
	SlotID                   int `json:"slot_id,omitempty"`
	MaxWatts                 int `json:"max_watts,omitempty"`
	ActualPowerConsumedWatts int `json:"actual_power_consumed_watts,omitempty"`
	PowerBudgetRemainingW    int `json:"power_budget_remaining_watts,omitempty"`
	TotalPowerBudgetWatts    int `json:"total_power_budget_watts,omitempty"`
	PowerSuppliesAvailable   int `json:"power_supplies_available,omitempty"`
}

// LanpowerInfo is the full parse of `show lanpower slot`.
type LanpowerInfo struct {
	Ports          []PoEPort         `json:"ports"`
	ChassisSummary PoEChassisSummary `json:"chassis_summary"`
}

var (
	poePortRE        = regexp.MustCompile(`^(\d+/\d+/\d+)\s+(\d+)\s+(\d+)\s+(\S+(?:\s+\S+)*?)\s+(Low|High|Critical)\s+(ON|OFF)\s+(.?)\s*(.*?)$`)
	poeChassisRE     = regexp.MustCompile(`ChassisId\s+(\d+)\s+Slot\s+(\d+)\s+Max Watts\s+(\d+)`)
	poeConsumedRE    = regexp.MustCompile(`(\d+)\s+Watts\s+Actual Power Consumed`)
	poeRemainingRE   = regexp.MustCompile(`(\d+)\s+Watts\s+Actual Power Budget Remaining`)
	poeTotalBudgetRE = regexp.MustCompile(`(\d+)\s+Watts\s+Total Power Budget Available`)
	poeSuppliesRE    = regexp.MustCompile(`(\d+)\s+Power Supply Available`)
)

// ParseLanpower parses `show lanpower slot c/s`. The port block begins after
// a "Port" header followed by a dashed line; the chassis summary comes from
// distinct trailing lines.
func ParseLanpower(output string) LanpowerInfo {
	info := LanpowerInfo{Ports: []PoEPort{}}

	lines := strings.Split(output, "\n")
	inPortSection := false

	for idx, line := range lines {
		stripped := strings.TrimSpace(line)

		if strings.Contains(line, "----") && idx > 0 && strings.Contains(lines[idx-1], "Port") {
			inPortSection = true
			continue
		}

		if inPortSection && stripped != "" && !strings.HasPrefix(stripped, "Chassis") {
			if m := poePortRE.FindStringSubmatch(stripped); m != nil {
				p := PoEPort{
					PortID:       m[1],
					MaxPowerMW:   atoi(m[2]),
					ActualUsedMW: atoi(m[3]),
					Status:       strings.TrimSpace(m[4]),
					Priority:     m[5],
					AdminState:   m[6],
				}
				if m[7] != "" && m[7] != "_" {
					p.Class = m[7]
				}
				if t := strings.TrimSpace(m[8]); t != "" {
					p.Type = t
				}
				info.Ports = append(info.Ports, p)
			}
		}

		switch {
		case strings.Contains(stripped, "ChassisId"):
			if m := poeChassisRE.FindStringSubmatch(stripped); m != nil {
				info.ChassisSummary.ChassisID = atoi(m[1])
				info.ChassisSummary.SlotID = atoi(m[2])
				info.ChassisSummary.MaxWatts = atoi(m[3])
			}
		case strings.Contains(stripped, "Actual Power Consumed"):
			if m := poeConsumedRE.FindStringSubmatch(stripped); m != nil {
				info.ChassisSummary.ActualPowerConsumedWatts = atoi(m[1])
			}
		case strings.Contains(stripped, "Actual Power Budget Remaining"):
			if m := poeRemainingRE.FindStringSubmatch(stripped); m != nil {
				info.ChassisSummary.PowerBudgetRemainingW = atoi(m[1])
			}
		case strings.Contains(stripped, "Total Power Budget Available"):
			if m := poeTotalBudgetRE.FindStringSubmatch(stripped); m != nil {
				info.ChassisSummary.TotalPowerBudgetWatts = atoi(m[1])
			}
		case strings.Contains(stripped, "Power Supply Available"):
			if m := poeSuppliesRE.FindStringSubmatch(stripped); m != nil {
				info.ChassisSummary.PowerSuppliesAvailable = atoi(m[1])
			}
		}
	}

	return info
}
