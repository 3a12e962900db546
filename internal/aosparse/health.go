package aosparse

import (
	"fmt"
	"regexp"
	"strings"
)

// HealthModule is one module row of `show health`.
type HealthModule struct {
	ModuleName  string `json:"module_name"`
	Slot        string `json:"slot"`
	Status      string `json:"status"`
	CPUPercent  int    `json:"cpu_usage_percent"`
	MemPercent  int    `json:"memory_usage_percent"`
	RxErrors    int    `json:"rx_errors"`
	TxErrors    int    `json:"tx_errors"`
}

// HealthInfo is the structured view of `show health` with derived issues.
type HealthInfo struct {
	Modules       []HealthModule `json:"modules"`
	OverallStatus string         `json:"overall_status"`
	Issues        []string       `json:"issues"`
}

const (
	cpuWarnPercent = 80
	memWarnPercent = 85
)

var (
	healthCPURE    = regexp.MustCompile(`^CPU\s+(\d+)`)
	healthMemRE    = regexp.MustCompile(`^Memory\s+(\d+)`)
	healthModuleRE = regexp.MustCompile(`(\w+)\s+(\d+/?\d*)\s+(OK|WARNING|CRITICAL|DOWN)\s+(\d+)\s+(\d+)\s+(\d+)\s+(\d+)`)
)

// ParseShowHealth parses `show health`. Two layouts exist: the AOS8 chassis
// table (Module Slot Status CPU Memory RX TX) and the OS6860 compact CMM
// Resources table, detected by the Resources/Current header.
func ParseShowHealth(output string) HealthInfo {
	info := HealthInfo{Modules: []HealthModule{}, OverallStatus: "OK", Issues: []string{}}
	lines := strings.Split(strings.TrimSpace(output), "\n")

	if strings.Contains(output, "Resources") && strings.Contains(output, "Current") {
		var cpu, mem int
		for _, line := range lines {
			if m := healthCPURE.FindStringSubmatch(line); m != nil {
				cpu = atoi(m[1])
			}
			if m := healthMemRE.FindStringSubmatch(line); m != nil {
				mem = atoi(m[1])
			}
		}
		if cpu > 0 || mem > 0 {
			info.Modules = append(info.Modules, HealthModule{
				ModuleName: "CMM",
				Slot:       "1",
				Status:     "OK",
				CPUPercent: cpu,
				MemPercent: mem,
			})
			if cpu > cpuWarnPercent {
				info.OverallStatus = "WARNING"
				info.Issues = append(info.Issues, fmt.Sprintf("CMM CPU usage high: %d%%", cpu))
			}
			if mem > memWarnPercent {
				info.OverallStatus = "WARNING"
				info.Issues = append(info.Issues, fmt.Sprintf("CMM memory usage high: %d%%", mem))
			}
		}
		return info
	}

	for _, line := range lines {
		m := healthModuleRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		mod := HealthModule{
			ModuleName: m[1],
			Slot:       m[2],
			Status:     m[3],
			CPUPercent: atoi(m[4]),
			MemPercent: atoi(m[5]),
			RxErrors:   atoi(m[6]),
			TxErrors:   atoi(m[7]),
		}
		info.Modules = append(info.Modules, mod)

		if mod.Status == "WARNING" || mod.Status == "CRITICAL" || mod.Status == "DOWN" {
			info.OverallStatus = mod.Status
			info.Issues = append(info.Issues, fmt.Sprintf("%s slot %s status: %s", mod.ModuleName, mod.Slot, mod.Status))
		}
		if mod.CPUPercent > cpuWarnPercent {
			info.Issues = append(info.Issues, fmt.Sprintf("%s slot %s CPU usage high: %d%%", mod.ModuleName, mod.Slot, mod.CPUPercent))
		}
		if mod.MemPercent > memWarnPercent {
			info.Issues = append(info.Issues, fmt.Sprintf("%s slot %s memory usage high: %d%%", mod.ModuleName, mod.Slot, mod.MemPercent))
		}
	}

	return info
}

// ChassisInfo is the hardware identity view of `show chassis` used by the
// health/chassis tools.
type ChassisInfo struct {
	ChassisType      string `json:"chassis_type,omitempty"`
	SerialNumber     string `json:"serial_number,omitempty"`
	HardwareRevision string `json:"hardware_revision,omitempty"`
	MACAddress       string `json:"mac_address,omitempty"`
}

var (
	chassisValueRE = regexp.MustCompile(`:\s*(.+?)(?:,|$)`)
	chassisWordRE  = regexp.MustCompile(`:\s*(\S+)`)
	chassisMACRE   = regexp.MustCompile(`:\s*([0-9a-fA-F:]+)`)
)

// ParseShowChassis parses `show chassis` for the chassis-status tool.
func ParseShowChassis(output string) ChassisInfo {
	var info ChassisInfo
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if strings.Contains(line, "Chassis Type") || strings.Contains(line, "Model Name") {
			if m := chassisValueRE.FindStringSubmatch(line); m != nil {
				info.ChassisType = strings.TrimSpace(m[1])
			}
		}
		if strings.Contains(line, "Serial Number") {
			if m := chassisWordRE.FindStringSubmatch(line); m != nil {
				info.SerialNumber = strings.TrimSuffix(m[1], ",")
			}
		}
		if strings.Contains(line, "Hardware Revision") {
			if m := chassisWordRE.FindStringSubmatch(line); m != nil {
				info.HardwareRevision = strings.TrimSuffix(m[1], ",")
			}
		}
		if strings.Contains(line, "MAC Address") || strings.Contains(line, "Base MAC") {
			if m := chassisMACRE.FindStringSubmatch(line); m != nil {
				info.MACAddress = m[1]
			}
		}
	}
	return info
}

// TempSensor is one reading from `show temperature`.
type TempSensor struct {
	Sensor           string `json:"sensor"`
	Location         string `json:"location"`
	CurrentCelsius   int    `json:"current_celsius"`
	ThresholdCelsius int    `json:"threshold_celsius"`
	Status           string `json:"status"`
}

// TemperatureInfo is the structured view of `show temperature`.
type TemperatureInfo struct {
	Sensors       []TempSensor `json:"sensors"`
	OverallStatus string       `json:"overall_status"`
	Issues        []string     `json:"issues"`
}

var (
	// OS6860: "1/CMMA   38   15 to 85   88   85   UNDER THRESHOLD"
	tempOS6860RE = regexp.MustCompile(`(?i)(\d+/\w+)\s+(\d+)\s+\d+\s+to\s+\d+\s+\d+\s+(\d+)\s+(UNDER THRESHOLD|OVER THRESHOLD|OK)`)
	// AOS8: "Sensor   Location   Current   Threshold   Status"
	tempAOS8RE = regexp.MustCompile(`(?i)(\w+[-\w]*)\s+([\w/]+)\s+(\d+)C?\s+(\d+)C?\s+(OK|WARNING|CRITICAL)`)
)

// ParseShowTemperature parses `show temperature` in both the AOS8 and OS6860
// layouts.
func ParseShowTemperature(output string) TemperatureInfo {
	info := TemperatureInfo{Sensors: []TempSensor{}, OverallStatus: "OK", Issues: []string{}}

	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if m := tempOS6860RE.FindStringSubmatch(line); m != nil {
			location, current, threshold := m[1], atoi(m[2]), atoi(m[3])
			status := "OK"
			if !strings.Contains(strings.ToUpper(m[4]), "UNDER") {
				status = "CRITICAL"
			}
			info.Sensors = append(info.Sensors, TempSensor{
				Sensor:           location,
				Location:         location,
				CurrentCelsius:   current,
				ThresholdCelsius: threshold,
				Status:           status,
			})
			if strings.Contains(strings.ToUpper(m[4]), "OVER") || current >= threshold {
				info.OverallStatus = "CRITICAL"
				info.Issues = append(info.Issues, fmt.Sprintf("%s: %d°C (threshold: %d°C)", location, current, threshold))
			}
			continue
		}

		if m := tempAOS8RE.FindStringSubmatch(line); m != nil {
			status := strings.ToUpper(m[5])
			s := TempSensor{
				Sensor:           m[1],
				Location:         m[2],
				CurrentCelsius:   atoi(m[3]),
				ThresholdCelsius: atoi(m[4]),
				Status:           status,
			}
			info.Sensors = append(info.Sensors, s)
			if status == "WARNING" || status == "CRITICAL" {
				info.OverallStatus = status
				info.Issues = append(info.Issues,
					fmt.Sprintf("%s at %s: %d°C (threshold: %d°C)", s.Sensor, s.Location, s.CurrentCelsius, s.ThresholdCelsius))
			}
		}
	}

	return info
}

// Fan is one row of `show fan` / `show fantray`.
type Fan struct {
	FanID    int    `json:"fan_id"`
	SpeedRPM int    `json:"speed_rpm"`
	Status   string `json:"status"`
}

var (
	// OS6860: "1/--   1   YES"
	fanOS6860RE = regexp.MustCompile(`(?i)(\d+)/[-\w]*\s+(\d+)\s+(YES|NO)`)
	fanAOS8RE   = regexp.MustCompile(`(?i)(?:Fan|FAN)\s+(\d+)\s+(\d+)\s*(RPM)?\s+(OK|WARNING|CRITICAL|FAILED|operational|not operational)`)
)

// ParseShowFan parses `show fan` / `show fantray`. The OS6860 layout only
// reports functional yes/no; a nominal RPM is synthesized for functional fans
// so downstream thresholds stay meaningful.
func ParseShowFan(output string) []Fan {
	var fans []Fan
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if m := fanOS6860RE.FindStringSubmatch(line); m != nil {
			f := Fan{FanID: atoi(m[2])}
			if strings.EqualFold(m[3], "YES") {
				f.SpeedRPM = 3500
				f.Status = "OK"
			} else {
				f.Status = "FAILED"
			}
			fans = append(fans, f)
			continue
		}
		if m := fanAOS8RE.FindStringSubmatch(line); m != nil {
			status := strings.ToUpper(m[4])
			switch status {
			case "OK", "WARNING", "CRITICAL", "FAILED":
			default:
				if strings.Contains(strings.ToLower(m[4]), "not") {
					status = "FAILED"
				} else {
					status = "OK"
				}
			}
			fans = append(fans, Fan{FanID: atoi(m[1]), SpeedRPM: atoi(m[2]), Status: status})
		}
	}
	return fans
}

// PowerSupply is one row of `show power-supply`.
type PowerSupply struct {
	PSUID       int    `json:"psu_id"`
	Status      string `json:"status"`
	Operational bool   `json:"operational"`
	Type        string `json:"type"`
	Watts       *int   `json:"watts"`
}

var psuRE = regexp.MustCompile(`(?i)(?:PSU|PS|Power Supply)\s+(\d+)\s+(present|not present|operational|failed)\s+(AC|DC)?\s*(\d+)?`)

// ParseShowPowerSupply parses `show power-supply`.
func ParseShowPowerSupply(output string) []PowerSupply {
	var psus []PowerSupply
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		m := psuRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		stateLower := strings.ToLower(m[2])
		psu := PowerSupply{
			PSUID:       atoi(m[1]),
			Status:      "not_present",
			Operational: strings.Contains(stateLower, "operational"),
			Type:        "unknown",
		}
		if strings.Contains(stateLower, "present") && !strings.Contains(stateLower, "not") {
			psu.Status = "present"
		}
		if m[3] != "" {
			psu.Type = m[3]
		}
		if m[4] != "" {
			w := atoi(m[4])
			psu.Watts = &w
		}
		psus = append(psus, psu)
	}
	return psus
}

// CMMEntry is one management module from `show cmm`.
type CMMEntry struct {
	Slot        int    `json:"slot"`
	Role        string `json:"role"`
	Status      string `json:"status"`
	Temperature *int   `json:"temperature_celsius"`
}

// CMMInfo is the structured view of `show cmm`.
type CMMInfo struct {
	Primary   *CMMEntry `json:"primary"`
	Secondary *CMMEntry `json:"secondary"`
	Status    string    `json:"status"`
}

var cmmRE = regexp.MustCompile(`(?i)(?:Slot|CMM)\s+(\d+)\s+(primary|secondary|running|standby)\s+(running|standby|up|down)\s*(\d+)?`)

// ParseShowCMM parses `show cmm`.
func ParseShowCMM(output string) CMMInfo {
	info := CMMInfo{Status: "unknown"}
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		m := cmmRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		entry := &CMMEntry{
			Slot:   atoi(m[1]),
			Role:   strings.ToLower(m[2]),
			Status: strings.ToLower(m[3]),
		}
		if m[4] != "" {
			t := atoi(m[4])
			entry.Temperature = &t
		}
		switch {
		case strings.Contains(entry.Role, "primary") || strings.Contains(entry.Role, "running"):
			info.Primary = entry
			info.Status = entry.Status
		case strings.Contains(entry.Role, "secondary") || strings.Contains(entry.Role, "standby"):
			info.Secondary = entry
		}
	}
	return info
}

// AnalyzeChassisHealth combines temperature, fan and power-supply data into a
// single issue list for the chassis-status tool.
func AnalyzeChassisHealth(temps TemperatureInfo, fans []Fan, psus []PowerSupply) []string {
	var issues []string

	for _, s := range temps.Sensors {
		if s.Status != "OK" {
			issues = append(issues, fmt.Sprintf("Temperature sensor %s at %s: %d°C (threshold: %d°C)",
				s.Sensor, s.Location, s.CurrentCelsius, s.ThresholdCelsius))
		}
	}
	for _, f := range fans {
		if f.Status != "OK" {
			issues = append(issues, fmt.Sprintf("Fan %d status: %s", f.FanID, f.Status))
		}
		if f.SpeedRPM < 1000 {
			issues = append(issues, fmt.Sprintf("Fan %d speed low: %d RPM", f.FanID, f.SpeedRPM))
		}
	}
	for _, p := range psus {
		if p.Status != "present" {
			issues = append(issues, fmt.Sprintf("Power supply %d: %s", p.PSUID, p.Status))
		}
		if !p.Operational {
			issues = append(issues, fmt.Sprintf("Power supply %d not operational", p.PSUID))
		}
	}

	return issues
}
