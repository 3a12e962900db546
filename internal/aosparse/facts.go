package aosparse

import (
	"regexp"
	"strings"
)

// versionRE extracts an AOS software version token such as 8.9.221.R03.
var versionRE = regexp.MustCompile(`\b\d+\.\d+\.\d+\.R\d+\b`)

// ParseShowSystem parses `show system`. Only the "System:" block is read;
// the next top-level section terminates parsing so unrelated key/value pairs
// (Flash Space etc.) are never picked up.
func ParseShowSystem(output string) map[string]any {
	facts := map[string]any{}

	inSystem := false
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.EqualFold(strings.TrimSpace(line), "system:") {
			inSystem = true
			continue
		}
		if inSystem && line != "" && line[0] != ' ' && line[0] != '\t' {
			break
		}
		if !inSystem {
			continue
		}

		key, value, ok := kvMatch(line)
		if !ok {
			continue
		}
		switch key {
		case "description":
			facts["system_description"] = value
			if v := versionRE.FindString(value); v != "" {
				facts["software_version"] = v
			}
		case "object id":
			facts["snmp_object_id"] = value
		case "up time":
			facts["uptime"] = value
		case "contact":
			facts["contact"] = value
		case "name":
			facts["system_name"] = value
		case "location":
			facts["location"] = value
		case "services":
			facts["services"] = value
		case "date & time":
			facts["date_time"] = value
		}
	}

	return facts
}

// ParseShowChassisFacts parses the identity fields of `show chassis` for the
// device-facts tool. The health tool uses ParseShowChassis for the richer
// hardware view.
func ParseShowChassisFacts(output string) map[string]any {
	facts := map[string]any{}
	for _, line := range strings.Split(output, "\n") {
		key, value, ok := kvMatch(line)
		if !ok {
			continue
		}
		switch key {
		case "model name":
			facts["model"] = value
		case "serial number":
			facts["serial_number"] = value
		case "part number":
			facts["part_number"] = value
		case "hardware revision":
			facts["hardware_revision"] = value
		case "manufacture date":
			facts["manufacture_date"] = value
		case "mac address":
			facts["base_mac"] = value
		}
	}
	return facts
}

// ParseShowHardwareInfo parses `show hardware-info`. Not all platforms expose
// the same fields; the result may be empty.
func ParseShowHardwareInfo(output string) map[string]any {
	hw := map[string]any{}
	for _, line := range strings.Split(output, "\n") {
		key, value, ok := kvMatch(line)
		if !ok {
			continue
		}
		switch key {
		case "cpu manufacturer":
			hw["cpu_manufacturer"] = value
		case "cpu model":
			hw["cpu_model"] = value
		case "flash size":
			hw["flash_size"] = value
		case "ram size":
			hw["ram_size"] = value
		case "fpga version":
			hw["fpga_version"] = value
		case "bootrom version":
			hw["bootrom_version"] = value
		case "miniboot version":
			hw["miniboot_version"] = value
		}
	}
	if len(hw) == 0 {
		return map[string]any{}
	}
	return map[string]any{"hardware": hw}
}
