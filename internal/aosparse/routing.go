package aosparse

import (
	"regexp"
	"strings"
)

// VRF is one row of `show vrf`.
type VRF struct {
	Name      string   `json:"name"`
	Profile   string   `json:"profile"`
	Protocols []string `json:"protocols"`
}

var vrfRowRE = regexp.MustCompile(`^(\S+)\s+(\S+)\s+(.+)$`)

// ParseShowVRF parses `show vrf`.
func ParseShowVRF(output string) []VRF {
	var vrfs []VRF
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "Virtual Routers") ||
			strings.Contains(line, "---") || strings.Contains(line, "Total Number") {
			continue
		}
		m := vrfRowRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		vrfs = append(vrfs, VRF{
			Name:      m[1],
			Profile:   m[2],
			Protocols: strings.Fields(m[3]),
		})
	}
	return vrfs
}

// Route is one row of `show ip routes`.
type Route struct {
	Destination string `json:"destination"`
	Gateway     string `json:"gateway"`
	Age         string `json:"age,omitempty"`
	Protocol    string `json:"protocol"`
}

// RouteTable is the structured view of `show ip routes`.
type RouteTable struct {
	TotalRoutes int     `json:"total_routes"`
	Routes      []Route `json:"routes"`
	Truncated   bool    `json:"truncated"`
}

var totalRoutesRE = regexp.MustCompile(`Total\s+(\d+)\s+routes`)

// ParseShowIPRoutes parses `show ip routes`. The protocol is the last column;
// the age can span multiple whitespace-separated tokens (e.g. "36d 3h").
// limit 0 means no limit; protocolFilter "" means no filter.
func ParseShowIPRoutes(output string, limit int, protocolFilter string) RouteTable {
	table := RouteTable{Routes: []Route{}}
	lines := strings.Split(strings.TrimSpace(output), "\n")

	for _, line := range lines {
		if strings.Contains(line, "Total") && strings.Contains(line, "routes") {
			if m := totalRoutesRE.FindStringSubmatch(line); m != nil {
				table.TotalRoutes = atoi(m[1])
				break
			}
		}
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "Dest Address") ||
			strings.Contains(line, "---") || strings.Contains(line, "+") ||
			strings.Contains(line, "Total") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 3 {
			continue
		}
		r := Route{Destination: parts[0], Gateway: parts[1]}
		switch len(parts) {
		case 3:
			r.Protocol = parts[2]
		case 4:
			r.Age = parts[2]
			r.Protocol = parts[3]
		default:
			r.Age = strings.Join(parts[2:len(parts)-1], " ")
			r.Protocol = parts[len(parts)-1]
		}

		if protocolFilter != "" && !strings.EqualFold(r.Protocol, protocolFilter) {
			continue
		}

		table.Routes = append(table.Routes, r)
		if limit > 0 && len(table.Routes) >= limit {
			break
		}
	}

	table.Truncated = limit > 0 && table.TotalRoutes > limit
	return table
}

// OSPFArea is one row of `show ip ospf area`.
type OSPFArea struct {
	AreaID      string `json:"area_id"`
	AdminStatus string `json:"admin_status,omitempty"`
	Type        string `json:"type,omitempty"`
	OperStatus  string `json:"oper_status,omitempty"`
}

// ParseShowOSPFArea parses `show ip ospf area`. Area ids are dotted-quad, so
// rows are gated on the first column being an address.
func ParseShowOSPFArea(output string) []OSPFArea {
	var areas []OSPFArea
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "---") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 || !isIPv4(parts[0]) {
			continue
		}
		area := OSPFArea{AreaID: parts[0], AdminStatus: parts[1]}
		if len(parts) > 2 {
			area.Type = parts[2]
		}
		if len(parts) > 3 {
			area.OperStatus = parts[3]
		}
		areas = append(areas, area)
	}
	return areas
}

// OSPFInterface is one row of `show ip ospf interface`.
type OSPFInterface struct {
	Interface   string `json:"interface"`
	DomainName  string `json:"domain_name,omitempty"`
	DomainID    string `json:"domain_id,omitempty"`
	DRAddress   string `json:"dr_address,omitempty"`
	BackupDR    string `json:"backup_dr,omitempty"`
	AdminStatus string `json:"admin_status,omitempty"`
	OperStatus  string `json:"oper_status,omitempty"`
	State       string `json:"state,omitempty"`
	BFDStatus   string `json:"bfd_status,omitempty"`
}

// ParseShowOSPFInterface parses `show ip ospf interface`.
func ParseShowOSPFInterface(output string) []OSPFInterface {
	var interfaces []OSPFInterface
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "Interface") || strings.Contains(line, "---") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 8 {
			continue
		}
		iface := OSPFInterface{
			Interface:   parts[0],
			DomainName:  parts[1],
			DomainID:    parts[2],
			DRAddress:   parts[3],
			BackupDR:    parts[4],
			AdminStatus: parts[5],
			OperStatus:  parts[6],
			State:       parts[7],
		}
		if len(parts) > 8 {
			iface.BFDStatus = parts[8]
		}
		interfaces = append(interfaces, iface)
	}
	return interfaces
}

// OSPFNeighbor is one row of `show ip ospf neighbor`.
type OSPFNeighbor struct {
	RouterID    string `json:"router_id"`
	Address     string `json:"address"`
	AreaID      string `json:"area_id"`
	DeviceType  string `json:"device_type"`
	InterfaceID string `json:"interface_id"`
	State       string `json:"state"`
}

// ParseShowOSPFNeighbor parses `show ip ospf neighbor`. A row is only a
// neighbor when its first column is an address; header lines vary between
// firmware lines and are rejected by that check.
func ParseShowOSPFNeighbor(output string) []OSPFNeighbor {
	var neighbors []OSPFNeighbor
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "---") || strings.Contains(line, "Total") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 6 || !isIPv4(parts[0]) {
			continue
		}
		neighbors = append(neighbors, OSPFNeighbor{
			RouterID:    parts[0],
			Address:     parts[1],
			AreaID:      parts[2],
			DeviceType:  parts[3],
			InterfaceID: parts[4],
			State:       parts[5],
		})
	}
	return neighbors
}

// StaticRoute is one row of `show ip static-route`.
type StaticRoute struct {
	Destination string `json:"destination"`
	Gateway     string `json:"gateway"`
	Metric      int    `json:"metric"`
	Tag         int    `json:"tag,omitempty"`
}

// ParseShowIPStaticRoutes parses `show ip static-route`. The destination is a
// prefix or a bare address; the gateway must be an address, which rejects the
// header row.
func ParseShowIPStaticRoutes(output string) []StaticRoute {
	var routes []StaticRoute
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "---") || strings.Contains(line, "Total") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 3 || !isIPv4(parts[1]) {
			continue
		}
		dest := parts[0]
		if !strings.Contains(dest, "/") && !isIPv4(dest) {
			continue
		}
		r := StaticRoute{Destination: dest, Gateway: parts[1], Metric: atoi(parts[2])}
		if len(parts) > 3 && isDigits(parts[3]) {
			r.Tag = atoi(parts[3])
		}
		routes = append(routes, r)
	}
	return routes
}

// IPInterface is one row of `show ip interface`.
type IPInterface struct {
	Interface   string `json:"interface"`
	IPAddress   string `json:"ip_address,omitempty"`
	AdminStatus string `json:"admin_status,omitempty"`
	OperStatus  string `json:"oper_status,omitempty"`
	State       string `json:"state,omitempty"`
}

// ParseShowIPInterface parses `show ip interface`.
func ParseShowIPInterface(output string) []IPInterface {
	var interfaces []IPInterface
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "IP Address") || strings.Contains(line, "---") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 3 {
			continue
		}
		iface := IPInterface{
			Interface:   parts[0],
			IPAddress:   parts[1],
			AdminStatus: parts[2],
		}
		if len(parts) > 3 {
			iface.OperStatus = parts[3]
		}
		if len(parts) > 4 {
			iface.State = parts[4]
		}
		interfaces = append(interfaces, iface)
	}
	return interfaces
}
