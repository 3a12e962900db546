package aosparse

import (
	"testing"
)

func TestParseShowVRF(t *testing.T) {
	output := `   Virtual Routers       Profile  Protocols
--------------------+----------+-----------------
default              default    OSPF PIM VRRP
mgmt                 low        RIP

Total Number of Virtual Routers: 2
`
	vrfs := ParseShowVRF(output)
	if len(vrfs) != 2 {
		t.Fatalf("vrfs = %d, want 2", len(vrfs))
	}
	if vrfs[0].Name != "default" || len(vrfs[0].Protocols) != 3 {
		t.Errorf("vrf 0 = %+v", vrfs[0])
	}
	if vrfs[1].Profile != "low" || vrfs[1].Protocols[0] != "RIP" {
		t.Errorf("vrf 1 = %+v", vrfs[1])
	}
}

const ipRoutesOutput = `Legend: +=Equal cost multipath routes
 Total 4 routes

  Dest Address        Gateway Addr        Age       Protocol
------------------+------------------+----------+-----------
  0.0.0.0/0           10.255.9.1          36d 3h     OSPF
  10.78.0.0/24        10.78.0.11          125d 3h    LOCAL
  10.78.2.0/24        10.255.9.1          12h 5m     OSPF
  192.168.1.0/24      10.255.9.2          5m         STATIC
`

func TestParseShowIPRoutes(t *testing.T) {
	table := ParseShowIPRoutes(ipRoutesOutput, 0, "")
	if table.TotalRoutes != 4 {
		t.Errorf("total_routes = %d", table.TotalRoutes)
	}
	if len(table.Routes) != 4 {
		t.Fatalf("routes = %d, want 4", len(table.Routes))
	}

	// Multi-token age: protocol is the last column.
	def := table.Routes[0]
	if def.Destination != "0.0.0.0/0" || def.Age != "36d 3h" || def.Protocol != "OSPF" {
		t.Errorf("route 0 = %+v", def)
	}
	if table.Routes[3].Age != "5m" || table.Routes[3].Protocol != "STATIC" {
		t.Errorf("route 3 = %+v", table.Routes[3])
	}
	if table.Truncated {
		t.Error("should not be truncated without limit")
	}
}

func TestParseShowIPRoutesFilterAndLimit(t *testing.T) {
	filtered := ParseShowIPRoutes(ipRoutesOutput, 0, "ospf")
	if len(filtered.Routes) != 2 {
		t.Errorf("filtered routes = %d, want 2", len(filtered.Routes))
	}

	limited := ParseShowIPRoutes(ipRoutesOutput, 2, "")
	if len(limited.Routes) != 2 || !limited.Truncated {
		t.Errorf("limited: routes=%d truncated=%v", len(limited.Routes), limited.Truncated)
	}
}

func TestParseShowOSPFNeighbor(t *testing.T) {
	output := ` Router ID        Address          Area Id        Type    Interface  State
----------------+----------------+--------------+-------+----------+--------
 10.255.0.1       10.255.9.1       0.0.0.0        DR      vlan-9     Full
 10.255.0.2       10.255.9.2       0.0.0.0        BDR     vlan-9     Full
`
	neighbors := ParseShowOSPFNeighbor(output)
	if len(neighbors) != 2 {
		t.Fatalf("neighbors = %d, want 2", len(neighbors))
	}
	if neighbors[0].RouterID != "10.255.0.1" || neighbors[0].State != "Full" {
		t.Errorf("neighbor 0 = %+v", neighbors[0])
	}
	for _, n := range neighbors {
		if n.RouterID == "Router" || n.State == "Type" {
			t.Errorf("header line parsed as neighbor: %+v", n)
		}
	}
}

func TestParseShowOSPFNeighborHeaderOnly(t *testing.T) {
	// AOS6 column headers differ from AOS8; neither may yield a row.
	output := ` Router ID        Address          Area Id        Type    Interface  State
----------------+----------------+--------------+-------+----------+--------
`
	if neighbors := ParseShowOSPFNeighbor(output); len(neighbors) != 0 {
		t.Errorf("neighbors = %+v, want none", neighbors)
	}
}

func TestParseShowOSPFArea(t *testing.T) {
	output := ` Area Id         AdminStatus   Type        OperStatus
---------------+-------------+-----------+------------
 0.0.0.0         enabled       normal      up
 0.0.0.1         enabled       stub        down
`
	areas := ParseShowOSPFArea(output)
	if len(areas) != 2 {
		t.Fatalf("areas = %d, want 2", len(areas))
	}
	if areas[0].AreaID != "0.0.0.0" || areas[0].Type != "normal" || areas[0].OperStatus != "up" {
		t.Errorf("area 0 = %+v", areas[0])
	}
	if areas[1].Type != "stub" || areas[1].OperStatus != "down" {
		t.Errorf("area 1 = %+v", areas[1])
	}
}

func TestParseShowIPStaticRoutes(t *testing.T) {
	output := `  Dest Address       Gateway Addr      Metric   Tag
------------------+-----------------+--------+------
  0.0.0.0/0          10.255.9.1        1        0
  192.168.10.0/24    10.255.9.2        5        100

 Total 2 static routes
`
	routes := ParseShowIPStaticRoutes(output)
	if len(routes) != 2 {
		t.Fatalf("routes = %d, want 2", len(routes))
	}
	if routes[0].Destination != "0.0.0.0/0" || routes[0].Gateway != "10.255.9.1" || routes[0].Metric != 1 {
		t.Errorf("route 0 = %+v", routes[0])
	}
	if routes[1].Tag != 100 {
		t.Errorf("route 1 = %+v", routes[1])
	}
}

func TestParseShowIPInterface(t *testing.T) {
	output := ` Name                 IP Address       Subnet Mask      Status  Forward
---------------------+----------------+----------------+-------+--------
vlan-78               10.78.0.11       255.255.255.0    UP      YES
Loopback              127.0.0.1        255.0.0.0        UP      NO
`
	interfaces := ParseShowIPInterface(output)
	if len(interfaces) != 2 {
		t.Fatalf("interfaces = %d, want 2", len(interfaces))
	}
	if interfaces[0].Interface != "vlan-78" || interfaces[0].IPAddress != "10.78.0.11" {
		t.Errorf("interface 0 = %+v", interfaces[0])
	}
}
