package aosparse

import (
	"testing"
)

const interfacesStatusOutput = `                          DETECTED              CONFIGURED
 Chas/
 Slot/ Admin     Auto     Speed   Duplex  Pause    Speed   Duplex
 Port  Status    Nego    (Mbps)                   (Mbps)
-----+---------+-------+--------+-------+-------+--------+-------
1/1/1    en      en      1000     Full     -      Auto     Auto
1/1/2    en      en       -        -       -      Auto     Auto
1/1/3    dis     en       -        -       -      Auto     Auto
1/1/24   en      dis     10000    Full     -      10000    Full
`

func TestParseInterfacesStatus(t *testing.T) {
	ifaces := ParseInterfacesStatus(interfacesStatusOutput)
	if len(ifaces) != 4 {
		t.Fatalf("parsed %d interfaces, want 4", len(ifaces))
	}

	up := ifaces["1/1/1"]
	if up.AdminState != "enabled" || up.OperState != "up" {
		t.Errorf("1/1/1: admin=%s oper=%s", up.AdminState, up.OperState)
	}
	if up.Speed != "1000Mbps" || up.Duplex != "Full" {
		t.Errorf("1/1/1: speed=%s duplex=%s", up.Speed, up.Duplex)
	}
	if !up.AutoNeg {
		t.Error("1/1/1: auto_neg should be true")
	}

	down := ifaces["1/1/2"]
	if down.OperState != "down" || down.Speed != "" {
		t.Errorf("1/1/2: oper=%s speed=%q", down.OperState, down.Speed)
	}

	disabled := ifaces["1/1/3"]
	if disabled.AdminState != "disabled" {
		t.Errorf("1/1/3: admin=%s", disabled.AdminState)
	}

	tenGig := ifaces["1/1/24"]
	if tenGig.Speed != "10000Mbps" || tenGig.AutoNeg {
		t.Errorf("1/1/24: speed=%s auto_neg=%v", tenGig.Speed, tenGig.AutoNeg)
	}
}

const interfaceDetailOutput = ` Chassis/Slot/Port  1/1/19 :
  Operational Status     : up,
  Last Time Link Changed : Mon Aug 17 08:33:10 2026,
  Number of Status Change: 7,
  Interface Type         : Ethernet,
  SFP/XFP                : N/A,
  MAC address            : 2c:fa:a2:11:22:52,
  BandWidth (Megabits)   :     1000,      Duplex           : Full,
  Rx              :
  Bytes Received  :           2748211345, Unicast Frames   :       9214551,
  Broadcast Frames:                88123, M-cast Frames    :       1447201,
  UnderSize Frames:                    0, OverSize Frames  :             0,
  Lost Frames     :                    0, Error Frames     :             3,
  Tx              :
  Bytes Xmitted   :          18226554410, Unicast Frames   :      14522138,
  Broadcast Frames:               901222, M-cast Frames    :       2210056,
  UnderSize Frames:                    0, OverSize Frames  :             0,
  Lost Frames     :                    0, Error Frames     :             0,
`

func TestParseInterfaceDetail(t *testing.T) {
	d := ParseInterfaceDetail(interfaceDetailOutput, "1/1/19")

	if d.InterfaceType != "Ethernet" {
		t.Errorf("interface_type = %q", d.InterfaceType)
	}
	if d.SFPType != "" {
		t.Errorf("sfp_type should be empty for N/A, got %q", d.SFPType)
	}
	if d.MACAddress != "2c:fa:a2:11:22:52" {
		t.Errorf("mac_address = %q", d.MACAddress)
	}

	wantStats := map[string]int64{
		"rx_bytes":   2748211345,
		"rx_unicast": 9214551,
		"rx_errors":  3,
		"tx_bytes":   18226554410,
		"tx_errors":  0,
	}
	for key, expected := range wantStats {
		if d.Statistics[key] != expected {
			t.Errorf("statistics[%q] = %d, want %d", key, d.Statistics[key], expected)
		}
	}
}

func TestParseInterfacesDetailed(t *testing.T) {
	output := ` Chassis/Slot/Port  1/1/1 :
  Interface Type         : Ethernet,
  Bytes Received  :                 1000, Unicast Frames   :            10,
 Chassis/Slot/Port  1/1/2 :
  Interface Type         : Ethernet,
  Bytes Received  :                 2000, Unicast Frames   :            20,
`
	result := ParseInterfacesDetailed(output)
	if len(result) != 2 {
		t.Fatalf("parsed %d blocks, want 2", len(result))
	}
	if result["1/1/1"].Statistics["rx_bytes"] != 1000 {
		t.Errorf("1/1/1 rx_bytes = %d", result["1/1/1"].Statistics["rx_bytes"])
	}
	if result["1/1/2"].Statistics["rx_bytes"] != 2000 {
		t.Errorf("1/1/2 rx_bytes = %d", result["1/1/2"].Statistics["rx_bytes"])
	}
}
