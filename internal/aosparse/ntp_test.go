package aosparse

import (
	"strings"
	"testing"
)

func TestParseNTPStatus(t *testing.T) {
	output := `Current time:             MON AUG 24 2026 10:14:33 (CEST)
Client mode enabled:      yes
Status:                   synchronized
Mode:                     client
Stratum:                  3
Reference Clock:          10.1.0.200
Offset:                   -1.254 ms
Root Delay:               12.5 ms
Root Dispersion:          45.2 ms
`
	st := ParseNTPStatus(output)
	if !st.Synchronized || st.Mode != "client" {
		t.Errorf("synchronized=%v mode=%s", st.Synchronized, st.Mode)
	}
	if st.Stratum == nil || *st.Stratum != 3 {
		t.Errorf("stratum = %v", st.Stratum)
	}
	if st.ReferenceClock != "10.1.0.200" {
		t.Errorf("reference_clock = %s", st.ReferenceClock)
	}
	if st.OffsetMS == nil || *st.OffsetMS != -1.254 {
		t.Errorf("offset = %v", st.OffsetMS)
	}
	if st.RootDelayMS == nil || *st.RootDelayMS != 12.5 {
		t.Errorf("root_delay = %v", st.RootDelayMS)
	}
}

func TestParseNTPServerList(t *testing.T) {
	output := ` Server IP       Status        Stratum  Delay(ms)  Reachability  Preferred
----------------+-------------+--------+----------+-------------+----------
 10.1.0.200      synchronized  2        2.5        255           *
 10.1.0.201      reachable     3        4.1        255
 10.9.9.9        unreachable   16       0.0        0
`
	servers := ParseNTPServerList(output)
	if len(servers) != 3 {
		t.Fatalf("servers = %d, want 3", len(servers))
	}
	if !servers[0].Preferred || servers[0].Status != "synchronized" {
		t.Errorf("server 0 = %+v", servers[0])
	}
	if servers[1].Preferred {
		t.Error("server 1 should not be preferred")
	}
	if servers[2].Status != "unreachable" || servers[2].Reachability != 0 {
		t.Errorf("server 2 = %+v", servers[2])
	}
}

func TestParseNTPPeers(t *testing.T) {
	output := ` Peer Address     Stratum  Poll  Reach  Delay(ms)  Offset(ms)  Disp(ms)
-----------------+--------+-----+------+----------+-----------+---------
*10.1.0.200       2        64    377    2.512      -0.044      0.121
 10.1.0.201       3        64    377    4.108      1.250       0.200
`
	peers := ParseNTPPeers(output)
	if len(peers) != 2 {
		t.Fatalf("peers = %d, want 2", len(peers))
	}
	if !peers[0].Active || peers[0].Address != "10.1.0.200" || peers[0].Stratum != 2 {
		t.Errorf("peer 0 = %+v", peers[0])
	}
	if peers[0].OffsetMS != -0.044 {
		t.Errorf("peer 0 offset = %v", peers[0].OffsetMS)
	}
	if peers[1].Active {
		t.Error("peer 1 should not be active")
	}
	if peers[1].Reachability != 377 || peers[1].DelayMS != 4.108 {
		t.Errorf("peer 1 = %+v", peers[1])
	}
}

func TestAnalyzeNTP(t *testing.T) {
	stratum := 3
	offset := -1.2
	status := NTPStatus{Synchronized: true, Mode: "client", Stratum: &stratum, OffsetMS: &offset}
	servers := []NTPServer{
		{IP: "10.1.0.200", Status: "synchronized", Stratum: 2, DelayMS: 2.5, Reachability: 255},
	}
	if issues := AnalyzeNTP(status, servers); len(issues) != 0 {
		t.Errorf("healthy setup flagged: %v", issues)
	}
}

func TestAnalyzeNTPIssues(t *testing.T) {
	badStratum := 16
	bigOffset := 250.0
	status := NTPStatus{Synchronized: false, Stratum: &badStratum, OffsetMS: &bigOffset}
	servers := []NTPServer{
		{IP: "10.9.9.9", Status: "unreachable", Reachability: 10, DelayMS: 150},
	}

	issues := AnalyzeNTP(status, servers)
	joined := strings.Join(issues, "\n")
	for _, want := range []string{
		"NTP not synchronized",
		"stratum 16 invalid",
		"10.9.9.9 unreachable",
		"low reachability",
		"high delay",
		"offset high",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing %q in issues:\n%s", want, joined)
		}
	}
}

func TestAnalyzeNTPNoServers(t *testing.T) {
	issues := AnalyzeNTP(NTPStatus{Synchronized: true}, nil)
	if len(issues) != 1 || !strings.Contains(issues[0], "No NTP servers configured") {
		t.Errorf("issues = %v", issues)
	}
}
