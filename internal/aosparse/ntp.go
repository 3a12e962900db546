package aosparse

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// NTPStatus is the structured view of `show ntp status`.
type NTPStatus struct {
	Synchronized     bool     `json:"synchronized"`
	Mode             string   `json:"mode"`
	Stratum          *int     `json:"stratum"`
	ReferenceClock   string   `json:"reference_clock,omitempty"`
	OffsetMS         *float64 `json:"offset_ms"`
	RootDelayMS      *float64 `json:"root_delay_ms"`
	RootDispersionMS *float64 `json:"root_dispersion_ms"`
}

var (
	ntpSyncedRE    = regexp.MustCompile(`(?i)synchronized|sync.*yes|status.*synchronized`)
	ntpNotSyncedRE = regexp.MustCompile(`(?i)not.*synchronized|sync.*no`)
	ntpModeRE      = regexp.MustCompile(`(?i)Mode:\s*(client|server|peer|broadcast)`)
	ntpStratumRE   = regexp.MustCompile(`Stratum:\s*(\d+)`)
	ntpRefRE       = regexp.MustCompile(`:\s*(\d+\.\d+\.\d+\.\d+)`)
	ntpOffsetRE    = regexp.MustCompile(`(?i)Offset:\s*([-\d.]+)\s*ms`)
	ntpMSValueRE   = regexp.MustCompile(`(?i):\s*([\d.]+)\s*ms`)
)

// ParseNTPStatus parses `show ntp status`.
func ParseNTPStatus(output string) NTPStatus {
	st := NTPStatus{Mode: "unknown"}

	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if ntpSyncedRE.MatchString(line) {
			st.Synchronized = true
		}
		if ntpNotSyncedRE.MatchString(line) {
			st.Synchronized = false
		}
		if strings.Contains(line, "Mode:") {
			if m := ntpModeRE.FindStringSubmatch(line); m != nil {
				st.Mode = strings.ToLower(m[1])
			}
		}
		if strings.Contains(line, "Stratum:") {
			if m := ntpStratumRE.FindStringSubmatch(line); m != nil {
				s := atoi(m[1])
				st.Stratum = &s
			}
		}
		if strings.Contains(line, "Reference Clock:") || strings.Contains(line, "Reference:") {
			if m := ntpRefRE.FindStringSubmatch(line); m != nil {
				st.ReferenceClock = m[1]
			}
		}
		if strings.Contains(line, "Offset:") {
			if m := ntpOffsetRE.FindStringSubmatch(line); m != nil {
				v := atofloat(m[1])
				st.OffsetMS = &v
			}
		}
		if strings.Contains(line, "Root Delay:") {
			if m := ntpMSValueRE.FindStringSubmatch(line); m != nil {
				v := atofloat(m[1])
				st.RootDelayMS = &v
			}
		}
		if strings.Contains(line, "Root Dispersion:") {
			if m := ntpMSValueRE.FindStringSubmatch(line); m != nil {
				v := atofloat(m[1])
				st.RootDispersionMS = &v
			}
		}
	}

	return st
}

// NTPServer is one row of `show ntp client server-list`.
type NTPServer struct {
	IP           string  `json:"ip"`
	Status       string  `json:"status"`
	Stratum      int     `json:"stratum"`
	DelayMS      float64 `json:"delay_ms"`
	Reachability int     `json:"reachability"`
	Preferred    bool    `json:"preferred"`
}

var ntpServerRowRE = regexp.MustCompile(`(?i)(\d+\.\d+\.\d+\.\d+)\s+(synchronized|reachable|unreachable|inactive)\s+(\d+)\s+([\d.]+)\s+(\d+)\s*(\*)?`)

// ParseNTPServerList parses `show ntp client server-list`. A trailing "*"
// marks the preferred server.
func ParseNTPServerList(output string) []NTPServer {
	var servers []NTPServer
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		m := ntpServerRowRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		servers = append(servers, NTPServer{
			IP:           m[1],
			Status:       strings.ToLower(m[2]),
			Stratum:      atoi(m[3]),
			DelayMS:      atofloat(m[4]),
			Reachability: atoi(m[5]),
			Preferred:    m[6] == "*",
		})
	}
	return servers
}

// NTPPeer is one row of `show ntp peers`. A leading "*" marks the peer the
// clock is currently synchronized to.
type NTPPeer struct {
	Address      string  `json:"address"`
	Stratum      int     `json:"stratum"`
	Poll         int     `json:"poll"`
	Reachability int     `json:"reachability"`
	DelayMS      float64 `json:"delay_ms"`
	OffsetMS     float64 `json:"offset_ms"`
	DispersionMS float64 `json:"dispersion_ms"`
	Active       bool    `json:"active"`
}

var ntpPeerRowRE = regexp.MustCompile(`^\s*(\*)?\s*(\d+\.\d+\.\d+\.\d+)\s+(\d+)\s+(\d+)\s+(\d+)\s+([-\d.]+)\s+([-\d.]+)\s+([-\d.]+)\s*$`)

// ParseNTPPeers parses `show ntp peers`.
func ParseNTPPeers(output string) []NTPPeer {
	var peers []NTPPeer
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		m := ntpPeerRowRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		peers = append(peers, NTPPeer{
			Active:       m[1] == "*",
			Address:      m[2],
			Stratum:      atoi(m[3]),
			Poll:         atoi(m[4]),
			Reachability: atoi(m[5]),
			DelayMS:      atofloat(m[6]),
			OffsetMS:     atofloat(m[7]),
			DispersionMS: atofloat(m[8]),
		})
	}
	return peers
}

// AnalyzeNTP derives the issue list from NTP status and the server list.
// Rules: unsynchronized clock, stratum >= 16, unreachable or low-reachability
// servers, high delay, and |offset| > 100ms.
func AnalyzeNTP(status NTPStatus, servers []NTPServer) []string {
	var issues []string

	if !status.Synchronized {
		issues = append(issues, "NTP not synchronized - time may be inaccurate")
	}
	if status.Stratum != nil && *status.Stratum >= 16 {
		issues = append(issues, fmt.Sprintf("NTP stratum %d invalid (should be < 16)", *status.Stratum))
	}

	if len(servers) == 0 {
		issues = append(issues, "No NTP servers configured")
	} else {
		for _, s := range servers {
			if s.Status == "unreachable" {
				issues = append(issues, fmt.Sprintf("NTP server %s unreachable", s.IP))
			}
		}
		anySynced := false
		for _, s := range servers {
			if s.Status == "synchronized" {
				anySynced = true
				break
			}
		}
		if !anySynced && status.Synchronized {
			issues = append(issues, "Synchronized but no server in 'synchronized' state")
		}
		for _, s := range servers {
			if s.Reachability < 128 {
				issues = append(issues, fmt.Sprintf("NTP server %s has low reachability (%d/255 polls successful)", s.IP, s.Reachability))
			}
		}
		for _, s := range servers {
			if s.DelayMS > 100 {
				issues = append(issues, fmt.Sprintf("NTP server %s has high delay (%gms)", s.IP, s.DelayMS))
			}
		}
	}

	if status.OffsetMS != nil && math.Abs(*status.OffsetMS) > 100 {
		issues = append(issues, fmt.Sprintf("NTP offset high: %gms (should be < 100ms)", *status.OffsetMS))
	}

	return issues
}
