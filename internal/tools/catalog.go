package tools

// Schema fragment helpers. The catalog only needs object schemas with typed
// properties and a required list.
func objectSchema(props map[string]any, required ...string) Schema {
	s := Schema{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func strProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func intProp(desc string) map[string]any {
	return map[string]any{"type": "integer", "description": desc}
}

func boolProp(desc string) map[string]any {
	return map[string]any{"type": "boolean", "description": desc}
}

func resultSchema(extra map[string]any) Schema {
	props := map[string]any{
		"host":              strProp("Device the commands ran on"),
		"duration_ms":       intProp("Total wall-clock time"),
		"commands_executed": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	}
	for k, v := range extra {
		props[k] = v
	}
	return objectSchema(props)
}

var (
	hostProp   = strProp("Device hostname, IP address or inventory id")
	portProp   = intProp("SSH port override (default from inventory or 22)")
	portIDProp = strProp("Port identifier in chassis/slot/port form, e.g. 1/1/24")
)

// NewCatalog builds the static tool registry. Order here is the order the
// list endpoints report.
func NewCatalog() *Registry {
	return NewRegistry(
		&Tool{
			Name:        "aos.cli.readonly",
			Description: "Run a single policy-checked read-only CLI command on an OmniSwitch and return its raw output. The command must match the read-only allow-list; anything else is rejected before any SSH connection is made.",
			InputSchema: objectSchema(map[string]any{
				"host":      hostProp,
				"port":      portProp,
				"command":   strProp("CLI command to execute, e.g. 'show vlan'"),
				"timeout_s": intProp("Per-command timeout in seconds"),
			}, "host", "command"),
			OutputSchema: resultSchema(map[string]any{
				"stdout":      strProp("Command output, sanitized"),
				"stderr":      strProp("Error stream, sanitized"),
				"exit_status": intProp("Remote exit status if reported"),
				"truncated":   boolProp("True when output hit max_output_bytes"),
				"redacted":    boolProp("True when a redaction rule changed the output"),
			}),
			Handler: cliReadonly,
		},
		&Tool{
			Name:        "aos.diag.ping",
			Description: "Ping a destination from the switch itself using the configured ping template. Useful for checking reachability from the device's own routing perspective.",
			InputSchema: objectSchema(map[string]any{
				"host":        hostProp,
				"port":        portProp,
				"destination": strProp("IP address or hostname to ping"),
				"count":       intProp("Number of echo requests (default 3)"),
				"timeout_s":   intProp("Per-command timeout in seconds"),
			}, "host", "destination"),
			OutputSchema: resultSchema(map[string]any{
				"destination": strProp("Target pinged"),
				"stdout":      strProp("Raw ping output"),
			}),
			Handler: diagPing,
		},
		&Tool{
			Name:        "aos.diag.traceroute",
			Description: "Trace the route from the switch to a destination using the configured traceroute template.",
			InputSchema: objectSchema(map[string]any{
				"host":        hostProp,
				"port":        portProp,
				"destination": strProp("IP address or hostname to trace"),
				"timeout_s":   intProp("Per-command timeout in seconds (default 30)"),
			}, "host", "destination"),
			OutputSchema: resultSchema(map[string]any{
				"destination": strProp("Target traced"),
				"stdout":      strProp("Raw traceroute output"),
			}),
			Handler: diagTraceroute,
		},
		&Tool{
			Name:        "aos.diag.poe",
			Description: "Report inline-power state for every port on one slot plus the chassis power budget: per-port power draw, priority and status, and total/consumed/remaining watts.",
			InputSchema: objectSchema(map[string]any{
				"host": hostProp,
				"port": portProp,
				"slot": intProp("Chassis slot number (default 1)"),
			}, "host"),
			OutputSchema: resultSchema(map[string]any{
				"ports":           map[string]any{"type": "array", "description": "Per-port PoE state"},
				"chassis_summary": map[string]any{"type": "object", "description": "Power budget totals"},
			}),
			Handler: diagPoE,
		},
		&Tool{
			Name:        "aos.poe.restart",
			Description: "Power-cycle a PoE port: disable inline power, wait, re-enable. The only state-changing tool; commonly used to reboot a hung phone or access point.",
			InputSchema: objectSchema(map[string]any{
				"host":         hostProp,
				"port":         portProp,
				"port_id":      portIDProp,
				"wait_seconds": intProp("Pause between disable and enable, 1-60 (default 5)"),
			}, "host", "port_id"),
			OutputSchema: resultSchema(map[string]any{
				"success": boolProp("True when both commands exited cleanly"),
			}),
			Handler: poeRestart,
		},
		&Tool{
			Name:        "aos.device.facts",
			Description: "Collect normalized identity facts for a device: system name, model, software version, serial number, uptime and hardware details.",
			InputSchema: objectSchema(map[string]any{
				"host": hostProp,
				"port": portProp,
			}, "host"),
			OutputSchema: resultSchema(map[string]any{
				"facts": map[string]any{"type": "object", "description": "Normalized device facts"},
			}),
			Handler: deviceFacts,
		},
		&Tool{
			Name:        "aos.port.info",
			Description: "Quick status for one port: admin/operational state, speed, duplex and MAC address.",
			InputSchema: objectSchema(map[string]any{
				"host":    hostProp,
				"port":    portProp,
				"port_id": portIDProp,
			}, "host", "port_id"),
			OutputSchema: resultSchema(map[string]any{
				"admin_state": strProp("Administrative state"),
				"oper_state":  strProp("Operational state"),
				"speed":       strProp("Negotiated speed"),
				"duplex":      strProp("Duplex mode"),
			}),
			Handler: portInfo,
		},
		&Tool{
			Name:        "aos.port.discover",
			Description: "Everything known about one port in a single call: link status, traffic statistics, VLAN membership, learned MAC addresses, the LLDP neighbor behind it and PoE state when the slot has inline power.",
			InputSchema: objectSchema(map[string]any{
				"host":    hostProp,
				"port":    portProp,
				"port_id": portIDProp,
			}, "host", "port_id"),
			OutputSchema: resultSchema(map[string]any{
				"port":          map[string]any{"type": "object"},
				"vlans":         map[string]any{"type": "array"},
				"untagged_vlan": intProp("Untagged VLAN of the port"),
				"macs":          map[string]any{"type": "array"},
				"lldp":          map[string]any{"type": "array"},
				"poe":           map[string]any{"type": "object"},
			}),
			Handler: portDiscover,
		},
		&Tool{
			Name:        "aos.interfaces.discover",
			Description: "Inventory of all ports on a device aggregated from interface status, VLAN membership, the forwarding table and LLDP, with optional per-port traffic statistics and PoE state.",
			InputSchema: objectSchema(map[string]any{
				"host":               hostProp,
				"port":               portProp,
				"include_inactive":   boolProp("Include operationally down ports (default true)"),
				"include_statistics": boolProp("Fetch per-port traffic counters (default false)"),
			}, "host"),
			OutputSchema: resultSchema(map[string]any{
				"interfaces":  map[string]any{"type": "array"},
				"total_count": intProp("Ports reported"),
				"poe_capable": boolProp("True when the device answered the PoE probe"),
			}),
			Handler: interfacesDiscover,
		},
		&Tool{
			Name:        "aos.vlan.audit",
			Description: "Audit the VLAN table: per-VLAN admin/operational state, a summary, and rule-derived issues such as enabled-but-down VLANs or suspicious names. Pass vlan_id to drill into one VLAN.",
			InputSchema: objectSchema(map[string]any{
				"host":    hostProp,
				"port":    portProp,
				"vlan_id": intProp("Specific VLAN to inspect in detail"),
			}, "host"),
			OutputSchema: resultSchema(map[string]any{
				"vlans":   map[string]any{"type": "array"},
				"summary": map[string]any{"type": "object"},
				"issues":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			}),
			Handler: vlanAudit,
		},
		&Tool{
			Name:        "aos.routing.audit",
			Description: "Audit routing health across all VRFs: OSPF interface and neighbor state, IP interface state, and optionally the route table. Issues flag down OSPF interfaces, neighbors stuck outside Full/TwoWay and down IP interfaces.",
			InputSchema: objectSchema(map[string]any{
				"host":           hostProp,
				"port":           portProp,
				"include_routes": boolProp("Also fetch the route table (default false)"),
				"route_limit":    intProp("Maximum routes per VRF (default 100)"),
				"protocol":       strProp("Only report routes learned from this protocol"),
			}, "host"),
			OutputSchema: resultSchema(map[string]any{
				"total_vrfs": intProp("Number of VRFs"),
				"vrfs":       map[string]any{"type": "array"},
				"issues":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			}),
			Handler: routingAudit,
		},
		&Tool{
			Name:        "aos.spantree.audit",
			Description: "Audit spanning tree: running mode, CIST bridge parameters, per-port roles and per-VLAN status. Issues flag a disabled spanning tree, a non-forwarding root port and VLANs with STP off.",
			InputSchema: objectSchema(map[string]any{
				"host": hostProp,
				"port": portProp,
			}, "host"),
			OutputSchema: resultSchema(map[string]any{
				"mode":   map[string]any{"type": "object"},
				"bridge": map[string]any{"type": "object"},
				"ports":  map[string]any{"type": "array"},
				"vlans":  map[string]any{"type": "array"},
				"issues": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			}),
			Handler: spantreeAudit,
		},
		&Tool{
			Name:        "aos.config.backup",
			Description: "Capture the full running configuration via 'write terminal'. Uses an extended timeout because large configurations stream slowly.",
			InputSchema: objectSchema(map[string]any{
				"host":      hostProp,
				"port":      portProp,
				"timeout_s": intProp("Timeout in seconds; values below 60 are raised to 60"),
			}, "host"),
			OutputSchema: resultSchema(map[string]any{
				"config":     strProp("Running configuration text"),
				"size_bytes": intProp("Configuration size"),
				"timestamp":  strProp("Capture time, RFC 3339 UTC"),
			}),
			Handler: configBackup,
		},
		&Tool{
			Name:        "aos.health.monitor",
			Description: "CPU and memory utilization per module with status thresholds. Detailed mode uses 'show health all' for the full per-slot breakdown.",
			InputSchema: objectSchema(map[string]any{
				"host":     hostProp,
				"port":     portProp,
				"detailed": boolProp("Use 'show health all' (default false)"),
			}, "host"),
			OutputSchema: resultSchema(map[string]any{
				"overall_status": strProp("OK, WARNING, CRITICAL or DOWN"),
				"modules":        map[string]any{"type": "array"},
				"issues":         map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			}),
			Handler: healthMonitor,
		},
		&Tool{
			Name:        "aos.chassis.status",
			Description: "Chassis identity and environmental state: temperature sensors, fans, power supplies and optionally the management modules, with threshold-derived issues.",
			InputSchema: objectSchema(map[string]any{
				"host":                   hostProp,
				"port":                   portProp,
				"include_temperature":    boolProp("Fetch temperature sensors (default true)"),
				"include_fans":           boolProp("Fetch fan state (default true)"),
				"include_power_supplies": boolProp("Fetch power-supply state (default true)"),
				"include_cmm":            boolProp("Fetch management-module state (default false)"),
			}, "host"),
			OutputSchema: resultSchema(map[string]any{
				"chassis":        map[string]any{"type": "object"},
				"temperature":    map[string]any{"type": "object"},
				"fans":           map[string]any{"type": "array"},
				"power_supplies": map[string]any{"type": "array"},
				"issues":         map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			}),
			Handler: chassisStatus,
		},
		&Tool{
			Name:        "aos.mac.lookup",
			Description: "Find where a device is connected: search the forwarding table by MAC address, resolve an IP via ARP, or list everything learned on one VLAN. MAC addresses are accepted in colon or dash form.",
			InputSchema: objectSchema(map[string]any{
				"host":        hostProp,
				"port":        portProp,
				"mac_address": strProp("MAC to locate, e.g. 70:4c:a5:50:45:ce"),
				"ip_address":  strProp("IP to resolve via ARP"),
				"vlan_id":     intProp("VLAN to enumerate"),
				"limit":       intProp("Maximum entries to return (default 100)"),
			}, "host"),
			OutputSchema: resultSchema(map[string]any{
				"entries":     map[string]any{"type": "array"},
				"total_found": intProp("Entries after dedup"),
			}),
			Handler: macLookup,
		},
		&Tool{
			Name:        "aos.lacp.info",
			Description: "Link aggregation inventory: configured LAGs with admin/operational state and LACP partner detail, plus issues such as LAGs with no active members.",
			InputSchema: objectSchema(map[string]any{
				"host": hostProp,
				"port": portProp,
			}, "host"),
			OutputSchema: resultSchema(map[string]any{
				"lags":       map[string]any{"type": "array"},
				"total_lags": intProp("Configured aggregates"),
				"issues":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			}),
			Handler: lacpInfo,
		},
		&Tool{
			Name:        "aos.ntp.status",
			Description: "Time synchronization health: stratum, offset and per-server reachability, with issues for unsynchronized clocks, invalid stratum or unreachable servers.",
			InputSchema: objectSchema(map[string]any{
				"host":            hostProp,
				"port":            portProp,
				"include_servers": boolProp("Fetch the per-server list (default true)"),
			}, "host"),
			OutputSchema: resultSchema(map[string]any{
				"status":  map[string]any{"type": "object"},
				"servers": map[string]any{"type": "array"},
				"issues":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			}),
			Handler: ntpStatus,
		},
		&Tool{
			Name:        "aos.dhcp.relay.info",
			Description: "DHCP relay configuration per interface with optional packet counters and counter-derived issues (high NACK rate, low offer rate, excessive declines).",
			InputSchema: objectSchema(map[string]any{
				"host":             hostProp,
				"port":             portProp,
				"include_counters": boolProp("Fetch relay counters (default true)"),
			}, "host"),
			OutputSchema: resultSchema(map[string]any{
				"relay":    map[string]any{"type": "object"},
				"counters": map[string]any{"type": "object"},
				"issues":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			}),
			Handler: dhcpRelayInfo,
		},
		&Tool{
			Name:        "aos.lldp.neighbors",
			Description: "LLDP neighbor table: remote system name, port, description and management address per local port, optionally filtered to one port.",
			InputSchema: objectSchema(map[string]any{
				"host":        hostProp,
				"port":        portProp,
				"port_filter": strProp("Only neighbors on this local port"),
			}, "host"),
			OutputSchema: resultSchema(map[string]any{
				"neighbors":   map[string]any{"type": "array"},
				"total_count": intProp("Neighbors reported"),
			}),
			Handler: lldpNeighbors,
		},
	)
}
