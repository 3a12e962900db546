package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/nextlevelbuilder/aosgate/internal/aosparse"
	"github.com/nextlevelbuilder/aosgate/pkg/protocol"
)

// healthMonitor implements aos.health.monitor: CPU/memory per module from
// `show health`, with `show health all` in detailed mode.
func healthMonitor(ctx context.Context, svc *Service, args map[string]any) (*Output, error) {
	if err := checkKeys(args, "host", "port", "detailed"); err != nil {
		return nil, err
	}
	host, port, err := hostArgs(args)
	if err != nil {
		return nil, err
	}
	detailed, err := optionalBool(args, "detailed", false)
	if err != nil {
		return nil, err
	}

	command := "show health"
	if detailed {
		command = "show health all"
	}

	s := svc.newSession(host, port)
	res, runErr := s.run(ctx, command, s.commandTimeout())
	if runErr != nil {
		return nil, runErr
	}

	info := aosparse.ParseShowHealth(res.Stdout)

	data := map[string]any{
		"host":              s.device.Host,
		"overall_status":    info.OverallStatus,
		"modules":           info.Modules,
		"issues":            info.Issues,
		"duration_ms":       s.durationMS(),
		"commands_executed": s.commands,
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Health: %s**\n\nOverall: %s\n", s.device.Host, info.OverallStatus)
	for _, m := range info.Modules {
		fmt.Fprintf(&sb, "- %s slot %s: %s (CPU %d%%, memory %d%%)\n",
			m.ModuleName, m.Slot, m.Status, m.CPUPercent, m.MemPercent)
	}
	for _, issue := range info.Issues {
		fmt.Fprintf(&sb, "! %s\n", issue)
	}

	return &Output{Data: data, Content: []protocol.ContentBlock{textBlock(sb.String())}, Commands: s.commands}, nil
}

// chassisStatus implements aos.chassis.status: chassis identity plus the
// environmental subsystems selected by the include_* flags.
func chassisStatus(ctx context.Context, svc *Service, args map[string]any) (*Output, error) {
	if err := checkKeys(args, "host", "port", "include_temperature", "include_fans", "include_power_supplies", "include_cmm"); err != nil {
		return nil, err
	}
	host, port, err := hostArgs(args)
	if err != nil {
		return nil, err
	}
	includeTemp, err := optionalBool(args, "include_temperature", true)
	if err != nil {
		return nil, err
	}
	includeFans, err := optionalBool(args, "include_fans", true)
	if err != nil {
		return nil, err
	}
	includePSU, err := optionalBool(args, "include_power_supplies", true)
	if err != nil {
		return nil, err
	}
	includeCMM, err := optionalBool(args, "include_cmm", false)
	if err != nil {
		return nil, err
	}

	s := svc.newSession(host, port)
	timeout := s.commandTimeout()

	chassisRes, runErr := s.run(ctx, "show chassis", timeout)
	if runErr != nil {
		return nil, runErr
	}

	data := map[string]any{
		"host":    s.device.Host,
		"chassis": aosparse.ParseShowChassis(chassisRes.Stdout),
	}

	var temps aosparse.TemperatureInfo
	var fans []aosparse.Fan
	var psus []aosparse.PowerSupply

	if includeTemp {
		if res, ok := s.runOptional(ctx, "show temperature", timeout); ok {
			temps = aosparse.ParseShowTemperature(res.Stdout)
			data["temperature"] = temps
		}
	}
	if includeFans {
		if res, ok := s.runOptional(ctx, "show fan", timeout); ok {
			fans = aosparse.ParseShowFan(res.Stdout)
			data["fans"] = fans
		}
	}
	if includePSU {
		if res, ok := s.runOptional(ctx, "show power-supply", timeout); ok {
			psus = aosparse.ParseShowPowerSupply(res.Stdout)
			data["power_supplies"] = psus
		}
	}
	if includeCMM {
		if res, ok := s.runOptional(ctx, "show cmm", timeout); ok {
			data["cmm"] = aosparse.ParseShowCMM(res.Stdout)
		}
	}

	issues := aosparse.AnalyzeChassisHealth(temps, fans, psus)
	data["issues"] = issues
	data["duration_ms"] = s.durationMS()
	data["commands_executed"] = s.commands

	chassis := data["chassis"].(aosparse.ChassisInfo)
	var sb strings.Builder
	fmt.Fprintf(&sb, "**Chassis status: %s**\n\n", s.device.Host)
	fmt.Fprintf(&sb, "Type: %s | Serial: %s\n", orDash(chassis.ChassisType), orDash(chassis.SerialNumber))
	fmt.Fprintf(&sb, "Sensors: %d | Fans: %d | PSUs: %d\n", len(temps.Sensors), len(fans), len(psus))
	if len(issues) == 0 {
		sb.WriteString("No issues found.")
	} else {
		fmt.Fprintf(&sb, "Issues (%d):\n", len(issues))
		for _, issue := range issues {
			fmt.Fprintf(&sb, "- %s\n", issue)
		}
	}

	return &Output{Data: data, Content: []protocol.ContentBlock{textBlock(sb.String())}, Commands: s.commands}, nil
}
