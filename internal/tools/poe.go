package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nextlevelbuilder/aosgate/internal/aosparse"
	"github.com/nextlevelbuilder/aosgate/pkg/protocol"
)

// diagPoE implements aos.diag.poe: per-port PoE state plus the chassis power
// summary for one slot.
func diagPoE(ctx context.Context, svc *Service, args map[string]any) (*Output, error) {
	if err := checkKeys(args, "host", "port", "slot"); err != nil {
		return nil, err
	}
	host, port, err := hostArgs(args)
	if err != nil {
		return nil, err
	}
	slot, err := optionalInt(args, "slot", 1)
	if err != nil {
		return nil, err
	}
	if slot < 1 {
		return nil, invalidRequest("argument \"slot\" must be >= 1")
	}

	s := svc.newSession(host, port)
	res, runErr := s.run(ctx, fmt.Sprintf("show lanpower slot %d/1", slot), s.commandTimeout())
	if runErr != nil {
		return nil, runErr
	}

	info := aosparse.ParseLanpower(res.Stdout)

	poweredOn := 0
	for _, p := range info.Ports {
		if p.AdminState == "ON" {
			poweredOn++
		}
	}

	data := map[string]any{
		"host":              s.device.Host,
		"slot":              slot,
		"ports":             info.Ports,
		"chassis_summary":   info.ChassisSummary,
		"duration_ms":       s.durationMS(),
		"commands_executed": s.commands,
	}

	text := fmt.Sprintf(
		"**PoE status: %s slot %d**\n\nPorts: %d (%d powered on)\nBudget: %dW total, %dW consumed, %dW remaining",
		s.device.Host, slot, len(info.Ports), poweredOn,
		info.ChassisSummary.TotalPowerBudgetWatts,
		info.ChassisSummary.ActualPowerConsumedWatts,
		info.ChassisSummary.PowerBudgetRemainingW,
	)

	return &Output{Data: data, Content: []protocol.ContentBlock{textBlock(text)}, Commands: s.commands}, nil
}

// poeRestart implements aos.poe.restart, the only write tool: disable inline
// power on one port, wait, then re-enable it.
func poeRestart(ctx context.Context, svc *Service, args map[string]any) (*Output, error) {
	if err := checkKeys(args, "host", "port", "port_id", "wait_seconds"); err != nil {
		return nil, err
	}
	host, port, err := hostArgs(args)
	if err != nil {
		return nil, err
	}
	portID, err := requirePortID(args, "port_id")
	if err != nil {
		return nil, err
	}
	wait, err := optionalInt(args, "wait_seconds", 5)
	if err != nil {
		return nil, err
	}
	if wait < 1 || wait > 60 {
		return nil, invalidRequest("argument \"wait_seconds\" must be between 1 and 60")
	}

	s := svc.newSession(host, port)
	timeout := s.commandTimeout()

	disable, runErr := s.run(ctx, fmt.Sprintf("lanpower port %s admin-state disable", portID), timeout)
	if runErr != nil {
		return nil, runErr
	}

	select {
	case <-time.After(time.Duration(wait) * time.Second):
	case <-ctx.Done():
		return nil, sshError(ctx.Err())
	}

	enable, runErr := s.run(ctx, fmt.Sprintf("lanpower port %s admin-state enable", portID), timeout)
	if runErr != nil {
		return nil, runErr
	}

	success := exitOK(disable.ExitStatus) && exitOK(enable.ExitStatus)

	data := map[string]any{
		"host":              s.device.Host,
		"port_id":           portID,
		"success":           success,
		"wait_seconds":      wait,
		"disable_output":    strings.TrimSpace(disable.Stdout),
		"enable_output":     strings.TrimSpace(enable.Stdout),
		"duration_ms":       s.durationMS(),
		"commands_executed": s.commands,
	}

	verdict := "completed"
	if !success {
		verdict = "completed with non-zero exit status"
	}
	text := fmt.Sprintf("**PoE restart %s on %s**\n\nPower cycled with a %ds pause; %s.", portID, s.device.Host, wait, verdict)

	return &Output{Data: data, Content: []protocol.ContentBlock{textBlock(text)}, Commands: s.commands}, nil
}

// exitOK treats a missing exit status as success: many AOS builds close the
// channel without reporting one.
func exitOK(status *int) bool {
	return status == nil || *status == 0
}
