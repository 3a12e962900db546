package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/adhocore/gronx"
	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/aosgate/internal/auditlog"
	"github.com/nextlevelbuilder/aosgate/internal/config"
	"github.com/nextlevelbuilder/aosgate/internal/policy"
	"github.com/nextlevelbuilder/aosgate/internal/zonecreds"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check system environment and configuration health",
		Run: func(cmd *cobra.Command, args []string) {
			runDoctor()
		},
	}
}

func runDoctor() {
	fmt.Println("aosgate doctor")
	fmt.Printf("  Version:  %s\n", Version)
	fmt.Printf("  OS:       %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  Go:       %s\n", runtime.Version())
	fmt.Println()

	cfgPath := resolveConfigPath()
	fmt.Printf("  Config:   %s", cfgPath)
	if _, err := os.Stat(cfgPath); err != nil {
		fmt.Println(" (NOT FOUND — defaults in effect)")
	} else {
		fmt.Println(" (OK)")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  Config load error: %s\n", err)
		return
	}

	fmt.Println()
	fmt.Println("  Command policy:")
	if _, err := policy.Compile(cfg.Policy); err != nil {
		fmt.Printf("    %-12s COMPILE FAILED (%s)\n", "Status:", err)
	} else {
		fmt.Printf("    %-12s OK (%d allow, %d deny, %d redaction rules)\n",
			"Status:", len(cfg.Policy.AllowRegex), len(cfg.Policy.DenyRegex), len(cfg.Policy.Redactions))
	}

	fmt.Println()
	fmt.Println("  Credentials:")
	if _, ok := zonecreds.Fallback(); ok {
		fmt.Printf("    %-12s set\n", "Fallback:")
	} else {
		fmt.Printf("    %-12s NOT SET (AOS_DEVICE_USERNAME / AOS_DEVICE_PASSWORD)\n", "Fallback:")
	}
	if cfg.ZoneAuth.Enabled() {
		fmt.Printf("    %-12s %d zone(s)%s\n", "Zone auth:", len(cfg.ZoneAuth.Zones),
			map[bool]string{true: " + global", false: ""}[cfg.ZoneAuth.Global != nil])
	} else {
		fmt.Printf("    %-12s not configured\n", "Zone auth:")
	}

	fmt.Println()
	fmt.Println("  SSH:")
	fmt.Printf("    %-12s %v\n", "Strict keys:", cfg.SSH.StrictHostKeyChecking)
	if cfg.SSH.StrictHostKeyChecking {
		kh := config.ExpandHome(cfg.SSH.KnownHostsFile)
		if kh == "" {
			kh = config.ExpandHome("~/.ssh/known_hosts")
		}
		if _, err := os.Stat(kh); err != nil {
			fmt.Printf("    %-12s %s (NOT FOUND)\n", "Known hosts:", kh)
		} else {
			fmt.Printf("    %-12s %s (OK)\n", "Known hosts:", kh)
		}
	}

	fmt.Println()
	fmt.Println("  Inventory:")
	fmt.Printf("    %-12s %d device(s), %d jump host(s)\n", "Static:",
		len(cfg.Inventory.Devices), len(cfg.Inventory.JumpHosts))

	if cfg.AuditLog.Path != "" {
		fmt.Println()
		fmt.Println("  Audit log:")
		store, err := auditlog.Open(config.ExpandHome(cfg.AuditLog.Path), nil)
		if err != nil {
			fmt.Printf("    %-12s OPEN FAILED (%s)\n", "Status:", err)
		} else {
			store.Close()
			fmt.Printf("    %-12s %s (OK)\n", "Status:", cfg.AuditLog.Path)
		}
	}

	if cfg.Backup.Schedule != "" {
		fmt.Println()
		fmt.Println("  Backups:")
		if gronx.New().IsValid(cfg.Backup.Schedule) {
			fmt.Printf("    %-12s %q → %s (keep %d)\n", "Schedule:", cfg.Backup.Schedule, cfg.Backup.Dir, cfg.Backup.Keep)
		} else {
			fmt.Printf("    %-12s %q INVALID CRON EXPRESSION\n", "Schedule:", cfg.Backup.Schedule)
		}
	}

	fmt.Println()
	fmt.Println("  Server:")
	fmt.Printf("    %-12s %s:%d\n", "Listen:", cfg.Server.Host, cfg.Server.Port)
	if cfg.Server.Token != "" {
		fmt.Printf("    %-12s set (from AOSGATE_TOKEN)\n", "Token:")
	} else {
		fmt.Printf("    %-12s NOT SET — endpoints are unauthenticated\n", "Token:")
	}
	if len(cfg.Server.AllowedCIDRs) > 0 {
		fmt.Printf("    %-12s %v\n", "CIDRs:", cfg.Server.AllowedCIDRs)
	}
}
