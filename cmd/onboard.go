package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/adhocore/gronx"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/aosgate/internal/config"
)

func onboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "onboard",
		Short: "Interactive setup wizard: writes a starter config file",
		Run: func(cmd *cobra.Command, args []string) {
			if err := runOnboard(); err != nil {
				fmt.Fprintln(os.Stderr, "onboard failed:", err)
				os.Exit(1)
			}
		},
	}
}

func runOnboard() error {
	cfgPath := resolveConfigPath()
	if _, err := os.Stat(cfgPath); err == nil {
		var overwrite bool
		confirm := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("%s already exists. Overwrite?", cfgPath)).
				Value(&overwrite),
		))
		if err := confirm.Run(); err != nil {
			return err
		}
		if !overwrite {
			fmt.Println("Keeping the existing config.")
			return nil
		}
	}

	cfg := config.Default()
	host := cfg.Server.Host
	port := strconv.Itoa(cfg.Server.Port)
	requireContext := cfg.Server.RequireContext
	strictKeys := cfg.SSH.StrictHostKeyChecking
	auditPath := "aosgate-audit.db"
	backupSchedule := ""
	backupDir := "backups"

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Listen address").
				Description("Interface the gateway binds to.").
				Value(&host),
			huh.NewInput().
				Title("Listen port").
				Value(&port).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n <= 0 || n > 65535 {
						return fmt.Errorf("port must be 1-65535")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Require a caller subject on every tool call?").
				Value(&requireContext),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Strict SSH host key checking?").
				Description("Unknown device keys are rejected instead of learned.").
				Value(&strictKeys),
			huh.NewInput().
				Title("Audit log path").
				Description("SQLite file recording every tool call. Empty disables.").
				Value(&auditPath),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Backup schedule (cron)").
				Description("e.g. \"0 3 * * *\" for nightly. Empty disables backups.").
				Value(&backupSchedule).
				Validate(func(s string) error {
					if s != "" && !gronx.New().IsValid(s) {
						return fmt.Errorf("not a valid cron expression")
					}
					return nil
				}),
			huh.NewInput().
				Title("Backup directory").
				Value(&backupDir),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	cfg.Server.Host = host
	cfg.Server.Port, _ = strconv.Atoi(port)
	cfg.Server.RequireContext = requireContext
	cfg.SSH.StrictHostKeyChecking = strictKeys
	cfg.AuditLog.Path = auditPath
	cfg.Backup.Schedule = backupSchedule
	if backupSchedule != "" {
		cfg.Backup.Dir = backupDir
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("Wrote %s\n", cfgPath)
	fmt.Println()
	fmt.Println("Device credentials are read from the environment, never the file:")
	fmt.Println("  export AOS_DEVICE_USERNAME=admin")
	fmt.Println("  export AOS_DEVICE_PASSWORD=...")
	fmt.Println()
	fmt.Println("Optionally protect the API with a bearer token:")
	fmt.Println("  export AOSGATE_TOKEN=...")
	fmt.Println()
	fmt.Println("Then start the gateway:  aosgate serve")
	return nil
}
