package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/aosgate/internal/auditlog"
	"github.com/nextlevelbuilder/aosgate/internal/config"
	"github.com/nextlevelbuilder/aosgate/internal/gateway"
	"github.com/nextlevelbuilder/aosgate/internal/inventory"
	"github.com/nextlevelbuilder/aosgate/internal/policy"
	"github.com/nextlevelbuilder/aosgate/internal/scheduler"
	"github.com/nextlevelbuilder/aosgate/internal/sshx"
	"github.com/nextlevelbuilder/aosgate/internal/tools"
	"github.com/nextlevelbuilder/aosgate/internal/tracing"
	"github.com/nextlevelbuilder/aosgate/internal/zonecreds"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the gateway server",
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
	}
}

func setupLogging() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
}

func runServe() {
	setupLogging()
	log := slog.Default()

	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Error("failed to load config", "path", cfgPath, "error", err)
		os.Exit(1)
	}

	compiled, err := policy.Compile(cfg.Policy)
	if err != nil {
		log.Error("failed to compile command policy", "error", err)
		os.Exit(1)
	}
	policyStore := policy.NewStore(compiled)

	resolver := zonecreds.NewResolver(cfg.ZoneAuth)
	runner, err := sshx.NewExecutor(cfg.SSH, cfg.Inventory, resolver)
	if err != nil {
		log.Error("failed to build SSH executor", "error", err)
		os.Exit(1)
	}

	svc := &tools.Service{
		Config:    cfg,
		Policy:    policyStore,
		Resolver:  resolver,
		Runner:    runner,
		Inventory: inventory.Build(cfg.Inventory),
		Registry:  tools.NewCatalog(),
		Logger:    log,
	}

	var auditStore *auditlog.Store
	if cfg.AuditLog.Path != "" {
		auditStore, err = auditlog.Open(config.ExpandHome(cfg.AuditLog.Path), log)
		if err != nil {
			log.Error("failed to open audit log", "path", cfg.AuditLog.Path, "error", err)
			os.Exit(1)
		}
		defer auditStore.Close()
		svc.Audit = auditStore
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Telemetry)
	if err != nil {
		log.Error("failed to set up telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	backups, err := scheduler.New(cfg.Backup, svc, log)
	if err != nil {
		log.Error("invalid backup config", "error", err)
		os.Exit(1)
	}
	if backups != nil {
		go backups.Run(ctx)
	}

	// Hot-reload covers only the command policy: regex lists swap in place
	// while the listener, SSH settings and inventory keep their boot values.
	go func() {
		err := config.Watch(ctx, cfgPath, log, func(next *config.Config) {
			fresh, err := policy.Compile(next.Policy)
			if err != nil {
				log.Error("config.policy_recompile_failed", "error", err)
				return
			}
			policyStore.Swap(fresh)
			log.Info("config.policy_swapped")
		})
		if err != nil && ctx.Err() == nil {
			log.Warn("config.watch_stopped", "error", err)
		}
	}()

	srv, err := gateway.NewServer(cfg.Server, svc, auditStore, log)
	if err != nil {
		log.Error("failed to build gateway", "error", err)
		os.Exit(1)
	}
	if err := srv.Start(ctx); err != nil {
		log.Error("gateway exited", "error", err)
		os.Exit(1)
	}
}
