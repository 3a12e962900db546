// Package scheduler runs periodic configuration backups: on each cron tick it
// fans out over the configured devices, captures `write terminal` through the
// regular tool dispatcher, and retains the newest N snapshots per device.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/adhocore/gronx"
	"golang.org/x/sync/errgroup"

	"github.com/nextlevelbuilder/aosgate/internal/config"
	"github.com/nextlevelbuilder/aosgate/internal/tools"
	"github.com/nextlevelbuilder/aosgate/pkg/protocol"
)

// maxParallelBackups bounds concurrent device sessions per tick.
const maxParallelBackups = 4

// Backups is the periodic configuration backup job.
type Backups struct {
	cfg config.BackupConfig
	svc *tools.Service
	log *slog.Logger
}

// New validates the cron expression and builds the job. A nil return with nil
// error means backups are disabled.
func New(cfg config.BackupConfig, svc *tools.Service, log *slog.Logger) (*Backups, error) {
	if cfg.Schedule == "" {
		return nil, nil
	}
	if !gronx.New().IsValid(cfg.Schedule) {
		return nil, fmt.Errorf("backup.schedule %q is not a valid cron expression", cfg.Schedule)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Backups{cfg: cfg, svc: svc, log: log}, nil
}

// Run blocks until ctx is cancelled, firing a backup round on each tick.
func (b *Backups) Run(ctx context.Context) error {
	b.log.Info("backup.scheduler_started", "schedule", b.cfg.Schedule, "dir", b.cfg.Dir)

	for {
		next, err := gronx.NextTick(b.cfg.Schedule, false)
		if err != nil {
			return fmt.Errorf("compute next backup tick: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(next)):
		}

		b.RunOnce(ctx)
	}
}

// RunOnce backs up every target device, in parallel up to the limit. Per-device
// failures are logged; the round never aborts early.
func (b *Backups) RunOnce(ctx context.Context) {
	devices := b.cfg.Devices
	if len(devices) == 0 && b.svc.Inventory != nil {
		devices = b.svc.Inventory.Devices()
	}
	if len(devices) == 0 {
		b.log.Warn("backup.no_devices")
		return
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelBackups)
	for _, device := range devices {
		g.Go(func() error {
			if err := b.backupDevice(ctx, device); err != nil {
				b.log.Error("backup.device_failed", "device", device, "error", err)
			}
			return nil
		})
	}
	g.Wait()
}

func (b *Backups) backupDevice(ctx context.Context, device string) error {
	result := b.svc.Dispatch(ctx, &protocol.ToolCallRequest{
		Context: &protocol.RequestContext{Subject: "backup-scheduler"},
		Tool:    "aos.config.backup",
		Args:    map[string]any{"host": device},
	})
	if result.Status != "ok" {
		return fmt.Errorf("%s: %s", result.Error.Code, result.Error.Message)
	}

	text, _ := result.Data["config"].(string)
	if text == "" {
		return fmt.Errorf("empty configuration returned")
	}

	dir := filepath.Join(b.cfg.Dir, device)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name := time.Now().UTC().Format("20060102T150405Z") + ".cfg"
	if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o600); err != nil {
		return err
	}

	b.log.Info("backup.saved", "device", device, "file", name, "bytes", len(text))
	return Prune(dir, b.cfg.Keep)
}

// Prune removes the oldest .cfg snapshots beyond keep. Timestamped names sort
// chronologically, so lexical order is age order.
func Prune(dir string, keep int) error {
	if keep <= 0 {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var snapshots []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".cfg" {
			snapshots = append(snapshots, e.Name())
		}
	}
	if len(snapshots) <= keep {
		return nil
	}

	sort.Strings(snapshots)
	for _, name := range snapshots[:len(snapshots)-keep] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}
