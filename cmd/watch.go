package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/projecteru2/core/log"
	"github.com/spf13/cobra"

	"github.com/blockhost/vmlease/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow registry commits and log status counts as they change",
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg, err := initRegistry(ctx)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("init watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(conf.DBFile); err != nil {
		return fmt.Errorf("watch %s: %w", conf.DBFile, err)
	}

	logger := log.WithFunc("cmd.watch")
	report := func() error {
		counts := map[types.VMStatus]int{}
		vms, err := reg.ListVMs(ctx, "")
		if err != nil {
			return err
		}
		for _, vm := range vms {
			counts[vm.Status]++
		}
		logger.Infof(ctx, "%d VMs (%d active, %d suspended, %d destroyed)",
			len(vms), counts[types.VMStatusActive], counts[types.VMStatusSuspended], counts[types.VMStatusDestroyed])
		return nil
	}
	if err := report(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// The store commits via rename, which some platforms surface as
			// Create rather than Write. Re-arm the watch after replacement.
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				_ = watcher.Add(conf.DBFile)
				if err := report(); err != nil {
					logger.Warnf(ctx, "reload registry: %v", err)
				}
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnf(ctx, "watcher: %v", werr)
		}
	}
}
