package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/projecteru2/core/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/blockhost/vmlease/types"
)

// gcWorkers bounds the fan-out against the virtualization tooling; the
// registry itself serializes through the store lock regardless.
const gcWorkers = 4

var gcCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Suspend expired VMs and destroy those past the grace period",
		Long: `Two-phase garbage collection: active VMs past expiry are suspended,
suspended VMs past expiry plus the grace period are destroyed. Dry run by
default; pass --execute to apply. --single-phase collapses both phases into
immediate destruction of expired VMs (legacy behavior).`,
		RunE: runGC,
	}
	cmd.Flags().Bool("execute", false, "apply changes (default is dry run)")
	cmd.Flags().Bool("single-phase", false, "destroy expired VMs directly, skipping suspension")
	return cmd
}()

func runGC(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	execute, _ := cmd.Flags().GetBool("execute")
	singlePhase, _ := cmd.Flags().GetBool("single-phase")
	grace := graceDays(cmd)

	reg, err := initRegistry(ctx)
	if err != nil {
		return err
	}

	logger := log.WithFunc("cmd.gc")
	mode := "DRY RUN"
	if execute {
		mode = "EXECUTE"
	}
	logger.Infof(ctx, "garbage collection (%s, grace %d days)", mode, grace)

	if singlePhase {
		expired, err := reg.ExpiredVMs(ctx, grace)
		if err != nil {
			return err
		}
		return processBatch(ctx, expired, "destroy", execute, func(name string) error {
			return reg.MarkDestroyed(ctx, name)
		})
	}

	toSuspend, err := reg.VMsToSuspend(ctx, grace)
	if err != nil {
		return err
	}
	toDestroy, err := reg.VMsToDestroy(ctx, grace)
	if err != nil {
		return err
	}
	if len(toSuspend) == 0 && len(toDestroy) == 0 {
		logger.Infof(ctx, "nothing to collect")
		return nil
	}

	if err := processBatch(ctx, toSuspend, "suspend", execute, func(name string) error {
		return reg.MarkSuspended(ctx, name)
	}); err != nil {
		return err
	}
	return processBatch(ctx, toDestroy, "destroy", execute, func(name string) error {
		return reg.MarkDestroyed(ctx, name)
	})
}

// processBatch applies op to every record, best-effort: each failure is
// logged, the rest of the batch still runs, and the first failure is
// reported once the batch completes. The external suspend or destroy action
// (qm / infra-as-code CLI) happens at this seam, outside the registry.
func processBatch(ctx context.Context, vms []*types.VMRecord, op string, execute bool, apply func(name string) error) error {
	logger := log.WithFunc("cmd.gc." + op)
	now := time.Now().UTC()

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(gcWorkers)
	for _, vm := range vms {
		logger.Infof(ctx, "%s %s (VMID %d, owner %s, %s)", op, vm.Name, vm.VMID, vm.Owner, formatExpiry(vm, now))
		if !execute {
			logger.Infof(ctx, "[DRY RUN] would %s %s", op, vm.Name)
			continue
		}
		eg.Go(func() error {
			if err := apply(vm.Name); err != nil {
				logger.Warnf(ctx, "%s %s: %v", op, vm.Name, err)
				return fmt.Errorf("%s %s: %w", op, vm.Name, err)
			}
			logger.Infof(ctx, "%s %s done", op, vm.Name)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("gc %s: %w", op, err)
	}
	return nil
}
