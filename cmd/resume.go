package cmd

import (
	"fmt"
	"time"

	"github.com/projecteru2/core/log"
	"github.com/spf13/cobra"

	"github.com/blockhost/vmlease/types"
)

var resumeCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume [flags] NAME",
		Short: "Restore a suspended VM to active with a fresh expiry",
		Long: `Called when a lapsed subscription is extended: the VM must currently
be suspended. The guest start itself (qm start) is handled by external
tooling; this records the lease state change.`,
		Args: cobra.ExactArgs(1),
		RunE: runResume,
	}
	cmd.Flags().Int("extend-days", -1, "new lease length in days (default from config)")
	return cmd
}()

func runResume(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	name := args[0]
	days, _ := cmd.Flags().GetInt("extend-days")
	if days < 0 {
		days = conf.DefaultExpiryDays
	}

	reg, err := initRegistry(ctx)
	if err != nil {
		return err
	}

	vm, err := reg.GetVM(ctx, name)
	if err != nil {
		return err
	}
	if vm == nil {
		return fmt.Errorf("VM %q not found", name)
	}
	if vm.Status != types.VMStatusSuspended {
		return fmt.Errorf("VM %q is %s, only suspended VMs can be resumed", name, vm.Status)
	}

	newExpiry := time.Now().UTC().Add(time.Duration(days) * 24 * time.Hour)
	if err := reg.MarkActive(ctx, name, newExpiry); err != nil {
		return fmt.Errorf("resume %s: %w", name, err)
	}
	log.WithFunc("cmd.resume").Infof(ctx, "resumed %s (VMID %d), new expiry %s", name, vm.VMID, newExpiry.Format(time.RFC3339))
	return nil
}
