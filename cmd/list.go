package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/blockhost/vmlease/types"
)

var listCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List registered VMs",
		RunE:    runList,
	}
	cmd.Flags().String("status", "", "filter by status (active, suspended, destroyed)")
	return cmd
}()

func runList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	statusStr, _ := cmd.Flags().GetString("status")
	status := types.VMStatus(statusStr)
	if statusStr != "" && !status.Valid() {
		return fmt.Errorf("unknown status %q", statusStr)
	}

	reg, err := initRegistry(ctx)
	if err != nil {
		return err
	}
	vms, err := reg.ListVMs(ctx, status)
	if err != nil {
		return err
	}
	if len(vms) == 0 {
		fmt.Println("No VMs found.")
		return nil
	}
	sort.Slice(vms, func(i, j int) bool { return vms[i].VMID < vms[j].VMID })

	now := time.Now().UTC()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tVMID\tIP\tSTATUS\tOWNER\tEXPIRY")
	for _, vm := range vms {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n",
			vm.Name, vm.VMID, vm.IPAddress, vm.Status, vm.Owner, formatExpiry(vm, now))
	}
	w.Flush() //nolint:errcheck,gosec
	return nil
}
