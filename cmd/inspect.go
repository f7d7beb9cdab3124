package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect NAME",
	Short: "Show the full lease record (JSON)",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	reg, err := initRegistry(ctx)
	if err != nil {
		return err
	}
	vm, err := reg.GetVM(ctx, args[0])
	if err != nil {
		return err
	}
	if vm == nil {
		return fmt.Errorf("VM %q not found", args[0])
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(vm)
}
