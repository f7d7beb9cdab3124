package cmd

import (
	"fmt"

	"github.com/projecteru2/core/log"
	"github.com/spf13/cobra"
)

var extendCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extend NAME",
		Short: "Extend a lease by adding days to its current expiry",
		Args:  cobra.ExactArgs(1),
		RunE:  runExtend,
	}
	cmd.Flags().Int("days", 0, "days to add to the current expiry")
	_ = cmd.MarkFlagRequired("days")
	return cmd
}()

func runExtend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	name := args[0]
	days, _ := cmd.Flags().GetInt("days")

	reg, err := initRegistry(ctx)
	if err != nil {
		return err
	}
	if err := reg.ExtendExpiry(ctx, name, days); err != nil {
		return fmt.Errorf("extend %s: %w", name, err)
	}
	log.WithFunc("cmd.extend").Infof(ctx, "extended %s by %d days", name, days)
	return nil
}
