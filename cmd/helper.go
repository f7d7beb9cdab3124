package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/blockhost/vmlease/registry"
	"github.com/blockhost/vmlease/types"
)

// initRegistry opens the registry selected by --mock. Every subcommand goes
// through this so none of them ever touch the storage mechanism directly.
func initRegistry(ctx context.Context) (registry.Registry, error) {
	if useMock {
		reg, err := registry.OpenMock(conf)
		if err != nil {
			return nil, fmt.Errorf("init mock registry: %w", err)
		}
		return reg, nil
	}
	reg, err := registry.Open(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("init registry: %w", err)
	}
	return reg, nil
}

// graceDays resolves the --grace-days flag, falling back to the configured
// default when the flag was not set.
func graceDays(cmd *cobra.Command) int {
	days, _ := cmd.Flags().GetInt("grace-days")
	if days < 0 {
		return conf.GraceDays
	}
	return days
}

// formatExpiry renders how far a record is from its expiry, for list and GC
// output.
func formatExpiry(rec *types.VMRecord, now time.Time) string {
	delta := now.Sub(rec.ExpiresAt)
	days := int(delta.Hours() / 24)
	switch {
	case delta < 0:
		return fmt.Sprintf("expires in %d days", -days)
	case days == 0:
		return fmt.Sprintf("expired %d hours ago", int(delta.Hours()))
	case days == 1:
		return "expired 1 day ago"
	default:
		return fmt.Sprintf("expired %d days ago", days)
	}
}
