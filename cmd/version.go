package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blockhost/vmlease/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Print(version.String())
	},
}
