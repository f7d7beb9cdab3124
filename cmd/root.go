package cmd

import (
	"context"
	"fmt"

	"github.com/projecteru2/core/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blockhost/vmlease/config"
)

var (
	cfgFile string
	useMock bool
	conf    *config.Config
)

var rootCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vmlease",
		Short: "vmlease - leased VM resource & lifecycle registry",
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initConfig()
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	cmd.PersistentFlags().BoolVar(&useMock, "mock", false, "use the in-memory registry (testing only)")
	cmd.PersistentFlags().String("db-file", "", "registry snapshot file")
	cmd.PersistentFlags().Int("grace-days", -1, "grace period in days after expiry")

	_ = viper.BindPFlag("db_file", cmd.PersistentFlags().Lookup("db-file"))

	viper.SetEnvPrefix("VMLEASE")
	viper.AutomaticEnv()

	cmd.AddCommand(
		provisionCmd,
		gcCmd,
		resumeCmd,
		listCmd,
		inspectCmd,
		extendCmd,
		tokenCmd,
		watchCmd,
		versionCmd,
	)

	return cmd
}()

func initConfig() error {
	conf = config.DefaultConfig()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath("/etc/vmlease")
		viper.AddConfigPath(".")
	}
	_ = viper.ReadInConfig() // optional; missing file is OK

	if err := viper.Unmarshal(conf); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return log.SetupLog(context.Background(), &conf.Log, "")
}

// Execute is the main entry point called from main.go.
func Execute() error {
	return rootCmd.Execute()
}
