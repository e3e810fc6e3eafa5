package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rose-hq/rosegate/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load and validate the configuration file, including environment variable
overrides, without starting the server. Exits non-zero when the configuration
is invalid, listing every offending field.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
		if err != nil {
			return err
		}
		fmt.Printf("configuration valid: listening on %s, upstream %s\n",
			cfg.Server.ListenAddress, cfg.Upstream.Address)
		if cfg.Static.Root != "" {
			fmt.Printf("static root: %s (mount %s)\n", cfg.Static.Root, cfg.Static.MountPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
