package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "rosegate",
	Short: "Rosegate - static asset gateway and reverse proxy",
	Long: `Rosegate is a reverse proxy that fronts a single backend with a static
asset gateway.

Requests whose paths resolve to files under the configured static root are
served directly from disk, with manifest-driven resolution of content-hashed
filenames, conditional request handling, and cache-control policy. Everything
else is forwarded to the upstream over plain HTTP.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
}
