package main

import (
	"github.com/spf13/cobra"

	"github.com/ventfang/parallel-ploter/build"
)

// configPath is the optional YAML file of flag defaults, shared by every
// subcommand.
var configPath string

var rootCmd = &cobra.Command{
	Use:           build.BinaryName,
	Short:         "Produce proof-of-capacity plot files across one or more drives.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML file of flag defaults; explicit flags still win")
	rootCmd.AddCommand(plotCmd, testCmd)
}
