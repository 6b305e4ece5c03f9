package main

import (
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:          "sd2dump",
		Short:        "sd2dump",
		SilenceUsage: true,
		Long:         `CLI tool for inspecting SD2 configuration documents: dumps the document event stream or validates a document against the built-in temporal constructor registry.`,
	}

	strict bool
)

// Execute executes the root command.
func Execute() error {
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "dump: abort on the first error instead of recovering and reporting every error (validate always recovers)")
	return rootCmd.Execute()
}
