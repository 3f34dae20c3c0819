package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "composite",
	Short: "Composite service",
	Long:  `Composite service aggregating products, recommendations and reviews`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
