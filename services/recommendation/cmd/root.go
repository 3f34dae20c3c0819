package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "recommendation",
	Short: "Recommendation service",
	Long:  `Recommendation service owning the product recommendation collection`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
