package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "product",
	Short: "Product service",
	Long:  `Product service owning the product collection`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
