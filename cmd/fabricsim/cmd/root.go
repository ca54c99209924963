// Package cmd provides the command-line interface for fabricsim.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "fabricsim",
	Short: "Fabricsim simulates credit-based network-on-chip fabrics " +
		"cycle by cycle.",
	Long: `Fabricsim simulates credit-based network-on-chip fabrics cycle ` +
		`by cycle. It builds a fabric of source interfaces, links, routers, ` +
		`and sink interfaces, injects synthetic traffic, and reports what ` +
		`each sink observed.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A .env file can preset FABRICSIM_* variables; a missing file is
		// fine.
		_ = godotenv.Load()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
