package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lvp_gamemode",
	Short: "Vehicle gamemode runtime and journal tools",
	Long: `lvp_gamemode is loaded by the game server as a plugin. Run standalone it can drive a
session against the in-memory host and inspect journal dumps.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of lvp_gamemode",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "lvp_gamemode version %s (built %s)\n", CurrentVersion, BuildDate)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", ".", "Directory containing lvp_gamemode.cfg.json")
	rootCmd.AddCommand(versionCmd)
}
