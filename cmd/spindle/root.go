package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "spindle",
	Short: "Spindle runs multi-agent storyworld simulations",
	Long: `Spindle orchestrates AI or scripted agents through a branching narrative
(a "storyworld") while strictly isolating what each agent can observe.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}
