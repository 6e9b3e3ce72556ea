package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spoolworks/spindle"
	"github.com/spoolworks/spindle/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph <storyworld>",
	Short: "Render a storyworld's narrative topology as Mermaid",
	Long: `Prints a Mermaid flowchart of the storyworld: spools as subgraphs,
encounters as nodes, choices as labeled edges. Paste the output into any
Mermaid renderer to review the narrative design.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sw, err := spindle.LoadStoryworld(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(graph.GenerateMermaid(sw, nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
