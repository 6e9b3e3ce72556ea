package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spoolworks/spindle"
	"github.com/spoolworks/spindle/pkg/schema"
)

var validateCmd = &cobra.Command{
	Use:   "validate <storyworld>",
	Short: "Check a storyworld definition for structural problems",
	Long: `Loads a storyworld document (JSON or YAML) and reports duplicate ids,
dangling gate/variable/encounter/spool references, and malformed gate
conditions. A storyworld that validates here never hits the engine's
runtime gate errors.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(args[0]); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Storyworld is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(path string) error {
	sw, err := spindle.LoadStoryworld(path)
	if err != nil {
		if failures := schema.ValidationErrors(err); failures != nil {
			for _, f := range failures {
				fmt.Printf("  - %v\n", f)
			}
			return fmt.Errorf("%d problems found", len(failures))
		}
		return err
	}

	fmt.Printf("storyworld: %s (%s)\n", sw.Name, sw.ID)
	fmt.Printf("  variables: %d, gates: %d, spools: %d, encounters: %d\n",
		len(sw.Variables), len(sw.Gates), len(sw.Spools), len(sw.Encounters))
	return nil
}
