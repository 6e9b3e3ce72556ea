package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spoolworks/spindle/internal/cli"
)

var runCmd = &cobra.Command{
	Use:   "run <storyworld>",
	Short: "Run a storyworld simulation",
	Long: `Loads a storyworld (JSON or YAML) and executes it to completion. By
default all agents explore with a seeded random decider; --interactive puts
a human on the first agent slot.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		agents, _ := cmd.Flags().GetStringSlice("agents")
		frames, _ := cmd.Flags().GetInt("frames")
		seed, _ := cmd.Flags().GetInt64("seed")
		interactive, _ := cmd.Flags().GetBool("interactive")
		trackDir, _ := cmd.Flags().GetString("track-dir")
		dbPath, _ := cmd.Flags().GetString("db")
		snapshotDir, _ := cmd.Flags().GetString("snapshot-dir")
		snapshotInterval, _ := cmd.Flags().GetInt("snapshot-interval")
		framesPerTurn, _ := cmd.Flags().GetInt("frames-per-turn")
		debug, _ := cmd.Flags().GetBool("debug")

		opts := cli.RunOptions{
			StoryworldPath:   args[0],
			Agents:           agents,
			Frames:           frames,
			Seed:             seed,
			Interactive:      interactive,
			Debug:            debug,
			TrackDir:         trackDir,
			DBPath:           dbPath,
			SnapshotDir:      snapshotDir,
			SnapshotInterval: snapshotInterval,
			FramesPerTurn:    framesPerTurn,
		}
		if err := cli.RunSimulation(opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSlice("agents", []string{"agent-1"}, "Agent ids, in declaration order")
	runCmd.Flags().Int("frames", 0, "Frame budget (0 = storyworld config)")
	runCmd.Flags().Int64("seed", 1, "Seed for the random decider")
	runCmd.Flags().BoolP("interactive", "i", false, "Drive the first agent from the terminal")
	runCmd.Flags().String("track-dir", "", "Record the run under this tracking directory")
	runCmd.Flags().String("db", "", "Persist events and outcomes to this sqlite database")
	runCmd.Flags().String("snapshot-dir", "", "Capture periodic world snapshots under this directory")
	runCmd.Flags().Int("snapshot-interval", 10, "Frames between snapshots (with --snapshot-dir)")
	runCmd.Flags().Int("frames-per-turn", 0, "Enable the turn/phase overlay with N frames per turn")
}
