package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/hearth/internal/cli"
	"github.com/example/hearth/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "hearth",
		Short:   "Hearth - home routine automation",
		Version: version.String(),
		Long: `Hearth runs persistent automation routines: if a trigger fires and the
conditions hold, the actions run. Triggers cover schedules, entity state
changes, camera object detection, named events, user actions, and task
completions.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.DoctorCmd())
	rootCmd.AddCommand(cli.RoutineCmd())
	rootCmd.AddCommand(cli.EventCmd())
	rootCmd.AddCommand(cli.ActionCmd())
	rootCmd.AddCommand(cli.CompleteCmd())
	rootCmd.AddCommand(cli.ServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
