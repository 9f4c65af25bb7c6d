package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/hearth/internal/wire"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Fire events at event-triggered routines",
}

var eventFireCmd = &cobra.Command{
	Use:   "fire [event-name]",
	Short: "Fire a named event",
	Long: `Fire a named event. Every enabled routine whose event trigger matches
the name is executed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		executions, err := wire.RoutineService().FireEvent(authorContext(), args[0])
		if err != nil {
			return err
		}
		wire.RoutineAdapter().Fired(executions)
		return nil
	},
}

var actionCmd = &cobra.Command{
	Use:   "action [action-type]",
	Short: "Dispatch a user action",
	Long: `Dispatch a user action. Every enabled routine whose user_action
trigger matches the action type is executed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		executions, err := wire.RoutineService().DispatchUserAction(authorContext(), args[0])
		if err != nil {
			return err
		}
		wire.RoutineAdapter().Fired(executions)
		return nil
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete [task-description]",
	Short: "Report a finished task",
	Long: `Report a finished task. Every enabled routine whose completion
trigger pattern matches the description is executed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		executions, err := wire.RoutineService().NotifyCompletion(authorContext(), args[0])
		if err != nil {
			return err
		}
		wire.RoutineAdapter().Fired(executions)
		return nil
	},
}

func init() {
	eventCmd.AddCommand(eventFireCmd)
}

// EventCmd returns the event command tree.
func EventCmd() *cobra.Command {
	return eventCmd
}

// ActionCmd returns the user-action dispatch command.
func ActionCmd() *cobra.Command {
	return actionCmd
}

// CompleteCmd returns the task-completion command.
func CompleteCmd() *cobra.Command {
	return completeCmd
}
