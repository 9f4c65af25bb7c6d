package cli

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/hearth/internal/wire"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the trigger scheduler in the foreground",
	Long: `Run the trigger scheduler in the foreground.

Registers the trigger of every enabled routine (timers, state pollers,
vision pollers) and blocks until SIGINT or SIGTERM. Event, user_action,
and completion triggers stay externally driven and do not poll.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := authorContext()
		scheduler := wire.TriggerScheduler()

		routines, err := wire.RoutineService().GetRoutines(ctx, true)
		if err != nil {
			return fmt.Errorf("failed to load routines: %w", err)
		}
		for _, r := range routines {
			scheduler.Register(r)
		}
		fmt.Printf("hearth serving %d routine(s), %d trigger(s) armed\n",
			len(routines), scheduler.Count())

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		s := <-sig
		log.Printf("received %s, shutting down", s)

		scheduler.Shutdown()
		return nil
	},
}

// ServeCmd returns the serve command.
func ServeCmd() *cobra.Command {
	return serveCmd
}
