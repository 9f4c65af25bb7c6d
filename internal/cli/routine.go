package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/hearth/internal/ctxutil"
	"github.com/example/hearth/internal/ports/primary"
	"github.com/example/hearth/internal/wire"
)

var routineCmd = &cobra.Command{
	Use:   "routine",
	Short: "Manage automation routines",
	Long:  "Create, inspect, run, and delete automation routines (trigger + conditions + actions)",
}

// definitionFile mirrors CreateRoutineInput with JSON tags for --definition files.
type definitionFile struct {
	Name            string              `json:"name,omitempty"`
	Description     string              `json:"description,omitempty"`
	Trigger         *primary.Trigger    `json:"trigger,omitempty"`
	Conditions      []primary.Condition `json:"conditions,omitempty"`
	Actions         []primary.Action    `json:"actions,omitempty"`
	Tags            []string            `json:"tags,omitempty"`
	CreatedFromTask string              `json:"created_from_task,omitempty"`
	Enabled         *bool               `json:"enabled,omitempty"`
}

var (
	createDescription   string
	createDefinition    string
	createSchedule      string
	createEvent         string
	createEntity        string
	createProperty      string
	createVisionService string
	createObjects       []string
	createCamera        string
	createImageSource   string
	createMinConfidence float64
	createInterval      time.Duration
	createNotify        string
	createTags          []string
	createFromTask      string
)

var routineCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new routine",
	Long: `Create a new automation routine.

The trigger comes from exactly one of --schedule, --event, --entity, or
--vision. Simple notification routines can be built entirely from flags;
anything richer (conditions, connector calls) goes in a --definition file
holding the full JSON form.

Examples:
  hearth routine create "Morning Briefing" --description "Daily summary" \
      --schedule "every day" --notify "Good morning"
  hearth routine create "Door watch" --description "Announce the front door" \
      --entity binary_sensor.front_door --notify "Front door changed"
  hearth routine create "Package alert" --description "Watch the porch" \
      --vision frigate --objects package --camera porch --notify "Package detected"
  hearth routine create "Evening lights" --description "Lights on at dusk" \
      --definition evening-lights.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := primary.CreateRoutineInput{
			Name:            args[0],
			Description:     createDescription,
			Tags:            createTags,
			CreatedFromTask: createFromTask,
		}

		if createDefinition != "" {
			def, err := readDefinition(createDefinition)
			if err != nil {
				return err
			}
			if def.Name != "" {
				input.Name = def.Name
			}
			if def.Description != "" {
				input.Description = def.Description
			}
			if def.Trigger != nil {
				input.Trigger = *def.Trigger
			}
			input.Conditions = def.Conditions
			input.Actions = def.Actions
			if len(def.Tags) > 0 {
				input.Tags = def.Tags
			}
			if def.CreatedFromTask != "" {
				input.CreatedFromTask = def.CreatedFromTask
			}
		} else {
			trigger, err := triggerFromFlags()
			if err != nil {
				return err
			}
			input.Trigger = trigger
		}

		if createNotify != "" {
			input.Actions = append(input.Actions, primary.Action{
				Type:       primary.ActionNotification,
				Parameters: map[string]any{"message": createNotify},
			})
		}

		return wire.RoutineAdapter().Create(authorContext(), input)
	},
}

func triggerFromFlags() (primary.Trigger, error) {
	switch {
	case createSchedule != "":
		return primary.Trigger{Type: primary.TriggerTime, Schedule: createSchedule}, nil
	case createEvent != "":
		return primary.Trigger{Type: primary.TriggerEvent, EventName: createEvent}, nil
	case createEntity != "":
		return primary.Trigger{
			Type: primary.TriggerStateChange,
			Monitor: &primary.StateMonitor{
				Service:  "homeassistant",
				Entity:   createEntity,
				Property: createProperty,
			},
		}, nil
	case createVisionService != "":
		return primary.Trigger{
			Type:          primary.TriggerVision,
			Service:       createVisionService,
			ObjectTypes:   createObjects,
			MinConfidence: createMinConfidence,
			CheckInterval: createInterval,
			Camera:        createCamera,
			ImageSource:   createImageSource,
		}, nil
	default:
		return primary.Trigger{}, fmt.Errorf("a trigger is required: one of --schedule, --event, --entity, --vision, or --definition")
	}
}

var listEnabledOnly bool

var routineListCmd = &cobra.Command{
	Use:   "list",
	Short: "List routines",
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.RoutineAdapter().List(authorContext(), listEnabledOnly)
	},
}

var routineShowCmd = &cobra.Command{
	Use:   "show [routine-id]",
	Short: "Show routine details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.RoutineAdapter().Show(authorContext(), args[0])
	},
}

var (
	updateName        string
	updateDescription string
	updateDefinition  string
)

var routineUpdateCmd = &cobra.Command{
	Use:   "update [routine-id]",
	Short: "Update a routine",
	Long: `Update a routine. Only the provided fields change; a --definition
file may replace the trigger, conditions, actions, tags, or enabled flag.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var input primary.UpdateRoutineInput
		if updateName != "" {
			input.Name = &updateName
		}
		if updateDescription != "" {
			input.Description = &updateDescription
		}
		if updateDefinition != "" {
			def, err := readDefinition(updateDefinition)
			if err != nil {
				return err
			}
			if def.Name != "" {
				input.Name = &def.Name
			}
			if def.Description != "" {
				input.Description = &def.Description
			}
			input.Trigger = def.Trigger
			if def.Conditions != nil {
				input.Conditions = &def.Conditions
			}
			if def.Actions != nil {
				input.Actions = &def.Actions
			}
			if def.Tags != nil {
				input.Tags = &def.Tags
			}
			input.Enabled = def.Enabled
		}

		r, err := wire.RoutineService().UpdateRoutine(authorContext(), args[0], input)
		if err != nil {
			return fmt.Errorf("failed to update routine: %w", err)
		}
		fmt.Printf("✓ Updated routine %s: %s\n", r.ID, r.Name)
		return nil
	},
}

var routineDeleteCmd = &cobra.Command{
	Use:   "delete [routine-id]",
	Short: "Delete a routine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.RoutineAdapter().Delete(authorContext(), args[0])
	},
}

var routineToggleCmd = &cobra.Command{
	Use:   "toggle [routine-id]",
	Short: "Enable or disable a routine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.RoutineAdapter().Toggle(authorContext(), args[0])
	},
}

var routineRunCmd = &cobra.Command{
	Use:   "run [routine-id]",
	Short: "Execute a routine now",
	Long: `Execute a routine immediately, bypassing its conditions.

This is a force run: conditions gate automatic (triggered) executions
only.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.RoutineAdapter().Run(authorContext(), args[0])
	},
}

var historyLimit int

var routineHistoryCmd = &cobra.Command{
	Use:   "history [routine-id]",
	Short: "Show recent executions of a routine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.RoutineAdapter().History(authorContext(), args[0], historyLimit)
	},
}

func readDefinition(path string) (*definitionFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}
	var def definitionFile
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse definition: %w", err)
	}
	if def.Trigger != nil && def.Trigger.Type == "" {
		return nil, fmt.Errorf("definition trigger needs a type")
	}
	return &def, nil
}

// authorContext returns a context carrying the configured author so store
// writes are attributed.
func authorContext() context.Context {
	return ctxutil.WithAuthor(context.Background(), wire.Author())
}

func init() {
	routineCreateCmd.Flags().StringVarP(&createDescription, "description", "d", "", "routine description (required unless the definition carries one)")
	routineCreateCmd.Flags().StringVar(&createDefinition, "definition", "", "JSON file with the full routine definition")
	routineCreateCmd.Flags().StringVar(&createSchedule, "schedule", "", `time trigger schedule, e.g. "every day" or "every 15 minutes"`)
	routineCreateCmd.Flags().StringVar(&createEvent, "event", "", "event trigger name")
	routineCreateCmd.Flags().StringVar(&createEntity, "entity", "", "state trigger entity, e.g. binary_sensor.front_door")
	routineCreateCmd.Flags().StringVar(&createProperty, "property", "", "state trigger attribute (instead of the state value)")
	routineCreateCmd.Flags().StringVar(&createVisionService, "vision", "", "vision trigger service: local, frigate, codeprojectai, yolo")
	routineCreateCmd.Flags().StringSliceVar(&createObjects, "objects", nil, "vision trigger object types")
	routineCreateCmd.Flags().StringVar(&createCamera, "camera", "", "vision trigger camera name")
	routineCreateCmd.Flags().StringVar(&createImageSource, "image-source", "", "vision trigger image source path")
	routineCreateCmd.Flags().Float64Var(&createMinConfidence, "min-confidence", 0, "vision trigger confidence floor (default 0.5)")
	routineCreateCmd.Flags().DurationVar(&createInterval, "check-interval", 0, "vision trigger poll interval (default 10s)")
	routineCreateCmd.Flags().StringVar(&createNotify, "notify", "", "append a notification action with this message")
	routineCreateCmd.Flags().StringSliceVar(&createTags, "tags", nil, "tags")
	routineCreateCmd.Flags().StringVar(&createFromTask, "from-task", "", "task this routine was created from")

	routineListCmd.Flags().BoolVar(&listEnabledOnly, "enabled", false, "only enabled routines")

	routineUpdateCmd.Flags().StringVar(&updateName, "name", "", "new name")
	routineUpdateCmd.Flags().StringVar(&updateDescription, "description", "", "new description")
	routineUpdateCmd.Flags().StringVar(&updateDefinition, "definition", "", "JSON file with replacement fields")

	routineHistoryCmd.Flags().IntVar(&historyLimit, "limit", 20, "max entries")

	routineCmd.AddCommand(routineCreateCmd)
	routineCmd.AddCommand(routineListCmd)
	routineCmd.AddCommand(routineShowCmd)
	routineCmd.AddCommand(routineUpdateCmd)
	routineCmd.AddCommand(routineDeleteCmd)
	routineCmd.AddCommand(routineToggleCmd)
	routineCmd.AddCommand(routineRunCmd)
	routineCmd.AddCommand(routineHistoryCmd)
}

// RoutineCmd returns the routine command tree.
func RoutineCmd() *cobra.Command {
	return routineCmd
}
