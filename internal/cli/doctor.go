package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/hearth/internal/config"
	"github.com/example/hearth/internal/db"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the local hearth setup",
	Long:  "Check configuration, database, and connector wiring, reporting what is and is not set up.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ok := color.New(color.FgGreen).Sprint("ok")
		warn := color.New(color.FgYellow).Sprint("--")

		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to resolve home directory: %w", err)
		}

		configPath := filepath.Join(home, ".hearth", "config.json")
		cfg := &config.Config{}
		if loaded, err := config.LoadConfig(home); err == nil {
			cfg = loaded
			fmt.Printf("%s config %s\n", ok, configPath)
		} else {
			fmt.Printf("%s config missing, run `hearth init`\n", warn)
		}

		dbPath, err := db.GetDBPath()
		if err == nil {
			if _, statErr := os.Stat(dbPath); statErr == nil {
				fmt.Printf("%s database %s\n", ok, dbPath)
			} else {
				fmt.Printf("%s database not created yet (first command creates it)\n", warn)
			}
		}

		if cfg.HomeAssistant.BaseURL != "" {
			fmt.Printf("%s homeassistant %s\n", ok, cfg.HomeAssistant.BaseURL)
		} else {
			fmt.Printf("%s homeassistant unconfigured (state triggers and state actions unavailable)\n", warn)
		}

		fmt.Printf("%s vision local backend\n", ok)
		for name, endpoint := range map[string]string{
			"frigate":       cfg.Vision.Frigate,
			"codeprojectai": cfg.Vision.CodeProjectAI,
			"yolo":          cfg.Vision.YOLO,
		} {
			if endpoint != "" {
				fmt.Printf("%s vision %s %s\n", ok, name, endpoint)
			} else {
				fmt.Printf("%s vision %s unconfigured\n", warn, name)
			}
		}

		if cfg.Notifications.Enabled {
			fmt.Printf("%s notifications enabled\n", ok)
		} else {
			fmt.Printf("%s notifications disabled\n", warn)
		}

		return nil
	},
}

// DoctorCmd returns the doctor command.
func DoctorCmd() *cobra.Command {
	return doctorCmd
}
