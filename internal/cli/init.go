package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/hearth/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize hearth configuration",
	Long: `Initialize hearth configuration in the home directory.

Writes ~/.hearth/config.json with default settings. Existing
configuration is left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to resolve home directory: %w", err)
		}

		path := filepath.Join(home, ".hearth", "config.json")
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("Configuration already exists at %s\n", path)
			return nil
		}

		cfg := &config.Config{
			Version:       "1.0",
			Notifications: config.NotificationConfig{Enabled: true},
		}
		if err := config.SaveConfig(home, cfg); err != nil {
			return err
		}

		fmt.Printf("✓ Created %s\n", path)
		fmt.Println("  Set homeassistant.base_url and homeassistant.token to enable state triggers")
		return nil
	},
}

// InitCmd returns the init command.
func InitCmd() *cobra.Command {
	return initCmd
}
