package config

import (
	"os"
	"path/filepath"
)

// getConfigDir returns the configuration directory for termbar.
func getConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "termbar")
}
