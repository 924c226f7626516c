package config

import (
	"os"
	"path/filepath"

	"github.com/slotshift/slotshift/internal/constants"
)

// configFileName is the config file name inside both the global and the
// project config directories.
const configFileName = "config.yaml"

// GlobalConfigDir returns the global SlotShift directory (~/.slotshift).
func GlobalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "."+constants.AppName), nil
}

// GlobalConfigPath returns the global config file path
// (~/.slotshift/config.yaml).
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// ProjectConfigPath returns the project config file path relative to the
// current directory (.slotshift/config.yaml).
func ProjectConfigPath() string {
	return filepath.Join("."+constants.AppName, configFileName)
}

// LogsDir returns the global log directory (~/.slotshift/logs), creating
// it if needed.
func LogsDir() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	logsDir := filepath.Join(dir, constants.LogsDir)
	if err = os.MkdirAll(logsDir, 0o750); err != nil {
		return "", err
	}
	return logsDir, nil
}
