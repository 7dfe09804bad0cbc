package config

import (
	"os"
	"path/filepath"
)

func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "rootprobe")
	}
	return filepath.Join(home, ".config", "rootprobe")
}

// ConfigFilePath prefers a config file next to the executable (handy
// on deployed app-service instances), falling back to the user config
// directory.
func ConfigFilePath() string {
	exe, err := os.Executable()
	if err == nil {
		adjacent := filepath.Join(filepath.Dir(exe), "rootprobe.toml")
		if _, err := os.Stat(adjacent); err == nil {
			return adjacent
		}
	}
	return filepath.Join(ConfigDir(), "rootprobe.toml")
}

func LogFilePath() string {
	return filepath.Join(ConfigDir(), "rootprobe.log")
}
