package state

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	AppName   = "artifactstore"
	ConfigEnv = "ARTIFACTSTORE_CONFIG"
)

func AppDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return "", homeErr
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, AppName), nil
}

// ConfigPath honours ARTIFACTSTORE_CONFIG before falling back to the
// per-user config directory.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(ConfigEnv)); p != "" {
		return p, nil
	}
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
