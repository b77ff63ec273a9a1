package config

import (
	"os"
	"path/filepath"
)

// DefaultConfigPath returns ~/.config/cljblock/config.yaml (or the platform
// equivalent).
//
// Note: this function does not create directories or files.
func DefaultConfigPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "cljblock", "config.yaml"), nil
}

// DefaultLogDir returns the directory the rolling log file lives in.
//
// Note: this function does not create directories.
func DefaultLogDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "cljblock"), nil
}
