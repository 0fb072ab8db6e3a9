package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Operating system constants
const (
	OSAndroid = "android"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// AppDirName is the application-private directory holding the model files
const AppDirName = "beanscan"

// DefaultDataDir returns the application-private directory for the model
// artifact and its version marker.
func DefaultDataDir() (string, error) {
	// On Android, app-private files live under the app's files dir
	isAndroid := runtime.GOOS == OSAndroid ||
		os.Getenv("ANDROID_DATA") != "" ||
		os.Getenv("ANDROID_ROOT") != ""

	if isAndroid {
		if base := os.Getenv("HOME"); base != "" {
			return filepath.Join(base, "files", AppDirName), nil
		}
		return filepath.Join("/data/local/tmp", AppDirName), nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return "", fmt.Errorf("failed to resolve a data directory: %w", err)
		}
		return filepath.Join(home, "."+AppDirName), nil
	}
	return filepath.Join(base, AppDirName), nil
}

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}
