// Package config handles configuration loading, saving, and path management.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// GlobalDirName is the name of the global Nsynca directory.
	GlobalDirName = ".nsynca"

	// LogsDirName is the name of the run history directory.
	LogsDirName = "logs"

	// DistDirName is the directory packaged binaries are shipped in.
	DistDirName = "dist"
)

// File names
const (
	SettingsFileName = "settings.yaml"
	EnvFileName      = ".env"
	AppLogFileName   = "nsynca.log"
)

// LogDirEnv overrides the run history directory.
const LogDirEnv = "NSYNCA_LOG_DIR"

// GlobalDir returns the path to the global Nsynca directory (~/.nsynca/).
func GlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, GlobalDirName), nil
}

// GlobalSettingsFile returns the path to the settings.yaml file.
func GlobalSettingsFile() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SettingsFileName), nil
}

// EnsureGlobalDir creates the global Nsynca directory if it doesn't exist.
func EnsureGlobalDir() error {
	dir, err := GlobalDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// LogsDir resolves the run history directory. Resolution order:
// NSYNCA_LOG_DIR, the settings override, <exe dir>/logs when the binary
// runs from a dist directory, then ./logs.
func LogsDir(override string) string {
	if dir := strings.TrimSpace(os.Getenv(LogDirEnv)); dir != "" {
		return dir
	}
	if override != "" {
		return override
	}
	if exe, err := os.Executable(); err == nil {
		if dir, ok := distLogsDir(exe); ok {
			return dir
		}
	}
	return LogsDirName
}

// distLogsDir returns <exe dir>/logs when exe lives directly in a dist directory.
func distLogsDir(exe string) (string, bool) {
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	dir := filepath.Dir(exe)
	if filepath.Base(dir) != DistDirName {
		return "", false
	}
	return filepath.Join(dir, LogsDirName), true
}

// EnsureDir creates dir if it doesn't exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
