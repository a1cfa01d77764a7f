package config

import (
	"os"
	"path/filepath"
	"strings"
)

const appDirName = ".jotter"

// DataDirEnv overrides the base data directory when set.
const DataDirEnv = "JOTTER_DATA_DIR"

// DataDir returns the base data directory for jotter.
func DataDir() (string, error) {
	if override := strings.TrimSpace(os.Getenv(DataDirEnv)); override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, appDirName), nil
}

func dataFile(name string) (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, name), nil
}

// CoreConfigPath returns the path to the core TOML config.
func CoreConfigPath() (string, error) { return dataFile("config.toml") }

// UIConfigPath returns the path to the terminal UI TOML config.
func UIConfigPath() (string, error) { return dataFile("ui.toml") }

// PreferencesPath returns the path to the persisted theme preferences.
func PreferencesPath() (string, error) { return dataFile("preferences.toml") }

// SessionPath returns the path to the signed-in session written by the client.
func SessionPath() (string, error) { return dataFile("session.json") }

// SecretPath returns the path to the daemon's token signing secret.
func SecretPath() (string, error) { return dataFile("secret") }

// BboltPath returns the path to the bbolt database.
func BboltPath() (string, error) { return dataFile("jotter.db") }

// SQLitePath returns the path to the sqlite database.
func SQLitePath() (string, error) { return dataFile("jotter.sqlite") }

// NotesPath returns the path to the JSON notes file used by the file backend.
func NotesPath() (string, error) { return dataFile("notes.json") }

// UsersPath returns the path to the JSON users file used by the file backend.
func UsersPath() (string, error) { return dataFile("users.json") }

// DaemonLogPath returns the path to the daemon log file.
func DaemonLogPath() (string, error) { return dataFile(filepath.Join("logs", "daemon.log")) }

// UILogPath returns the path to the terminal UI log file.
func UILogPath() (string, error) { return dataFile(filepath.Join("logs", "ui.log")) }

// PIDPath returns the path to the daemon pid file.
func PIDPath() (string, error) { return dataFile("daemon.pid") }
