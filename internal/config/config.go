// Package config wires viper around the small set of settings the tool
// needs: where the database and attachment blobs live, how often the
// overdue sweep runs, how notifications get delivered, and who the
// current user is.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Init loads configuration from the given file, or from
// ~/.taskcore/config.yaml and the working directory when none is given.
// Environment variables with the TASKCORE_ prefix override file values.
func Init(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		if dir, err := baseDir(); err == nil {
			viper.AddConfigPath(dir)
		}
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("TASKCORE")
	viper.AutomaticEnv()

	setDefaults()

	// A missing config file is fine; defaults and env cover everything.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}
	return nil
}

func setDefaults() {
	dir, err := baseDir()
	if err != nil {
		dir = "."
	}
	viper.SetDefault("db.path", filepath.Join(dir, "taskcore.db"))
	viper.SetDefault("files.dir", filepath.Join(dir, "files"))
	viper.SetDefault("sweep.interval", time.Hour)
	viper.SetDefault("notify.command", "")
	viper.SetDefault("user", "")
}

func baseDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".taskcore"), nil
}

// DBPath is the sqlite database location.
func DBPath() string { return viper.GetString("db.path") }

// FilesDir is the root of the attachment blob store.
func FilesDir() string { return viper.GetString("files.dir") }

// SweepInterval is the overdue sweep period.
func SweepInterval() time.Duration { return viper.GetDuration("sweep.interval") }

// NotifyCommand is an optional external command (e.g. notify-send) for
// delivering sweep notifications. Empty means print to the terminal.
func NotifyCommand() string { return viper.GetString("notify.command") }

// CurrentUser is the login recorded by the last successful `login`. It
// seeds the default assignee on new tasks and may be empty.
func CurrentUser() string { return viper.GetString("user") }

// SetCurrentUser persists the current user login to the config file.
func SetCurrentUser(login string) error {
	viper.Set("user", login)
	dir, err := baseDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return viper.WriteConfigAs(filepath.Join(dir, "config.yaml"))
}
